package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config содержит настройки приложения
type Config struct {
	Server       ServerConfig       `envPrefix:"SERVER_"`
	Database     DatabaseConfig     `envPrefix:"DB_"`
	JWT          JWTConfig          `envPrefix:"JWT_"`
	InitialAdmin InitialAdminConfig `envPrefix:"INITIAL_ADMIN_"`
	Redis        RedisConfig        `envPrefix:"REDIS_"`
	RabbitMQ     RabbitMQConfig     `envPrefix:"RABBITMQ_"`
	RateLimit    RateLimitConfig    `envPrefix:"RATE_LIMIT_"`
	CORSOrigins  []string           `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	LogLevel     string             `env:"LOG_LEVEL" envDefault:"info"`
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"14s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Driver          string        `env:"DRIVER" envDefault:"postgres"`
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            string        `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER" envDefault:"postgres"`
	Password        string        `env:"PASSWORD" envDefault:"postgres"`
	DBName          string        `env:"NAME" envDefault:"attendance"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"attendance.db"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnectAttempts int           `env:"CONNECT_ATTEMPTS" envDefault:"30"`
}

// JWTConfig - параметры выдачи токенов
type JWTConfig struct {
	Secret  string        `env:"SECRET,required,notEmpty"`
	TTL     time.Duration `env:"TTL" envDefault:"15m"`
	LongTTL time.Duration `env:"LONG_TTL" envDefault:"168h"`
}

// InitialAdminConfig - администратор, создаваемый при первом запуске
type InitialAdminConfig struct {
	Name     string `env:"NAME" envDefault:"System"`
	Surname  string `env:"SURNAME" envDefault:"Administrator"`
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
}

// RedisConfig - пустой адрес означает локальные блокировки в процессе
type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	LockTTL  time.Duration `env:"LOCK_TTL" envDefault:"10s"`
}

// RabbitMQConfig - пустой DSN означает запись событий в лог
type RabbitMQConfig struct {
	DSN            string        `env:"DSN"`
	Queue          string        `env:"QUEUE" envDefault:"staff_events"`
	PublishTimeout time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"5s"`
}

// RateLimitConfig - ограничение запросов на IP
type RateLimitConfig struct {
	Requests int           `env:"REQUESTS" envDefault:"300"`
	Window   time.Duration `env:"WINDOW" envDefault:"1m"`
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// SlogLevel переводит LOG_LEVEL в уровень slog
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load загружает конфигурацию из .env (если он есть) и переменных окружения
func Load() (*Config, error) {
	// Переменные окружения имеют приоритет над .env
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	// Обработчик должен успеть ответить 504 до обрыва соединения по WRITE_TIMEOUT
	if cfg.Server.WriteTimeout > 0 && cfg.Server.RequestTimeout >= cfg.Server.WriteTimeout {
		return nil, fmt.Errorf("SERVER_REQUEST_TIMEOUT (%s) must be less than SERVER_WRITE_TIMEOUT (%s)",
			cfg.Server.RequestTimeout, cfg.Server.WriteTimeout)
	}

	return cfg, nil
}
