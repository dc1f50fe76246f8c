package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pressly/goose/v3"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/staff-attendance-api/internal/config"
	"github.com/staff-attendance-api/internal/dto"
	"github.com/staff-attendance-api/internal/events"
	"github.com/staff-attendance-api/internal/handler"
	"github.com/staff-attendance-api/internal/lock"
	"github.com/staff-attendance-api/internal/metrics"
	"github.com/staff-attendance-api/internal/migrations"
	"github.com/staff-attendance-api/internal/repository"
	"github.com/staff-attendance-api/internal/service"
	"github.com/staff-attendance-api/internal/validation"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	// Инициализация логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Подключение к БД
	db, err := openDB(cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("failed to get sql.DB", slog.Any("error", err))
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Запуск миграций
	if err := migrate(db, sqlDB, cfg.Database.Driver); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	locker, closeLocker, err := newLocker(cfg.Redis, logger)
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeLocker()

	publisher, closePublisher, err := newPublisher(cfg.RabbitMQ, logger)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", slog.Any("error", err))
		os.Exit(1)
	}
	defer closePublisher()

	m := metrics.New()

	// Инициализация репозиториев и сервисов
	deps := service.Dependencies{
		Tx:            repository.NewTxManager(db),
		Users:         repository.NewUserRepository(db),
		Admins:        repository.NewAdminRepository(db),
		Staff:         repository.NewStaffRepository(db),
		Departments:   repository.NewDepartmentRepository(db),
		Contracts:     repository.NewContractRepository(db),
		Attendance:    repository.NewAttendanceRepository(db),
		Fingerprints:  repository.NewFingerprintRepository(db),
		Notifications: repository.NewNotificationRepository(db),
		Reports:       repository.NewReportRepository(db),
		Locker:        locker,
		Publisher:     publisher,
		Metrics:       m,
		Validator:     validation.New(),
		Logger:        logger,
	}

	attService := service.NewAttendanceService(deps)
	staffService := service.NewStaffService(deps)
	deptService := service.NewDepartmentService(deps)
	authService := service.NewAuthService(deps, service.AuthConfig{
		Secret:  cfg.JWT.Secret,
		TTL:     cfg.JWT.TTL,
		LongTTL: cfg.JWT.LongTTL,
	})

	if cfg.InitialAdmin.Email != "" && cfg.InitialAdmin.Password != "" {
		err := authService.EnsureInitialAdmin(context.Background(), &dto.RegisterAdminRequest{
			Name:     cfg.InitialAdmin.Name,
			Surname:  cfg.InitialAdmin.Surname,
			Email:    cfg.InitialAdmin.Email,
			Password: cfg.InitialAdmin.Password,
		})
		if err != nil {
			logger.Error("failed to create initial admin", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Настройка роутера
	router := handler.NewRouter(
		handler.NewAttendanceHandler(attService, logger),
		handler.NewStaffHandler(staffService, logger),
		handler.NewDepartmentHandler(deptService, logger),
		handler.NewAdminHandler(authService, logger),
		authService,
		m,
		handler.RouterOptions{
			CORSOrigins:    cfg.CORSOrigins,
			RateLimit:      cfg.RateLimit.Requests,
			RateWindow:     cfg.RateLimit.Window,
			RequestTimeout: cfg.Server.RequestTimeout,
		},
		logger,
	)

	// Настройка HTTP сервера
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("could not gracefully shutdown the server", slog.Any("error", err))
		}
		close(done)
	}()

	logger.Info("server is starting",
		slog.String("port", cfg.Server.Port),
		slog.String("db_driver", cfg.Database.Driver),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
		os.Exit(1)
	}

	<-done
	logger.Info("server stopped")
}

func openDB(cfg config.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	}

	if cfg.Driver == "sqlite" {
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite допускает только одного писателя
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	var (
		db  *gorm.DB
		err error
	)
	for attempt := 1; attempt <= cfg.ConnectAttempts; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
		if err == nil {
			sqlDB, _ := db.DB()
			if err = sqlDB.Ping(); err == nil {
				sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
				sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
				sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
				return db, nil
			}
		}
		logger.Warn("database is not ready", slog.Int("attempt", attempt), slog.Any("error", err))
		time.Sleep(time.Second)
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.ConnectAttempts, err)
}

func migrate(db *gorm.DB, sqlDB *sql.DB, driver string) error {
	if driver == "sqlite" {
		return repository.AutoMigrate(db)
	}

	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.Up(sqlDB, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// newLocker выбирает Redis, если задан адрес, иначе блокировки в памяти процесса
func newLocker(cfg config.RedisConfig, logger *slog.Logger) (lock.Locker, func(), error) {
	if cfg.Addr == "" {
		logger.Info("using in-process attendance locks")
		return lock.NewLocal(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	logger.Info("using redis attendance locks", slog.String("addr", cfg.Addr))
	return lock.NewRedis(client, cfg.LockTTL, logger), func() { _ = client.Close() }, nil
}

// newPublisher выбирает RabbitMQ, если задан DSN, иначе события пишутся в лог
func newPublisher(cfg config.RabbitMQConfig, logger *slog.Logger) (events.Publisher, func(), error) {
	if cfg.DSN == "" {
		return events.NewLogPublisher(logger), func() {}, nil
	}

	conn, err := amqp.Dial(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	if err := events.DeclareQueue(ch, cfg.Queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}

	logger.Info("publishing events to rabbitmq", slog.String("queue", cfg.Queue))
	closer := func() {
		_ = ch.Close()
		_ = conn.Close()
	}
	return events.NewAMQPPublisher(ch, cfg.Queue, cfg.PublishTimeout), closer, nil
}
