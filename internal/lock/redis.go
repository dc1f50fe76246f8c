package lock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/staff-attendance-api/internal/domain"
)

const retryInterval = 25 * time.Millisecond

// Снимает блокировку, только если она всё ещё принадлежит владельцу токена
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedis создаёт блокировки, общие для всех экземпляров сервиса.
// ttl ограничивает время жизни блокировки, если владелец упал.
func NewRedis(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) Locker {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisLocker{client: client, ttl: ttl, logger: logger}
}

func (l *redisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := "lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: lock %s: %v", domain.ErrTransient, key, ctx.Err())
			}
			return nil, fmt.Errorf("%w: lock %s: %v", domain.ErrTransient, key, err)
		}
		if ok {
			break
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: lock %s: %v", domain.ErrTransient, key, ctx.Err())
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Снимаем блокировку даже если контекст запроса уже отменён
			releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
				// Ключ останется занятым до истечения ttl
				l.logger.Warn("failed to release lock",
					slog.String("key", key),
					slog.Duration("ttl", l.ttl),
					slog.Any("error", err),
				)
			}
		})
	}, nil
}
