package lock_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/staff-attendance-api/internal/domain"
	"github.com/staff-attendance-api/internal/lock"
)

func newRedisLocker(t *testing.T, logger *slog.Logger) (lock.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return lock.NewRedis(client, 5*time.Second, logger), mr
}

func lockers(t *testing.T) map[string]lock.Locker {
	redisLocker, _ := newRedisLocker(t, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	return map[string]lock.Locker{
		"local": lock.NewLocal(),
		"redis": redisLocker,
	}
}

func TestLock_MutualExclusion(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			var inside, maxInside int32
			var wg sync.WaitGroup

			for range 10 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					unlock, err := l.Lock(context.Background(), "k")
					if err != nil {
						t.Errorf("lock failed: %v", err)
						return
					}
					n := atomic.AddInt32(&inside, 1)
					for {
						m := atomic.LoadInt32(&maxInside)
						if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
							break
						}
					}
					time.Sleep(time.Millisecond)
					atomic.AddInt32(&inside, -1)
					unlock()
				}()
			}
			wg.Wait()

			if maxInside != 1 {
				t.Errorf("expected at most 1 holder, got %d", maxInside)
			}
		})
	}
}

func TestLock_DifferentKeysDoNotBlock(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlockA, err := l.Lock(context.Background(), "a")
			if err != nil {
				t.Fatalf("lock a failed: %v", err)
			}
			defer unlockA()

			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()

			unlockB, err := l.Lock(ctx, "b")
			if err != nil {
				t.Fatalf("lock b failed: %v", err)
			}
			unlockB()
		})
	}
}

func TestLock_TimeoutIsTransient(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlock, err := l.Lock(context.Background(), "busy")
			if err != nil {
				t.Fatalf("lock failed: %v", err)
			}
			defer unlock()

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			_, err = l.Lock(ctx, "busy")
			if !errors.Is(err, domain.ErrTransient) {
				t.Errorf("expected transient error, got %v", err)
			}
		})
	}
}

func TestLock_UnlockTwice(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlock, err := l.Lock(context.Background(), "k")
			if err != nil {
				t.Fatalf("lock failed: %v", err)
			}
			unlock()
			unlock()

			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			again, err := l.Lock(ctx, "k")
			if err != nil {
				t.Fatalf("relock failed: %v", err)
			}
			again()
		})
	}
}

func TestRedisLock_ReleaseKeepsForeignToken(t *testing.T) {
	l, mr := newRedisLocker(t, nil)

	unlock, err := l.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("lock failed: %v", err)
	}

	// Блокировка истекла и перехвачена другим владельцем
	mr.Set("lock:k", "someone-else")
	unlock()

	got, err := mr.Get("lock:k")
	if err != nil {
		t.Fatalf("key missing: %v", err)
	}
	if got != "someone-else" {
		t.Errorf("expected foreign token to survive, got %q", got)
	}
}

func TestRedisLock_ReleaseFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	l, mr := newRedisLocker(t, slog.New(slog.NewTextHandler(&logs, nil)))

	unlock, err := l.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("lock failed: %v", err)
	}

	mr.SetError("LOADING redis is loading the dataset in memory")
	unlock()

	out := logs.String()
	if !strings.Contains(out, "failed to release lock") || !strings.Contains(out, "key=k") {
		t.Errorf("expected release failure with key to be logged, got %q", out)
	}
}

func TestAttendanceKey(t *testing.T) {
	key := lock.AttendanceKey(7, time.Date(2024, 3, 1, 8, 55, 0, 0, time.UTC))
	if key != "attendance:7:2024-03-01" {
		t.Errorf("expected 'attendance:7:2024-03-01', got '%s'", key)
	}
}
