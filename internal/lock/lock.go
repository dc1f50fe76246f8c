// Package lock сериализует операции над одним ключом, например парой (сотрудник, дата).
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/staff-attendance-api/internal/domain"
)

// Locker выдаёт взаимоисключающую блокировку на ключ.
// Возвращённая функция снимает блокировку и безопасна для повторного вызова.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// AttendanceKey - ключ блокировки для отметок сотрудника за день
func AttendanceKey(staffID int64, date time.Time) string {
	return fmt.Sprintf("attendance:%d:%s", staffID, date.Format(domain.DateLayout))
}

type entry struct {
	ch   chan struct{}
	refs int
}

type localLocker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewLocal создаёт блокировки в пределах одного процесса
func NewLocal() Locker {
	return &localLocker{entries: make(map[string]*entry)}
}

func (l *localLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, fmt.Errorf("%w: lock %s: %v", domain.ErrTransient, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

// release удаляет запись, когда ключ больше никто не ждёт
func (l *localLocker) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}
