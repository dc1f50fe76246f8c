// Package events публикует доменные события после успешной фиксации транзакции.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Типы событий
const (
	AttendanceRecorded    = "attendance.recorded"
	StaffCreated          = "staff.created"
	StaffDeleted          = "staff.deleted"
	DepartmentDeleted     = "department.deleted"
	DepartmentForceDelete = "department.force_deleted"
)

// Event - сообщение о произошедшем изменении
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

// New создаёт событие с новым id и текущим временем
func New(eventType string, payload map[string]any) Event {
	return Event{ID: uuid.NewString(), Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Publisher отправляет события во внешний мир.
// Ошибка публикации не отменяет уже зафиксированные изменения.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type logPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher пишет события в лог, когда брокер не настроен
func NewLogPublisher(logger *slog.Logger) Publisher {
	return &logPublisher{logger: logger}
}

func (p *logPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "event published",
		slog.String("id", event.ID),
		slog.String("type", event.Type),
		slog.Any("payload", event.Payload),
	)
	return nil
}

// Nop отбрасывает все события
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
