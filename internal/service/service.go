package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/staff-attendance-api/internal/events"
	"github.com/staff-attendance-api/internal/lock"
	"github.com/staff-attendance-api/internal/metrics"
	"github.com/staff-attendance-api/internal/repository"
	"github.com/staff-attendance-api/internal/validation"
)

// Dependencies - общие зависимости сервисов
type Dependencies struct {
	Tx            repository.TxManager
	Users         repository.UserRepository
	Admins        repository.AdminRepository
	Staff         repository.StaffRepository
	Departments   repository.DepartmentRepository
	Contracts     repository.ContractRepository
	Attendance    repository.AttendanceRepository
	Fingerprints  repository.FingerprintRepository
	Notifications repository.NotificationRepository
	Reports       repository.ReportRepository

	Locker    lock.Locker
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Validator *validation.Validator
	Logger    *slog.Logger

	// Now подменяется в тестах
	Now func() time.Time
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Locker == nil {
		d.Locker = lock.NewLocal()
	}
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}
	if d.Validator == nil {
		d.Validator = validation.New()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// publishEvent отправляет событие после фиксации; ошибка только логируется
func publishEvent(ctx context.Context, publisher events.Publisher, logger *slog.Logger, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.ErrorContext(ctx, "failed to publish event",
			slog.String("type", event.Type),
			slog.Any("error", err),
		)
	}
}
