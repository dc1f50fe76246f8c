package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/staff-attendance-api/internal/domain"
	"github.com/staff-attendance-api/internal/dto"
	"github.com/staff-attendance-api/internal/events"
	"github.com/staff-attendance-api/internal/lock"
	"github.com/staff-attendance-api/internal/metrics"
	"github.com/staff-attendance-api/internal/repository"
)

// AttendanceService определяет интерфейс бизнес-логики для отметок
type AttendanceService interface {
	Record(ctx context.Context, staffID int64, date, timestamp time.Time) (*dto.AttendanceResponse, error)
	RecordByFingerprint(ctx context.Context, code string, date, timestamp time.Time) (*dto.AttendanceResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.AttendanceResponse, error)
	GetByStaffAndDate(ctx context.Context, staffID int64, date time.Time) (*dto.AttendanceResponse, error)
	ListAll(ctx context.Context) ([]dto.AttendanceResponse, error)
	ListByDate(ctx context.Context, date time.Time) ([]dto.AttendanceResponse, error)
	ListByStaff(ctx context.Context, staffID int64) ([]dto.AttendanceResponse, error)
	ListByDepartment(ctx context.Context, departmentID int64) ([]dto.AttendanceResponse, error)
	ListByDateRange(ctx context.Context, from, to time.Time, departmentID *int64) ([]dto.AttendanceResponse, error)
}

type attendanceService struct {
	tx        repository.TxManager
	staffRepo repository.StaffRepository
	attRepo   repository.AttendanceRepository
	fpRepo    repository.FingerprintRepository
	deptRepo  repository.DepartmentRepository
	locker    lock.Locker
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewAttendanceService создаёт новый экземпляр сервиса
func NewAttendanceService(deps Dependencies) AttendanceService {
	deps = deps.withDefaults()
	return &attendanceService{
		tx:        deps.Tx,
		staffRepo: deps.Staff,
		attRepo:   deps.Attendance,
		fpRepo:    deps.Fingerprints,
		deptRepo:  deps.Departments,
		locker:    deps.Locker,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
}

// Record применяет событие к записи за день:
// нет записи -> приход, есть приход -> уход, обе отметки -> конфликт.
func (s *attendanceService) Record(ctx context.Context, staffID int64, date, timestamp time.Time) (*dto.AttendanceResponse, error) {
	if staffID < 1 {
		return nil, domain.Validationf("staff_id must be positive, got %d", staffID)
	}
	if date.IsZero() {
		return nil, domain.Validationf("date is required")
	}
	if timestamp.IsZero() {
		return nil, domain.Validationf("timestamp is required")
	}
	day := domain.TruncateDate(date)

	unlock, err := s.locker.Lock(ctx, lock.AttendanceKey(staffID, day))
	if err != nil {
		s.metrics.Attendance(metrics.ResultError)
		return nil, err
	}
	defer unlock()

	var (
		att    *domain.Attendance
		result domain.AttendanceStatus
	)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		staff, err := s.staffRepo.GetByID(ctx, staffID)
		if err != nil {
			return err
		}

		existing, err := s.attRepo.FindByStaffAndDate(ctx, staffID, day)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			att = &domain.Attendance{
				StaffID:        staffID,
				AttendanceDate: day,
				ArrivalTime:    &timestamp,
			}
			if err := s.attRepo.Create(ctx, att); err != nil {
				return err
			}
			result = domain.StatusArrivalRecorded

		case err != nil:
			return err

		case existing.DepartureTime != nil && existing.ArrivalTime != nil:
			return fmt.Errorf("%w for staff %d on %s",
				domain.ErrAttendanceComplete, staffID, day.Format(domain.DateLayout))

		case existing.ArrivalTime == nil:
			// Запись без прихода не должна появляться; считаем её пустой
			s.logger.WarnContext(ctx, "attendance anomaly: record without arrival",
				slog.Int64("attendance_id", existing.ID),
				slog.Int64("staff_id", staffID),
				slog.String("date", day.Format(domain.DateLayout)),
			)
			s.metrics.Attendance(metrics.ResultAnomaly)
			att = existing
			att.ArrivalTime = &timestamp
			att.DepartureTime = nil
			if err := s.attRepo.Update(ctx, att); err != nil {
				return err
			}
			result = domain.StatusArrivalRecorded

		default:
			att = existing
			att.DepartureTime = &timestamp
			if err := s.attRepo.Update(ctx, att); err != nil {
				return err
			}
			result = domain.StatusDepartureRecorded
		}

		att.Staff = staff
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.metrics.Attendance(metrics.ResultConflict)
		} else {
			s.metrics.Attendance(metrics.ResultError)
		}
		return nil, err
	}

	if result == domain.StatusArrivalRecorded {
		s.metrics.Attendance(metrics.ResultArrival)
	} else {
		s.metrics.Attendance(metrics.ResultDeparture)
	}

	s.logger.InfoContext(ctx, "attendance recorded",
		slog.Int64("attendance_id", att.ID),
		slog.Int64("staff_id", staffID),
		slog.String("date", day.Format(domain.DateLayout)),
		slog.String("result", string(result)),
	)
	publishEvent(ctx, s.publisher, s.logger, events.New(events.AttendanceRecorded, map[string]any{
		"attendance_id": att.ID,
		"staff_id":      staffID,
		"date":          day.Format(domain.DateLayout),
		"result":        string(result),
		"timestamp":     timestamp,
	}))

	resp := toAttendanceResponse(att, result)
	return &resp, nil
}

func (s *attendanceService) RecordByFingerprint(ctx context.Context, code string, date, timestamp time.Time) (*dto.AttendanceResponse, error) {
	if code == "" {
		return nil, domain.Validationf("fingerprint code is required")
	}

	fp, err := s.fpRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return s.Record(ctx, fp.StaffID, date, timestamp)
}

func (s *attendanceService) GetByID(ctx context.Context, id int64) (*dto.AttendanceResponse, error) {
	att, err := s.attRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toAttendanceResponse(att, att.Status())
	return &resp, nil
}

func (s *attendanceService) GetByStaffAndDate(ctx context.Context, staffID int64, date time.Time) (*dto.AttendanceResponse, error) {
	att, err := s.attRepo.FindByStaffAndDate(ctx, staffID, date)
	if err != nil {
		return nil, err
	}
	resp := toAttendanceResponse(att, att.Status())
	return &resp, nil
}

func (s *attendanceService) ListAll(ctx context.Context) ([]dto.AttendanceResponse, error) {
	return s.list(ctx, repository.AttendanceFilter{})
}

func (s *attendanceService) ListByDate(ctx context.Context, date time.Time) ([]dto.AttendanceResponse, error) {
	return s.list(ctx, repository.AttendanceFilter{Date: &date})
}

func (s *attendanceService) ListByStaff(ctx context.Context, staffID int64) ([]dto.AttendanceResponse, error) {
	return s.list(ctx, repository.AttendanceFilter{StaffID: &staffID})
}

func (s *attendanceService) ListByDepartment(ctx context.Context, departmentID int64) ([]dto.AttendanceResponse, error) {
	return s.list(ctx, repository.AttendanceFilter{DepartmentID: &departmentID})
}

func (s *attendanceService) ListByDateRange(ctx context.Context, from, to time.Time, departmentID *int64) ([]dto.AttendanceResponse, error) {
	if to.Before(from) {
		return nil, domain.Validationf("to (%s) is before from (%s)", to.Format(domain.DateLayout), from.Format(domain.DateLayout))
	}
	if departmentID != nil {
		if _, err := s.deptRepo.GetByID(ctx, *departmentID); err != nil {
			return nil, err
		}
	}
	return s.list(ctx, repository.AttendanceFilter{From: &from, To: &to, DepartmentID: departmentID})
}

func (s *attendanceService) list(ctx context.Context, filter repository.AttendanceFilter) ([]dto.AttendanceResponse, error) {
	items, err := s.attRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "attendance listed", slog.Int("count", len(items)))
	return toAttendanceResponses(items), nil
}
