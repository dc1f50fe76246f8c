package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/staff-attendance-api/internal/domain"
	"github.com/staff-attendance-api/internal/dto"
	"github.com/staff-attendance-api/internal/events"
	"github.com/staff-attendance-api/internal/repository"
	"github.com/staff-attendance-api/internal/validation"
)

// StaffService определяет интерфейс бизнес-логики для сотрудников
type StaffService interface {
	Create(ctx context.Context, req *dto.CreateStaffRequest) (*dto.StaffResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.StaffResponse, error)
	GetByEmail(ctx context.Context, email string) (*dto.StaffResponse, error)
	List(ctx context.Context, activeOnly bool) ([]dto.StaffResponse, error)
	ListByDepartment(ctx context.Context, departmentID int64, activeOnly bool) ([]dto.StaffResponse, error)
	CountByDepartment(ctx context.Context, departmentID int64) (int64, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, id int64, req *dto.UpdateStaffRequest) (*dto.StaffResponse, error)
	IncrementAbsence(ctx context.Context, id int64) (*dto.StaffResponse, error)
	ResetAbsence(ctx context.Context, id int64) (*dto.StaffResponse, error)
	Deactivate(ctx context.Context, id int64) (*dto.StaffResponse, error)
	Reactivate(ctx context.Context, id int64) (*dto.StaffResponse, error)
	Delete(ctx context.Context, id int64) error
	EnrollFingerprint(ctx context.Context, id int64, code string) (*dto.StaffResponse, error)
	RemoveFingerprint(ctx context.Context, id int64) error
	AddNotification(ctx context.Context, id int64, content string) (*domain.Notification, error)
	ListNotifications(ctx context.Context, id int64) ([]domain.Notification, error)
}

type staffService struct {
	tx               repository.TxManager
	userRepo         repository.UserRepository
	staffRepo        repository.StaffRepository
	deptRepo         repository.DepartmentRepository
	contractRepo     repository.ContractRepository
	attRepo          repository.AttendanceRepository
	fpRepo           repository.FingerprintRepository
	notificationRepo repository.NotificationRepository
	cascade          staffCascade
	publisher        events.Publisher
	validator        *validation.Validator
	logger           *slog.Logger
	now              func() time.Time
}

// NewStaffService создаёт новый экземпляр сервиса
func NewStaffService(deps Dependencies) StaffService {
	deps = deps.withDefaults()
	return &staffService{
		tx:               deps.Tx,
		userRepo:         deps.Users,
		staffRepo:        deps.Staff,
		deptRepo:         deps.Departments,
		contractRepo:     deps.Contracts,
		attRepo:          deps.Attendance,
		fpRepo:           deps.Fingerprints,
		notificationRepo: deps.Notifications,
		cascade:          newStaffCascade(deps),
		publisher:        deps.Publisher,
		validator:        deps.Validator,
		logger:           deps.Logger,
		now:              deps.Now,
	}
}

// Create создаёт сотрудника и его договор в одной транзакции
func (s *staffService) Create(ctx context.Context, req *dto.CreateStaffRequest) (*dto.StaffResponse, error) {
	in := *req
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.Struct(&in); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = domain.RoleStaff
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	absence := 0
	if in.AbsenceCount != nil {
		absence = *in.AbsenceCount
	}

	staff := &domain.Staff{
		Person: domain.Person{
			Name:    in.Name,
			Surname: in.Surname,
			Email:   in.Email,
			Role:    role,
			Active:  active,
		},
		AbsenceCount: absence,
		DepartmentID: in.DepartmentID,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.userRepo.ExistsByEmail(ctx, in.Email, nil)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, in.Email)
		}

		if _, err := s.deptRepo.GetByID(ctx, in.DepartmentID); err != nil {
			return err
		}

		if err := s.staffRepo.Create(ctx, staff); err != nil {
			return err
		}

		contract := &domain.Contract{
			StaffID:      staff.ID,
			DaysPerWeek:  in.DaysPerWeek,
			StartTime:    in.ContractStart,
			EndTime:      in.ContractEnd,
			ContractDate: domain.TruncateDate(s.now()),
		}
		if err := s.contractRepo.Create(ctx, contract); err != nil {
			return err
		}

		if in.FingerprintCode != nil {
			if err := s.fpRepo.Create(ctx, &domain.Fingerprint{StaffID: staff.ID, Code: *in.FingerprintCode}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "staff created",
		slog.Int64("staff_id", staff.ID),
		slog.Int64("department_id", staff.DepartmentID),
	)
	publishEvent(ctx, s.publisher, s.logger, events.New(events.StaffCreated, map[string]any{
		"staff_id":      staff.ID,
		"department_id": staff.DepartmentID,
	}))

	return s.GetByID(ctx, staff.ID)
}

func (s *staffService) GetByID(ctx context.Context, id int64) (*dto.StaffResponse, error) {
	staff, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, staff)
}

func (s *staffService) GetByEmail(ctx context.Context, email string) (*dto.StaffResponse, error) {
	staff, err := s.staffRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	return s.view(ctx, staff)
}

func (s *staffService) List(ctx context.Context, activeOnly bool) ([]dto.StaffResponse, error) {
	staff, err := s.staffRepo.List(ctx, repository.StaffFilter{ActiveOnly: activeOnly})
	if err != nil {
		return nil, err
	}
	return s.views(ctx, staff)
}

func (s *staffService) ListByDepartment(ctx context.Context, departmentID int64, activeOnly bool) ([]dto.StaffResponse, error) {
	if _, err := s.deptRepo.GetByID(ctx, departmentID); err != nil {
		return nil, err
	}

	staff, err := s.staffRepo.List(ctx, repository.StaffFilter{DepartmentID: &departmentID, ActiveOnly: activeOnly})
	if err != nil {
		return nil, err
	}
	return s.views(ctx, staff)
}

func (s *staffService) CountByDepartment(ctx context.Context, departmentID int64) (int64, error) {
	if _, err := s.deptRepo.GetByID(ctx, departmentID); err != nil {
		return 0, err
	}
	return s.staffRepo.Count(ctx, repository.StaffFilter{DepartmentID: &departmentID})
}

func (s *staffService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.userRepo.ExistsByEmail(ctx, strings.TrimSpace(email), nil)
}

// Update меняет только переданные поля
func (s *staffService) Update(ctx context.Context, id int64, req *dto.UpdateStaffRequest) (*dto.StaffResponse, error) {
	in := dto.UpdateStaffRequest{
		Name:         trimmed(req.Name),
		Surname:      trimmed(req.Surname),
		Email:        trimmed(req.Email),
		DepartmentID: req.DepartmentID,
		AbsenceCount: req.AbsenceCount,
		Active:       req.Active,
	}
	if err := s.validator.Struct(&in); err != nil {
		return nil, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		staff, err := s.staffRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			staff.Name = *in.Name
		}
		if in.Surname != nil {
			staff.Surname = *in.Surname
		}

		if in.Email != nil {
			email := *in.Email
			if email != staff.Email {
				exists, err := s.userRepo.ExistsByEmail(ctx, email, &id)
				if err != nil {
					return err
				}
				if exists {
					return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, email)
				}
				staff.Email = email
			}
		}

		if in.DepartmentID != nil && *in.DepartmentID != staff.DepartmentID {
			dept, err := s.deptRepo.GetByID(ctx, *in.DepartmentID)
			if err != nil {
				return err
			}
			staff.DepartmentID = dept.ID
			staff.Department = dept
		}

		if in.AbsenceCount != nil {
			staff.AbsenceCount = *in.AbsenceCount
		}
		if in.Active != nil {
			staff.Active = *in.Active
		}

		return s.staffRepo.Update(ctx, staff)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "staff updated", slog.Int64("staff_id", id))
	return s.GetByID(ctx, id)
}

func (s *staffService) IncrementAbsence(ctx context.Context, id int64) (*dto.StaffResponse, error) {
	if err := s.staffRepo.IncrementAbsence(ctx, id); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *staffService) ResetAbsence(ctx context.Context, id int64) (*dto.StaffResponse, error) {
	return s.modify(ctx, id, func(staff *domain.Staff) {
		staff.AbsenceCount = 0
	})
}

func (s *staffService) Deactivate(ctx context.Context, id int64) (*dto.StaffResponse, error) {
	return s.modify(ctx, id, func(staff *domain.Staff) {
		staff.Active = false
	})
}

func (s *staffService) Reactivate(ctx context.Context, id int64) (*dto.StaffResponse, error) {
	return s.modify(ctx, id, func(staff *domain.Staff) {
		staff.Active = true
	})
}

// Delete удаляет сотрудника и всё, чем он владеет
func (s *staffService) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.staffRepo.GetByID(ctx, id); err != nil {
			return err
		}
		_, err := s.cascade.deleteStaff(ctx, []int64{id})
		return err
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "staff deleted", slog.Int64("staff_id", id))
	publishEvent(ctx, s.publisher, s.logger, events.New(events.StaffDeleted, map[string]any{
		"staff_id": id,
	}))
	return nil
}

// EnrollFingerprint заменяет отпечаток сотрудника новым кодом
func (s *staffService) EnrollFingerprint(ctx context.Context, id int64, code string) (*dto.StaffResponse, error) {
	code = strings.TrimSpace(code)
	if err := s.validator.Struct(&dto.FingerprintRequest{Code: code}); err != nil {
		return nil, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.staffRepo.GetByID(ctx, id); err != nil {
			return err
		}

		owner, err := s.fpRepo.GetByCode(ctx, code)
		switch {
		case err == nil && owner.StaffID != id:
			return domain.ErrDuplicateFingerprint
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return err
		}

		if _, err := s.fpRepo.DeleteByStaffIDs(ctx, []int64{id}); err != nil {
			return err
		}
		return s.fpRepo.Create(ctx, &domain.Fingerprint{StaffID: id, Code: code})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "fingerprint enrolled", slog.Int64("staff_id", id))
	return s.GetByID(ctx, id)
}

func (s *staffService) RemoveFingerprint(ctx context.Context, id int64) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.staffRepo.GetByID(ctx, id); err != nil {
			return err
		}
		n, err := s.fpRepo.DeleteByStaffIDs(ctx, []int64{id})
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: staff %d", domain.ErrFingerprintNotFound, id)
		}
		return nil
	})
}

// AddNotification сохраняет уведомление; доставка не выполняется
func (s *staffService) AddNotification(ctx context.Context, id int64, content string) (*domain.Notification, error) {
	content = strings.TrimSpace(content)
	if err := s.validator.Struct(&dto.ContentRequest{Content: content}); err != nil {
		return nil, err
	}
	if _, err := s.staffRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	n := &domain.Notification{UserID: id, Content: content, DateSent: s.now().UTC()}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *staffService) ListNotifications(ctx context.Context, id int64) ([]domain.Notification, error) {
	if _, err := s.staffRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.notificationRepo.ListByUser(ctx, id)
}

func (s *staffService) modify(ctx context.Context, id int64, apply func(*domain.Staff)) (*dto.StaffResponse, error) {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		staff, err := s.staffRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		apply(staff)
		return s.staffRepo.Update(ctx, staff)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *staffService) view(ctx context.Context, staff *domain.Staff) (*dto.StaffResponse, error) {
	total, err := s.attRepo.CountByStaff(ctx, staff.ID)
	if err != nil {
		return nil, err
	}
	resp := toStaffResponse(staff, total)
	return &resp, nil
}

func (s *staffService) views(ctx context.Context, staff []domain.Staff) ([]dto.StaffResponse, error) {
	ids := make([]int64, len(staff))
	for i := range staff {
		ids[i] = staff[i].ID
	}

	counts, err := s.attRepo.CountsByStaff(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.StaffResponse, len(staff))
	for i := range staff {
		resp[i] = toStaffResponse(&staff[i], counts[staff[i].ID])
	}
	return resp, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
