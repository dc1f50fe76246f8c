package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/staff-attendance-api/internal/domain"
	"github.com/staff-attendance-api/internal/dto"
	"github.com/staff-attendance-api/internal/events"
	"github.com/staff-attendance-api/internal/metrics"
	"github.com/staff-attendance-api/internal/repository"
	"github.com/staff-attendance-api/internal/validation"
)

// DepartmentService определяет интерфейс бизнес-логики для подразделений
type DepartmentService interface {
	Create(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error)
	Delete(ctx context.Context, id int64) error
	ForceDelete(ctx context.Context, id int64) (int64, error)
	GetByID(ctx context.Context, id int64) (*dto.DepartmentResponse, error)
	GetDetails(ctx context.Context, id int64) (*dto.DepartmentDetailResponse, error)
	GetByName(ctx context.Context, name string) (*dto.DepartmentResponse, error)
	List(ctx context.Context) ([]dto.DepartmentResponse, error)
	Search(ctx context.Context, query string) ([]dto.DepartmentResponse, error)
	ListWithStaff(ctx context.Context) ([]dto.DepartmentResponse, error)
	ListEmpty(ctx context.Context) ([]dto.DepartmentResponse, error)
	NameExists(ctx context.Context, name string) (bool, error)
	Statistics(ctx context.Context, id int64) (*dto.DepartmentStatisticsResponse, error)
	AddReport(ctx context.Context, id int64, content string) (*domain.Report, error)
	ListReports(ctx context.Context, id int64) ([]domain.Report, error)
}

type departmentService struct {
	tx         repository.TxManager
	deptRepo   repository.DepartmentRepository
	staffRepo  repository.StaffRepository
	reportRepo repository.ReportRepository
	cascade    staffCascade
	publisher  events.Publisher
	metrics    *metrics.Metrics
	validator  *validation.Validator
	logger     *slog.Logger
}

// NewDepartmentService создаёт новый экземпляр сервиса
func NewDepartmentService(deps Dependencies) DepartmentService {
	deps = deps.withDefaults()
	return &departmentService{
		tx:         deps.Tx,
		deptRepo:   deps.Departments,
		staffRepo:  deps.Staff,
		reportRepo: deps.Reports,
		cascade:    newStaffCascade(deps),
		publisher:  deps.Publisher,
		metrics:    deps.Metrics,
		validator:  deps.Validator,
		logger:     deps.Logger,
	}
}

func (s *departmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.validator.Struct(&dto.CreateDepartmentRequest{Name: name}); err != nil {
		return nil, err
	}

	// Уникальность проверяется точным совпадением, с учётом регистра
	exists, err := s.deptRepo.ExistsByName(ctx, name, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateDepartmentName, name)
	}

	dept := &domain.Department{Name: name}
	if err := s.deptRepo.Create(ctx, dept); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "department created",
		slog.Int64("department_id", dept.ID),
		slog.String("name", dept.Name),
	)
	resp := toDepartmentResponse(dept, domain.DepartmentStats{})
	return &resp, nil
}

func (s *departmentService) Update(ctx context.Context, id int64, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.validator.Struct(&dto.UpdateDepartmentRequest{Name: name}); err != nil {
		return nil, err
	}

	dept, err := s.deptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Проверяем уникальность, только если имя действительно меняется
	if name != dept.Name {
		exists, err := s.deptRepo.ExistsByName(ctx, name, &id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateDepartmentName, name)
		}

		dept.Name = name
		if err := s.deptRepo.Update(ctx, dept); err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "department renamed",
			slog.Int64("department_id", id),
			slog.String("name", name),
		)
	}

	return s.withStats(ctx, dept)
}

// Delete удаляет пустое подразделение вместе с отчётами
func (s *departmentService) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.deptRepo.GetByID(ctx, id); err != nil {
			return err
		}

		count, err := s.staffRepo.Count(ctx, repository.StaffFilter{DepartmentID: &id})
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: department %d still has %d staff member(s)", domain.ErrDepartmentNotEmpty, id, count)
		}

		if _, err := s.reportRepo.DeleteByDepartment(ctx, id); err != nil {
			return err
		}
		return s.deptRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "department deleted", slog.Int64("department_id", id))
	publishEvent(ctx, s.publisher, s.logger, events.New(events.DepartmentDeleted, map[string]any{
		"department_id": id,
	}))
	return nil
}

// ForceDelete удаляет подразделение со всеми сотрудниками; возвращает их число
func (s *departmentService) ForceDelete(ctx context.Context, id int64) (int64, error) {
	var (
		dept    *domain.Department
		removed int64
	)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		dept, err = s.deptRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		staffIDs, err := s.staffRepo.IDsByDepartment(ctx, id)
		if err != nil {
			return err
		}

		removed, err = s.cascade.deleteStaff(ctx, staffIDs)
		if err != nil {
			return err
		}

		if _, err := s.reportRepo.DeleteByDepartment(ctx, id); err != nil {
			return err
		}
		return s.deptRepo.Delete(ctx, id)
	})
	if err != nil {
		return 0, err
	}

	s.metrics.CascadeDeleted(int(removed))
	s.logger.WarnContext(ctx, "department force deleted",
		slog.Int64("department_id", id),
		slog.String("name", dept.Name),
		slog.Int64("cascaded_staff", removed),
	)
	publishEvent(ctx, s.publisher, s.logger, events.New(events.DepartmentForceDelete, map[string]any{
		"department_id":  id,
		"cascaded_staff": removed,
	}))
	return removed, nil
}

func (s *departmentService) GetByID(ctx context.Context, id int64) (*dto.DepartmentResponse, error) {
	dept, err := s.deptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withStats(ctx, dept)
}

func (s *departmentService) GetDetails(ctx context.Context, id int64) (*dto.DepartmentDetailResponse, error) {
	resp, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	staff, err := s.staffRepo.List(ctx, repository.StaffFilter{DepartmentID: &id})
	if err != nil {
		return nil, err
	}

	detail := &dto.DepartmentDetailResponse{
		DepartmentResponse: *resp,
		Staff:              make([]dto.StaffSummary, len(staff)),
	}
	for i := range staff {
		detail.Staff[i] = toStaffSummary(&staff[i])
	}
	return detail, nil
}

func (s *departmentService) GetByName(ctx context.Context, name string) (*dto.DepartmentResponse, error) {
	dept, err := s.deptRepo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	return s.withStats(ctx, dept)
}

func (s *departmentService) List(ctx context.Context) ([]dto.DepartmentResponse, error) {
	depts, err := s.deptRepo.List(ctx)
	return s.listWithStats(ctx, depts, err)
}

// Search ищет подстроку без учёта регистра
func (s *departmentService) Search(ctx context.Context, query string) ([]dto.DepartmentResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.Validationf("search query is required")
	}
	depts, err := s.deptRepo.Search(ctx, query)
	return s.listWithStats(ctx, depts, err)
}

func (s *departmentService) ListWithStaff(ctx context.Context) ([]dto.DepartmentResponse, error) {
	depts, err := s.deptRepo.ListWithStaff(ctx)
	return s.listWithStats(ctx, depts, err)
}

func (s *departmentService) ListEmpty(ctx context.Context) ([]dto.DepartmentResponse, error) {
	depts, err := s.deptRepo.ListEmpty(ctx)
	return s.listWithStats(ctx, depts, err)
}

func (s *departmentService) NameExists(ctx context.Context, name string) (bool, error) {
	return s.deptRepo.ExistsByName(ctx, strings.TrimSpace(name), nil)
}

func (s *departmentService) Statistics(ctx context.Context, id int64) (*dto.DepartmentStatisticsResponse, error) {
	dept, err := s.deptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.deptRepo.Stats(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.DepartmentStatisticsResponse{
		DepartmentID:   dept.ID,
		DepartmentName: dept.Name,
		TotalStaff:     stats.TotalStaff,
		ActiveStaff:    stats.ActiveStaff,
		TotalReports:   stats.TotalReports,
	}, nil
}

func (s *departmentService) AddReport(ctx context.Context, id int64, content string) (*domain.Report, error) {
	content = strings.TrimSpace(content)
	if err := s.validator.Struct(&dto.ContentRequest{Content: content}); err != nil {
		return nil, err
	}
	if _, err := s.deptRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	report := &domain.Report{DepartmentID: id, Content: content}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *departmentService) ListReports(ctx context.Context, id int64) ([]domain.Report, error) {
	if _, err := s.deptRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.reportRepo.ListByDepartment(ctx, id)
}

func (s *departmentService) withStats(ctx context.Context, dept *domain.Department) (*dto.DepartmentResponse, error) {
	stats, err := s.deptRepo.Stats(ctx, dept.ID)
	if err != nil {
		return nil, err
	}
	resp := toDepartmentResponse(dept, stats)
	return &resp, nil
}

// listWithStats читает статистику на каждый запрос, ничего не кэшируя
func (s *departmentService) listWithStats(ctx context.Context, depts []domain.Department, err error) ([]dto.DepartmentResponse, error) {
	if err != nil {
		return nil, err
	}

	resp := make([]dto.DepartmentResponse, len(depts))
	for i := range depts {
		stats, err := s.deptRepo.Stats(ctx, depts[i].ID)
		if err != nil {
			return nil, err
		}
		resp[i] = toDepartmentResponse(&depts[i], stats)
	}
	s.logger.DebugContext(ctx, "departments listed", slog.Int("count", len(resp)))
	return resp, nil
}
