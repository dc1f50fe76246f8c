package repository

import (
	"context"

	"github.com/staff-attendance-api/internal/domain"
	"gorm.io/gorm"
)

// ReportRepository определяет интерфейс для работы с отчётами подразделений
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	ListByDepartment(ctx context.Context, departmentID int64) ([]domain.Report, error)
	DeleteByDepartment(ctx context.Context, departmentID int64) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository создаёт новый экземпляр репозитория
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	return translateError(conn(ctx, r.db).Create(report).Error)
}

func (r *reportRepository) ListByDepartment(ctx context.Context, departmentID int64) ([]domain.Report, error) {
	var reports []domain.Report
	err := conn(ctx, r.db).Where("department_id = ?", departmentID).Order("created_at ASC, id ASC").Find(&reports).Error
	return reports, translateError(err)
}

func (r *reportRepository) DeleteByDepartment(ctx context.Context, departmentID int64) (int64, error) {
	result := conn(ctx, r.db).Where("department_id = ?", departmentID).Delete(&domain.Report{})
	return result.RowsAffected, translateError(result.Error)
}
