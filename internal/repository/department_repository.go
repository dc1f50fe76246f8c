package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/staff-attendance-api/internal/domain"
	"gorm.io/gorm"
)

// DepartmentRepository определяет интерфейс для работы с подразделениями
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	GetByName(ctx context.Context, name string) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
	Search(ctx context.Context, namePart string) ([]domain.Department, error)
	ListWithStaff(ctx context.Context) ([]domain.Department, error)
	ListEmpty(ctx context.Context) ([]domain.Department, error)
	Update(ctx context.Context, dept *domain.Department) error
	Delete(ctx context.Context, id int64) error
	ExistsByName(ctx context.Context, name string, excludeID *int64) (bool, error)
	Stats(ctx context.Context, id int64) (domain.DepartmentStats, error)
}

type departmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository создаёт новый экземпляр репозитория
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	err := conn(ctx, r.db).Create(dept).Error
	if isDuplicate(err) {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateDepartmentName, dept.Name)
	}
	return translateError(err)
}

func (r *departmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	var dept domain.Department
	err := conn(ctx, r.db).First(&dept, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrDepartmentNotFound, id)
		}
		return nil, translateError(err)
	}
	return &dept, nil
}

func (r *departmentRepository) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	var dept domain.Department
	err := conn(ctx, r.db).Where("name = ?", name).First(&dept).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: name %q", domain.ErrDepartmentNotFound, name)
		}
		return nil, translateError(err)
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	var depts []domain.Department
	err := conn(ctx, r.db).Order("id ASC").Find(&depts).Error
	return depts, translateError(err)
}

func (r *departmentRepository) Search(ctx context.Context, namePart string) ([]domain.Department, error) {
	pattern := "%" + escapeLike(strings.ToLower(namePart)) + "%"

	var depts []domain.Department
	err := conn(ctx, r.db).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).
		Order("name ASC").
		Find(&depts).Error
	return depts, translateError(err)
}

func (r *departmentRepository) ListWithStaff(ctx context.Context) ([]domain.Department, error) {
	var depts []domain.Department
	err := conn(ctx, r.db).
		Where("EXISTS (SELECT 1 FROM users u WHERE u.department_id = departments.id AND u.kind = ?)", domain.KindStaff).
		Order("id ASC").
		Find(&depts).Error
	return depts, translateError(err)
}

func (r *departmentRepository) ListEmpty(ctx context.Context) ([]domain.Department, error) {
	var depts []domain.Department
	err := conn(ctx, r.db).
		Where("NOT EXISTS (SELECT 1 FROM users u WHERE u.department_id = departments.id AND u.kind = ?)", domain.KindStaff).
		Order("id ASC").
		Find(&depts).Error
	return depts, translateError(err)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	err := conn(ctx, r.db).Save(dept).Error
	if isDuplicate(err) {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateDepartmentName, dept.Name)
	}
	return translateError(err)
}

func (r *departmentRepository) Delete(ctx context.Context, id int64) error {
	result := conn(ctx, r.db).Delete(&domain.Department{}, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrDepartmentNotFound, id)
	}
	return nil
}

func (r *departmentRepository) ExistsByName(ctx context.Context, name string, excludeID *int64) (bool, error) {
	var count int64
	query := conn(ctx, r.db).Model(&domain.Department{}).Where("name = ?", name)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	err := query.Count(&count).Error
	return count > 0, translateError(err)
}

// Stats считает агрегаты по живым коллекциям, ничего не кэширует
func (r *departmentRepository) Stats(ctx context.Context, id int64) (domain.DepartmentStats, error) {
	var stats domain.DepartmentStats
	db := conn(ctx, r.db)

	err := db.Model(&domain.Staff{}).
		Where("kind = ? AND department_id = ?", domain.KindStaff, id).
		Count(&stats.TotalStaff).Error
	if err != nil {
		return stats, translateError(err)
	}

	err = db.Model(&domain.Staff{}).
		Where("kind = ? AND department_id = ? AND active = ?", domain.KindStaff, id, true).
		Count(&stats.ActiveStaff).Error
	if err != nil {
		return stats, translateError(err)
	}

	err = db.Model(&domain.Report{}).
		Where("department_id = ?", id).
		Count(&stats.TotalReports).Error
	return stats, translateError(err)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
