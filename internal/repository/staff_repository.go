package repository

import (
	"context"
	"fmt"

	"github.com/staff-attendance-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StaffFilter ограничивает выборку сотрудников
type StaffFilter struct {
	DepartmentID *int64
	ActiveOnly   bool
}

// StaffRepository определяет интерфейс для работы с сотрудниками
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.Staff) error
	GetByID(ctx context.Context, id int64) (*domain.Staff, error)
	GetByEmail(ctx context.Context, email string) (*domain.Staff, error)
	List(ctx context.Context, filter StaffFilter) ([]domain.Staff, error)
	Count(ctx context.Context, filter StaffFilter) (int64, error)
	IDsByDepartment(ctx context.Context, departmentID int64) ([]int64, error)
	Update(ctx context.Context, staff *domain.Staff) error
	IncrementAbsence(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}

type staffRepository struct {
	db *gorm.DB
}

// NewStaffRepository создаёт новый экземпляр репозитория
func NewStaffRepository(db *gorm.DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) scoped(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Model(&domain.Staff{}).Where("kind = ?", domain.KindStaff)
}

func (r *staffRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.scoped(ctx).Preload("Department").Preload("Contract").Preload("Fingerprint")
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.Staff) error {
	staff.Kind = domain.KindStaff
	err := conn(ctx, r.db).Omit(clause.Associations).Create(staff).Error
	if isDuplicate(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, staff.Email)
	}
	return translateError(err)
}

func (r *staffRepository) GetByID(ctx context.Context, id int64) (*domain.Staff, error) {
	var staff domain.Staff
	err := r.withRelations(ctx).Where("id = ?", id).First(&staff).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrStaffNotFound, id)
		}
		return nil, translateError(err)
	}
	return &staff, nil
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	var staff domain.Staff
	err := r.withRelations(ctx).Where("email = ?", email).First(&staff).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: email %s", domain.ErrStaffNotFound, email)
		}
		return nil, translateError(err)
	}
	return &staff, nil
}

func (r *staffRepository) filtered(query *gorm.DB, filter StaffFilter) *gorm.DB {
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	return query
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.Staff, error) {
	var staff []domain.Staff
	err := r.filtered(r.withRelations(ctx), filter).Order("id ASC").Find(&staff).Error
	return staff, translateError(err)
}

func (r *staffRepository) Count(ctx context.Context, filter StaffFilter) (int64, error) {
	var count int64
	err := r.filtered(r.scoped(ctx), filter).Count(&count).Error
	return count, translateError(err)
}

func (r *staffRepository) IDsByDepartment(ctx context.Context, departmentID int64) ([]int64, error) {
	var ids []int64
	err := r.scoped(ctx).Where("department_id = ?", departmentID).Order("id ASC").Pluck("id", &ids).Error
	return ids, translateError(err)
}

func (r *staffRepository) Update(ctx context.Context, staff *domain.Staff) error {
	err := conn(ctx, r.db).Omit(clause.Associations).Save(staff).Error
	if isDuplicate(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, staff.Email)
	}
	return translateError(err)
}

// IncrementAbsence увеличивает счётчик одним UPDATE, без чтения
func (r *staffRepository) IncrementAbsence(ctx context.Context, id int64) error {
	result := r.scoped(ctx).Where("id = ?", id).
		UpdateColumn("absence_count", gorm.Expr("absence_count + ?", 1))
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrStaffNotFound, id)
	}
	return nil
}

func (r *staffRepository) Delete(ctx context.Context, id int64) error {
	result := conn(ctx, r.db).Where("kind = ?", domain.KindStaff).Delete(&domain.Staff{}, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrStaffNotFound, id)
	}
	return nil
}

func (r *staffRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).Where("kind = ? AND id IN ?", domain.KindStaff, ids).Delete(&domain.Staff{})
	return result.RowsAffected, translateError(result.Error)
}
