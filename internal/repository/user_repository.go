package repository

import (
	"context"
	"fmt"

	"github.com/staff-attendance-api/internal/domain"
	"gorm.io/gorm"
)

// UserRepository - проверки, общие для всех учётных записей
type UserRepository interface {
	// ExistsByEmail ищет email среди администраторов и сотрудников
	ExistsByEmail(ctx context.Context, email string, excludeID *int64) (bool, error)
}

// AdminRepository определяет интерфейс для работы с администраторами
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	GetByID(ctx context.Context, id int64) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	List(ctx context.Context) ([]domain.Admin, error)
	Update(ctx context.Context, admin *domain.Admin) error
	Delete(ctx context.Context, id int64) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository создаёт новый экземпляр репозитория
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string, excludeID *int64) (bool, error) {
	var count int64
	query := conn(ctx, r.db).Table("users").Where("email = ?", email)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, translateError(err)
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository создаёт новый экземпляр репозитория
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) scoped(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Model(&domain.Admin{}).Where("kind = ?", domain.KindAdmin)
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	admin.Kind = domain.KindAdmin
	err := conn(ctx, r.db).Create(admin).Error
	if isDuplicate(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, admin.Email)
	}
	return translateError(err)
}

func (r *adminRepository) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	var admin domain.Admin
	err := r.scoped(ctx).Where("id = ?", id).First(&admin).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrAdminNotFound, id)
		}
		return nil, translateError(err)
	}
	return &admin, nil
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	var admin domain.Admin
	err := r.scoped(ctx).Where("email = ?", email).First(&admin).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: email %s", domain.ErrAdminNotFound, email)
		}
		return nil, translateError(err)
	}
	return &admin, nil
}

func (r *adminRepository) List(ctx context.Context) ([]domain.Admin, error) {
	var admins []domain.Admin
	err := r.scoped(ctx).Order("id ASC").Find(&admins).Error
	return admins, translateError(err)
}

func (r *adminRepository) Update(ctx context.Context, admin *domain.Admin) error {
	err := conn(ctx, r.db).Save(admin).Error
	if isDuplicate(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, admin.Email)
	}
	return translateError(err)
}

func (r *adminRepository) Delete(ctx context.Context, id int64) error {
	result := conn(ctx, r.db).Where("kind = ?", domain.KindAdmin).Delete(&domain.Admin{}, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrAdminNotFound, id)
	}
	return nil
}
