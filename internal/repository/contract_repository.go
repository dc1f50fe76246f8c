package repository

import (
	"context"
	"fmt"

	"github.com/staff-attendance-api/internal/domain"
	"gorm.io/gorm"
)

// ContractRepository определяет интерфейс для работы с договорами
type ContractRepository interface {
	Create(ctx context.Context, contract *domain.Contract) error
	GetByStaffID(ctx context.Context, staffID int64) (*domain.Contract, error)
	CountByStaff(ctx context.Context, staffID int64) (int64, error)
	DeleteByStaffIDs(ctx context.Context, staffIDs []int64) (int64, error)
}

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository создаёт новый экземпляр репозитория
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	err := conn(ctx, r.db).Create(contract).Error
	if isDuplicate(err) {
		return fmt.Errorf("%w: staff %d already has a contract", domain.ErrConflict, contract.StaffID)
	}
	return translateError(err)
}

func (r *contractRepository) GetByStaffID(ctx context.Context, staffID int64) (*domain.Contract, error) {
	var contract domain.Contract
	err := conn(ctx, r.db).Where("staff_id = ?", staffID).First(&contract).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("contract for staff %d %w", staffID, domain.ErrNotFound)
		}
		return nil, translateError(err)
	}
	return &contract, nil
}

func (r *contractRepository) CountByStaff(ctx context.Context, staffID int64) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&domain.Contract{}).Where("staff_id = ?", staffID).Count(&count).Error
	return count, translateError(err)
}

func (r *contractRepository) DeleteByStaffIDs(ctx context.Context, staffIDs []int64) (int64, error) {
	if len(staffIDs) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).Where("staff_id IN ?", staffIDs).Delete(&domain.Contract{})
	return result.RowsAffected, translateError(result.Error)
}
