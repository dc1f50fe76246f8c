package repository

import (
	"context"
	"fmt"

	"github.com/staff-attendance-api/internal/domain"
	"gorm.io/gorm"
)

// FingerprintRepository определяет интерфейс для работы с отпечатками
type FingerprintRepository interface {
	Create(ctx context.Context, fp *domain.Fingerprint) error
	GetByCode(ctx context.Context, code string) (*domain.Fingerprint, error)
	DeleteByStaffIDs(ctx context.Context, staffIDs []int64) (int64, error)
}

type fingerprintRepository struct {
	db *gorm.DB
}

// NewFingerprintRepository создаёт новый экземпляр репозитория
func NewFingerprintRepository(db *gorm.DB) FingerprintRepository {
	return &fingerprintRepository{db: db}
}

func (r *fingerprintRepository) Create(ctx context.Context, fp *domain.Fingerprint) error {
	err := conn(ctx, r.db).Create(fp).Error
	if isDuplicate(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateFingerprint, fp.Code)
	}
	return translateError(err)
}

func (r *fingerprintRepository) GetByCode(ctx context.Context, code string) (*domain.Fingerprint, error) {
	var fp domain.Fingerprint
	err := conn(ctx, r.db).Where("code = ?", code).First(&fp).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFingerprintNotFound, code)
		}
		return nil, translateError(err)
	}
	return &fp, nil
}

func (r *fingerprintRepository) DeleteByStaffIDs(ctx context.Context, staffIDs []int64) (int64, error) {
	if len(staffIDs) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).Where("staff_id IN ?", staffIDs).Delete(&domain.Fingerprint{})
	return result.RowsAffected, translateError(result.Error)
}
