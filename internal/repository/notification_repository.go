package repository

import (
	"context"

	"github.com/staff-attendance-api/internal/domain"
	"gorm.io/gorm"
)

// NotificationRepository определяет интерфейс для работы с уведомлениями
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Notification, error)
	DeleteByUserIDs(ctx context.Context, userIDs []int64) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository создаёт новый экземпляр репозитория
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return translateError(conn(ctx, r.db).Create(n).Error)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	var items []domain.Notification
	err := conn(ctx, r.db).Where("user_id = ?", userID).Order("date_sent DESC, id DESC").Find(&items).Error
	return items, translateError(err)
}

func (r *notificationRepository) DeleteByUserIDs(ctx context.Context, userIDs []int64) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).Where("user_id IN ?", userIDs).Delete(&domain.Notification{})
	return result.RowsAffected, translateError(result.Error)
}
