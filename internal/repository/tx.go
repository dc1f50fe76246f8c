package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager открывает транзакцию и передаёт её через context.
// Все репозитории, вызванные с этим context, работают внутри одной транзакции.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type txManager struct {
	db *gorm.DB
}

// NewTxManager создаёт новый менеджер транзакций
func NewTxManager(db *gorm.DB) TxManager {
	return &txManager{db: db}
}

func (m *txManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Вложенный вызов присоединяется к уже открытой транзакции
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	return translateError(err)
}

// conn возвращает транзакцию из context или обычное подключение
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
