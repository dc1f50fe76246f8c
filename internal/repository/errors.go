package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/staff-attendance-api/internal/domain"
	"gorm.io/gorm"
)

// Коды PostgreSQL, после которых операцию можно повторить
var retryableCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

// translateError превращает сбои хранилища, допускающие повтор, в domain.ErrTransient
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrTransient) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && retryableCodes[pgErr.Code] {
		return fmt.Errorf("%w: %s", domain.ErrTransient, pgErr.Message)
	}
	return err
}

// isDuplicate проверяет нарушение уникального индекса для postgres и sqlite
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
