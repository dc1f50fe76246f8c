package domain

import (
	"errors"
	"fmt"
)

// Виды ошибок. Конкретные ошибки ниже оборачивают один из них,
// поэтому errors.Is(err, ErrNotFound) работает для любой not-found ошибки.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("already exists")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrTransient    = errors.New("temporary storage failure, retry")
	ErrUnauthorized = errors.New("unauthorized")
)

// Определение бизнес-ошибок
var (
	ErrStaffNotFound       = fmt.Errorf("staff %w", ErrNotFound)
	ErrAdminNotFound       = fmt.Errorf("admin %w", ErrNotFound)
	ErrDepartmentNotFound  = fmt.Errorf("department %w", ErrNotFound)
	ErrAttendanceNotFound  = fmt.Errorf("attendance %w", ErrNotFound)
	ErrFingerprintNotFound = fmt.Errorf("fingerprint %w", ErrNotFound)

	ErrDuplicateEmail          = fmt.Errorf("email %w", ErrDuplicate)
	ErrDuplicateDepartmentName = fmt.Errorf("department name %w", ErrDuplicate)
	ErrDuplicateFingerprint    = fmt.Errorf("fingerprint code %w", ErrDuplicate)

	ErrAttendanceComplete = fmt.Errorf("%w: attendance already complete", ErrConflict)
	ErrDepartmentNotEmpty = fmt.Errorf("%w: department is not empty", ErrConflict)

	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	ErrAccountInactive    = fmt.Errorf("account is inactive: %w", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("invalid token: %w", ErrUnauthorized)
	ErrWrongPassword      = fmt.Errorf("current password is incorrect: %w", ErrValidation)
)

// Validationf создаёт ошибку валидации с описанием поля
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
