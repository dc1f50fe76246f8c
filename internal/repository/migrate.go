package repository

import (
	"github.com/staff-attendance-api/internal/domain"
	"gorm.io/gorm"
)

// userRow - общая строка таблицы users со столбцами обоих вариантов учётной записи.
// Staff и Admin по отдельности описывают только свою часть таблицы.
type userRow struct {
	domain.Person
	PasswordHash *string `gorm:"type:varchar(100)"`
	AbsenceCount int     `gorm:"not null;default:0"`
	DepartmentID *int64  `gorm:"index"`
}

func (userRow) TableName() string {
	return "users"
}

// AutoMigrate создаёт схему средствами GORM.
// Используется для sqlite; для PostgreSQL схема ведётся SQL-миграциями goose.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Department{},
		&userRow{},
		&domain.Contract{},
		&domain.Fingerprint{},
		&domain.Attendance{},
		&domain.Notification{},
		&domain.Report{},
	)
}
