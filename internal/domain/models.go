package domain

import (
	"time"
)

// Role - уровень полномочий пользователя
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

// Kind - вариант учётной записи (администратор или сотрудник)
type Kind string

const (
	KindAdmin Kind = "admin"
	KindStaff Kind = "staff"
)

// Person содержит общие поля любой учётной записи
type Person struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Surname   string    `json:"surname" gorm:"type:varchar(100);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null"`
	Kind      Kind      `json:"-" gorm:"type:varchar(10);not null;index"`
	Active    bool      `json:"active" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// FullName возвращает имя и фамилию через пробел
func (p Person) FullName() string {
	return p.Name + " " + p.Surname
}

// Admin - учётная запись администратора
type Admin struct {
	Person
	PasswordHash string `json:"-" gorm:"type:varchar(100)"`
}

// TableName задаёт имя таблицы для GORM
func (Admin) TableName() string {
	return "users"
}

// Staff - сотрудник, закреплённый за подразделением
type Staff struct {
	Person
	AbsenceCount int   `json:"absence_count" gorm:"not null;default:0"`
	DepartmentID int64 `json:"department_id" gorm:"index"`

	Department  *Department  `json:"-" gorm:"foreignKey:DepartmentID"`
	Contract    *Contract    `json:"-" gorm:"foreignKey:StaffID"`
	Fingerprint *Fingerprint `json:"-" gorm:"foreignKey:StaffID"`
}

// TableName задаёт имя таблицы для GORM
func (Staff) TableName() string {
	return "users"
}

// Department представляет подразделение организации
type Department struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName задаёт имя таблицы для GORM
func (Department) TableName() string {
	return "departments"
}

// DepartmentStats - агрегаты подразделения, считаются при каждом чтении
type DepartmentStats struct {
	TotalStaff   int64
	ActiveStaff  int64
	TotalReports int64
}

// Contract - трудовой договор сотрудника, ровно один на сотрудника
type Contract struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	StaffID      int64     `json:"staff_id" gorm:"not null;uniqueIndex"`
	DaysPerWeek  int       `json:"days_per_week" gorm:"not null"`
	StartTime    time.Time `json:"start_time" gorm:"not null"`
	EndTime      time.Time `json:"end_time" gorm:"not null"`
	ContractDate time.Time `json:"contract_date" gorm:"type:date;not null"`
}

// TableName задаёт имя таблицы для GORM
func (Contract) TableName() string {
	return "contracts"
}

// Fingerprint - непрозрачный идентификатор отпечатка, привязанный к сотруднику
type Fingerprint struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	StaffID   int64     `json:"staff_id" gorm:"not null;uniqueIndex"`
	Code      string    `json:"-" gorm:"type:varchar(255);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName задаёт имя таблицы для GORM
func (Fingerprint) TableName() string {
	return "fingerprints"
}

// Notification принадлежит пользователю и удаляется вместе с ним
type Notification struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID   int64     `json:"user_id" gorm:"not null;index"`
	Content  string    `json:"content" gorm:"type:text;not null"`
	DateSent time.Time `json:"date_sent" gorm:"not null"`
}

// TableName задаёт имя таблицы для GORM
func (Notification) TableName() string {
	return "notifications"
}

// Report принадлежит подразделению и удаляется вместе с ним
type Report struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	DepartmentID int64     `json:"department_id" gorm:"not null;index"`
	Content      string    `json:"content" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName задаёт имя таблицы для GORM
func (Report) TableName() string {
	return "reports"
}

// Principal - аутентифицированный администратор, от имени которого выполняется запрос
type Principal struct {
	ID    int64
	Email string
	Role  Role
}
