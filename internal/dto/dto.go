package dto

import (
	"time"

	"github.com/staff-attendance-api/internal/domain"
)

// RecordAttendanceRequest - событие прикосновения к датчику
type RecordAttendanceRequest struct {
	StaffID   int64     `json:"staff_id" validate:"required,min=1"`
	Date      string    `json:"date" validate:"required,datetime=2006-01-02"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
}

// FingerprintAttendanceRequest - событие по коду отпечатка
type FingerprintAttendanceRequest struct {
	Code      string    `json:"code" validate:"required,max=255"`
	Date      string    `json:"date" validate:"required,datetime=2006-01-02"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
}

// CreateStaffRequest - запрос на создание сотрудника вместе с договором
type CreateStaffRequest struct {
	Name            string      `json:"name" validate:"required,min=1,max=100"`
	Surname         string      `json:"surname" validate:"required,min=1,max=100"`
	Email           string      `json:"email" validate:"required,email,max=255"`
	DepartmentID    int64       `json:"department_id" validate:"required,min=1"`
	Role            domain.Role `json:"role" validate:"omitempty,oneof=ADMIN STAFF"`
	Active          *bool       `json:"active"`
	AbsenceCount    *int        `json:"absence_count" validate:"omitempty,min=0"`
	DaysPerWeek     int         `json:"days_per_week" validate:"required,min=1,max=7"`
	ContractStart   time.Time   `json:"contract_start" validate:"required"`
	ContractEnd     time.Time   `json:"contract_end" validate:"required,gtfield=ContractStart"`
	FingerprintCode *string     `json:"fingerprint_code" validate:"omitempty,min=1,max=255"`
}

// UpdateStaffRequest - частичное обновление; nil означает "не менять"
type UpdateStaffRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	Surname      *string `json:"surname" validate:"omitempty,min=1,max=100"`
	Email        *string `json:"email" validate:"omitempty,email,max=255"`
	DepartmentID *int64  `json:"department_id" validate:"omitempty,min=1"`
	AbsenceCount *int    `json:"absence_count" validate:"omitempty,min=0"`
	Active       *bool   `json:"active"`
}

// FingerprintRequest - привязка кода отпечатка
type FingerprintRequest struct {
	Code string `json:"code" validate:"required,max=255"`
}

// ContentRequest - текст уведомления или отчёта
type ContentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// CreateDepartmentRequest - запрос на создание подразделения
type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// UpdateDepartmentRequest - запрос на переименование подразделения
type UpdateDepartmentRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// LoginRequest - вход администратора
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RegisterAdminRequest - создание администратора
type RegisterAdminRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Surname  string `json:"surname" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// UpdateAdminRequest - частичное обновление администратора
type UpdateAdminRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=100"`
	Surname *string `json:"surname" validate:"omitempty,min=1,max=100"`
	Email   *string `json:"email" validate:"omitempty,email,max=255"`
}

// ChangePasswordRequest - смена пароля администратора
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

// AttendanceResponse - отметка с производным статусом
type AttendanceResponse struct {
	ID             int64                   `json:"id"`
	Date           string                  `json:"date"`
	ArrivalTime    *time.Time              `json:"arrival_time"`
	DepartureTime  *time.Time              `json:"departure_time"`
	StaffID        int64                   `json:"staff_id"`
	StaffName      string                  `json:"staff_name"`
	StaffSurname   string                  `json:"staff_surname"`
	StaffEmail     string                  `json:"staff_email"`
	DepartmentID   int64                   `json:"department_id"`
	DepartmentName string                  `json:"department_name"`
	Status         domain.AttendanceStatus `json:"status"`
}

// Статус договора в ответе
const (
	ContractActive = "Active"
	ContractNone   = "No Contract"
)

// StaffResponse - сотрудник с подразделением, договором и числом отметок
type StaffResponse struct {
	ID                  int64       `json:"id"`
	Name                string      `json:"name"`
	Surname             string      `json:"surname"`
	Email               string      `json:"email"`
	Role                domain.Role `json:"role"`
	Active              bool        `json:"active"`
	AbsenceCount        int         `json:"absence_count"`
	DepartmentID        int64       `json:"department_id"`
	DepartmentName      string      `json:"department_name"`
	ContractID          *int64      `json:"contract_id"`
	ContractStatus      string      `json:"contract_status"`
	DaysPerWeek         *int        `json:"days_per_week,omitempty"`
	FingerprintEnrolled bool        `json:"fingerprint_enrolled"`
	TotalAttendance     int64       `json:"total_attendance"`
	CreatedAt           time.Time   `json:"created_at"`
}

// StaffSummary - краткие данные сотрудника в составе подразделения
type StaffSummary struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Active  bool   `json:"active"`
}

// DepartmentResponse - подразделение со статистикой на момент чтения
type DepartmentResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	TotalStaff   int64     `json:"total_staff"`
	ActiveStaff  int64     `json:"active_staff"`
	TotalReports int64     `json:"total_reports"`
}

// DepartmentDetailResponse - подразделение вместе со списком сотрудников
type DepartmentDetailResponse struct {
	DepartmentResponse
	Staff []StaffSummary `json:"staff"`
}

// DepartmentStatisticsResponse - только агрегаты подразделения
type DepartmentStatisticsResponse struct {
	DepartmentID   int64  `json:"department_id"`
	DepartmentName string `json:"department_name"`
	TotalStaff     int64  `json:"total_staff"`
	ActiveStaff    int64  `json:"active_staff"`
	TotalReports   int64  `json:"total_reports"`
}

// AdminResponse - администратор без хеша пароля
type AdminResponse struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Surname   string      `json:"surname"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
}

// LoginResponse - выданный токен доступа
type LoginResponse struct {
	Token     string        `json:"token"`
	TokenType string        `json:"token_type"`
	ExpiresIn int64         `json:"expires_in"`
	IssuedAt  time.Time     `json:"issued_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	Admin     AdminResponse `json:"admin"`
}

// CountResponse - ответ с количеством
type CountResponse struct {
	Count int64 `json:"count"`
}

// ExistsResponse - ответ на проверку существования
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ForceDeleteResponse - итог принудительного удаления подразделения
type ForceDeleteResponse struct {
	DepartmentID int64 `json:"department_id"`
	DeletedStaff int64 `json:"deleted_staff"`
}
