package domain

import "time"

// DateLayout - формат даты отметки во всех входах и выходах
const DateLayout = "2006-01-02"

// AttendanceStatus вычисляется из двух отметок и никогда не хранится
type AttendanceStatus string

const (
	StatusIncomplete        AttendanceStatus = "INCOMPLETE"
	StatusArrivalRecorded   AttendanceStatus = "ARRIVAL_RECORDED"
	StatusDepartureRecorded AttendanceStatus = "DEPARTURE_RECORDED"
	StatusComplete          AttendanceStatus = "COMPLETE"
)

// Attendance - отметки прихода и ухода сотрудника за один день.
// На пару (staff_id, attendance_date) приходится не более одной записи.
type Attendance struct {
	ID             int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	StaffID        int64      `json:"staff_id" gorm:"not null;uniqueIndex:idx_attendances_staff_date"`
	AttendanceDate time.Time  `json:"attendance_date" gorm:"type:date;not null;uniqueIndex:idx_attendances_staff_date;index"`
	ArrivalTime    *time.Time `json:"arrival_time"`
	DepartureTime  *time.Time `json:"departure_time"`

	Staff *Staff `json:"-" gorm:"foreignKey:StaffID"`
}

// TableName задаёт имя таблицы для GORM
func (Attendance) TableName() string {
	return "attendances"
}

// Status возвращает производный статус записи
func (a *Attendance) Status() AttendanceStatus {
	switch {
	case a.ArrivalTime != nil && a.DepartureTime != nil:
		return StatusComplete
	case a.ArrivalTime != nil:
		return StatusArrivalRecorded
	default:
		return StatusIncomplete
	}
}

// TruncateDate приводит момент времени к полуночи UTC того же календарного дня
func TruncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate разбирает дату в формате YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return TruncateDate(t), nil
}
