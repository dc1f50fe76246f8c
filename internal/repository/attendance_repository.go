package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/staff-attendance-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttendanceFilter задаёт выборку отметок; пустые поля не ограничивают
type AttendanceFilter struct {
	StaffID      *int64
	DepartmentID *int64
	Date         *time.Time
	From         *time.Time
	To           *time.Time
}

// AttendanceRepository определяет интерфейс для работы с отметками
type AttendanceRepository interface {
	Create(ctx context.Context, att *domain.Attendance) error
	Update(ctx context.Context, att *domain.Attendance) error
	GetByID(ctx context.Context, id int64) (*domain.Attendance, error)
	FindByStaffAndDate(ctx context.Context, staffID int64, date time.Time) (*domain.Attendance, error)
	List(ctx context.Context, filter AttendanceFilter) ([]domain.Attendance, error)
	CountByStaff(ctx context.Context, staffID int64) (int64, error)
	CountsByStaff(ctx context.Context, staffIDs []int64) (map[int64]int64, error)
	DeleteByStaffIDs(ctx context.Context, staffIDs []int64) (int64, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository создаёт новый экземпляр репозитория
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) withStaff(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Preload("Staff").Preload("Staff.Department")
}

func (r *attendanceRepository) Create(ctx context.Context, att *domain.Attendance) error {
	att.AttendanceDate = domain.TruncateDate(att.AttendanceDate)
	err := conn(ctx, r.db).Omit(clause.Associations).Create(att).Error
	if isDuplicate(err) {
		// Параллельная вставка для той же пары (staff, date) проиграла гонку
		return fmt.Errorf("%w: concurrent attendance insert for staff %d on %s",
			domain.ErrTransient, att.StaffID, att.AttendanceDate.Format(domain.DateLayout))
	}
	return translateError(err)
}

func (r *attendanceRepository) Update(ctx context.Context, att *domain.Attendance) error {
	result := conn(ctx, r.db).Model(&domain.Attendance{}).
		Where("id = ?", att.ID).
		Updates(map[string]any{
			"arrival_time":   att.ArrivalTime,
			"departure_time": att.DepartureTime,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrAttendanceNotFound, att.ID)
	}
	return nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id int64) (*domain.Attendance, error) {
	var att domain.Attendance
	err := r.withStaff(ctx).First(&att, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrAttendanceNotFound, id)
		}
		return nil, translateError(err)
	}
	return &att, nil
}

func (r *attendanceRepository) FindByStaffAndDate(ctx context.Context, staffID int64, date time.Time) (*domain.Attendance, error) {
	var att domain.Attendance
	err := r.withStaff(ctx).
		Where("staff_id = ? AND attendance_date = ?", staffID, domain.TruncateDate(date)).
		First(&att).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: staff %d on %s", domain.ErrAttendanceNotFound, staffID, date.Format(domain.DateLayout))
		}
		return nil, translateError(err)
	}
	return &att, nil
}

func (r *attendanceRepository) List(ctx context.Context, filter AttendanceFilter) ([]domain.Attendance, error) {
	query := r.withStaff(ctx).Model(&domain.Attendance{})

	if filter.StaffID != nil {
		query = query.Where("attendances.staff_id = ?", *filter.StaffID)
	}
	if filter.DepartmentID != nil {
		query = query.Where("attendances.staff_id IN (?)",
			conn(ctx, r.db).Model(&domain.Staff{}).Select("id").
				Where("kind = ? AND department_id = ?", domain.KindStaff, *filter.DepartmentID))
	}
	if filter.Date != nil {
		query = query.Where("attendances.attendance_date = ?", domain.TruncateDate(*filter.Date))
	}
	if filter.From != nil {
		query = query.Where("attendances.attendance_date >= ?", domain.TruncateDate(*filter.From))
	}
	if filter.To != nil {
		query = query.Where("attendances.attendance_date <= ?", domain.TruncateDate(*filter.To))
	}

	var items []domain.Attendance
	err := query.Order("attendances.attendance_date ASC, attendances.id ASC").Find(&items).Error
	return items, translateError(err)
}

func (r *attendanceRepository) CountByStaff(ctx context.Context, staffID int64) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&domain.Attendance{}).Where("staff_id = ?", staffID).Count(&count).Error
	return count, translateError(err)
}

// CountsByStaff считает отметки для нескольких сотрудников одним запросом
func (r *attendanceRepository) CountsByStaff(ctx context.Context, staffIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(staffIDs))
	if len(staffIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		StaffID int64
		Total   int64
	}
	err := conn(ctx, r.db).Model(&domain.Attendance{}).
		Select("staff_id, COUNT(*) AS total").
		Where("staff_id IN ?", staffIDs).
		Group("staff_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	for _, row := range rows {
		counts[row.StaffID] = row.Total
	}
	return counts, nil
}

func (r *attendanceRepository) DeleteByStaffIDs(ctx context.Context, staffIDs []int64) (int64, error) {
	if len(staffIDs) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).Where("staff_id IN ?", staffIDs).Delete(&domain.Attendance{})
	return result.RowsAffected, translateError(result.Error)
}
