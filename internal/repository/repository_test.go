package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/staff-attendance-api/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newStaff(email string, departmentID int64) *domain.Staff {
	return &domain.Staff{
		Person: domain.Person{
			Name:    "Ada",
			Surname: "Lovelace",
			Email:   email,
			Role:    domain.RoleStaff,
			Active:  true,
		},
		DepartmentID: departmentID,
	}
}

func TestAutoMigrate_UsersHasColumnsOfBothKinds(t *testing.T) {
	db := newTestDB(t)

	columns, err := db.Migrator().ColumnTypes("users")
	if err != nil {
		t.Fatalf("failed to read columns: %v", err)
	}
	got := make(map[string]bool, len(columns))
	for _, c := range columns {
		got[c.Name()] = true
	}

	for _, name := range []string{"email", "kind", "password_hash", "absence_count", "department_id"} {
		if !got[name] {
			t.Errorf("expected column '%s' in users table", name)
		}
	}
}

func TestAutoMigrate_StaffAndAdminShareTable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	admin := &domain.Admin{
		Person:       domain.Person{Name: "Root", Surname: "Admin", Email: "root@example.com", Role: domain.RoleAdmin, Active: true},
		PasswordHash: "hash",
	}
	if err := NewAdminRepository(db).Create(ctx, admin); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	staff := newStaff("ada@example.com", 1)
	staff.AbsenceCount = 2
	staffRepo := NewStaffRepository(db)
	if err := staffRepo.Create(ctx, staff); err != nil {
		t.Fatalf("create staff failed: %v", err)
	}

	found, err := staffRepo.GetByID(ctx, staff.ID)
	if err != nil {
		t.Fatalf("get staff failed: %v", err)
	}
	if found.AbsenceCount != 2 || found.DepartmentID != 1 {
		t.Errorf("expected absence 2 and department 1, got %d and %d", found.AbsenceCount, found.DepartmentID)
	}

	// Повторная миграция не теряет столбцы
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
	if !db.Migrator().HasColumn(&userRow{}, "password_hash") || !db.Migrator().HasColumn(&userRow{}, "absence_count") {
		t.Error("expected both variant columns after second migration")
	}
}

func TestWithinTransaction_RollsBack(t *testing.T) {
	db := newTestDB(t)
	tx := NewTxManager(db)
	staffRepo := NewStaffRepository(db)
	ctx := context.Background()

	errBoom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := staffRepo.Create(ctx, newStaff("ada@example.com", 1)); err != nil {
			return err
		}
		// Вложенный вызов работает в той же транзакции
		return tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := staffRepo.Create(ctx, newStaff("bob@example.com", 1)); err != nil {
				return err
			}
			return errBoom
		})
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected boom, got %v", err)
	}

	count, err := staffRepo.Count(ctx, StaffFilter{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected rollback to leave 0 staff, got %d", count)
	}
}

func TestStaffRepository_ScopedByKind(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	staffRepo := NewStaffRepository(db)
	adminRepo := NewAdminRepository(db)
	userRepo := NewUserRepository(db)

	admin := &domain.Admin{Person: domain.Person{Name: "Root", Surname: "Admin", Email: "root@example.com", Role: domain.RoleAdmin, Active: true}}
	if err := adminRepo.Create(ctx, admin); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	if _, err := staffRepo.GetByID(ctx, admin.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected admin to be invisible to staff repository, got %v", err)
	}

	err := staffRepo.Create(ctx, newStaff("root@example.com", 1))
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Errorf("expected duplicate email, got %v", err)
	}

	exists, err := userRepo.ExistsByEmail(ctx, "root@example.com", &admin.ID)
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if exists {
		t.Error("expected excluded id to be ignored")
	}
}

func TestAttendanceRepository_DuplicateIsTransient(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewAttendanceRepository(db)

	date := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)
	arrival := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := repo.Create(ctx, &domain.Attendance{StaffID: 1, AttendanceDate: date, ArrivalTime: &arrival}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err := repo.Create(ctx, &domain.Attendance{StaffID: 1, AttendanceDate: date, ArrivalTime: &arrival})
	if !errors.Is(err, domain.ErrTransient) {
		t.Errorf("expected transient error, got %v", err)
	}

	found, err := repo.FindByStaffAndDate(ctx, 1, domain.TruncateDate(date))
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found.ArrivalTime == nil || !found.ArrivalTime.Equal(arrival) {
		t.Errorf("expected arrival %v, got %v", arrival, found.ArrivalTime)
	}
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransient bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("disk on fire"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			if errors.Is(got, domain.ErrTransient) != tt.wantTransient {
				t.Errorf("expected transient=%v, got %v", tt.wantTransient, got)
			}
		})
	}

	if translateError(nil) != nil {
		t.Error("expected nil for nil error")
	}
	if !isDuplicate(&pgconn.PgError{Code: "23505"}) {
		t.Error("expected 23505 to be a duplicate")
	}
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"plain":   "plain",
		"100%":    `100\%`,
		"a_b":     `a\_b`,
		`back\sl`: `back\\sl`,
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q): expected %q, got %q", in, want, got)
		}
	}
}
