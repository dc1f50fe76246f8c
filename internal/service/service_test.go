package service_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/staff-attendance-api/internal/domain"
	"github.com/staff-attendance-api/internal/dto"
	"github.com/staff-attendance-api/internal/events"
	"github.com/staff-attendance-api/internal/metrics"
	"github.com/staff-attendance-api/internal/repository"
	"github.com/staff-attendance-api/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// syncBuffer - буфер логов, безопасный для параллельной записи
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testEnv struct {
	db          *gorm.DB
	metrics     *metrics.Metrics
	publisher   *recordingPublisher
	logs        *syncBuffer
	now         time.Time
	attendance  service.AttendanceService
	staff       service.StaffService
	departments service.DepartmentService
	auth        service.AuthService
}

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

	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		db:        newTestDB(t),
		metrics:   metrics.New(),
		publisher: &recordingPublisher{},
		logs:      &syncBuffer{},
		now:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	deps := service.Dependencies{
		Tx:            repository.NewTxManager(env.db),
		Users:         repository.NewUserRepository(env.db),
		Admins:        repository.NewAdminRepository(env.db),
		Staff:         repository.NewStaffRepository(env.db),
		Departments:   repository.NewDepartmentRepository(env.db),
		Contracts:     repository.NewContractRepository(env.db),
		Attendance:    repository.NewAttendanceRepository(env.db),
		Fingerprints:  repository.NewFingerprintRepository(env.db),
		Notifications: repository.NewNotificationRepository(env.db),
		Reports:       repository.NewReportRepository(env.db),
		Publisher:     env.publisher,
		Metrics:       env.metrics,
		Logger:        slog.New(slog.NewTextHandler(env.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Now:           func() time.Time { return env.now },
	}

	env.attendance = service.NewAttendanceService(deps)
	env.staff = service.NewStaffService(deps)
	env.departments = service.NewDepartmentService(deps)
	env.auth = service.NewAuthService(deps, service.AuthConfig{
		Secret:     "test-secret",
		TTL:        15 * time.Minute,
		LongTTL:    7 * 24 * time.Hour,
		BcryptCost: 4,
	})
	return env
}

func (e *testEnv) mustDepartment(t *testing.T, name string) *dto.DepartmentResponse {
	t.Helper()
	dept, err := e.departments.Create(context.Background(), &dto.CreateDepartmentRequest{Name: name})
	if err != nil {
		t.Fatalf("failed to create department %q: %v", name, err)
	}
	return dept
}

func staffRequest(email string, departmentID int64) *dto.CreateStaffRequest {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &dto.CreateStaffRequest{
		Name:          "Ada",
		Surname:       "Lovelace",
		Email:         email,
		DepartmentID:  departmentID,
		DaysPerWeek:   5,
		ContractStart: start,
		ContractEnd:   start.AddDate(1, 0, 0),
	}
}

func (e *testEnv) mustStaff(t *testing.T, email string, departmentID int64) *dto.StaffResponse {
	t.Helper()
	staff, err := e.staff.Create(context.Background(), staffRequest(email, departmentID))
	if err != nil {
		t.Fatalf("failed to create staff %q: %v", email, err)
	}
	return staff
}

func (e *testEnv) count(t *testing.T, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	query := e.db.Model(model)
	if where != "" {
		query = query.Where(where, args...)
	}
	if err := query.Count(&n).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 1, hour, minute, 0, 0, time.UTC)
}

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func staffKindCount(t *testing.T, e *testEnv) int64 {
	return e.count(t, &domain.Staff{}, "kind = ?", domain.KindStaff)
}
