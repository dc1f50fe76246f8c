package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/staff-attendance-api/internal/domain"
	"github.com/staff-attendance-api/internal/dto"
)

func TestCreateStaff_CreatesExactlyOneContract(t *testing.T) {
	env := newTestEnv(t)
	dept := env.mustDepartment(t, "Engineering")

	staff := env.mustStaff(t, "ada@example.com", dept.ID)

	if staff.ContractStatus != dto.ContractActive {
		t.Errorf("expected contract status '%s', got '%s'", dto.ContractActive, staff.ContractStatus)
	}
	if staff.DaysPerWeek == nil || *staff.DaysPerWeek != 5 {
		t.Errorf("expected 5 days per week, got %v", staff.DaysPerWeek)
	}
	if staff.Role != domain.RoleStaff {
		t.Errorf("expected role %s, got %s", domain.RoleStaff, staff.Role)
	}
	if !staff.Active {
		t.Error("expected staff to be active by default")
	}
	if staff.DepartmentName != "Engineering" {
		t.Errorf("expected department 'Engineering', got '%s'", staff.DepartmentName)
	}
	if n := env.count(t, &domain.Contract{}, "staff_id = ?", staff.ID); n != 1 {
		t.Errorf("expected 1 contract, got %d", n)
	}

	var contract domain.Contract
	if err := env.db.Where("staff_id = ?", staff.ID).First(&contract).Error; err != nil {
		t.Fatalf("failed to load contract: %v", err)
	}
	if !contract.ContractDate.Equal(day) {
		t.Errorf("expected contract date %v, got %v", day, contract.ContractDate)
	}
}

func TestCreateStaff_InactiveIsKept(t *testing.T) {
	env := newTestEnv(t)
	dept := env.mustDepartment(t, "Engineering")

	req := staffRequest("ada@example.com", dept.ID)
	inactive := false
	req.Active = &inactive

	staff, err := env.staff.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if staff.Active {
		t.Error("expected staff to be inactive")
	}
}

func TestCreateStaff_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.mustDepartment(t, "Engineering")
	env.mustStaff(t, "ada@example.com", dept.ID)

	_, err := env.staff.Create(ctx, staffRequest("ada@example.com", dept.ID))
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected duplicate, got %v", err)
	}

	// Администраторы и сотрудники делят одно пространство email
	_, err = env.auth.Register(ctx, &dto.RegisterAdminRequest{
		Name: "Root", Surname: "Admin", Email: "ada@example.com", Password: "secret1",
	})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected duplicate for admin, got %v", err)
	}
}

func TestCreateStaff_UnknownDepartment(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.staff.Create(context.Background(), staffRequest("ada@example.com", 42))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCreateStaff_InvalidContract(t *testing.T) {
	env := newTestEnv(t)
	dept := env.mustDepartment(t, "Engineering")

	req := staffRequest("ada@example.com", dept.ID)
	req.ContractEnd = req.ContractStart.AddDate(0, 0, -1)

	_, err := env.staff.Create(context.Background(), req)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if n := staffKindCount(t, env); n != 0 {
		t.Errorf("expected no staff, got %d", n)
	}
}

func TestCreateStaff_RollsBackOnFingerprintConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.mustDepartment(t, "Engineering")

	first := staffRequest("ada@example.com", dept.ID)
	code := "fp-001"
	first.FingerprintCode = &code
	if _, err := env.staff.Create(ctx, first); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	second := staffRequest("bob@example.com", dept.ID)
	second.FingerprintCode = &code
	_, err := env.staff.Create(ctx, second)
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	if n := env.count(t, &domain.Staff{}, "email = ?", "bob@example.com"); n != 0 {
		t.Errorf("expected staff to be rolled back, got %d", n)
	}
	if n := env.count(t, &domain.Contract{}, ""); n != 1 {
		t.Errorf("expected 1 contract, got %d", n)
	}
}

func TestDeleteStaff_Cascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.mustDepartment(t, "Engineering")
	staff := env.mustStaff(t, "ada@example.com", dept.ID)
	other := env.mustStaff(t, "bob@example.com", dept.ID)

	if _, err := env.attendance.Record(ctx, staff.ID, day, at(9, 0)); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if _, err := env.attendance.Record(ctx, other.ID, day, at(9, 0)); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if _, err := env.staff.EnrollFingerprint(ctx, staff.ID, "fp-001"); err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	if _, err := env.staff.AddNotification(ctx, staff.ID, "Welcome"); err != nil {
		t.Fatalf("notification failed: %v", err)
	}

	if err := env.staff.Delete(ctx, staff.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	checks := []struct {
		name  string
		model any
		where string
	}{
		{"staff", &domain.Staff{}, "id = ?"},
		{"attendance", &domain.Attendance{}, "staff_id = ?"},
		{"contracts", &domain.Contract{}, "staff_id = ?"},
		{"fingerprints", &domain.Fingerprint{}, "staff_id = ?"},
		{"notifications", &domain.Notification{}, "user_id = ?"},
	}
	for _, c := range checks {
		if n := env.count(t, c.model, c.where, staff.ID); n != 0 {
			t.Errorf("expected no %s left, got %d", c.name, n)
		}
	}

	if n := env.count(t, &domain.Attendance{}, "staff_id = ?", other.ID); n != 1 {
		t.Errorf("expected other staff attendance kept, got %d", n)
	}

	_, err := env.staff.GetByID(ctx, staff.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if err := env.staff.Delete(ctx, staff.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestUpdateStaff(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eng := env.mustDepartment(t, "Engineering")
	ops := env.mustDepartment(t, "Operations")
	ada := env.mustStaff(t, "ada@example.com", eng.ID)
	env.mustStaff(t, "bob@example.com", eng.ID)

	name := "  Augusta "
	resp, err := env.staff.Update(ctx, ada.ID, &dto.UpdateStaffRequest{Name: &name, DepartmentID: &ops.ID})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if resp.Name != "Augusta" {
		t.Errorf("expected name 'Augusta', got '%s'", resp.Name)
	}
	if resp.DepartmentName != "Operations" {
		t.Errorf("expected department 'Operations', got '%s'", resp.DepartmentName)
	}
	if resp.Surname != "Lovelace" {
		t.Errorf("expected surname unchanged, got '%s'", resp.Surname)
	}

	taken := "bob@example.com"
	_, err = env.staff.Update(ctx, ada.ID, &dto.UpdateStaffRequest{Email: &taken})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected duplicate, got %v", err)
	}

	same := "ada@example.com"
	if _, err := env.staff.Update(ctx, ada.ID, &dto.UpdateStaffRequest{Email: &same}); err != nil {
		t.Errorf("expected own email to be accepted, got %v", err)
	}

	missing := int64(999)
	_, err = env.staff.Update(ctx, ada.ID, &dto.UpdateStaffRequest{DepartmentID: &missing})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestAbsenceAndActivation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.mustDepartment(t, "Engineering")
	staff := env.mustStaff(t, "ada@example.com", dept.ID)

	for range 2 {
		if _, err := env.staff.IncrementAbsence(ctx, staff.ID); err != nil {
			t.Fatalf("increment failed: %v", err)
		}
	}
	resp, err := env.staff.GetByID(ctx, staff.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if resp.AbsenceCount != 2 {
		t.Errorf("expected absence 2, got %d", resp.AbsenceCount)
	}

	resp, err = env.staff.ResetAbsence(ctx, staff.ID)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if resp.AbsenceCount != 0 {
		t.Errorf("expected absence 0, got %d", resp.AbsenceCount)
	}

	if _, err := env.staff.Deactivate(ctx, staff.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	active, err := env.staff.List(ctx, true)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("expected no active staff, got %d", len(active))
	}

	resp, err = env.staff.Reactivate(ctx, staff.ID)
	if err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	if !resp.Active {
		t.Error("expected staff to be active")
	}

	if _, err := env.staff.IncrementAbsence(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestFingerprintEnrollment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.mustDepartment(t, "Engineering")
	ada := env.mustStaff(t, "ada@example.com", dept.ID)
	bob := env.mustStaff(t, "bob@example.com", dept.ID)

	resp, err := env.staff.EnrollFingerprint(ctx, ada.ID, "fp-001")
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	if !resp.FingerprintEnrolled {
		t.Error("expected fingerprint to be enrolled")
	}

	// Повторная привязка заменяет код, а не добавляет второй
	if _, err := env.staff.EnrollFingerprint(ctx, ada.ID, "fp-002"); err != nil {
		t.Fatalf("re-enroll failed: %v", err)
	}
	if n := env.count(t, &domain.Fingerprint{}, "staff_id = ?", ada.ID); n != 1 {
		t.Errorf("expected 1 fingerprint, got %d", n)
	}

	_, err = env.staff.EnrollFingerprint(ctx, bob.ID, "fp-002")
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected duplicate, got %v", err)
	}

	if err := env.staff.RemoveFingerprint(ctx, ada.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := env.staff.RemoveFingerprint(ctx, ada.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestListByDepartment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eng := env.mustDepartment(t, "Engineering")
	ops := env.mustDepartment(t, "Operations")
	env.mustStaff(t, "ada@example.com", eng.ID)
	bob := env.mustStaff(t, "bob@example.com", eng.ID)
	env.mustStaff(t, "eve@example.com", ops.ID)

	if _, err := env.staff.Deactivate(ctx, bob.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	all, err := env.staff.ListByDepartment(ctx, eng.ID, false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 staff, got %d", len(all))
	}

	active, err := env.staff.ListByDepartment(ctx, eng.ID, true)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("expected 1 active staff, got %d", len(active))
	}

	count, err := env.staff.CountByDepartment(ctx, eng.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}

	if _, err := env.staff.ListByDepartment(ctx, 999, false); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	exists, err := env.staff.EmailExists(ctx, "eve@example.com")
	if err != nil || !exists {
		t.Errorf("expected email to exist, got %v (%v)", exists, err)
	}
}

func TestNotifications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.mustDepartment(t, "Engineering")
	staff := env.mustStaff(t, "ada@example.com", dept.ID)

	if _, err := env.staff.AddNotification(ctx, staff.ID, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := env.staff.AddNotification(ctx, staff.ID, "Shift moved"); err != nil {
		t.Fatalf("notification failed: %v", err)
	}

	items, err := env.staff.ListNotifications(ctx, staff.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 || items[0].Content != "Shift moved" {
		t.Errorf("expected one notification 'Shift moved', got %+v", items)
	}
}
