package service

import (
	"context"

	"github.com/staff-attendance-api/internal/repository"
)

// staffCascade удаляет сотрудников вместе со всем, чем они владеют.
// Вызывается только внутри открытой транзакции.
type staffCascade struct {
	staffRepo        repository.StaffRepository
	attRepo          repository.AttendanceRepository
	contractRepo     repository.ContractRepository
	fpRepo           repository.FingerprintRepository
	notificationRepo repository.NotificationRepository
}

func newStaffCascade(deps Dependencies) staffCascade {
	return staffCascade{
		staffRepo:        deps.Staff,
		attRepo:          deps.Attendance,
		contractRepo:     deps.Contracts,
		fpRepo:           deps.Fingerprints,
		notificationRepo: deps.Notifications,
	}
}

// deleteStaff возвращает число удалённых сотрудников
func (c staffCascade) deleteStaff(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	if _, err := c.attRepo.DeleteByStaffIDs(ctx, ids); err != nil {
		return 0, err
	}
	if _, err := c.contractRepo.DeleteByStaffIDs(ctx, ids); err != nil {
		return 0, err
	}
	if _, err := c.fpRepo.DeleteByStaffIDs(ctx, ids); err != nil {
		return 0, err
	}
	if _, err := c.notificationRepo.DeleteByUserIDs(ctx, ids); err != nil {
		return 0, err
	}

	return c.staffRepo.DeleteByIDs(ctx, ids)
}
