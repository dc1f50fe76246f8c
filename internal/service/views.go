package service

import (
	"github.com/staff-attendance-api/internal/domain"
	"github.com/staff-attendance-api/internal/dto"
)

func toAttendanceResponse(att *domain.Attendance, status domain.AttendanceStatus) dto.AttendanceResponse {
	resp := dto.AttendanceResponse{
		ID:            att.ID,
		Date:          att.AttendanceDate.Format(domain.DateLayout),
		ArrivalTime:   att.ArrivalTime,
		DepartureTime: att.DepartureTime,
		StaffID:       att.StaffID,
		Status:        status,
	}

	if att.Staff != nil {
		resp.StaffName = att.Staff.Name
		resp.StaffSurname = att.Staff.Surname
		resp.StaffEmail = att.Staff.Email
		resp.DepartmentID = att.Staff.DepartmentID
		if att.Staff.Department != nil {
			resp.DepartmentName = att.Staff.Department.Name
		}
	}

	return resp
}

func toAttendanceResponses(items []domain.Attendance) []dto.AttendanceResponse {
	resp := make([]dto.AttendanceResponse, len(items))
	for i := range items {
		resp[i] = toAttendanceResponse(&items[i], items[i].Status())
	}
	return resp
}

func toStaffResponse(staff *domain.Staff, totalAttendance int64) dto.StaffResponse {
	resp := dto.StaffResponse{
		ID:                  staff.ID,
		Name:                staff.Name,
		Surname:             staff.Surname,
		Email:               staff.Email,
		Role:                staff.Role,
		Active:              staff.Active,
		AbsenceCount:        staff.AbsenceCount,
		DepartmentID:        staff.DepartmentID,
		ContractStatus:      dto.ContractNone,
		FingerprintEnrolled: staff.Fingerprint != nil,
		TotalAttendance:     totalAttendance,
		CreatedAt:           staff.CreatedAt,
	}

	if staff.Department != nil {
		resp.DepartmentName = staff.Department.Name
	}
	if staff.Contract != nil {
		contractID := staff.Contract.ID
		days := staff.Contract.DaysPerWeek
		resp.ContractID = &contractID
		resp.DaysPerWeek = &days
		resp.ContractStatus = dto.ContractActive
	}

	return resp
}

func toStaffSummary(staff *domain.Staff) dto.StaffSummary {
	return dto.StaffSummary{
		ID:      staff.ID,
		Name:    staff.Name,
		Surname: staff.Surname,
		Email:   staff.Email,
		Active:  staff.Active,
	}
}

func toDepartmentResponse(dept *domain.Department, stats domain.DepartmentStats) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:           dept.ID,
		Name:         dept.Name,
		CreatedAt:    dept.CreatedAt,
		TotalStaff:   stats.TotalStaff,
		ActiveStaff:  stats.ActiveStaff,
		TotalReports: stats.TotalReports,
	}
}

func toAdminResponse(admin *domain.Admin) dto.AdminResponse {
	return dto.AdminResponse{
		ID:        admin.ID,
		Name:      admin.Name,
		Surname:   admin.Surname,
		Email:     admin.Email,
		Role:      admin.Role,
		Active:    admin.Active,
		CreatedAt: admin.CreatedAt,
	}
}
