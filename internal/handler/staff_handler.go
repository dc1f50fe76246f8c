package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/staff-attendance-api/internal/dto"
	"github.com/staff-attendance-api/internal/service"
)

type StaffHandler struct {
	responder
	staffService service.StaffService
}

func NewStaffHandler(staffService service.StaffService, logger *slog.Logger) *StaffHandler {
	return &StaffHandler{
		responder:    newResponder(logger),
		staffService: staffService,
	}
}

func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateStaffRequest
	if !h.decode(w, r, &req) {
		return
	}

	staff, err := h.staffService.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, staff)
}

func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	staff, err := h.staffService.List(r.Context(), activeOnly)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, staff)
}

func (h *StaffHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	staff, err := h.staffService.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, staff)
}

func (h *StaffHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email, ok := h.emailQuery(w, r)
	if !ok {
		return
	}

	staff, err := h.staffService.GetByEmail(r.Context(), email)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, staff)
}

func (h *StaffHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email, ok := h.emailQuery(w, r)
	if !ok {
		return
	}

	exists, err := h.staffService.EmailExists(r.Context(), email)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, dto.ExistsResponse{Exists: exists})
}

func (h *StaffHandler) ListByDepartment(w http.ResponseWriter, r *http.Request) {
	h.listByDepartment(w, r, false)
}

func (h *StaffHandler) ListActiveByDepartment(w http.ResponseWriter, r *http.Request) {
	h.listByDepartment(w, r, true)
}

func (h *StaffHandler) CountByDepartment(w http.ResponseWriter, r *http.Request) {
	deptID, ok := h.pathID(w, r, "departmentId")
	if !ok {
		return
	}

	count, err := h.staffService.CountByDepartment(r.Context(), deptID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, dto.CountResponse{Count: count})
}

func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateStaffRequest
	if !h.decode(w, r, &req) {
		return
	}

	staff, err := h.staffService.Update(r.Context(), id, &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, staff)
}

func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.staffService.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *StaffHandler) IncrementAbsence(w http.ResponseWriter, r *http.Request) {
	h.modify(w, r, h.staffService.IncrementAbsence)
}

func (h *StaffHandler) ResetAbsence(w http.ResponseWriter, r *http.Request) {
	h.modify(w, r, h.staffService.ResetAbsence)
}

func (h *StaffHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.modify(w, r, h.staffService.Deactivate)
}

func (h *StaffHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.modify(w, r, h.staffService.Reactivate)
}

func (h *StaffHandler) EnrollFingerprint(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.FingerprintRequest
	if !h.decode(w, r, &req) {
		return
	}

	staff, err := h.staffService.EnrollFingerprint(r.Context(), id, req.Code)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, staff)
}

func (h *StaffHandler) RemoveFingerprint(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.staffService.RemoveFingerprint(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *StaffHandler) AddNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.ContentRequest
	if !h.decode(w, r, &req) {
		return
	}

	n, err := h.staffService.AddNotification(r.Context(), id, req.Content)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, n)
}

func (h *StaffHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	items, err := h.staffService.ListNotifications(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, items)
}

func (h *StaffHandler) listByDepartment(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	deptID, ok := h.pathID(w, r, "departmentId")
	if !ok {
		return
	}

	staff, err := h.staffService.ListByDepartment(r.Context(), deptID, activeOnly)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, staff)
}

func (h *StaffHandler) modify(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id int64) (*dto.StaffResponse, error)) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	staff, err := op(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, staff)
}
