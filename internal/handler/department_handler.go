package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/staff-attendance-api/internal/dto"
	"github.com/staff-attendance-api/internal/service"
)

type DepartmentHandler struct {
	responder
	deptService service.DepartmentService
}

func NewDepartmentHandler(deptService service.DepartmentService, logger *slog.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		responder:   newResponder(logger),
		deptService: deptService,
	}
}

func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDepartmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	dept, err := h.deptService.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, dept)
}

func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	depts, err := h.deptService.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, depts)
}

func (h *DepartmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	dept, err := h.deptService.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, dept)
}

func (h *DepartmentHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	dept, err := h.deptService.GetDetails(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, dept)
}

func (h *DepartmentHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	stats, err := h.deptService.Statistics(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, stats)
}

func (h *DepartmentHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	name, ok := h.requiredQuery(w, r, "name")
	if !ok {
		return
	}

	dept, err := h.deptService.GetByName(r.Context(), name)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, dept)
}

func (h *DepartmentHandler) Search(w http.ResponseWriter, r *http.Request) {
	depts, err := h.deptService.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, depts)
}

func (h *DepartmentHandler) ListWithStaff(w http.ResponseWriter, r *http.Request) {
	depts, err := h.deptService.ListWithStaff(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, depts)
}

func (h *DepartmentHandler) ListEmpty(w http.ResponseWriter, r *http.Request) {
	depts, err := h.deptService.ListEmpty(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, depts)
}

func (h *DepartmentHandler) CheckName(w http.ResponseWriter, r *http.Request) {
	name, ok := h.requiredQuery(w, r, "name")
	if !ok {
		return
	}

	exists, err := h.deptService.NameExists(r.Context(), name)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, dto.ExistsResponse{Exists: exists})
}

func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateDepartmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	dept, err := h.deptService.Update(r.Context(), id, &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, dept)
}

// Delete удаляет только пустое подразделение, иначе 409
func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.deptService.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DepartmentHandler) ForceDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	removed, err := h.deptService.ForceDelete(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.ForceDeleteResponse{DepartmentID: id, DeletedStaff: removed})
}

func (h *DepartmentHandler) AddReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.ContentRequest
	if !h.decode(w, r, &req) {
		return
	}

	report, err := h.deptService.AddReport(r.Context(), id, req.Content)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, report)
}

func (h *DepartmentHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	reports, err := h.deptService.ListReports(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, reports)
}

func (h *DepartmentHandler) requiredQuery(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		h.respondError(w, http.StatusBadRequest, key+" is required", "")
		return "", false
	}
	return v, true
}
