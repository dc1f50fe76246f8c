package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/staff-attendance-api/internal/dto"
	"github.com/staff-attendance-api/internal/service"
)

type AttendanceHandler struct {
	responder
	attService service.AttendanceService
}

func NewAttendanceHandler(attService service.AttendanceService, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		responder:  newResponder(logger),
		attService: attService,
	}
}

func (h *AttendanceHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordAttendanceRequest
	if !h.decode(w, r, &req) {
		return
	}

	date, ok := h.parseDate(w, "date", req.Date)
	if !ok {
		return
	}

	att, err := h.attService.Record(r.Context(), req.StaffID, date, req.Timestamp)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, att)
}

func (h *AttendanceHandler) RecordByFingerprint(w http.ResponseWriter, r *http.Request) {
	var req dto.FingerprintAttendanceRequest
	if !h.decode(w, r, &req) {
		return
	}

	date, ok := h.parseDate(w, "date", req.Date)
	if !ok {
		return
	}

	att, err := h.attService.RecordByFingerprint(r.Context(), req.Code, date, req.Timestamp)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, att)
}

func (h *AttendanceHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.attService.ListAll(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, items)
}

func (h *AttendanceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	att, err := h.attService.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, att)
}

func (h *AttendanceHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r, "date")
	if !ok {
		return
	}

	items, err := h.attService.ListByDate(r.Context(), date)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, items)
}

func (h *AttendanceHandler) ListByStaff(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.pathID(w, r, "staffId")
	if !ok {
		return
	}

	items, err := h.attService.ListByStaff(r.Context(), staffID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, items)
}

func (h *AttendanceHandler) GetByStaffAndDate(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.pathID(w, r, "staffId")
	if !ok {
		return
	}
	date, ok := h.pathDate(w, r, "date")
	if !ok {
		return
	}

	att, err := h.attService.GetByStaffAndDate(r.Context(), staffID, date)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, att)
}

func (h *AttendanceHandler) ListByDepartment(w http.ResponseWriter, r *http.Request) {
	deptID, ok := h.pathID(w, r, "departmentId")
	if !ok {
		return
	}

	items, err := h.attService.ListByDepartment(r.Context(), deptID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, items)
}

// ListByRange отдаёт отметки за период, опционально по подразделению
func (h *AttendanceHandler) ListByRange(w http.ResponseWriter, r *http.Request) {
	items, _, ok := h.rangeQuery(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, items)
}

// Export выгружает отметки за период в xlsx (по умолчанию) или csv
func (h *AttendanceHandler) Export(w http.ResponseWriter, r *http.Request) {
	items, suffix, ok := h.rangeQuery(w, r)
	if !ok {
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "xlsx", "excel":
		data, err := exportAttendanceXLSX(items)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"attendance_%s.xlsx\"", suffix))
		_, _ = w.Write(data)
	case "csv":
		data, err := exportAttendanceCSV(items)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"attendance_%s.csv\"", suffix))
		_, _ = w.Write(data)
	default:
		h.respondError(w, http.StatusBadRequest, "invalid format", "use csv or xlsx")
	}
}

func (h *AttendanceHandler) rangeQuery(w http.ResponseWriter, r *http.Request) ([]dto.AttendanceResponse, string, bool) {
	q := r.URL.Query()

	from, ok := h.parseDate(w, "from", q.Get("from"))
	if !ok {
		return nil, "", false
	}
	to, ok := h.parseDate(w, "to", q.Get("to"))
	if !ok {
		return nil, "", false
	}

	var deptID *int64
	if raw := q.Get("department_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.respondError(w, http.StatusBadRequest, "invalid department_id", fmt.Sprintf("%q is not a positive integer", raw))
			return nil, "", false
		}
		deptID = &id
	}

	items, err := h.attService.ListByDateRange(r.Context(), from, to, deptID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return nil, "", false
	}

	suffix := fmt.Sprintf("%s_%s", from.Format("20060102"), to.Format("20060102"))
	return items, suffix, true
}
