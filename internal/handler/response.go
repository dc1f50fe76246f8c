package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/staff-attendance-api/internal/domain"
	"github.com/staff-attendance-api/internal/dto"
	"github.com/staff-attendance-api/internal/validation"
)

// responder содержит общие для всех обработчиков методы ответа
type responder struct {
	validator *validation.Validator
	logger    *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{validator: validation.New(), logger: logger}
}

// decode читает JSON тело и проверяет его по тегам validate
func (h *responder) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "validation error", err.Error())
		return false
	}
	return true
}

func (h *responder) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid "+param, fmt.Sprintf("%q is not a positive integer", raw))
		return 0, false
	}
	return id, true
}

func (h *responder) pathDate(w http.ResponseWriter, r *http.Request, param string) (time.Time, bool) {
	return h.parseDate(w, param, chi.URLParam(r, param))
}

func (h *responder) parseDate(w http.ResponseWriter, name, raw string) (time.Time, bool) {
	date, err := domain.ParseDate(raw)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid "+name, fmt.Sprintf("%q does not match %s", raw, domain.DateLayout))
		return time.Time{}, false
	}
	return date, true
}

// emailQuery читает обязательный параметр ?email=
func (h *responder) emailQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		h.respondError(w, http.StatusBadRequest, "email is required", "")
		return "", false
	}
	return email, true
}

func (h *responder) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		h.respondError(w, http.StatusBadRequest, "validation error", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		h.respondError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, domain.ErrDuplicate):
		h.respondError(w, http.StatusConflict, "already exists", err.Error())
	case errors.Is(err, domain.ErrConflict):
		h.respondError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrTransient):
		h.logger.WarnContext(r.Context(), "transient failure", slog.String("path", r.URL.Path), slog.Any("error", err))
		w.Header().Set("Retry-After", "1")
		h.respondError(w, http.StatusServiceUnavailable, "temporarily unavailable", "please retry the request")
	default:
		h.logger.ErrorContext(r.Context(), "internal error", slog.String("path", r.URL.Path), slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

func (h *responder) respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (h *responder) respondError(w http.ResponseWriter, status int, errMsg, details string) {
	w.WriteHeader(status)
	resp := dto.ErrorResponse{Error: errMsg}
	if details != "" {
		resp.Message = details
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode error response", slog.Any("error", err))
	}
}
