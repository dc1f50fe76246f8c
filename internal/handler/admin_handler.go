package handler

import (
	"log/slog"
	"net/http"

	"github.com/staff-attendance-api/internal/dto"
	"github.com/staff-attendance-api/internal/middleware"
	"github.com/staff-attendance-api/internal/service"
)

type AdminHandler struct {
	responder
	authService service.AuthService
}

func NewAdminHandler(authService service.AuthService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		responder:   newResponder(logger),
		authService: authService,
	}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// Me возвращает администратора, которому принадлежит токен
func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	admin, err := h.authService.GetByID(r.Context(), principal.ID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, admin)
}

func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterAdminRequest
	if !h.decode(w, r, &req) {
		return
	}

	admin, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, admin)
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.authService.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, admins)
}

func (h *AdminHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	admin, err := h.authService.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, admin)
}

func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateAdminRequest
	if !h.decode(w, r, &req) {
		return
	}

	admin, err := h.authService.Update(r.Context(), id, &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, admin)
}

func (h *AdminHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email, ok := h.emailQuery(w, r)
	if !ok {
		return
	}

	exists, err := h.authService.EmailExists(r.Context(), email)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, dto.ExistsResponse{Exists: exists})
}

func (h *AdminHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.authService.ChangePassword(r.Context(), id, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if h.isSelf(r, id) {
		h.respondError(w, http.StatusConflict, "conflict", "cannot deactivate your own account")
		return
	}

	admin, err := h.authService.Deactivate(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, admin)
}

func (h *AdminHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	admin, err := h.authService.Reactivate(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, admin)
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if h.isSelf(r, id) {
		h.respondError(w, http.StatusConflict, "conflict", "cannot delete your own account")
		return
	}

	if err := h.authService.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) isSelf(r *http.Request, id int64) bool {
	p, ok := middleware.PrincipalFrom(r.Context())
	return ok && p.ID == id
}
