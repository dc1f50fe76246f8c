package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/staff-attendance-api/internal/domain"
	"github.com/staff-attendance-api/internal/metrics"
	"github.com/staff-attendance-api/internal/middleware"
)

// RouterOptions - параметры HTTP слоя, не относящиеся к маршрутам
type RouterOptions struct {
	CORSOrigins    []string
	RateLimit      int
	RateWindow     time.Duration
	RequestTimeout time.Duration
}

// Router настраивает маршруты API
type Router struct {
	mux          *chi.Mux
	logger       *slog.Logger
	opts         RouterOptions
	auth         middleware.Authenticator
	metrics      *metrics.Metrics
	attHandler   *AttendanceHandler
	staffHandler *StaffHandler
	deptHandler  *DepartmentHandler
	adminHandler *AdminHandler
}

// NewRouter создаёт новый роутер
func NewRouter(
	attHandler *AttendanceHandler,
	staffHandler *StaffHandler,
	deptHandler *DepartmentHandler,
	adminHandler *AdminHandler,
	auth middleware.Authenticator,
	m *metrics.Metrics,
	opts RouterOptions,
	logger *slog.Logger,
) *Router {
	return &Router{
		mux:          chi.NewRouter(),
		logger:       logger,
		opts:         opts,
		auth:         auth,
		metrics:      m,
		attHandler:   attHandler,
		staffHandler: staffHandler,
		deptHandler:  deptHandler,
		adminHandler: adminHandler,
	}
}

// Setup настраивает все маршруты
func (r *Router) Setup() http.Handler {
	r.mux.Use(chimw.RequestID)
	r.mux.Use(chimw.RealIP)
	r.mux.Use(middleware.Logger(r.logger))
	r.mux.Use(middleware.Recoverer(r.logger))
	if r.metrics != nil {
		r.mux.Use(middleware.Metrics(r.metrics))
	}
	if r.opts.RequestTimeout > 0 {
		r.mux.Use(chimw.Timeout(r.opts.RequestTimeout))
	}
	r.mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.corsOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if r.opts.RateLimit > 0 {
		r.mux.Use(httprate.LimitByIP(r.opts.RateLimit, r.opts.RateWindow))
	}

	// Health check
	r.mux.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if r.metrics != nil {
		r.mux.Method(http.MethodGet, "/metrics", r.metrics.Handler())
	}

	r.mux.With(middleware.ContentType).Post("/auth/admin/login", r.adminHandler.Login)

	r.mux.Route("/api", func(api chi.Router) {
		api.Use(middleware.ContentType)
		api.Use(middleware.Auth(r.auth, r.logger))
		api.Use(middleware.RequireRole(domain.RoleAdmin))

		api.Get("/auth/me", r.adminHandler.Me)
		api.Route("/attendance", r.attendanceRoutes)
		api.Route("/staff", r.staffRoutes)
		api.Route("/departments", r.departmentRoutes)
		api.Route("/admins", r.adminRoutes)
	})

	return r.mux
}

func (r *Router) attendanceRoutes(ar chi.Router) {
	h := r.attHandler
	ar.Get("/", h.ListAll)
	ar.Post("/record", h.Record)
	ar.Post("/fingerprint", h.RecordByFingerprint)
	ar.Get("/range", h.ListByRange)
	ar.Get("/export", h.Export)
	ar.Get("/date/{date}", h.ListByDate)
	ar.Get("/staff/{staffId}", h.ListByStaff)
	ar.Get("/staff/{staffId}/date/{date}", h.GetByStaffAndDate)
	ar.Get("/department/{departmentId}", h.ListByDepartment)
	ar.Get("/{id}", h.GetByID)
}

func (r *Router) staffRoutes(sr chi.Router) {
	h := r.staffHandler
	sr.Post("/", h.Create)
	sr.Get("/", h.List)
	sr.Get("/email", h.GetByEmail)
	sr.Get("/check-email", h.CheckEmail)
	sr.Get("/department/{departmentId}", h.ListByDepartment)
	sr.Get("/department/{departmentId}/active", h.ListActiveByDepartment)
	sr.Get("/department/{departmentId}/count", h.CountByDepartment)

	sr.Route("/{id}", func(one chi.Router) {
		one.Get("/", h.GetByID)
		one.Put("/", h.Update)
		one.Delete("/", h.Delete)
		one.Post("/increment-absence", h.IncrementAbsence)
		one.Post("/reset-absence", h.ResetAbsence)
		one.Post("/deactivate", h.Deactivate)
		one.Post("/reactivate", h.Reactivate)
		one.Put("/fingerprint", h.EnrollFingerprint)
		one.Delete("/fingerprint", h.RemoveFingerprint)
		one.Post("/notifications", h.AddNotification)
		one.Get("/notifications", h.ListNotifications)
	})
}

func (r *Router) departmentRoutes(dr chi.Router) {
	h := r.deptHandler
	dr.Post("/", h.Create)
	dr.Get("/", h.List)
	dr.Get("/search", h.Search)
	dr.Get("/name", h.GetByName)
	dr.Get("/with-staff", h.ListWithStaff)
	dr.Get("/empty", h.ListEmpty)
	dr.Get("/check-name", h.CheckName)

	dr.Route("/{id}", func(one chi.Router) {
		one.Get("/", h.GetByID)
		one.Put("/", h.Update)
		one.Delete("/", h.Delete)
		one.Delete("/force", h.ForceDelete)
		one.Get("/details", h.GetDetails)
		one.Get("/statistics", h.Statistics)
		one.Post("/reports", h.AddReport)
		one.Get("/reports", h.ListReports)
	})
}

func (r *Router) adminRoutes(ar chi.Router) {
	h := r.adminHandler
	ar.Post("/", h.Register)
	ar.Get("/", h.List)
	ar.Get("/check-email", h.CheckEmail)

	ar.Route("/{id}", func(one chi.Router) {
		one.Get("/", h.GetByID)
		one.Put("/", h.Update)
		one.Delete("/", h.Delete)
		one.Post("/change-password", h.ChangePassword)
		one.Post("/deactivate", h.Deactivate)
		one.Post("/reactivate", h.Reactivate)
	})
}

func (r *Router) corsOrigins() []string {
	if len(r.opts.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return r.opts.CORSOrigins
}
