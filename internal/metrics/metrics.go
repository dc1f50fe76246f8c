// Package metrics содержит счётчики Prometheus сервиса.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Результаты записи отметки
const (
	ResultArrival   = "arrival"
	ResultDeparture = "departure"
	ResultConflict  = "conflict"
	ResultAnomaly   = "anomaly"
	ResultError     = "error"
)

// Metrics хранит собственный реестр, чтобы тесты не делили глобальное состояние
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	AttendanceEvents    *prometheus.CounterVec
	CascadeDeletedStaff prometheus.Counter
}

// New создаёт и регистрирует все метрики
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		AttendanceEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_events_total",
			Help: "Attendance events by outcome.",
		}, []string{"result"}),
		CascadeDeletedStaff: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cascade_deleted_staff_total",
			Help: "Staff removed by department force delete.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.AttendanceEvents,
		m.CascadeDeletedStaff,
	)
	return m
}

// Handler отдаёт метрики в текстовом формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Attendance увеличивает счётчик отметок; безопасен для nil
func (m *Metrics) Attendance(result string) {
	if m == nil {
		return
	}
	m.AttendanceEvents.WithLabelValues(result).Inc()
}

// CascadeDeleted учитывает сотрудников, удалённых каскадом
func (m *Metrics) CascadeDeleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CascadeDeletedStaff.Add(float64(n))
}
