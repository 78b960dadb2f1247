package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор Prometheus-метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Пул соединений БД
	DBOpenConnections *prometheus.GaugeVec
	DBInUse           *prometheus.GaugeVec
	DBIdle            *prometheus.GaugeVec
	DBWaitCount       *prometheus.GaugeVec
	DBQueryDuration   *prometheus.HistogramVec

	// Импорт справочника
	ImportRunsTotal    *prometheus.CounterVec
	ImportRecordsTotal *prometheus.CounterVec
	ImportDuration     *prometheus.HistogramVec

	serviceName string
}

// New создает метрики и регистрирует их в глобальном реестре Prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики и регистрирует их в переданном реестре
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		serviceName: serviceName,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"service", "method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "path"},
		),

		DBOpenConnections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_open_connections",
				Help: "Number of established connections to the database",
			},
			[]string{"service"},
		),
		DBInUse: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_in_use_connections",
				Help: "Number of connections currently in use",
			},
			[]string{"service"},
		),
		DBIdle: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_idle_connections",
				Help: "Number of idle connections",
			},
			[]string{"service"},
		),
		DBWaitCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_wait_count",
				Help: "Total number of connections waited for",
			},
			[]string{"service"},
		),
		DBQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Database query duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "operation"},
		),

		ImportRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "branch_import_runs_total",
				Help: "Total number of branch import runs by source and result",
			},
			[]string{"service", "source", "result"},
		),
		ImportRecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "branch_import_records_total",
				Help: "Total number of feed records processed by outcome",
			},
			[]string{"service", "outcome"},
		),
		ImportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "branch_import_duration_seconds",
				Help:    "Branch import duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"service", "source"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBOpenConnections,
		m.DBInUse,
		m.DBIdle,
		m.DBWaitCount,
		m.DBQueryDuration,
		m.ImportRunsTotal,
		m.ImportRecordsTotal,
		m.ImportDuration,
	)

	return m
}

// ServiceName возвращает имя сервиса, которым помечаются метрики
func (m *Metrics) ServiceName() string {
	return m.serviceName
}

// ObserveHTTPRequest фиксирует завершенный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, statusLabel(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует длительность запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration) {
	m.DBQueryDuration.WithLabelValues(m.serviceName, operation).Observe(duration.Seconds())
}

// RecordImport фиксирует результат прогона импорта
func (m *Metrics) RecordImport(source, result string, accepted, rejected int, duration time.Duration) {
	m.ImportRunsTotal.WithLabelValues(m.serviceName, source, result).Inc()
	m.ImportRecordsTotal.WithLabelValues(m.serviceName, "accepted").Add(float64(accepted))
	m.ImportRecordsTotal.WithLabelValues(m.serviceName, "rejected").Add(float64(rejected))
	m.ImportDuration.WithLabelValues(m.serviceName, source).Observe(duration.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
