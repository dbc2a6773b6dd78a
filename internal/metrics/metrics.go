package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hris_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hris_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	leaveDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hris_leave_decisions_total",
			Help: "Leave requests moved out of PENDING, by decision",
		},
		[]string{"decision"},
	)

	approvalStepOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hris_approval_step_outcomes_total",
			Help: "Processed approval steps by claim type and outcome (halted, advanced, completed)",
		},
		[]string{"claim_type", "outcome"},
	)

	escalationsRaisedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hris_escalations_raised_total",
			Help: "Stalled approval steps reported by the escalation sweep",
		},
	)

	txConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hris_tx_conflicts_total",
			Help: "Transactions that exhausted their retry budget",
		},
	)

	databaseConnectionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hris_database_connections_open",
			Help: "Number of open database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hris_database_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

var once sync.Once

func init() {
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(leaveDecisionsTotal)
	prometheus.MustRegister(approvalStepOutcomesTotal)
	prometheus.MustRegister(escalationsRaisedTotal)
	prometheus.MustRegister(txConflictsTotal)
	prometheus.MustRegister(databaseConnectionsOpen)
	prometheus.MustRegister(databaseConnectionsIdle)

	once.Do(func() {
		// Already registered by the default registry in most builds.
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordAPIRequest(method, path string, status int, duration float64) {
	apiRequestsTotal.WithLabelValues(method, path, fmt.Sprintf("%d", status)).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordLeaveDecision(decision string) {
	leaveDecisionsTotal.WithLabelValues(decision).Inc()
}

func RecordStepOutcome(claimType, outcome string) {
	approvalStepOutcomesTotal.WithLabelValues(claimType, outcome).Inc()
}

func RecordEscalations(n int) {
	escalationsRaisedTotal.Add(float64(n))
}

func RecordTxConflict() {
	txConflictsTotal.Inc()
}

func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	databaseConnectionsOpen.Set(float64(stats.OpenConnections))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	return nil
}
