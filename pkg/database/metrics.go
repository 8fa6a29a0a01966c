package database

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeCommitted    = "committed"
	outcomeRolledBack   = "rolled_back"
	outcomeBeginFailed  = "begin_failed"
	outcomeCommitFailed = "commit_failed"
)

var (
	transactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bluewater",
		Subsystem: "store",
		Name:      "transactions_total",
		Help:      "Write transactions by operation and outcome.",
	}, []string{"operation", "outcome"})

	transactionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bluewater",
		Subsystem: "store",
		Name:      "transaction_duration_seconds",
		Help:      "Time spent inside write transactions.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"operation"})

	storeHealthy = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bluewater",
		Subsystem: "store",
		Name:      "healthy",
		Help:      "1 when the last store ping succeeded.",
	})
)

func observeTransaction(operation, outcome string, started time.Time) {
	transactionsTotal.WithLabelValues(operation, outcome).Inc()
	transactionDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
