package lineup

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// operationsTotal counts lineup operations by outcome.  result is "ok",
	// "error" for infrastructure failures, or the lowercased rejection code.
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liveshow_lineup_operations_total",
		Help: "Lineup operations by operation and result",
	}, []string{"operation", "result"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "liveshow_lineup_operation_duration_seconds",
		Help:    "Lineup operation latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"operation"})

	scenariosTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liveshow_replacement_scenarios_total",
		Help: "Replacement scenarios executed by scenario",
	}, []string{"scenario"})
)

func observe(op string, started time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		if code := CodeOf(err); code != "" {
			result = strings.ToLower(string(code))
		}
	}
	operationsTotal.WithLabelValues(op, result).Inc()
	operationDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}
