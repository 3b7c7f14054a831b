package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/evote-ccr/control-component/module"
)

type LockCollector struct {
	waitDuration *prometheus.HistogramVec
	retries      *prometheus.CounterVec
	timeouts     *prometheus.CounterVec
}

var _ module.LockMetrics = (*LockCollector)(nil)

func NewLockCollector(registerer prometheus.Registerer) *LockCollector {
	factory := promauto.With(registerer)
	return &LockCollector{
		waitDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespaceCCR,
			Subsystem: subsystemLock,
			Name:      "wait_duration_seconds",
			Help:      "the time spent waiting for a named lock",
			Buckets:   prometheus.DefBuckets,
		}, []string{LabelLock}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceCCR,
			Subsystem: subsystemLock,
			Name:      "retries_total",
			Help:      "the number of lock acquisitions retried after a timeout",
		}, []string{LabelLock}),
		timeouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceCCR,
			Subsystem: subsystemLock,
			Name:      "timeouts_total",
			Help:      "the number of lock acquisitions that failed after all retries",
		}, []string{LabelLock}),
	}
}

func (lc *LockCollector) LockAcquired(name string, duration time.Duration) {
	lc.waitDuration.WithLabelValues(name).Observe(duration.Seconds())
}

func (lc *LockCollector) LockRetry(name string) {
	lc.retries.WithLabelValues(name).Inc()
}

func (lc *LockCollector) LockTimeout(name string) {
	lc.timeouts.WithLabelValues(name).Inc()
}
