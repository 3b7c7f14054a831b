package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/evote-ccr/control-component/module"
)

type ReturnCodesCollector struct {
	stepDuration *prometheus.HistogramVec
	rejected     *prometheus.CounterVec
}

var _ module.ReturnCodesMetrics = (*ReturnCodesCollector)(nil)

func NewReturnCodesCollector(registerer prometheus.Registerer) *ReturnCodesCollector {
	factory := promauto.With(registerer)
	return &ReturnCodesCollector{
		stepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespaceCCR,
			Subsystem: subsystemReturnCodes,
			Name:      "step_duration_seconds",
			Help:      "the duration of successful protocol steps",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
		}, []string{LabelStep}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceCCR,
			Subsystem: subsystemReturnCodes,
			Name:      "step_rejections_total",
			Help:      "the number of failed protocol steps by rejection category",
		}, []string{LabelStep, LabelCategory}),
	}
}

func (rc *ReturnCodesCollector) StepDuration(step string, duration time.Duration) {
	rc.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

func (rc *ReturnCodesCollector) StepRejected(step string, category string) {
	rc.rejected.WithLabelValues(step, category).Inc()
}
