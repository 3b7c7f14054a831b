package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/evote-ccr/control-component/module"
)

const (
	outcomeHit      = "hit"
	outcomeMiss     = "miss"
	outcomeConflict = "conflict"
	outcomeFailed   = "failed"
)

type ExactlyOnceCollector struct {
	outcomes *prometheus.CounterVec
}

var _ module.ExactlyOnceMetrics = (*ExactlyOnceCollector)(nil)

func NewExactlyOnceCollector(registerer prometheus.Registerer) *ExactlyOnceCollector {
	return &ExactlyOnceCollector{
		outcomes: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceCCR,
			Subsystem: subsystemExactlyOnce,
			Name:      "commands_total",
			Help:      "the number of processed commands by ledger outcome",
		}, []string{LabelContext, "outcome"}),
	}
}

func (ec *ExactlyOnceCollector) CommandHit(context string) {
	ec.outcomes.WithLabelValues(context, outcomeHit).Inc()
}

func (ec *ExactlyOnceCollector) CommandMiss(context string) {
	ec.outcomes.WithLabelValues(context, outcomeMiss).Inc()
}

func (ec *ExactlyOnceCollector) CommandConflict(context string) {
	ec.outcomes.WithLabelValues(context, outcomeConflict).Inc()
}

func (ec *ExactlyOnceCollector) CommandFailed(context string) {
	ec.outcomes.WithLabelValues(context, outcomeFailed).Inc()
}
