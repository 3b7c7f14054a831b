package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/evote-ccr/control-component/module"
)

type EngineCollector struct {
	received *prometheus.CounterVec
	handled  *prometheus.CounterVec
	rejected *prometheus.CounterVec
	sent     *prometheus.CounterVec
	inFlight *prometheus.GaugeVec
}

var _ module.EngineMetrics = (*EngineCollector)(nil)

func NewEngineCollector(registerer prometheus.Registerer) *EngineCollector {
	factory := promauto.With(registerer)

	ec := &EngineCollector{

		received: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "messages_received_total",
			Namespace: namespaceCCR,
			Subsystem: subsystemEngine,
			Help:      "the number of messages received by engines",
		}, []string{EngineLabel, LabelMessage}),

		handled: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "messages_handled_total",
			Namespace: namespaceCCR,
			Subsystem: subsystemEngine,
			Help:      "the number of messages handled successfully by engines",
		}, []string{EngineLabel, LabelMessage}),

		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "messages_rejected_total",
			Namespace: namespaceCCR,
			Subsystem: subsystemEngine,
			Help:      "the number of messages rejected by engines",
		}, []string{EngineLabel, LabelMessage, LabelCategory}),

		sent: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "messages_sent_total",
			Namespace: namespaceCCR,
			Subsystem: subsystemEngine,
			Help:      "the number of messages sent by engines",
		}, []string{EngineLabel, LabelMessage}),

		inFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:      "messages_in_flight",
			Namespace: namespaceCCR,
			Subsystem: subsystemEngine,
			Help:      "the number of messages currently processed by engines",
		}, []string{EngineLabel}),
	}

	return ec
}

func (ec *EngineCollector) MessageReceived(engine string, message string) {
	ec.received.With(prometheus.Labels{EngineLabel: engine, LabelMessage: message}).Inc()
}

func (ec *EngineCollector) MessageHandled(engine string, message string) {
	ec.handled.With(prometheus.Labels{EngineLabel: engine, LabelMessage: message}).Inc()
}

func (ec *EngineCollector) MessageRejected(engine string, message string, category string) {
	ec.rejected.With(prometheus.Labels{EngineLabel: engine, LabelMessage: message, LabelCategory: category}).Inc()
}

func (ec *EngineCollector) MessageSent(engine string, message string) {
	ec.sent.With(prometheus.Labels{EngineLabel: engine, LabelMessage: message}).Inc()
}

func (ec *EngineCollector) InFlight(engine string, count int64) {
	ec.inFlight.With(prometheus.Labels{EngineLabel: engine}).Set(float64(count))
}
