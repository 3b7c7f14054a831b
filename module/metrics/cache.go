package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/evote-ccr/control-component/module"
)

type CacheCollector struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
}

var _ module.CacheMetrics = (*CacheCollector)(nil)

func NewCacheCollector(registerer prometheus.Registerer) *CacheCollector {
	factory := promauto.With(registerer)
	return &CacheCollector{
		hits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceCCR,
			Subsystem: subsystemCache,
			Name:      "hits_total",
			Help:      "the number of storage reads served from the cache",
		}, []string{LabelResource}),
		misses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceCCR,
			Subsystem: subsystemCache,
			Name:      "misses_total",
			Help:      "the number of storage reads that went to the database",
		}, []string{LabelResource}),
	}
}

func (cc *CacheCollector) CacheHit(resource string) {
	cc.hits.WithLabelValues(resource).Inc()
}

func (cc *CacheCollector) CacheMiss(resource string) {
	cc.misses.WithLabelValues(resource).Inc()
}
