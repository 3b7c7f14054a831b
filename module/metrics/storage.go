package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/evote-ccr/control-component/module"
)

type StorageCollector struct {
	retriedConflicts  prometheus.Counter
	skippedDuplicates prometheus.Counter
}

var _ module.StorageMetrics = (*StorageCollector)(nil)

var (
	storageCollector *StorageCollector
	once             sync.Once
)

// GetStorageCollector returns the process-wide storage collector, which is
// used by the low-level badger operations that have no collector injected.
func GetStorageCollector() *StorageCollector {
	once.Do(func() {
		storageCollector = &StorageCollector{
			retriedConflicts: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespaceCCR,
				Subsystem: subsystemBadger,
				Name:      "retried_conflicts_total",
				Help:      "the number of badger transactions retried after a conflict",
			}),
			skippedDuplicates: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespaceCCR,
				Subsystem: subsystemBadger,
				Name:      "skipped_duplicates_total",
				Help:      "the number of inserts skipped because an identical entry already existed",
			}),
		}
	})
	return storageCollector
}

func (sc *StorageCollector) RetryOnConflict() {
	sc.retriedConflicts.Inc()
}

func (sc *StorageCollector) SkipDuplicate() {
	sc.skippedDuplicates.Inc()
}
