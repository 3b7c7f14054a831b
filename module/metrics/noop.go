package metrics

import (
	"context"
	"time"

	httpmetrics "github.com/slok/go-http-metrics/metrics"

	"github.com/evote-ccr/control-component/module"
)

type NoopCollector struct{}

var (
	_ module.StorageMetrics     = (*NoopCollector)(nil)
	_ module.CacheMetrics       = (*NoopCollector)(nil)
	_ module.ExactlyOnceMetrics = (*NoopCollector)(nil)
	_ module.ReturnCodesMetrics = (*NoopCollector)(nil)
	_ module.LockMetrics        = (*NoopCollector)(nil)
	_ module.EngineMetrics      = (*NoopCollector)(nil)
	_ module.HTTPMetrics        = (*NoopCollector)(nil)
)

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) RetryOnConflict()                                 {}
func (nc *NoopCollector) SkipDuplicate()                                   {}
func (nc *NoopCollector) CacheHit(resource string)                         {}
func (nc *NoopCollector) CacheMiss(resource string)                        {}
func (nc *NoopCollector) CommandHit(context string)                        {}
func (nc *NoopCollector) CommandMiss(context string)                       {}
func (nc *NoopCollector) CommandConflict(context string)                   {}
func (nc *NoopCollector) CommandFailed(context string)                     {}
func (nc *NoopCollector) StepDuration(step string, duration time.Duration) {}
func (nc *NoopCollector) StepRejected(step string, category string)        {}
func (nc *NoopCollector) LockAcquired(name string, duration time.Duration) {}
func (nc *NoopCollector) LockRetry(name string)                            {}
func (nc *NoopCollector) LockTimeout(name string)                          {}
func (nc *NoopCollector) MessageReceived(engine string, message string)    {}
func (nc *NoopCollector) MessageHandled(engine string, message string)     {}
func (nc *NoopCollector) MessageRejected(engine, message, category string) {}
func (nc *NoopCollector) MessageSent(engine string, message string)        {}
func (nc *NoopCollector) InFlight(engine string, count int64)              {}

func (nc *NoopCollector) ObserveHTTPRequestDuration(context.Context, httpmetrics.HTTPReqProperties, time.Duration) {
}

func (nc *NoopCollector) ObserveHTTPResponseSize(context.Context, httpmetrics.HTTPReqProperties, int64) {
}

func (nc *NoopCollector) AddInflightRequests(context.Context, httpmetrics.HTTPProperties, int) {}

func (nc *NoopCollector) AddTotalRequests(context.Context, string, string) {}
