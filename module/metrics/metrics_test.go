package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	httpmetrics "github.com/slok/go-http-metrics/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactlyOnceCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewExactlyOnceCollector(registry)

	collector.CommandMiss("partial-decrypt-pcc")
	collector.CommandHit("partial-decrypt-pcc")
	collector.CommandHit("partial-decrypt-pcc")
	collector.CommandConflict("create-lcc-share")

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.outcomes.WithLabelValues("partial-decrypt-pcc", outcomeHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.outcomes.WithLabelValues("partial-decrypt-pcc", outcomeMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.outcomes.WithLabelValues("create-lcc-share", outcomeConflict)))
}

func TestCollectorsRegisterOnSeparateRegistries(t *testing.T) {
	for i := 0; i < 2; i++ {
		registry := prometheus.NewRegistry()
		require.NotPanics(t, func() {
			NewReturnCodesCollector(registry).StepDuration(StepDecrypt, time.Millisecond)
			NewLockCollector(registry).LockRetry("allow-list")
			NewEngineCollector(registry).InFlight(EngineReturnCodes, 3)
			NewCacheCollector(registry).CacheHit(ResourceElectionEvent)
			NewHTTPCollector(registry).AddTotalRequests(context.Background(), "POST", "MessagesPost")
		})
	}
}

func TestHTTPCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewHTTPCollector(registry)
	ctx := context.Background()

	collector.AddTotalRequests(ctx, "POST", "MessagesPost")
	collector.AddTotalRequests(ctx, "POST", "MessagesPost")
	collector.AddInflightRequests(ctx, httpmetrics.HTTPProperties{Service: "ccr", ID: "MessagesPost"}, 1)
	collector.ObserveHTTPRequestDuration(ctx, httpmetrics.HTTPReqProperties{Service: "ccr", ID: "MessagesPost", Method: "POST", Code: "200"}, time.Millisecond)
	collector.ObserveHTTPResponseSize(ctx, httpmetrics.HTTPReqProperties{Service: "ccr", ID: "MessagesPost", Method: "POST", Code: "200"}, 512)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("POST", "MessagesPost")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.requestsInflight.WithLabelValues("ccr", "MessagesPost")))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.requestDuration, "ccr_http_request_duration_seconds"))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.responseSize, "ccr_http_response_size_bytes"))
}
