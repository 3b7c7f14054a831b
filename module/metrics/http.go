package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	httpmetrics "github.com/slok/go-http-metrics/metrics"

	"github.com/evote-ccr/control-component/module"
)

// HTTPCollector records the requests of the HTTP ingress. It is the recorder of
// the go-http-metrics middleware, which reports the handler id as route name.
type HTTPCollector struct {
	requestDuration  *prometheus.HistogramVec
	responseSize     *prometheus.HistogramVec
	requestsInflight *prometheus.GaugeVec
	requestsTotal    *prometheus.CounterVec
}

var _ module.HTTPMetrics = (*HTTPCollector)(nil)

func NewHTTPCollector(registerer prometheus.Registerer) *HTTPCollector {
	factory := promauto.With(registerer)

	return &HTTPCollector{
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:      "request_duration_seconds",
			Namespace: namespaceCCR,
			Subsystem: subsystemHTTP,
			Help:      "the latency of the HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{LabelService, LabelHandler, LabelMethod, LabelCode}),

		responseSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:      "response_size_bytes",
			Namespace: namespaceCCR,
			Subsystem: subsystemHTTP,
			Help:      "the size of the HTTP responses",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
		}, []string{LabelService, LabelHandler, LabelMethod, LabelCode}),

		requestsInflight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:      "requests_inflight",
			Namespace: namespaceCCR,
			Subsystem: subsystemHTTP,
			Help:      "the number of inflight requests being handled at the same time",
		}, []string{LabelService, LabelHandler}),

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "requests_total",
			Namespace: namespaceCCR,
			Subsystem: subsystemHTTP,
			Help:      "the number of requests routed to each handler",
		}, []string{LabelMethod, LabelHandler}),
	}
}

// ObserveHTTPRequestDuration records the duration of a request.
func (hc *HTTPCollector) ObserveHTTPRequestDuration(_ context.Context, p httpmetrics.HTTPReqProperties, duration time.Duration) {
	hc.requestDuration.WithLabelValues(p.Service, p.ID, p.Method, p.Code).Observe(duration.Seconds())
}

// ObserveHTTPResponseSize records the size of a response.
func (hc *HTTPCollector) ObserveHTTPResponseSize(_ context.Context, p httpmetrics.HTTPReqProperties, sizeBytes int64) {
	hc.responseSize.WithLabelValues(p.Service, p.ID, p.Method, p.Code).Observe(float64(sizeBytes))
}

// AddInflightRequests adds quantity to the requests currently being handled.
func (hc *HTTPCollector) AddInflightRequests(_ context.Context, p httpmetrics.HTTPProperties, quantity int) {
	hc.requestsInflight.WithLabelValues(p.Service, p.ID).Add(float64(quantity))
}

func (hc *HTTPCollector) AddTotalRequests(_ context.Context, method string, routeName string) {
	hc.requestsTotal.With(prometheus.Labels{LabelMethod: method, LabelHandler: routeName}).Inc()
}
