package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
	"golang.org/x/time/rate"

	"github.com/evote-ccr/control-component/module"
)

const serviceName = "ccr"

// routeName returns the name of the matched route, or the path of the request
// if no named route matched.
func routeName(req *http.Request) string {
	if route := mux.CurrentRoute(req); route != nil && route.GetName() != "" {
		return route.GetName()
	}
	return req.URL.Path
}

// metricsMiddleware counts requests per route and records their duration,
// response size and concurrency through the go-http-metrics recorder.
func metricsMiddleware(collector module.HTTPMetrics) mux.MiddlewareFunc {
	recorder := middleware.New(middleware.Config{
		Recorder: collector,
		Service:  serviceName,
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			name := routeName(req)
			collector.AddTotalRequests(req.Context(), req.Method, name)
			std.Handler(name, recorder, next).ServeHTTP(w, req)
		})
	}
}

// rateLimitMiddleware rejects requests above the limiter's rate with 429. A nil
// limiter disables rate limiting.
func rateLimitMiddleware(log zerolog.Logger, limiter *rate.Limiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow() {
				log.Debug().Str("route", routeName(req)).Str("client_ip", req.RemoteAddr).Msg("rate limit exceeded")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(log zerolog.Logger) mux.MiddlewareFunc {
	return func(inner http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			inner.ServeHTTP(recorder, req)

			event := log.Info()
			if recorder.statusCode != http.StatusOK {
				event = log.Warn()
			}
			event.Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("client_ip", req.RemoteAddr).
				Dur("duration", time.Since(start)).
				Int("response_code", recorder.statusCode).
				Msg("api")
		})
	}
}
