// Package http exposes the message ingress of the node over HTTP. Envelopes
// are posted CBOR-encoded; the response envelope is returned in the body.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/evote-ccr/control-component/module"
	"github.com/evote-ccr/control-component/network"
)

const (
	ContentTypeCBOR = "application/cbor"

	// maxEnvelopeSize bounds the request body; a ballot with the maximum number
	// of options stays far below it.
	maxEnvelopeSize = 4 << 20
)

// Config is the configuration of the HTTP ingress.
type Config struct {
	ListenAddress string
	// RateLimit is the number of messages accepted per second on the ingress,
	// with bursts of up to RateBurst messages. Zero disables rate limiting.
	RateLimit float64
	RateBurst int
}

type Server struct {
	log       zerolog.Logger
	codec     network.Codec
	processor network.MessageProcessor
	server    *http.Server
}

// NewServer returns an HTTP server serving the message ingress on /v1/messages
// and the metrics of gatherer on /metrics.
func NewServer(
	log zerolog.Logger,
	config Config,
	codec network.Codec,
	processor network.MessageProcessor,
	gatherer prometheus.Gatherer,
	httpMetrics module.HTTPMetrics,
) *Server {
	s := &Server{
		log:       log.With().Str("component", "http_ingress").Logger(),
		codec:     codec,
		processor: processor,
	}

	router := mux.NewRouter().StrictSlash(true)
	router.Methods(http.MethodGet).Path("/metrics").Name("Metrics").
		Handler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.Methods(http.MethodGet).Path("/health").Name("Health").
		HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	v1Subrouter := router.PathPrefix("/v1").Subrouter()
	v1Subrouter.Use(loggingMiddleware(s.log))
	v1Subrouter.Use(metricsMiddleware(httpMetrics))
	v1Subrouter.Use(rateLimitMiddleware(s.log, limiter(config)))
	v1Subrouter.Methods(http.MethodPost).Path("/messages").Name("MessagesPost").
		HandlerFunc(s.postMessage)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
			http.MethodHead},
	})

	s.server = &http.Server{
		Addr:         config.ListenAddress,
		Handler:      c.Handler(router),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}
	return s
}

func limiter(config Config) *rate.Limiter {
	if config.RateLimit <= 0 {
		return nil
	}
	burst := config.RateBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(config.RateLimit), burst)
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("address", s.server.Addr).Msg("starting http ingress")
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEnvelopeSize))
	if err != nil {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, fmt.Errorf("could not read body: %w", err))
		return
	}

	envelope, err := s.codec.DecodeEnvelope(data)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err)
		return
	}

	response, err := s.processor.Process(r.Context(), envelope)
	if err != nil {
		s.log.Error().Err(err).Str("correlation_id", envelope.CorrelationID).Msg("could not process envelope")
		s.errorResponse(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	encoded, err := s.codec.EncodeEnvelope(response)
	if err != nil {
		s.log.Error().Err(err).Str("correlation_id", envelope.CorrelationID).Msg("could not encode response")
		s.errorResponse(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	w.Header().Set("Content-Type", ContentTypeCBOR)
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(encoded)
	if err != nil {
		s.log.Debug().Err(err).Msg("could not write response")
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, err error) {
	http.Error(w, err.Error(), status)
}
