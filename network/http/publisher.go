package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker"

	"github.com/evote-ccr/control-component/network"
)

// CircuitBreakerConfig configures the circuit breaker in front of the broker.
type CircuitBreakerConfig struct {
	// RestoreTimeout is how long the breaker stays open before it lets
	// MaxRequests trial deliveries through.
	RestoreTimeout time.Duration
	// MaxFailures is the number of consecutive failed deliveries opening the breaker.
	MaxFailures uint32
	MaxRequests uint32
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		RestoreTimeout: 30 * time.Second,
		MaxFailures:    5,
		MaxRequests:    1,
	}
}

// Publisher posts outbound envelopes to the message broker endpoint. Failed
// deliveries are retried with exponential backoff; responses are idempotent on
// the receiving side, keyed by their correlation id. While the broker keeps
// failing, the circuit breaker fails publications fast and the envelope is
// left to the redelivery of its request.
type Publisher struct {
	log     zerolog.Logger
	client  *http.Client
	url     string
	codec   network.Codec
	retries uint64
	backoff time.Duration
	breaker *gobreaker.CircuitBreaker
}

var _ network.Publisher = (*Publisher)(nil)

func NewPublisher(log zerolog.Logger, url string, codec network.Codec, timeout time.Duration, retries uint64, breaker CircuitBreakerConfig) *Publisher {
	log = log.With().Str("component", "http_publisher").Str("url", url).Logger()
	return &Publisher{
		log:     log,
		client:  &http.Client{Timeout: timeout},
		url:     url,
		codec:   codec,
		retries: retries,
		backoff: 100 * time.Millisecond,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        url,
			Timeout:     breaker.RestoreTimeout,
			MaxRequests: breaker.MaxRequests,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breaker.MaxFailures
			},
			OnStateChange: func(_ string, from gobreaker.State, to gobreaker.State) {
				log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("broker circuit breaker changed state")
			},
		}),
	}
}

func (p *Publisher) Publish(ctx context.Context, envelope *network.Envelope) error {
	data, err := p.codec.EncodeEnvelope(envelope)
	if err != nil {
		return fmt.Errorf("could not encode envelope: %w", err)
	}

	backoff := retry.WithMaxRetries(p.retries, retry.NewExponential(p.backoff))
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		_, err := p.breaker.Execute(func() (interface{}, error) {
			return nil, p.post(ctx, data)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return err
		}
		if err != nil {
			p.log.Warn().Err(err).Int("attempt", attempt).Str("correlation_id", envelope.CorrelationID).Msg("could not publish envelope")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not publish envelope %s after %d attempts: %w", envelope.CorrelationID, attempt, err)
	}
	return nil
}

func (p *Publisher) post(ctx context.Context, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", ContentTypeCBOR)
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}
