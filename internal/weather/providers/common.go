package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-flatten/internal/weather"
)

// BreakerConfig controls the circuit breaker in front of a provider.
type BreakerConfig struct {
	// ConsecutiveFailures trips the breaker once reached.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before a probe request.
	OpenTimeout time.Duration
}

// DefaultBreakerConfig is used when a provider is created without one.
var DefaultBreakerConfig = BreakerConfig{
	ConsecutiveFailures: 3,
	OpenTimeout:         30 * time.Second,
}

var (
	// ErrCircuitOpen is returned without contacting the API while the breaker is open.
	ErrCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

func newBreaker(name string, cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = DefaultBreakerConfig.ConsecutiveFailures
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = DefaultBreakerConfig.OpenTimeout
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
}

// rawResponse is what a GET yields through the breaker. Any response the
// server sends back counts as a breaker success.
type rawResponse struct {
	status int
	body   []byte
}

// getJSON performs a single GET through the breaker and decodes the body as a
// weather response whatever the status code: the API reports unknown
// locations in the body. Only transport errors count against the breaker, so
// a bad location never trips it for the locations after it.
func getJSON(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, url string) (weather.Response, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return &rawResponse{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return nil, err
	}

	raw, ok := result.(*rawResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}

	payload, err := weather.DecodeResponse(bytes.NewReader(raw.body))
	if err != nil {
		return nil, fmt.Errorf("status %d: %w", raw.status, err)
	}
	return payload, nil
}
