// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/respawn/internal/config"
	"github.com/tomtom215/respawn/internal/logging"
	"github.com/tomtom215/respawn/internal/metrics"
)

// ErrNotFound is returned when a remote API has no record for the request.
var ErrNotFound = errors.New("not found")

// maxErrorBodySize limits how much of a failed response is kept for the error.
const maxErrorBodySize = 64 * 1024

// StatusError reports a non-2xx response.
type StatusError struct {
	Client     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Client, e.StatusCode, e.Body)
}

// readBodyForError reads at most maxErrorBodySize bytes of r.
func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	if len(body) == maxErrorBodySize {
		return string(body) + "\n... (truncated)"
	}
	return string(body)
}

// client is the transport shared by every collaborator. Calls are spaced by
// the limiter and guarded by a circuit breaker named after the client.
type client struct {
	name    string
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]

	maxRetries     int           // retries on HTTP 429
	retryBaseDelay time.Duration // doubled on every retry
}

func newClient(name string, cfg *config.FetchConfig) *client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.MinDelay > 0 {
		limit = rate.Every(cfg.MinDelay)
	}
	return &client{
		name:           name,
		http:           &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(limit, 1),
		cb:             newBreaker(name),
		maxRetries:     3,
		retryBaseDelay: time.Second,
	}
}

// newBreaker opens after a 60% failure rate over at least 10 requests and
// probes again after two minutes. Missing records and caller cancellation
// do not count against the remote service.
func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
	log := logging.WithComponent("circuit_breaker")

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				log.Warn().Str("client", name).Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("Opening circuit")
				return true
			}
			return false
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
			log.Info().Str("client", name).Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("Circuit breaker state changed")
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// getJSON waits for the limiter, fetches reqURL through the breaker and
// decodes the body into out.
func (c *client) getJSON(ctx context.Context, reqURL string, out any) (err error) {
	start := time.Now()
	defer func() { metrics.RecordFetch(c.name, time.Since(start), err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := c.execute(func() ([]byte, error) {
		return c.get(ctx, reqURL)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.name, err)
	}
	return nil
}

func (c *client) execute(fn func() ([]byte, error)) ([]byte, error) {
	body, err := c.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(c.name, "rejected").Inc()
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(c.name).Set(float64(c.cb.Counts().ConsecutiveFailures))
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(c.name).Set(0)
	return body, nil
}

// get performs one GET, retrying HTTP 429 with exponential backoff or the
// server's Retry-After.
func (c *client) get(ctx context.Context, reqURL string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to create request: %w", c.name, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "respawn-fetch")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s: HTTP request failed: %w", c.name, err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests && attempt < c.maxRetries:
			delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
			if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && s >= 0 {
				delay = time.Duration(s) * time.Second
			}
			_ = resp.Body.Close()
			logging.Ctx(ctx).Debug().Str("client", c.name).Dur("delay", delay).Int("attempt", attempt+1).Msg("Rate limited, backing off")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		case resp.StatusCode == http.StatusNotFound:
			_ = resp.Body.Close()
			return nil, fmt.Errorf("%s: %w", c.name, ErrNotFound)
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			body := readBodyForError(resp.Body)
			_ = resp.Body.Close()
			return nil, &StatusError{Client: c.name, StatusCode: resp.StatusCode, Body: body}
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: read response: %w", c.name, err)
		}
		return body, nil
	}
}
