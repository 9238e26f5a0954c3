package codeforces

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cf_mashup/internal/common"
	"cf_mashup/internal/domain/model"
	"cf_mashup/internal/platform/logging"
	"cf_mashup/internal/platform/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
)

type BreakerConfig struct {
	Name string
	// Timeout is how long the circuit stays open before letting a probe through.
	Timeout          time.Duration
	FailureThreshold uint32
}

func DefaultBreakerConfig(timeout time.Duration) BreakerConfig {
	return BreakerConfig{
		Name:             "codeforces-api",
		Timeout:          timeout,
		FailureThreshold: 5,
	}
}

// CircuitBreakerClient wraps an API and stops calling Codeforces after repeated
// transport failures. FAILED statuses are answers, not outages, so they never trip it.
type CircuitBreakerClient struct {
	api  API
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

func NewCircuitBreakerClient(api API, cfg BreakerConfig) *CircuitBreakerClient {
	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			shouldTrip := counts.ConsecutiveFailures >= cfg.FailureThreshold
			if shouldTrip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, common.ErrUpstreamAPI) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("name", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &CircuitBreakerClient{api: api, cb: cb, name: cfg.Name}
}

func (c *CircuitBreakerClient) execute(fn func() (any, error)) (any, error) {
	result, err := c.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w: %w", c.name, common.ErrUpstreamUnavailable, err)
	}
	return result, err
}

// State reports the current breaker state.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.cb.State()
}

func (c *CircuitBreakerClient) SolvedProblems(ctx context.Context, handle string) (model.SolvedSet, error) {
	return castResult[model.SolvedSet](c.execute(func() (any, error) {
		return c.api.SolvedProblems(ctx, handle)
	}))
}

func (c *CircuitBreakerClient) Problemset(ctx context.Context, tags []string) ([]model.CatalogProblem, error) {
	return castResult[[]model.CatalogProblem](c.execute(func() (any, error) {
		return c.api.Problemset(ctx, tags)
	}))
}

func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
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
