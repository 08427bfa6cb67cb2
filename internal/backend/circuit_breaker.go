package backend

import (
	"context"
	stderrors "errors"
	"fmt"

	"essaylens/internal/config"
	"essaylens/internal/errors"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
)

// StateObserver is told about every breaker transition.
type StateObserver func(name, from, to string)

// CircuitBreaker wraps calls of one backend operation group
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[*resty.Response]
}

// NewCircuitBreaker creates a circuit breaker for an operation group.
// It returns nil when the breaker is disabled; a nil breaker passes calls through.
func NewCircuitBreaker(group string, cfg config.CircuitBreakerConfig, logger *errors.Logger, observer StateObserver) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = errors.Discard()
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("Backend-%s", group),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"operation_group", group,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
			if observer != nil {
				observer(name, from.String(), to.String())
			}
		},
	}

	return &CircuitBreaker{
		cb: gobreaker.NewCircuitBreaker[*resty.Response](settings),
	}
}

// countsAsSuccess keeps rejections the service answered deliberately (4xx) and
// caller cancellations from tripping the breaker.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Status < 500
	}
	return stderrors.Is(err, context.Canceled)
}

// Execute executes the provided function with circuit breaker protection
func (cb *CircuitBreaker) Execute(fn func() (*resty.Response, error)) (*resty.Response, error) {
	if cb == nil || cb.cb == nil {
		return fn()
	}
	return cb.cb.Execute(fn)
}

// GetStats returns circuit breaker statistics
func (cb *CircuitBreaker) GetStats() map[string]any {
	if cb == nil || cb.cb == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"name":    cb.cb.Name(),
		"state":   cb.cb.State().String(),
		"counts":  cb.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is in closed state
func (cb *CircuitBreaker) IsHealthy() bool {
	if cb == nil || cb.cb == nil {
		return true
	}
	return cb.cb.State() == gobreaker.StateClosed
}

// isOpenCircuit reports whether err was produced by the breaker refusing a call.
func isOpenCircuit(err error) bool {
	return stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests)
}
