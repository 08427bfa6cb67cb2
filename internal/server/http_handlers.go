package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"essaylens/internal/backend"
)

// getHealthCheckTimeout returns the configured backend probe timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	if s.AppConfig != nil {
		if t := s.AppConfig.Observability.HealthCheck.BackendCheckTimeout; t > 0 {
			return t
		}
		if t := s.AppConfig.Observability.HealthCheck.Timeout; t > 0 {
			return t
		}
	}
	return 5 * time.Second
}

func (s *Server) environment() string {
	if s.AppConfig == nil {
		return ""
	}
	return s.AppConfig.App.Environment
}

// healthHandler reports the frontend together with the analysis service it depends on
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":      "healthy",
		"service":     "essaylens",
		"version":     s.Version,
		"environment": s.environment(),
	}

	probe := s.checkBackendHealth(r.Context())
	response["backend"] = probe
	response["circuit_breaker"] = s.Backend.BreakerStats()

	healthy := probe["available"] == true && s.Backend.Healthy()
	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, response)
}

// checkBackendHealth probes the analysis service within the configured timeout
func (s *Server) checkBackendHealth(ctx context.Context) map[string]any {
	ctx, cancel := context.WithTimeout(ctx, s.getHealthCheckTimeout())
	defer cancel()

	health, err := s.Backend.Health(ctx)
	if err != nil {
		return map[string]any{
			"available": false,
			"error":     backend.Describe(err),
		}
	}
	return map[string]any{
		"available":   true,
		"status":      health.Status,
		"version":     health.Version,
		"environment": health.Environment,
	}
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "essaylens",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
		"report": map[string]any{
			"displayed":  s.Displayed() != nil,
			"watch_file": s.WatchFile,
			"watching":   false,
		},
	}
	if s.watcher != nil && s.watcher.IsRunning() {
		watch := response["report"].(map[string]any)
		watch["watch_file"] = s.watcher.File()
		watch["watching"] = true
	}

	if s.Pipeline != nil {
		response["export"] = map[string]any{
			"busy":  s.Pipeline.Busy(),
			"state": string(s.Pipeline.State()),
		}
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// readBody reads the whole request body, reporting the size limit when it is hit
func readBody(r *http.Request) ([]byte, error) {
	defer func() { _ = r.Body.Close() }()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return body, nil
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := readBody(r)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
	})
}
