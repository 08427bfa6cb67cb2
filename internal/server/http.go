package server

import (
	"sync/atomic"
	"time"

	"essaylens/internal/backend"
	"essaylens/internal/config"
	essayErrors "essaylens/internal/errors"
	"essaylens/internal/export"
	"essaylens/internal/observability"
	"essaylens/internal/types"
)

// ExportRequest is the body of POST /api/export. The displayed result is
// exported when Revision names it or when no HTML is posted; otherwise the
// posted page markup is rasterized.
type ExportRequest struct {
	Title    string `json:"title,omitempty"`
	HTML     string `json:"html,omitempty"`
	Revision string `json:"revision,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server is the report frontend
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Cross-origin callers, such as report pages opened from disk
	AllowedOrigins []string

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Optional result file reloaded on change
	WatchFile     string
	WatchDebounce time.Duration

	// Collaborators. Start fills the ones left nil.
	Backend  backend.Service
	Pipeline *export.Pipeline

	// Logger
	Logger *essayErrors.Logger

	displayed atomic.Pointer[types.AnalysisResult]
	om        *observability.ObservabilityManager
	watcher   *ResultWatcher
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	AllowedOrigins []string
	RateLimit      *config.RateLimitConfig
	WatchFile      string
	WatchDebounce  time.Duration
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *essayErrors.Logger) *Server {
	if logger == nil {
		logger = essayErrors.Discard()
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		WatchFile:      cfg.WatchFile,
		WatchDebounce:  cfg.WatchDebounce,
		Logger:         logger,
	}
}

// Displayed returns the result currently shown, or nil.
func (s *Server) Displayed() *types.AnalysisResult {
	return s.displayed.Load()
}

// SetDisplayed replaces the shown result. nil clears it.
func (s *Server) SetDisplayed(result *types.AnalysisResult) {
	s.displayed.Store(result)
}
