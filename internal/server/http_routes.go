package server

import (
	"net/http"
)

// setupRoutes registers every endpoint on a fresh mux
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)

	mux.HandleFunc("GET /{$}", s.redirectToReport)
	mux.HandleFunc("GET /report", s.reportHandler)
	mux.HandleFunc("GET /report/print", s.printHandler)

	mux.HandleFunc("POST /api/report", s.loadReportHandler)
	mux.HandleFunc("DELETE /api/report", s.clearReportHandler)
	mux.HandleFunc("POST /api/analyze", s.analyzeHandler)
	mux.HandleFunc("POST /api/export", s.exportHandler)

	mux.HandleFunc("GET /api/organizations", s.listOrganizationsHandler)
	mux.HandleFunc("GET /api/organizations/{code}", s.getOrganizationHandler)
	mux.HandleFunc("POST /api/upload/pdf", s.uploadHandler)

	return mux
}

// Handler returns the full middleware chain around the routes.
// Order, outermost first: request id, CORS, tracing, rate limit, body size limit.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.setupRoutes()
	h = s.requestSizeLimitMiddleware(h)
	h = s.rateLimitMiddleware(h)
	h = s.om.HTTPMiddleware()(h)
	h = s.corsMiddleware(h)
	h = s.requestIDMiddleware(h)
	return h
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware(next http.Handler) http.Handler {
	if s.MaxRequestSize <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) redirectToReport(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/report", http.StatusFound)
}
