package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayBackendInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
	s.displayWatchInfo()
}

// displayEndpoints shows available endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET    /report                   - Interactive report")
	fmt.Println("  GET    /report/print             - Print document preview")
	fmt.Println("  POST   /api/report               - Display a result JSON")
	fmt.Println("  DELETE /api/report               - Clear the displayed result")
	fmt.Println("  POST   /api/analyze              - Analyze an essay and display it")
	fmt.Println("  POST   /api/export               - Download the report as PDF")
	fmt.Println("  GET    /api/organizations[/code] - Organization catalogue")
	fmt.Println("  POST   /api/upload/pdf           - Extract text from a PDF")
	fmt.Println("  GET    /health                   - Health check")
	fmt.Println("  GET    /stats                    - Server statistics")
}

func (s *Server) displayBackendInfo() {
	if s.AppConfig != nil {
		fmt.Printf("Analysis service: %s\n", s.AppConfig.Backend.BaseURL)
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		} else {
			fmt.Println("  - One bucket shared by all clients")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
	}
}

func (s *Server) displayWatchInfo() {
	if s.WatchFile != "" {
		fmt.Printf("Watching result file: %s\n", s.WatchFile)
	}
}
