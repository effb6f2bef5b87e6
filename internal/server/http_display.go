package server

import (
	"fmt"

	"growthos/internal/utils"
)

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayDependencyInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

// displayEndpoints shows available routes
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /                          - Landing page")
	fmt.Println("  GET  /onboarding                - Onboarding (redirects to dashboard once analysed)")
	fmt.Println("  GET  /dashboard                 - Gap analysis dashboard (session required)")
	fmt.Println("  GET  /results/{shareId}         - Shared results")
	fmt.Println("  POST /api/parse-resume          - Extract resume text from a PDF")
	fmt.Println("  GET  /api/github/profile        - GitHub activity summary (session required)")
	fmt.Println("  POST /api/analysis              - Generate gap analysis (session required)")
	fmt.Println("  GET  /api/analysis/{shareId}    - Shared analysis lookup")
	fmt.Println("  POST /api/feedback              - Submit feedback (session required)")
	fmt.Println("  POST /api/share-results/email   - Share results by email")
	fmt.Println("  GET  /health                    - Health check")
	fmt.Println("  GET  /stats                     - Server statistics")
	if s.Observability.MetricsHandler() != nil {
		fmt.Printf("  GET  %-26s- Prometheus metrics\n", s.Observability.MetricsEndpoint())
	}
}

// displayDependencyInfo shows which optional collaborators are configured
func (s *Server) displayDependencyInfo() {
	fmt.Printf("Persistence: %s\n", enabledLabel(s.Store.Enabled()))
	fmt.Printf("Gap analysis AI: %s\n", enabledLabel(s.AI.Enabled()))
	fmt.Printf("Sessions: %s\n", enabledLabel(s.Sessions.Enabled()))
	if !s.Sessions.Enabled() {
		fmt.Println("WARNING: no session secret configured, every request is treated as signed out!")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%s)\n", s.MaxRequestSize, utils.FormatFileSize(s.MaxRequestSize))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
		fmt.Println("WARNING: No rate limiting configured!")
	}
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED (credentials not configured)"
}
