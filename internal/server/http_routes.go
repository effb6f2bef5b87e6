package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	rateLimit := s.rateLimitMiddleware()
	requestLimit := s.requestSizeLimitMiddleware()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)
	if handler := s.Observability.MetricsHandler(); handler != nil {
		mux.Handle("GET "+s.Observability.MetricsEndpoint(), handler)
	}

	// JSON API
	mux.HandleFunc("POST /api/parse-resume", rateLimit(requestLimit(s.parseResumeHandler)))
	mux.HandleFunc("GET /api/github/profile", rateLimit(s.githubProfileHandler))
	mux.HandleFunc("POST /api/feedback", rateLimit(requestLimit(s.feedbackHandler)))
	mux.HandleFunc("POST /api/analysis", rateLimit(requestLimit(s.generateAnalysisHandler)))
	mux.HandleFunc("GET /api/analysis/{shareId}", s.analysisLookupHandler)
	mux.HandleFunc("POST /api/share-results/email", rateLimit(requestLimit(s.shareEmailHandler)))

	// Pages
	mux.HandleFunc("GET /{$}", s.landingHandler)
	mux.HandleFunc("GET /onboarding", s.onboardingHandler)
	mux.HandleFunc("GET /dashboard", s.dashboardHandler)
	mux.HandleFunc("GET /results/view", s.resultsViewHandler)
	mux.HandleFunc("GET /results/{shareId}", rateLimit(s.sharedResultsHandler))

	return mux
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}
			next(w, r)
		}
	}
}
