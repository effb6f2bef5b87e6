package server

import (
	"context"
	"net/http"
	"time"

	"growthos/internal/ai"
	"growthos/internal/auth"
	"growthos/internal/config"
	growthosErrors "growthos/internal/errors"
	"growthos/internal/github"
	"growthos/internal/observability"
	"growthos/internal/presentation"
	"growthos/internal/resume"
	"growthos/internal/store"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ParseResumeResponse is returned by the resume intake endpoint
type ParseResumeResponse struct {
	Text string `json:"text"`
}

// GitHubProfileResponse is returned by the GitHub intake endpoint
type GitHubProfileResponse struct {
	Data string `json:"data"`
}

// GitHubFetcher fetches the profile and repositories behind a user token
type GitHubFetcher interface {
	FetchSnapshot(ctx context.Context, token string) (*github.Snapshot, error)
}

// ResumeParser turns uploaded PDF bytes into capped text
type ResumeParser interface {
	Parse(data []byte) (string, error)
}

// Server holds configuration for the HTTP server
type Server struct {
	Host      string
	Port      string
	PublicURL string
	Version   string

	// Full application configuration
	AppConfig *config.Config

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit for uploads
	MaxRequestSize int64

	// Collaborators, built once and shared by every request
	Store    store.Store
	AI       ai.Provider
	GitHub   GitHubFetcher
	Resumes  ResumeParser
	Sessions *auth.Manager
	Mailer   Mailer
	Shares   *ShareResolver
	Pages    *presentation.Renderer
	Prompts  *ai.PromptWatcher

	// Rate limiting
	RateLimit   config.RateLimitConfig
	RateLimiter *RateLimiter

	Observability *observability.Manager

	// Logger
	Logger *growthosErrors.Logger
}

// Dependencies are the external clients handed to NewServer. Nil entries get
// their disabled or default variant.
type Dependencies struct {
	Store         store.Store
	AI            ai.Provider
	GitHub        GitHubFetcher
	Resumes       ResumeParser
	Sessions      *auth.Manager
	Mailer        Mailer
	Shares        *ShareResolver
	Pages         *presentation.Renderer
	Prompts       *ai.PromptWatcher
	Observability *observability.Manager
}

// NewServer creates a new Server from the application config and its dependencies
func NewServer(appCfg *config.Config, version string, deps Dependencies, logger *growthosErrors.Logger) (*Server, error) {
	if deps.Store == nil {
		deps.Store = store.Disabled{}
	}
	if deps.AI == nil {
		deps.AI = ai.Disabled{}
	}
	if deps.GitHub == nil {
		deps.GitHub = github.NewClient(appCfg.GitHub, nil)
	}
	if deps.Resumes == nil {
		deps.Resumes = resume.NewParser(nil, appCfg.App.Limits.ResumeChars)
	}
	if deps.Sessions == nil {
		deps.Sessions = auth.NewManager(appCfg.Auth)
	}
	if deps.Mailer == nil {
		deps.Mailer = NewLogMailer(logger)
	}
	if deps.Shares == nil {
		deps.Shares = NewShareResolver(appCfg.Server.PublicURL, nil)
	}
	if deps.Pages == nil {
		pages, err := presentation.NewRenderer()
		if err != nil {
			return nil, err
		}
		deps.Pages = pages
	}

	var rateLimiter *RateLimiter
	if appCfg.Server.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(appCfg.Server.RateLimit, logger)
	}

	return &Server{
		Host:           appCfg.Server.Host,
		Port:           appCfg.Server.Port,
		PublicURL:      appCfg.Server.PublicURL,
		Version:        version,
		AppConfig:      appCfg,
		ReadTimeout:    appCfg.Server.ReadTimeout,
		WriteTimeout:   appCfg.Server.WriteTimeout,
		IdleTimeout:    appCfg.Server.IdleTimeout,
		MaxRequestSize: appCfg.App.MaxUploadSize,
		Store:          deps.Store,
		AI:             deps.AI,
		GitHub:         deps.GitHub,
		Resumes:        deps.Resumes,
		Sessions:       deps.Sessions,
		Mailer:         deps.Mailer,
		Shares:         deps.Shares,
		Pages:          deps.Pages,
		Prompts:        deps.Prompts,
		RateLimit:      appCfg.Server.RateLimit,
		RateLimiter:    rateLimiter,
		Observability:  deps.Observability,
		Logger:         logger,
	}, nil
}

// Handler returns the fully wired HTTP handler
func (s *Server) Handler() http.Handler {
	mux := s.setupRoutes()
	return s.Observability.HTTPMiddleware()(s.Sessions.Middleware(mux))
}
