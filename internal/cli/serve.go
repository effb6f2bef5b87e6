package cli

import (
	"growthos/internal/auth"
	"growthos/internal/config"
	"growthos/internal/github"
	"growthos/internal/resume"
	"growthos/internal/server"
	"growthos/internal/store"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Growth OS web server",
	Long: `Start the HTTP server that serves the onboarding flow and its JSON API.

Available endpoints:
- POST /api/parse-resume: Extract text from an uploaded PDF resume
- GET  /api/github/profile: Summarize the signed-in user's GitHub activity
- POST /api/analysis: Generate and store a gap analysis
- GET  /api/analysis/{shareId}: Look up a shared analysis
- POST /api/feedback: Submit feedback
- POST /api/share-results/email: Request a share link by email
- GET  /results/{shareId}: Open a shared results page
- GET  /health, /stats: Operational endpoints`,
	RunE: runServe,
}

func init() {
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	cmd.Flags().String("host", "", "Host to bind to (default from config)")
	cmd.Flags().String("public-url", "", "Base URL used in share links (default derived from host and port)")
}

// applyServeFlags copies explicitly set flags onto cfg
func applyServeFlags(cfg *config.Config, cmd *cobra.Command) {
	flags := cmd.Flags()
	host, port := cfg.Server.Host, cfg.Server.Port
	if flags.Changed("port") {
		port, _ = flags.GetString("port")
	}
	if flags.Changed("host") {
		host, _ = flags.GetString("host")
	}
	cfg.SetListenAddress(host, port)
	if flags.Changed("public-url") {
		publicURL, _ := flags.GetString("public-url")
		cfg.SetPublicURL(publicURL)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := requireContext(cmd.Context())
	if err != nil {
		return err
	}

	applyServeFlags(cfg, cmd)

	provider, watcher, err := newAnalysisProvider(cfg, logger)
	if err != nil {
		return err
	}
	if watcher != nil {
		if err := watcher.Start(); err != nil {
			logger.LogError(err, "Prompt file watching disabled")
			watcher = nil
		}
	}

	limits := cfg.App.Limits
	deps := server.Dependencies{
		Store:    store.Open(cmd.Context(), cfg.Database, limits.FeedbackChars, logger),
		AI:       provider,
		GitHub:   github.NewClient(cfg.GitHub, nil),
		Resumes:  resume.NewParser(nil, limits.ResumeChars),
		Sessions: auth.NewManager(cfg.Auth),
		Prompts:  watcher,
	}

	srv, err := server.NewServer(cfg, Version, deps, logger)
	if err != nil {
		closeProvider(provider, logger)
		_ = deps.Store.Close()
		if watcher != nil {
			_ = watcher.Stop()
		}
		return err
	}
	return srv.Start()
}
