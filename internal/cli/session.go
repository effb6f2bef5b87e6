package cli

import (
	"fmt"
	"os"
	"strings"

	"growthos/internal/auth"
	"growthos/internal/errors"
	"growthos/internal/store"

	"github.com/spf13/cobra"
)

var sessionOpts struct {
	Email          string
	Name           string
	GitHubTokenEnv string
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Issue a session token for a user",
	Long: `Create the user record if needed and print a signed session token. The token
can be sent as "Authorization: Bearer <token>" or set as the session cookie.`,
	Args: cobra.NoArgs,
	RunE: runSession,
}

func init() {
	flags := sessionCmd.Flags()
	flags.StringVar(&sessionOpts.Email, "email", "", "User email (required)")
	flags.StringVar(&sessionOpts.Name, "name", "", "Display name")
	flags.StringVar(&sessionOpts.GitHubTokenEnv, "github-token-env", "", "Environment variable holding a GitHub access token to embed")
	_ = sessionCmd.MarkFlagRequired("email")
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, logger, err := requireContext(cmd.Context())
	if err != nil {
		return err
	}

	email := strings.TrimSpace(sessionOpts.Email)
	if email == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "Email is required", nil)
	}

	sessions := auth.NewManager(cfg.Auth)
	if !sessions.Enabled() {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"Session secret not configured (set GROWTHOS_AUTH_JWTSECRET)", nil)
	}

	st := store.Open(cmd.Context(), cfg.Database, cfg.App.Limits.FeedbackChars, logger)
	defer func() { _ = st.Close() }()
	if !st.Enabled() {
		return errors.NewConfigError(errors.ErrCodeStoreDisabled,
			"A database is required to register users", nil)
	}

	user, err := st.EnsureUser(cmd.Context(), email, strings.TrimSpace(sessionOpts.Name))
	if err != nil {
		return err
	}

	session := auth.Session{UserID: user.ID, Email: user.Email, Name: user.Name}
	if sessionOpts.GitHubTokenEnv != "" {
		session.GitHubToken = os.Getenv(sessionOpts.GitHubTokenEnv)
		if session.GitHubToken == "" {
			logger.Warn("GitHub token variable is empty, issuing session without GitHub", "variable", sessionOpts.GitHubTokenEnv)
		}
	}

	token, err := sessions.Issue(session)
	if err != nil {
		return err
	}

	logger.Info("Session issued", "user_id", user.ID.String(), "github", session.HasGitHub())
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
