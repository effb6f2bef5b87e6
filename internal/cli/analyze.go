package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"growthos/internal/ai"
	"growthos/internal/common"
	"growthos/internal/errors"
	"growthos/internal/github"
	"growthos/internal/resume"
	"growthos/internal/types"
	"growthos/internal/utils"

	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	common.CommandConfig
	ResumeFile     string
	LinkedInFile   string
	GitHubTokenEnv string
	WebsiteURL     string
	TargetRole     string
	CurrentRole    string
	Timeline       string
}

var analyzeOpts analyzeOptions

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a gap analysis from local profile files",
	Long: `Run a gap analysis without the web flow. Profile material comes from a
resume (PDF or text), an exported LinkedIn profile, and optionally the GitHub
account whose token is stored in the named environment variable.

The analysis includes:
- A readiness score and one score per competency domain
- Gaps with observations, requirements and a closing action
- A three-phase improvement plan
- A promotion narrative`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if analyzeOpts.OutputFormat == "" {
			analyzeOpts.OutputFormat = common.DefaultOutputFormat
		}
		return common.ValidateOutputFormat(analyzeOpts.OutputFormat, nil)
	},
	RunE: runAnalyze,
}

func init() {
	flags := analyzeCmd.Flags()
	flags.StringVarP(&analyzeOpts.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	flags.StringVar(&analyzeOpts.OutputFormat, "format", "", "Output format: json, text, or markdown")
	flags.StringVar(&analyzeOpts.ResumeFile, "resume", "", "Resume file (.pdf, .txt or .md)")
	flags.StringVar(&analyzeOpts.LinkedInFile, "linkedin", "", "File with LinkedIn profile text")
	flags.StringVar(&analyzeOpts.GitHubTokenEnv, "github-token-env", "", "Environment variable holding a GitHub access token")
	flags.StringVar(&analyzeOpts.WebsiteURL, "website", "", "Personal website URL")
	flags.StringVar(&analyzeOpts.TargetRole, "target-role", "", "Role you are working towards")
	flags.StringVar(&analyzeOpts.CurrentRole, "current-role", "", "Your current role")
	flags.StringVar(&analyzeOpts.Timeline, "timeline", "", "Target timeline, e.g. \"12 months\"")

	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return common.GetSupportedFormats(nil), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, logger, err := requireContext(cmd.Context())
	if err != nil {
		return err
	}

	provider, _, err := newAnalysisProvider(cfg, logger)
	if err != nil {
		return err
	}
	defer closeProvider(provider, logger)

	if !provider.Enabled() {
		return errors.NewConfigError(errors.ErrCodeAIDisabled,
			"Gap analysis needs an AI API key (set GROWTHOS_AI_APIKEY)", nil)
	}

	limits := cfg.App.Limits
	fetcher := github.NewClient(cfg.GitHub, nil)
	parser := resume.NewParser(nil, limits.ResumeChars)

	buildInput := func(ctx context.Context, fp *common.FileProcessor) (types.AnalysisInput, error) {
		return gatherAnalysisInput(ctx, fp, parser, fetcher, analyzeOpts, limits.ResumeChars, limits.GitHubChars)
	}

	logDetails := func(input types.AnalysisInput, cfg common.CommandConfig) {
		logger.Info("Starting gap analysis",
			"resume_chars", utils.RuneLen(input.ResumeText),
			"linkedin_chars", utils.RuneLen(input.LinkedInText),
			"github_chars", utils.RuneLen(input.GitHubData),
			"target_role", input.TargetRole,
			"output_format", cfg.OutputFormat)
	}

	analysisOperation := func(ctx context.Context, input types.AnalysisInput) (*types.GapAnalysis, *ai.TokenUsage, error) {
		return provider.GenerateGapAnalysis(ctx, input)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		analyzeOpts.CommandConfig,
		buildInput,
		analysisOperation,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to run gap analysis: %w", err)
	}
	logger.Info("Gap analysis completed successfully")
	return nil
}

// snapshotFetcher is the part of the GitHub client used by analyze
type snapshotFetcher interface {
	FetchSnapshot(ctx context.Context, token string) (*github.Snapshot, error)
}

func gatherAnalysisInput(ctx context.Context, fp *common.FileProcessor, parser common.PDFParser, fetcher snapshotFetcher, opts analyzeOptions, resumeLimit, githubLimit int) (types.AnalysisInput, error) {
	input := types.AnalysisInput{
		WebsiteURL:  strings.TrimSpace(opts.WebsiteURL),
		TargetRole:  strings.TrimSpace(opts.TargetRole),
		CurrentRole: strings.TrimSpace(opts.CurrentRole),
		Timeline:    strings.TrimSpace(opts.Timeline),
	}

	if opts.ResumeFile != "" {
		text, err := fp.ReadDocument(opts.ResumeFile, parser)
		if err != nil {
			return input, err
		}
		input.ResumeText = utils.TruncateRunes(text, resumeLimit)
	}

	if opts.LinkedInFile != "" {
		text, err := fp.ReadDocument(opts.LinkedInFile, parser)
		if err != nil {
			return input, err
		}
		input.LinkedInText = text
	}

	if opts.GitHubTokenEnv != "" {
		token := os.Getenv(opts.GitHubTokenEnv)
		if token == "" {
			return input, errors.NewValidationError(errors.ErrCodeGitHubNotConnected,
				fmt.Sprintf("Environment variable %s is empty", opts.GitHubTokenEnv), nil)
		}
		snapshot, err := fetcher.FetchSnapshot(ctx, token)
		if err != nil {
			return input, errors.NewNetworkError(errors.ErrCodeGitHubFetchFailed, "Failed to fetch GitHub data", err)
		}
		input.GitHubData = github.Format(snapshot, githubLimit)
	}

	if input.Empty() {
		return input, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Provide at least one of --resume, --linkedin, --github-token-env, --website or a role flag", nil)
	}
	return input, nil
}
