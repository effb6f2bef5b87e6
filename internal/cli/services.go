package cli

import (
	"context"
	"fmt"

	"growthos/internal/ai"
	"growthos/internal/config"
	"growthos/internal/errors"
)

// newAnalysisProvider builds the gap analysis provider, plus a prompt file
// watcher when prompt files are configured with watchFiles
func newAnalysisProvider(cfg *config.Config, logger *errors.Logger) (ai.Provider, *ai.PromptWatcher, error) {
	opCfg := cfg.GetAnalysisConfig()
	prompts := ai.NewPromptSet(opCfg.Prompts.System, opCfg.Prompts.User)

	provider, err := ai.NewProvider(opCfg, prompts, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create AI provider: %w", err)
	}

	if !opCfg.Prompts.WatchFiles || (opCfg.Prompts.SystemFile == "" && opCfg.Prompts.UserFile == "") {
		return provider, nil, nil
	}
	return provider, ai.NewPromptWatcher(opCfg.Prompts, prompts, 0, logger), nil
}

func closeProvider(provider ai.Provider, logger *errors.Logger) {
	if err := provider.Close(); err != nil {
		logger.Warn("Failed to close AI provider", "error", err.Error())
	}
}

// requireContext fetches the config and logger attached by Execute
func requireContext(ctx context.Context) (*config.Config, *errors.Logger, error) {
	cfg, err := getConfigFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	logger, err := getLoggerFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
