package ai

import (
	"context"
	"fmt"

	"growthos/internal/config"
	"growthos/internal/errors"
	"growthos/internal/types"
)

// Disabled is the provider used when no AI API key is configured
type Disabled struct{}

var _ Provider = Disabled{}

func (Disabled) Enabled() bool { return false }

func (Disabled) GenerateGapAnalysis(context.Context, types.AnalysisInput) (*types.GapAnalysis, *TokenUsage, error) {
	return nil, nil, errors.NewConfigError(errors.ErrCodeAIDisabled, "Gap analysis is not configured", nil)
}

func (Disabled) GetModelInfo(context.Context) *ModelInfo {
	return &ModelInfo{Available: false, Error: "AI provider not configured"}
}

func (Disabled) BreakerStats() map[string]any {
	return map[string]any{"enabled": false}
}

func (Disabled) Close() error { return nil }

// NewProvider builds the gap analysis provider from configuration.
// A missing API key yields Disabled with a warning.
func NewProvider(cfg config.OperationAIConfig, prompts *PromptSet, logger *errors.Logger) (Provider, error) {
	if cfg.APIKey == "" {
		logger.Warn("AI API key not set, gap analysis disabled")
		return Disabled{}, nil
	}

	logger.Debug("Initializing AI provider",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries,
		"use_system_prompts", *cfg.UseSystemPrompts)

	switch cfg.Provider {
	case "gemini", "":
		return NewGeminiProvider(cfg, prompts, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
}
