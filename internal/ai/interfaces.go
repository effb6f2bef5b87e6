package ai

import (
	"context"

	"growthos/internal/types"
)

// Provider generates gap analyses from onboarding material.
// Every call returns token usage; callers can ignore it.
type Provider interface {
	Enabled() bool
	GenerateGapAnalysis(ctx context.Context, input types.AnalysisInput) (*types.GapAnalysis, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	BreakerStats() map[string]any
	Close() error
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
