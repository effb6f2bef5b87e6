package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"growthos/internal/config"
	"growthos/internal/errors"
	"growthos/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const operationAnalysis = "gap_analysis"

// GeminiProvider implements Provider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	config         config.OperationAIConfig
	prompts        *PromptSet
	circuitBreaker *Breaker[*genai.GenerateContentResponse]
	modelBreaker   *Breaker[*genai.Model]
	backoffBase    time.Duration
	logger         *errors.Logger
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini provider for gap analysis
func NewGeminiProvider(cfg config.OperationAIConfig, prompts *PromptSet, logger *errors.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	if prompts == nil {
		prompts = NewPromptSet(cfg.Prompts.System, cfg.Prompts.User)
	}

	// Model lookups only feed health checks, so they trip more leniently
	modelCB := cfg.CircuitBreaker
	modelCB.MinRequests = 5
	modelCB.FailureThreshold = 0.8

	return &GeminiProvider{
		client:         client,
		config:         cfg,
		prompts:        prompts,
		circuitBreaker: NewBreaker[*genai.GenerateContentResponse](breakerName("Generate", operationAnalysis), cfg.CircuitBreaker, logger),
		modelBreaker:   NewBreaker[*genai.Model](breakerName("Model", operationAnalysis), modelCB, logger),
		backoffBase:    time.Second,
		logger:         logger,
	}, nil
}

// Enabled always reports true for a constructed provider
func (g *GeminiProvider) Enabled() bool { return true }

// GenerateGapAnalysis asks Gemini for a structured gap analysis and normalizes the result
func (g *GeminiProvider) GenerateGapAnalysis(ctx context.Context, input types.AnalysisInput) (*types.GapAnalysis, *TokenUsage, error) {
	tracer := otel.Tracer("growthos.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationAnalysis)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
		attribute.Int("input.resume_length", len(input.ResumeText)),
		attribute.Int("input.linkedin_length", len(input.LinkedInText)),
		attribute.Int("input.github_length", len(input.GitHubData)),
	)

	systemPrompt, userTemplate := g.prompts.Get()
	userPrompt := RenderUserPrompt(userTemplate, input)
	genaiConfig := g.buildAnalysisConfig()
	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	callCtx := ctx
	if g.config.Timeout != nil && *g.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, *g.config.Timeout)
		defer cancel()
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(callCtx, operationAnalysis, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(callCtx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, nil, errors.NewAIError(errors.ErrCodeAITimeout, "Gap analysis timed out", err)
		}
		return nil, nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to generate gap analysis", err)
	}

	analysis, err := parseGapAnalysis(result.Text())
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, nil, errors.NewAIError(errors.ErrCodeAIResponseParse, "Failed to parse gap analysis response", err)
	}

	usage := extractTokenUsage(result)
	if usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.readiness_score", analysis.ReadinessScore),
		attribute.Int("output.gap_count", len(analysis.Gaps)),
	)

	return analysis, usage, nil
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Name: g.config.Model}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		info.Error = "model lookup failed"
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	info.Version = model.Version
	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"display_name", info.DisplayName,
		"version", info.Version)
	return info
}

// BreakerStats returns circuit breaker statistics for generation and model lookups
func (g *GeminiProvider) BreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.circuitBreaker.Stats(),
		"model_operations": g.modelBreaker.Stats(),
		"overall_healthy":  g.circuitBreaker.Healthy() && g.modelBreaker.Healthy(),
	}
}

// Close implements Provider. The genai client holds no resources between calls.
func (g *GeminiProvider) Close() error {
	return nil
}

// executeWithRetry runs fn with exponential backoff on retryable errors
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	maxRetries := 0
	if g.config.MaxRetries != nil {
		maxRetries = *g.config.MaxRetries
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(g.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		attempts++
		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempts)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", attempts)

	return nil, fmt.Errorf("operation '%s' failed after %d attempts: %w", operation, attempts, lastErr)
}

// backoff returns the delay before the given retry attempt: base * 2^(attempt-1) plus up to 10% jitter, capped at 30s
func (g *GeminiProvider) backoff(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * g.backoffBase
	var jitter time.Duration
	if jitterMax := int64(float64(baseDelay) * 0.1); jitterMax > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			jitter = time.Duration(n.Int64())
		}
	}
	return min(baseDelay+jitter, 30*time.Second)
}

// isRetryableError reports whether err is a network failure or a retryable API status
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}

	var genaiErr genai.APIError
	if stderrors.As(err, &genaiErr) {
		return retryableStatus(genaiErr.Code)
	}

	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// buildAnalysisConfig creates the JSON response schema. Domain score keys come from types.Domains.
func (g *GeminiProvider) buildAnalysisConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema(),
	}
	if g.config.Temperature != nil && *g.config.Temperature > 0 {
		cfg.Temperature = g.config.Temperature
	}
	return cfg
}

func analysisSchema() *genai.Schema {
	domainProps := make(map[string]*genai.Schema, len(types.Domains))
	domainNames := make([]string, len(types.Domains))
	for i, d := range types.Domains {
		domainProps[string(d)] = &genai.Schema{Type: genai.TypeInteger}
		domainNames[i] = string(d)
	}

	phase := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"label": {Type: genai.TypeString},
			"theme": {Type: genai.TypeString},
			"actions": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"label", "theme", "actions"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary":        {Type: genai.TypeString},
			"readinessScore": {Type: genai.TypeInteger},
			"domainScores": {
				Type:       genai.TypeObject,
				Properties: domainProps,
				Required:   domainNames,
			},
			"gaps": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"domain":        {Type: genai.TypeString, Enum: domainNames},
						"gap":           {Type: genai.TypeString, Enum: []string{string(types.GapHigh), string(types.GapMedium), string(types.GapLow)}},
						"observation":   {Type: genai.TypeString},
						"requirement":   {Type: genai.TypeString},
						"closingAction": {Type: genai.TypeString},
					},
					Required: []string{"domain", "gap", "observation", "requirement", "closingAction"},
				},
			},
			"plan": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"phase1": phase,
					"phase2": phase,
					"phase3": phase,
				},
				Required: []string{"phase1", "phase2", "phase3"},
			},
			"promotionNarrative": {Type: genai.TypeString},
		},
		Required: []string{"summary", "readinessScore", "domainScores", "gaps", "plan", "promotionNarrative"},
	}
}

// parseGapAnalysis decodes the model's JSON text, tolerating surrounding code fences
func parseGapAnalysis(text string) (*types.GapAnalysis, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty response")
	}

	var analysis types.GapAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, err
	}
	analysis.Normalize()
	return &analysis, nil
}

// extractTokenUsage extracts token usage information from a Gemini response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
