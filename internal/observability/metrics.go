package observability

import (
	"context"
	"fmt"
	"time"

	"growthos/internal/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// BusinessMetric names a domain event counter
type BusinessMetric string

const (
	MetricAnalysisGenerated BusinessMetric = "analysis_generated"
	MetricFeedbackSubmitted BusinessMetric = "feedback_submitted"
	MetricResumeParsed      BusinessMetric = "resume_parsed"
	MetricGitHubFetched     BusinessMetric = "github_fetched"
	MetricShareResolved     BusinessMetric = "share_resolved"
)

// TokenUsage is the token count reported by an AI call
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// Metrics holds all custom instruments. The zero value records nothing.
type Metrics struct {
	flags config.CustomMetricsConfig

	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	AnalysesGenerated metric.Int64Counter
	FeedbackSubmitted metric.Int64Counter
	ResumesParsed     metric.Int64Counter
	GitHubFetches     metric.Int64Counter
	ShareResolutions  metric.Int64Counter
	ContentSizeChars  metric.Int64Histogram
	RateLimitHits     metric.Int64Counter
}

func newMetrics(meter metric.Meter, flags config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{flags: flags}
	var err error

	if m.AIProcessingTime, err = meter.Float64Histogram("growthos_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create AI processing time metric: %w", err)
	}
	if m.AIRequestCount, err = meter.Int64Counter("growthos_ai_requests_total",
		metric.WithDescription("Total number of AI requests")); err != nil {
		return nil, fmt.Errorf("failed to create AI request count metric: %w", err)
	}
	if m.AIErrorCount, err = meter.Int64Counter("growthos_ai_errors_total",
		metric.WithDescription("Total number of AI request errors")); err != nil {
		return nil, fmt.Errorf("failed to create AI error count metric: %w", err)
	}
	if m.AITokenUsage, err = meter.Int64Histogram("growthos_ai_token_usage",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("{token}")); err != nil {
		return nil, fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
	}{
		{&m.AnalysesGenerated, "growthos_analyses_generated_total", "Total number of gap analyses generated"},
		{&m.FeedbackSubmitted, "growthos_feedback_submitted_total", "Total number of feedback submissions"},
		{&m.ResumesParsed, "growthos_resumes_parsed_total", "Total number of resume uploads parsed"},
		{&m.GitHubFetches, "growthos_github_fetches_total", "Total number of GitHub profile fetches"},
		{&m.ShareResolutions, "growthos_share_resolutions_total", "Total number of shared result lookups"},
		{&m.RateLimitHits, "growthos_rate_limit_hits_total", "Total number of rate limit hits"},
	}
	for _, c := range counters {
		if *c.target, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, fmt.Errorf("failed to create %s metric: %w", c.name, err)
		}
	}

	if m.ContentSizeChars, err = meter.Int64Histogram("growthos_content_size_chars",
		metric.WithDescription("Size of extracted intake content in characters")); err != nil {
		return nil, fmt.Errorf("failed to create content size metric: %w", err)
	}

	return m, nil
}

// TrackAIOperation times fn and records request, error and token metrics
func (m *Metrics) TrackAIOperation(ctx context.Context, operation string, fn func(context.Context) (*TokenUsage, error)) error {
	if m == nil || m.AIRequestCount == nil || !m.flags.AIOperations.Enabled {
		_, err := fn(ctx)
		return err
	}

	start := time.Now()
	usage, err := fn(ctx)
	duration := time.Since(start).Seconds()

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	if m.flags.AIOperations.TrackDuration {
		m.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	}
	m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	if usage != nil {
		if m.flags.AIOperations.TrackTokenUsage {
			for _, tt := range []struct {
				kind  string
				value int64
			}{
				{"input", usage.InputTokens},
				{"output", usage.OutputTokens},
				{"total", usage.TotalTokens},
			} {
				m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(
					attribute.String("operation", operation),
					attribute.String("token_type", tt.kind)))
			}
		}
		if span := oteltrace.SpanFromContext(ctx); span.IsRecording() {
			span.SetAttributes(
				attribute.Int64("ai.tokens.input", usage.InputTokens),
				attribute.Int64("ai.tokens.output", usage.OutputTokens),
				attribute.Int64("ai.tokens.total", usage.TotalTokens),
			)
		}
	}

	return err
}

// RecordBusinessMetric increments the counter for a domain event
func (m *Metrics) RecordBusinessMetric(ctx context.Context, kind BusinessMetric, success bool, attributes ...attribute.KeyValue) {
	if m == nil || !m.flags.BusinessMetrics.Enabled {
		return
	}

	var attrs []attribute.KeyValue
	if m.flags.BusinessMetrics.TrackSuccessRates {
		attrs = append(attrs, attribute.Bool("success", success))
	}
	attrs = append(attrs, attributes...)

	var counter metric.Int64Counter
	switch kind {
	case MetricAnalysisGenerated:
		counter = m.AnalysesGenerated
	case MetricFeedbackSubmitted:
		counter = m.FeedbackSubmitted
	case MetricResumeParsed:
		counter = m.ResumesParsed
	case MetricGitHubFetched:
		counter = m.GitHubFetches
	case MetricShareResolved:
		counter = m.ShareResolutions
	}
	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordContentSize records the character count of an intake source
func (m *Metrics) RecordContentSize(ctx context.Context, source string, chars int) {
	if m == nil || m.ContentSizeChars == nil || !m.flags.BusinessMetrics.Enabled || !m.flags.BusinessMetrics.TrackContentSizes {
		return
	}
	m.ContentSizeChars.Record(ctx, int64(chars), metric.WithAttributes(attribute.String("source", source)))
}

// RecordRateLimitHit counts a rejected request
func (m *Metrics) RecordRateLimitHit(ctx context.Context, attributes ...attribute.KeyValue) {
	if m == nil || m.RateLimitHits == nil {
		return
	}
	if !m.flags.Infrastructure.Enabled || !m.flags.Infrastructure.TrackRateLimits {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attributes...))
}
