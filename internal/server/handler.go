package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"growthos/internal/auth"
	growthosErrors "growthos/internal/errors"
	"growthos/internal/github"
	"growthos/internal/observability"
	"growthos/internal/resume"
	"growthos/internal/store"
	"growthos/internal/types"
	"growthos/internal/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// multipartMemory bounds the in-memory part of a parsed upload
const multipartMemory = 1 << 20

// parseResumeHandler extracts text from an uploaded PDF resume
func (s *Server) parseResumeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer().Start(r.Context(), "api.parse_resume")
	defer span.End()
	metrics := s.Observability.Metrics()

	if s.MaxRequestSize > 0 && r.ContentLength > s.MaxRequestSize {
		validationFailed(w, span, "File too large", "upload exceeds the size limit")
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			validationFailed(w, span, "File too large", "upload exceeds the size limit")
			return
		}
		validationFailed(w, span, "Invalid upload", "request must be multipart/form-data")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		validationFailed(w, span, "Missing file", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Header.Get("Content-Type") != resume.ContentTypePDF {
		validationFailed(w, span, "Invalid file type", "only application/pdf uploads are accepted")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeAppError(w, span, growthosErrors.NewIOError(growthosErrors.ErrCodeFileNotReadable, "failed to read upload", err), "Failed to read upload")
		return
	}
	span.SetAttributes(attribute.Int("request.file_size", len(data)))

	text, err := s.Resumes.Parse(data)
	if err != nil {
		metrics.RecordBusinessMetric(ctx, observability.MetricResumeParsed, false)
		s.writeAppError(w, span, err, "Failed to parse resume")
		return
	}

	chars := utils.RuneLen(text)
	metrics.RecordBusinessMetric(ctx, observability.MetricResumeParsed, true)
	metrics.RecordContentSize(ctx, "resume", chars)
	span.SetAttributes(attribute.Int("response.text_length", chars))

	writeJSON(w, http.StatusOK, ParseResumeResponse{Text: text})
}

// githubProfileHandler fetches and formats the signed-in user's GitHub activity
func (s *Server) githubProfileHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer().Start(r.Context(), "api.github_profile")
	defer span.End()
	metrics := s.Observability.Metrics()

	sess, ok := auth.FromContext(ctx)
	if !ok {
		unauthorized(w, span)
		return
	}
	if !sess.HasGitHub() {
		s.writeAppError(w, span, growthosErrors.NewAuthError(growthosErrors.ErrCodeGitHubNotConnected, "GitHub not connected", nil), "GitHub not connected")
		return
	}

	snapshot, err := s.GitHub.FetchSnapshot(ctx, sess.GitHubToken)
	if err != nil {
		metrics.RecordBusinessMetric(ctx, observability.MetricGitHubFetched, false)
		s.writeAppError(w, span,
			growthosErrors.NewNetworkError(growthosErrors.ErrCodeGitHubFetchFailed, "failed to fetch GitHub data", err).
				WithContext("user_id", sess.UserID.String()),
			"Failed to fetch GitHub profile")
		return
	}

	data := github.Format(snapshot, s.AppConfig.App.Limits.GitHubChars)
	chars := utils.RuneLen(data)
	metrics.RecordBusinessMetric(ctx, observability.MetricGitHubFetched, true,
		attribute.Int("repos", len(snapshot.Repos)))
	metrics.RecordContentSize(ctx, "github", chars)
	span.SetAttributes(
		attribute.Int("github.repos", len(snapshot.Repos)),
		attribute.Int("response.data_length", chars),
	)

	writeJSON(w, http.StatusOK, GitHubProfileResponse{Data: data})
}

// feedbackHandler stores a feedback row for the signed-in user
func (s *Server) feedbackHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer().Start(r.Context(), "api.feedback")
	defer span.End()
	metrics := s.Observability.Metrics()

	sess, ok := auth.FromContext(ctx)
	if !ok {
		unauthorized(w, span)
		return
	}

	var req types.FeedbackRequest
	if err := parseJSONRequest(r, &req); err != nil {
		validationFailed(w, span, "Invalid request body", err.Error())
		return
	}

	if strings.TrimSpace(req.Type) == "" || strings.TrimSpace(req.Message) == "" {
		validationFailed(w, span, "Missing required fields", "type and message are required")
		return
	}
	feedbackType := types.FeedbackType(req.Type)
	if !feedbackType.Valid() {
		validationFailed(w, span, "Invalid feedback type", "type must be one of bug, feature, interest, general")
		return
	}
	limit := s.AppConfig.App.Limits.FeedbackChars
	if utils.RuneLen(req.Message) > limit {
		validationFailed(w, span, "Message too long", "message must be at most "+strconv.Itoa(limit)+" characters")
		return
	}

	span.SetAttributes(
		attribute.String("feedback.type", req.Type),
		attribute.Int("request.message_length", utils.RuneLen(req.Message)),
	)

	fb := &types.Feedback{
		UserID:  sess.UserID,
		Type:    feedbackType,
		Message: req.Message,
		Page:    req.Page,
	}
	if err := s.Store.InsertFeedback(ctx, fb); err != nil {
		metrics.RecordBusinessMetric(ctx, observability.MetricFeedbackSubmitted, false)
		s.writeAppError(w, span, asPersistenceError(err, "failed to save feedback"), "Failed to submit feedback")
		return
	}

	metrics.RecordBusinessMetric(ctx, observability.MetricFeedbackSubmitted, true,
		attribute.String("type", req.Type))
	writeJSON(w, http.StatusOK, types.SuccessResponse{Success: true, Message: "Thanks for your feedback!"})
}

// generateAnalysisHandler asks the AI provider for a gap analysis and stores it on the profile
func (s *Server) generateAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer().Start(r.Context(), "api.analysis")
	defer span.End()
	metrics := s.Observability.Metrics()

	sess, ok := auth.FromContext(ctx)
	if !ok {
		unauthorized(w, span)
		return
	}

	var input types.AnalysisInput
	if err := parseJSONRequest(r, &input); err != nil {
		validationFailed(w, span, "Invalid request body", err.Error())
		return
	}
	if input.Empty() {
		validationFailed(w, span, "Missing onboarding data", "provide at least one of resume, LinkedIn, GitHub, website or role details")
		return
	}
	if !s.AI.Enabled() {
		span.SetAttributes(attribute.String("error.type", string(growthosErrors.ErrorTypeConfig)))
		writeErrorResponse(w, "Analysis unavailable", "gap analysis is not configured", http.StatusServiceUnavailable)
		return
	}

	limits := s.AppConfig.App.Limits
	input.ResumeText = utils.TruncateRunes(input.ResumeText, limits.ResumeChars)
	input.GitHubData = utils.TruncateRunes(input.GitHubData, limits.GitHubChars)

	span.SetAttributes(
		attribute.Int("request.resume_length", utils.RuneLen(input.ResumeText)),
		attribute.Int("request.linkedin_length", utils.RuneLen(input.LinkedInText)),
		attribute.Int("request.github_length", utils.RuneLen(input.GitHubData)),
		attribute.String("operation", "analysis"),
	)

	var analysis *types.GapAnalysis
	err := metrics.TrackAIOperation(ctx, "analysis", func(ctx context.Context) (*observability.TokenUsage, error) {
		result, usage, aiErr := s.AI.GenerateGapAnalysis(ctx, input)
		analysis = result
		return (*observability.TokenUsage)(usage), aiErr
	})
	if err != nil {
		metrics.RecordBusinessMetric(ctx, observability.MetricAnalysisGenerated, false)
		s.writeAppError(w, span, err, "Failed to generate analysis")
		return
	}

	response := types.AnalysisResponse{Analysis: analysis}
	if s.Store.Enabled() {
		profile, err := s.Store.SaveAnalysis(ctx, sess.UserID, input, analysis)
		if err != nil {
			metrics.RecordBusinessMetric(ctx, observability.MetricAnalysisGenerated, false)
			s.writeAppError(w, span, asPersistenceError(err, "failed to save analysis"), "Failed to save analysis")
			return
		}
		if profile.ShareID != nil {
			response.ShareID = profile.ShareID.String()
		}
	} else {
		s.Logger.Warn("Persistence disabled, analysis not stored", "user_id", sess.UserID.String())
	}

	metrics.RecordBusinessMetric(ctx, observability.MetricAnalysisGenerated, true,
		attribute.Int("readiness_score", analysis.ReadinessScore))
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("readiness_score", analysis.ReadinessScore),
		attribute.Int("gaps_count", len(analysis.Gaps)),
	)

	writeJSON(w, http.StatusOK, response)
}

// analysisLookupHandler returns the analysis behind a share id
func (s *Server) analysisLookupHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer().Start(r.Context(), "api.analysis_lookup")
	defer span.End()
	w.Header().Set("Cache-Control", "no-store")

	if !s.Store.Enabled() {
		writeErrorResponse(w, "Shared results unavailable", "persistence is not configured", http.StatusServiceUnavailable)
		return
	}

	shareID, err := uuid.Parse(r.PathValue("shareId"))
	if err != nil {
		validationFailed(w, span, "Invalid share id", "share id must be a UUID")
		return
	}

	analysis, err := s.Store.GetAnalysisByShareID(ctx, shareID)
	if errors.Is(err, store.ErrNotFound) {
		writeErrorResponse(w, "Not found", "shared analysis does not exist", http.StatusNotFound)
		return
	}
	if err != nil {
		s.writeAppError(w, span, asPersistenceError(err, "failed to load shared analysis"), "Failed to load shared analysis")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// asPersistenceError wraps raw store errors so they map onto the dependency failure class
func asPersistenceError(err error, message string) error {
	if _, ok := growthosErrors.As(err); ok {
		return err
	}
	code := growthosErrors.ErrCodePersistenceFailed
	if errors.Is(err, store.ErrDisabled) {
		code = growthosErrors.ErrCodeStoreDisabled
	}
	return growthosErrors.NewPersistenceError(code, message, err)
}
