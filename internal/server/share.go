package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"growthos/internal/observability"
	"growthos/internal/presentation"
	"growthos/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// Landing page error flags set by the share redirect
const (
	flagShareExpired = "share-expired"
	flagShareInvalid = "share-invalid"
)

// ErrShareExpired is returned when the lookup route answers with a non-2xx status
var ErrShareExpired = errors.New("shared analysis expired or not found")

// ShareResolver loads shared analyses through the public lookup route
type ShareResolver struct {
	baseURL    string
	httpClient *http.Client
}

// NewShareResolver creates a resolver calling baseURL/api/analysis/{id}
func NewShareResolver(baseURL string, httpClient *http.Client) *ShareResolver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &ShareResolver{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Resolve fetches the analysis for shareID. A non-2xx answer yields ErrShareExpired;
// transport and decode failures are returned as other errors.
func (sr *ShareResolver) Resolve(ctx context.Context, shareID string) (*types.GapAnalysis, error) {
	endpoint := sr.baseURL + "/api/analysis/" + url.PathEscape(shareID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build share lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := sr.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("share lookup failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrShareExpired, resp.StatusCode)
	}

	var analysis types.GapAnalysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return nil, fmt.Errorf("failed to decode shared analysis: %w", err)
	}
	return &analysis, nil
}

// sharedResultsHandler resolves a share link and redirects to the results view
func (s *Server) sharedResultsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer().Start(r.Context(), "page.shared_results")
	defer span.End()
	metrics := s.Observability.Metrics()
	w.Header().Set("Cache-Control", "no-store")

	shareID := r.PathValue("shareId")
	analysis, err := s.Shares.Resolve(ctx, shareID)
	if err != nil {
		span.RecordError(err)
		flag := flagShareInvalid
		if errors.Is(err, ErrShareExpired) {
			flag = flagShareExpired
		} else {
			s.Logger.LogError(err, "Failed to resolve shared results", "share_id", shareID)
		}
		span.SetAttributes(attribute.String("share.outcome", flag))
		metrics.RecordBusinessMetric(ctx, observability.MetricShareResolved, false,
			attribute.String("outcome", flag))
		http.Redirect(w, r, "/?error="+flag, http.StatusSeeOther)
		return
	}

	payload, err := json.Marshal(analysis)
	if err != nil {
		span.RecordError(err)
		http.Redirect(w, r, "/?error="+flagShareInvalid, http.StatusSeeOther)
		return
	}

	metrics.RecordBusinessMetric(ctx, observability.MetricShareResolved, true)
	http.Redirect(w, r, "/results/view?data="+url.QueryEscape(string(payload)), http.StatusSeeOther)
}

// resultsViewHandler renders a shared analysis carried in the data query parameter
func (s *Server) resultsViewHandler(w http.ResponseWriter, r *http.Request) {
	_, span := s.tracer().Start(r.Context(), "page.results_view")
	defer span.End()
	w.Header().Set("Cache-Control", "no-store")

	raw := r.URL.Query().Get("data")
	var analysis types.GapAnalysis
	if raw == "" || json.Unmarshal([]byte(raw), &analysis) != nil {
		span.SetAttributes(attribute.String("share.outcome", flagShareInvalid))
		http.Redirect(w, r, "/?error="+flagShareInvalid, http.StatusSeeOther)
		return
	}
	analysis.Normalize()

	view := presentation.NewAnalysisView(&analysis, "", true)
	s.renderPage(w, http.StatusOK, presentation.PageResults, view)
}

// shareEmailHandler accepts a share-by-email request. Delivery is delegated to the Mailer.
func (s *Server) shareEmailHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer().Start(r.Context(), "api.share_email")
	defer span.End()

	var req types.ShareEmailRequest
	if err := parseJSONRequest(r, &req); err != nil {
		validationFailed(w, span, "Invalid request body", err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.ShareLink = strings.TrimSpace(req.ShareLink)
	if req.Email == "" || req.ShareLink == "" {
		validationFailed(w, span, "Missing required fields", "email and shareLink are required")
		return
	}

	if err := s.Mailer.SendShareLink(ctx, req); err != nil {
		s.writeAppError(w, span, err, "Failed to send share link")
		return
	}

	writeJSON(w, http.StatusOK, types.SuccessResponse{
		Success:   true,
		Message:   "Share link would be sent to " + req.Email,
		ShareLink: req.ShareLink,
	})
}

// shareLink builds the public link for a share id
func (s *Server) shareLink(shareID string) string {
	return strings.TrimSuffix(s.PublicURL, "/") + "/results/" + shareID
}
