package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"growthos/internal/auth"
	"growthos/internal/config"
	growthosErrors "growthos/internal/errors"
	"growthos/internal/github"
	"growthos/internal/store"
	"growthos/internal/types"

	"github.com/google/uuid"
)

func TestFeedbackHandler(t *testing.T) {
	tests := []struct {
		name       string
		signedIn   bool
		body       types.FeedbackRequest
		insertErr  error
		wantStatus int
		wantStored bool
	}{
		{name: "no session", body: types.FeedbackRequest{Type: "bug", Message: "broken"}, wantStatus: http.StatusUnauthorized},
		{name: "missing type", signedIn: true, body: types.FeedbackRequest{Message: "hello"}, wantStatus: http.StatusBadRequest},
		{name: "missing message", signedIn: true, body: types.FeedbackRequest{Type: "bug", Message: "   "}, wantStatus: http.StatusBadRequest},
		{name: "unknown type", signedIn: true, body: types.FeedbackRequest{Type: "praise", Message: "nice"}, wantStatus: http.StatusBadRequest},
		{name: "message over limit", signedIn: true, body: types.FeedbackRequest{Type: "general", Message: strings.Repeat("é", 501)}, wantStatus: http.StatusBadRequest},
		{name: "message at limit", signedIn: true, body: types.FeedbackRequest{Type: "general", Message: strings.Repeat("é", 500)}, wantStatus: http.StatusOK, wantStored: true},
		{name: "valid with page", signedIn: true, body: types.FeedbackRequest{Type: "feature", Message: "dark mode", Page: "/dashboard"}, wantStatus: http.StatusOK, wantStored: true},
		{name: "store error", signedIn: true, body: types.FeedbackRequest{Type: "bug", Message: "broken"}, insertErr: errBoom, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newFakeStore()
			st.insertErr = tt.insertErr
			s := newTestServer(t, nil, Dependencies{Store: st})

			token := ""
			if tt.signedIn {
				token = sessionToken(t, s, auth.Session{Email: "dev@example.com"})
			}
			rec := serve(s, withToken(jsonRequest(http.MethodPost, "/api/feedback", tt.body), token))

			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if !tt.signedIn && st.calls != 0 {
				t.Errorf("Store must not be touched without a session, got %d calls", st.calls)
			}
			if tt.wantStored != (len(st.feedback) == 1) {
				t.Errorf("Expected stored=%v, got %d rows", tt.wantStored, len(st.feedback))
			}
			if rec.Code == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "hunter2") {
				t.Errorf("Error response leaked the cause: %s", rec.Body.String())
			}
		})
	}
}

func TestFeedbackHandlerDisabledStore(t *testing.T) {
	s := newTestServer(t, nil, Dependencies{Store: store.Disabled{}})
	token := sessionToken(t, s, auth.Session{})

	rec := serve(s, withToken(jsonRequest(http.MethodPost, "/api/feedback", types.FeedbackRequest{Type: "bug", Message: "x"}), token))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 for disabled store, got %d", rec.Code)
	}
}

func TestFeedbackHandlerRequiresJSON(t *testing.T) {
	s := newTestServer(t, nil, Dependencies{Store: newFakeStore()})
	token := sessionToken(t, s, auth.Session{})

	req := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader("type=bug"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(s, withToken(req, token))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-JSON body, got %d", rec.Code)
	}
}

func TestGitHubProfileHandler(t *testing.T) {
	snapshot := &github.Snapshot{
		Profile: github.Profile{Login: "octocat", Name: "Mona", PublicRepos: 2},
		Repos:   []github.Repo{{Name: "hello-world", Stars: 5, Language: "Go"}},
	}

	tests := []struct {
		name       string
		signedIn   bool
		ghToken    string
		fetchErr   error
		wantStatus int
		wantError  string
	}{
		{name: "no session", wantStatus: http.StatusUnauthorized, wantError: "Unauthorized"},
		{name: "not connected", signedIn: true, wantStatus: http.StatusBadRequest, wantError: "GitHub not connected"},
		{name: "fetch failure", signedIn: true, ghToken: "gho_abc", fetchErr: &github.StatusError{Endpoint: "/user/repos", StatusCode: 502}, wantStatus: http.StatusInternalServerError},
		{name: "success", signedIn: true, ghToken: "gho_abc", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gh := &fakeGitHub{snapshot: snapshot, err: tt.fetchErr}
			s := newTestServer(t, nil, Dependencies{GitHub: gh})

			token := ""
			if tt.signedIn {
				token = sessionToken(t, s, auth.Session{GitHubToken: tt.ghToken})
			}
			rec := serve(s, withToken(httptest.NewRequest(http.MethodGet, "/api/github/profile", nil), token))

			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantError != "" {
				if got := decodeError(t, rec).Error; got != tt.wantError {
					t.Errorf("Expected error %q, got %q", tt.wantError, got)
				}
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			if gh.token != tt.ghToken {
				t.Errorf("Expected GitHub token %q to be used, got %q", tt.ghToken, gh.token)
			}
			var resp GitHubProfileResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if !strings.Contains(resp.Data, "GitHub: octocat (Mona)") || !strings.Contains(resp.Data, "hello-world") {
				t.Errorf("Unexpected formatted data: %q", resp.Data)
			}
		})
	}
}

func multipartUpload(t *testing.T, field, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="resume.pdf"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("Failed to create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("Failed to write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/parse-resume", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestParseResumeHandler(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")

	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		parser     *fakeParser
		maxUpload  int64
		wantStatus int
		wantText   string
	}{
		{
			name:       "missing file field",
			req:        func(t *testing.T) *http.Request { return multipartUpload(t, "document", "application/pdf", pdf) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not multipart",
			req:        func(t *testing.T) *http.Request { return jsonRequest(http.MethodPost, "/api/parse-resume", map[string]string{"file": "x"}) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrong content type",
			req:        func(t *testing.T) *http.Request { return multipartUpload(t, "file", "text/plain", pdf) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "too large",
			req:        func(t *testing.T) *http.Request { return multipartUpload(t, "file", "application/pdf", bytes.Repeat([]byte("a"), 4096)) },
			maxUpload:  512,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "extraction failure",
			req:        func(t *testing.T) *http.Request { return multipartUpload(t, "file", "application/pdf", pdf) },
			parser:     &fakeParser{err: growthosErrors.NewIOError(growthosErrors.ErrCodePDFParseFailed, "failed to extract text from PDF", errBoom)},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "success",
			req:        func(t *testing.T) *http.Request { return multipartUpload(t, "file", "application/pdf", pdf) },
			parser:     &fakeParser{text: "Senior Go engineer"},
			wantStatus: http.StatusOK,
			wantText:   "Senior Go engineer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.maxUpload > 0 {
				cfg.App.MaxUploadSize = tt.maxUpload
			}
			parser := tt.parser
			if parser == nil {
				parser = &fakeParser{text: "unused"}
			}
			s := newTestServer(t, cfg, Dependencies{Resumes: parser})

			rec := serve(s, tt.req(t))
			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), "hunter2") {
				t.Errorf("Response leaked the cause: %s", rec.Body.String())
			}
			if tt.wantText != "" {
				var resp ParseResumeResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if resp.Text != tt.wantText {
					t.Errorf("Expected text %q, got %q", tt.wantText, resp.Text)
				}
			}
		})
	}
}

func TestGenerateAnalysisHandler(t *testing.T) {
	validInput := types.AnalysisInput{ResumeText: "Go engineer", TargetRole: "Staff Engineer"}

	tests := []struct {
		name       string
		signedIn   bool
		input      types.AnalysisInput
		provider   func() *fakeProvider
		disabledAI bool
		saveErr    error
		wantStatus int
	}{
		{name: "no session", input: validInput, wantStatus: http.StatusUnauthorized},
		{name: "empty input", signedIn: true, input: types.AnalysisInput{ResumeText: "  "}, wantStatus: http.StatusBadRequest},
		{name: "role details only", signedIn: true, input: types.AnalysisInput{TargetRole: "Staff Engineer", Timeline: "12 months"}, wantStatus: http.StatusOK},
		{name: "AI disabled", signedIn: true, input: validInput, disabledAI: true, wantStatus: http.StatusServiceUnavailable},
		{
			name:     "AI failure",
			signedIn: true,
			input:    validInput,
			provider: func() *fakeProvider {
				return &fakeProvider{err: growthosErrors.NewAIError(growthosErrors.ErrCodeAIServiceFailed, "gap analysis failed", errBoom)}
			},
			wantStatus: http.StatusInternalServerError,
		},
		{name: "store failure", signedIn: true, input: validInput, saveErr: errBoom, wantStatus: http.StatusInternalServerError},
		{name: "success", signedIn: true, input: validInput, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newFakeStore()
			st.saveErr = tt.saveErr
			provider := &fakeProvider{analysis: sampleAnalysis()}
			if tt.provider != nil {
				provider = tt.provider()
			}
			deps := Dependencies{Store: st, AI: provider}
			if tt.disabledAI {
				deps.AI = nil
			}
			s := newTestServer(t, nil, deps)

			token := ""
			if tt.signedIn {
				token = sessionToken(t, s, auth.Session{})
			}
			rec := serve(s, withToken(jsonRequest(http.MethodPost, "/api/analysis", tt.input), token))

			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), "hunter2") {
				t.Errorf("Response leaked the cause: %s", rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp types.AnalysisResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if _, err := uuid.Parse(resp.ShareID); err != nil {
				t.Errorf("Expected a share id, got %q", resp.ShareID)
			}
			if resp.Analysis == nil || resp.Analysis.ReadinessScore != 72 {
				t.Errorf("Unexpected analysis: %+v", resp.Analysis)
			}
			if provider.input.TargetRole != "Staff Engineer" {
				t.Errorf("Provider did not receive the input: %+v", provider.input)
			}
		})
	}
}

func TestGenerateAnalysisTruncatesIntake(t *testing.T) {
	cfg := testConfig()
	cfg.App.Limits.ResumeChars = 10
	cfg.App.Limits.GitHubChars = 5
	provider := &fakeProvider{analysis: sampleAnalysis()}
	s := newTestServer(t, cfg, Dependencies{Store: newFakeStore(), AI: provider})
	token := sessionToken(t, s, auth.Session{})

	input := types.AnalysisInput{ResumeText: strings.Repeat("r", 50), GitHubData: strings.Repeat("g", 50)}
	rec := serve(s, withToken(jsonRequest(http.MethodPost, "/api/analysis", input), token))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(provider.input.ResumeText) != 10 || len(provider.input.GitHubData) != 5 {
		t.Errorf("Expected intake truncated to limits, got %d and %d", len(provider.input.ResumeText), len(provider.input.GitHubData))
	}
}

func TestGenerateAnalysisWithoutStore(t *testing.T) {
	s := newTestServer(t, nil, Dependencies{Store: store.Disabled{}, AI: &fakeProvider{analysis: sampleAnalysis()}})
	token := sessionToken(t, s, auth.Session{})

	rec := serve(s, withToken(jsonRequest(http.MethodPost, "/api/analysis", types.AnalysisInput{ResumeText: "Go"}), token))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 without persistence, got %d", rec.Code)
	}
	var resp types.AnalysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.ShareID != "" || resp.Analysis == nil {
		t.Errorf("Expected analysis without share id, got %+v", resp)
	}
}

func TestAnalysisLookupHandler(t *testing.T) {
	st := newFakeStore()
	known := uuid.New()
	st.shares[known] = sampleAnalysis()

	tests := []struct {
		name       string
		store      store.Store
		path       string
		wantStatus int
	}{
		{name: "disabled store", store: store.Disabled{}, path: "/api/analysis/" + known.String(), wantStatus: http.StatusServiceUnavailable},
		{name: "malformed id", store: st, path: "/api/analysis/not-a-uuid", wantStatus: http.StatusBadRequest},
		{name: "unknown id", store: st, path: "/api/analysis/" + uuid.NewString(), wantStatus: http.StatusNotFound},
		{name: "known id", store: st, path: "/api/analysis/" + known.String(), wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil, Dependencies{Store: tt.store})
			rec := serve(s, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Cache-Control"); got != "no-store" {
				t.Errorf("Expected Cache-Control no-store, got %q", got)
			}
			if tt.wantStatus == http.StatusOK {
				var a types.GapAnalysis
				if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
					t.Fatalf("Failed to decode analysis: %v", err)
				}
				if a.PromotionNarrative != "Ready for staff scope with more visibility." {
					t.Errorf("Unexpected analysis: %+v", a)
				}
			}
		})
	}
}

func TestShareEmailHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       types.ShareEmailRequest
		wantStatus int
	}{
		{name: "missing email", body: types.ShareEmailRequest{ShareLink: "http://growthos.test/results/x"}, wantStatus: http.StatusBadRequest},
		{name: "missing link", body: types.ShareEmailRequest{Email: "a@example.com"}, wantStatus: http.StatusBadRequest},
		{name: "valid", body: types.ShareEmailRequest{Email: "a@example.com", ShareLink: "http://growthos.test/results/x"}, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil, Dependencies{})
			rec := serve(s, jsonRequest(http.MethodPost, "/api/share-results/email", tt.body))

			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp types.SuccessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if !resp.Success || resp.Message != "Share link would be sent to a@example.com" || resp.ShareLink != tt.body.ShareLink {
				t.Errorf("Unexpected response: %+v", resp)
			}
		})
	}
}

func TestMaskEmail(t *testing.T) {
	tests := map[string]string{
		"dev@example.com": "d****@example.com",
		"édith@mail.fr":   "é****@mail.fr",
		"not-an-email":    "****",
		"@example.com":    "****",
	}
	for in, want := range tests {
		if got := maskEmail(in); got != want {
			t.Errorf("maskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHealthHandler(t *testing.T) {
	t.Run("healthy without dependencies", func(t *testing.T) {
		s := newTestServer(t, nil, Dependencies{})
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("Failed to decode health: %v", err)
		}
		if body["status"] != "healthy" {
			t.Errorf("Expected healthy, got %v", body["status"])
		}
	})

	t.Run("degraded when database unreachable", func(t *testing.T) {
		st := newFakeStore()
		st.pingErr = errBoom
		s := newTestServer(t, nil, Dependencies{Store: st, AI: &fakeProvider{}})
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("Expected 503, got %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "hunter2") {
			t.Errorf("Health leaked the cause: %s", rec.Body.String())
		}
	})
}

func TestStatsHandler(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMin: 60, BurstCapacity: 5, ByIP: true}
	s := newTestServer(t, cfg, Dependencies{})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode stats: %v", err)
	}
	limits, ok := body["rate_limiting"].(map[string]any)
	if !ok || limits["burst_capacity"] != float64(5) {
		t.Errorf("Unexpected rate limiting stats: %v", body["rate_limiting"])
	}
}
