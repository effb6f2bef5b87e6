package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"growthos/internal/ai"
	"growthos/internal/auth"
	"growthos/internal/config"
	growthosErrors "growthos/internal/errors"
	"growthos/internal/github"
	"growthos/internal/store"
	"growthos/internal/types"

	"github.com/google/uuid"
)

var testLogger = growthosErrors.NewLoggerWithWriter(io.Discard, slog.LevelDebug)

// fakeStore keeps profiles and feedback in memory
type fakeStore struct {
	disabled   bool
	profiles   map[uuid.UUID]*types.Profile
	shares     map[uuid.UUID]*types.GapAnalysis
	feedback   []*types.Feedback
	profileErr error
	saveErr    error
	insertErr  error
	pingErr    error
	calls      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: make(map[uuid.UUID]*types.Profile),
		shares:   make(map[uuid.UUID]*types.GapAnalysis),
	}
}

func (f *fakeStore) Enabled() bool { return !f.disabled }

func (f *fakeStore) EnsureUser(_ context.Context, email, name string) (*types.User, error) {
	f.calls++
	return &types.User{ID: uuid.New(), Email: email, Name: name}, nil
}

func (f *fakeStore) GetProfile(_ context.Context, userID uuid.UUID) (*types.Profile, error) {
	f.calls++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profiles[userID], nil
}

func (f *fakeStore) SaveAnalysis(_ context.Context, userID uuid.UUID, input types.AnalysisInput, analysis *types.GapAnalysis) (*types.Profile, error) {
	f.calls++
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	shareID := uuid.New()
	profile := &types.Profile{
		UserID:             userID,
		ResumeRaw:          input.ResumeText,
		GapAnalysis:        analysis,
		ShareID:            &shareID,
		OnboardingComplete: true,
	}
	f.profiles[userID] = profile
	f.shares[shareID] = analysis
	return profile, nil
}

func (f *fakeStore) GetAnalysisByShareID(_ context.Context, shareID uuid.UUID) (*types.GapAnalysis, error) {
	f.calls++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	a, ok := f.shares[shareID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) InsertFeedback(_ context.Context, fb *types.Feedback) error {
	f.calls++
	if f.insertErr != nil {
		return f.insertErr
	}
	f.feedback = append(f.feedback, fb)
	return nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) Close() error { return nil }

// fakeProvider returns a canned analysis
type fakeProvider struct {
	analysis *types.GapAnalysis
	err      error
	calls    int
	input    types.AnalysisInput
}

func (f *fakeProvider) Enabled() bool { return true }

func (f *fakeProvider) GenerateGapAnalysis(_ context.Context, input types.AnalysisInput) (*types.GapAnalysis, *ai.TokenUsage, error) {
	f.calls++
	f.input = input
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.analysis, &ai.TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30}, nil
}

func (f *fakeProvider) GetModelInfo(context.Context) *ai.ModelInfo {
	return &ai.ModelInfo{Name: "fake-model", Available: true}
}

func (f *fakeProvider) BreakerStats() map[string]any { return map[string]any{"enabled": false} }

func (f *fakeProvider) Close() error { return nil }

// fakeGitHub serves a fixed snapshot
type fakeGitHub struct {
	snapshot *github.Snapshot
	err      error
	token    string
}

func (f *fakeGitHub) FetchSnapshot(_ context.Context, token string) (*github.Snapshot, error) {
	f.token = token
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

// fakeParser returns fixed text
type fakeParser struct {
	text string
	err  error
}

func (f *fakeParser) Parse([]byte) (string, error) {
	return f.text, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:  "test-session-secret",
			CookieName: "growthos_session",
			SessionTTL: time.Hour,
		},
		GitHub: config.GitHubConfig{APIBaseURL: "https://api.github.com", Timeout: time.Second},
		Server: config.ServerConfig{
			Host:      "127.0.0.1",
			Port:      "8080",
			PublicURL: "http://growthos.test",
		},
		App: config.AppConfig{
			LogLevel:      "debug",
			MaxUploadSize: 1 << 20,
			Limits:        config.LimitConfig{ResumeChars: 8000, GitHubChars: 4000, FeedbackChars: 500},
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, deps Dependencies) *Server {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	s, err := NewServer(cfg, "test", deps, testLogger)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	t.Cleanup(func() {
		if s.RateLimiter != nil {
			s.RateLimiter.Close()
		}
	})
	return s
}

// sessionToken issues a bearer token for a test user
func sessionToken(t *testing.T, s *Server, sess auth.Session) string {
	t.Helper()
	if sess.UserID == uuid.Nil {
		sess.UserID = uuid.New()
	}
	token, err := s.Sessions.Issue(sess)
	if err != nil {
		t.Fatalf("Failed to issue session: %v", err)
	}
	return token
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withToken(req *http.Request, token string) *http.Request {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func sampleAnalysis() *types.GapAnalysis {
	a := &types.GapAnalysis{
		Summary:        "Solid senior engineer",
		ReadinessScore: 72,
		DomainScores: map[types.Domain]int{
			types.DomainSystemDesign: 80,
			types.DomainTechnical:    90,
		},
		Gaps: []types.GapItem{{
			Domain:        string(types.DomainCommunication),
			Gap:           types.GapHigh,
			Observation:   "Few written proposals",
			Requirement:   "Drive design reviews",
			ClosingAction: "Write one RFC this quarter",
		}},
		PromotionNarrative: "Ready for staff scope with more visibility.",
	}
	a.Normalize()
	return a
}

var errBoom = errors.New("connection refused: db.internal:5432 password=hunter2")
