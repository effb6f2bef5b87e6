package server

import (
	"net/http"

	"growthos/internal/auth"
	"growthos/internal/presentation"
)

// landingHandler renders the landing page, turning ?error= flags into a banner
func (s *Server) landingHandler(w http.ResponseWriter, r *http.Request) {
	_, signedIn := auth.FromContext(r.Context())
	s.renderPage(w, http.StatusOK, presentation.PageLanding, presentation.LandingData{
		Banner:   presentation.BannerFor(r.URL.Query().Get("error")),
		SignedIn: signedIn,
	})
}

// onboardingHandler sends users with a stored analysis to the dashboard and renders
// onboarding for everyone else. Lookup failures fall through to onboarding.
func (s *Server) onboardingHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer().Start(r.Context(), "page.onboarding")
	defer span.End()

	sess, signedIn := auth.FromContext(ctx)
	if signedIn && s.Store.Enabled() {
		profile, err := s.Store.GetProfile(ctx, sess.UserID)
		switch {
		case err != nil:
			span.RecordError(err)
			s.Logger.LogError(err, "Onboarding gate profile lookup failed", "user_id", sess.UserID.String())
		case profile != nil && profile.GapAnalysis != nil:
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	data := presentation.OnboardingData{
		SignedIn:  signedIn,
		AIEnabled: s.AI.Enabled(),
	}
	if signedIn {
		data.Name = sess.Name
		data.GitHubConnected = sess.HasGitHub()
	}
	s.renderPage(w, http.StatusOK, presentation.PageOnboarding, data)
}

// dashboardHandler renders the signed-in user's analysis
func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer().Start(r.Context(), "page.dashboard")
	defer span.End()

	sess, signedIn := auth.FromContext(ctx)
	if !signedIn || !s.Store.Enabled() {
		http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
		return
	}

	profile, err := s.Store.GetProfile(ctx, sess.UserID)
	if err != nil {
		span.RecordError(err)
		s.Logger.LogError(err, "Dashboard profile lookup failed", "user_id", sess.UserID.String())
	}
	if err != nil || profile == nil || profile.GapAnalysis == nil {
		http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
		return
	}

	link := ""
	if profile.ShareID != nil {
		link = s.shareLink(profile.ShareID.String())
	}
	s.renderPage(w, http.StatusOK, presentation.PageDashboard, presentation.NewAnalysisView(profile.GapAnalysis, link, false))
}

// renderPage writes an HTML page, logging template failures
func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data any) {
	if err := s.Pages.Render(w, status, name, data); err != nil {
		s.Logger.LogError(err, "Failed to render page", "page", name)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
