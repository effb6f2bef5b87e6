package presentation

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"growthos/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names
const (
	PageLanding    = "landing"
	PageOnboarding = "onboarding"
	PageDashboard  = "dashboard"
	PageResults    = "results"
)

// Banner messages keyed by the landing page ?error= flag
var banners = map[string]string{
	"share-expired": "This shared link has expired or no longer exists.",
	"share-invalid": "This shared link could not be opened.",
}

// BannerFor returns the landing banner for an error flag, or "" for unknown flags
func BannerFor(flag string) string {
	return banners[flag]
}

// LandingData is rendered by the landing page
type LandingData struct {
	Banner   string
	SignedIn bool
}

// OnboardingData is rendered by the onboarding page
type OnboardingData struct {
	SignedIn        bool
	Name            string
	GitHubConnected bool
	AIEnabled       bool
}

// AnalysisView is rendered by the dashboard and shared results pages
type AnalysisView struct {
	Analysis  *types.GapAnalysis
	Radar     []RadarPoint
	Shape     RadarShape
	Narrative NarrativeView
	ShareLink string
	Shared    bool
}

// NewAnalysisView builds the view model for an analysis
func NewAnalysisView(a *types.GapAnalysis, shareLink string, shared bool) AnalysisView {
	points := RadarPoints(a)
	return AnalysisView{
		Analysis:  a,
		Radar:     points,
		Shape:     BuildRadarShape(points, 320),
		Narrative: Narrative(a),
		ShareLink: shareLink,
		Shared:    shared,
	}
}

// Renderer renders the HTML pages
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the shared layout
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"gapClass": func(level types.GapLevel) string { return "gap-" + string(level) },
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{PageLanding, PageOnboarding, PageDashboard, PageResults} {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/analysis.html",
			"templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render writes the named page. Output is buffered so template errors never produce a partial page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
