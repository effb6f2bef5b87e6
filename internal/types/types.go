package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Domain is one of the fixed career-competency categories scored by a gap analysis
type Domain string

const (
	DomainSystemDesign  Domain = "System Design Maturity"
	DomainExecution     Domain = "Execution Scope"
	DomainCommunication Domain = "Communication & Visibility"
	DomainTechnical     Domain = "Technical Depth"
	DomainLeadership    Domain = "Leadership & Influence"
)

// Domains lists every scored domain in display order
var Domains = []Domain{
	DomainSystemDesign,
	DomainExecution,
	DomainCommunication,
	DomainTechnical,
	DomainLeadership,
}

// ShortLabel returns the first word of the domain name
func (d Domain) ShortLabel() string {
	name := string(d)
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}

// GapLevel is the severity of a gap item
type GapLevel string

const (
	GapHigh   GapLevel = "high"
	GapMedium GapLevel = "medium"
	GapLow    GapLevel = "low"
)

// Valid reports whether the level is one of the known severities
func (g GapLevel) Valid() bool {
	switch g {
	case GapHigh, GapMedium, GapLow:
		return true
	}
	return false
}

// GapItem describes a single readiness gap
type GapItem struct {
	Domain        string   `json:"domain"`
	Gap           GapLevel `json:"gap"`
	Observation   string   `json:"observation"`
	Requirement   string   `json:"requirement"`
	ClosingAction string   `json:"closingAction"`
}

// PlanPhase is one stage of the improvement plan
type PlanPhase struct {
	Label   string   `json:"label"`
	Theme   string   `json:"theme"`
	Actions []string `json:"actions"`
}

// Plan holds the three-phase improvement plan
type Plan struct {
	Phase1 PlanPhase `json:"phase1"`
	Phase2 PlanPhase `json:"phase2"`
	Phase3 PlanPhase `json:"phase3"`
}

// GapAnalysis is the AI-produced assessment of a user's career readiness
type GapAnalysis struct {
	Summary            string         `json:"summary"`
	ReadinessScore     int            `json:"readinessScore"` // 0-100
	DomainScores       map[Domain]int `json:"domainScores"`   // keyed by Domain, 0-100 each
	Gaps               []GapItem      `json:"gaps"`
	Plan               Plan           `json:"plan"`
	PromotionNarrative string         `json:"promotionNarrative"`
}

// Score returns the score for a domain, treating a missing key as 0
func (g *GapAnalysis) Score(d Domain) int {
	if g == nil || g.DomainScores == nil {
		return 0
	}
	return g.DomainScores[d]
}

// Normalize clamps scores into range, fills missing domains and repairs gap levels
func (g *GapAnalysis) Normalize() {
	g.ReadinessScore = clampScore(g.ReadinessScore)

	scores := make(map[Domain]int, len(Domains))
	for _, d := range Domains {
		scores[d] = clampScore(g.DomainScores[d])
	}
	g.DomainScores = scores

	for i := range g.Gaps {
		level := GapLevel(strings.ToLower(strings.TrimSpace(string(g.Gaps[i].Gap))))
		if !level.Valid() {
			level = GapMedium
		}
		g.Gaps[i].Gap = level
	}
	if g.Gaps == nil {
		g.Gaps = []GapItem{}
	}
}

func clampScore(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// FeedbackType classifies a feedback submission
type FeedbackType string

const (
	FeedbackBug      FeedbackType = "bug"
	FeedbackFeature  FeedbackType = "feature"
	FeedbackInterest FeedbackType = "interest"
	FeedbackGeneral  FeedbackType = "general"
)

// Valid reports whether the feedback type is accepted
func (f FeedbackType) Valid() bool {
	switch f {
	case FeedbackBug, FeedbackFeature, FeedbackInterest, FeedbackGeneral:
		return true
	}
	return false
}

// User is the stable identity assigned at first sign-in.
// Email and Name are mutable contact details.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile holds everything captured for a user during onboarding
type Profile struct {
	UserID             uuid.UUID    `json:"userId"`
	GitHubData         string       `json:"githubData,omitempty"`
	LinkedInRaw        string       `json:"linkedinRaw,omitempty"`
	ResumeRaw          string       `json:"resumeRaw,omitempty"`
	WebsiteURL         string       `json:"websiteUrl,omitempty"`
	TargetRole         string       `json:"targetRole,omitempty"`
	CurrentRole        string       `json:"currentRole,omitempty"`
	Timeline           string       `json:"timeline,omitempty"`
	GapAnalysis        *GapAnalysis `json:"gapAnalysis,omitempty"`
	ShareID            *uuid.UUID   `json:"shareId,omitempty"`
	OnboardingComplete bool         `json:"onboardingComplete"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// Feedback is an append-only user submission
type Feedback struct {
	ID        uint         `json:"id"`
	UserID    uuid.UUID    `json:"userId"`
	Type      FeedbackType `json:"type"`
	Message   string       `json:"message"`
	Page      string       `json:"page,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// AnalysisInput is the raw onboarding material sent to the AI model
type AnalysisInput struct {
	ResumeText   string `json:"resumeText"`
	LinkedInText string `json:"linkedinText"`
	GitHubData   string `json:"githubData"`
	WebsiteURL   string `json:"websiteUrl"`
	TargetRole   string `json:"targetRole"`
	CurrentRole  string `json:"currentRole"`
	Timeline     string `json:"timeline"`
}

// Empty reports whether every field is blank
func (in AnalysisInput) Empty() bool {
	for _, field := range []string{
		in.ResumeText, in.LinkedInText, in.GitHubData, in.WebsiteURL,
		in.TargetRole, in.CurrentRole, in.Timeline,
	} {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// FeedbackRequest is the body of a feedback submission
type FeedbackRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Page    string `json:"page,omitempty"`
}

// ShareEmailRequest asks for a share link to be emailed
type ShareEmailRequest struct {
	Email          string       `json:"email"`
	ShareLink      string       `json:"shareLink"`
	AnalysisResult *GapAnalysis `json:"analysisResult,omitempty"`
}

// SuccessResponse is the generic acknowledgement payload
type SuccessResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ShareLink string `json:"shareLink,omitempty"`
}

// AnalysisResponse is returned after a gap analysis has been generated
type AnalysisResponse struct {
	Analysis *GapAnalysis `json:"analysis"`
	ShareID  string       `json:"shareId"`
}
