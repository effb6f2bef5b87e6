package types

import "testing"

func TestDomainShortLabel(t *testing.T) {
	tests := []struct {
		domain Domain
		want   string
	}{
		{DomainSystemDesign, "System"},
		{DomainExecution, "Execution"},
		{DomainCommunication, "Communication"},
		{DomainTechnical, "Technical"},
		{DomainLeadership, "Leadership"},
		{Domain("Single"), "Single"},
	}

	for _, tt := range tests {
		t.Run(string(tt.domain), func(t *testing.T) {
			if got := tt.domain.ShortLabel(); got != tt.want {
				t.Errorf("ShortLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDomainsOrder(t *testing.T) {
	want := []string{
		"System Design Maturity",
		"Execution Scope",
		"Communication & Visibility",
		"Technical Depth",
		"Leadership & Influence",
	}
	if len(Domains) != len(want) {
		t.Fatalf("expected %d domains, got %d", len(want), len(Domains))
	}
	for i, d := range Domains {
		if string(d) != want[i] {
			t.Errorf("Domains[%d] = %q, want %q", i, d, want[i])
		}
	}
}

func TestGapAnalysisScore(t *testing.T) {
	var nilAnalysis *GapAnalysis
	if got := nilAnalysis.Score(DomainTechnical); got != 0 {
		t.Errorf("nil analysis score = %d, want 0", got)
	}

	g := &GapAnalysis{DomainScores: map[Domain]int{DomainTechnical: 72}}
	if got := g.Score(DomainTechnical); got != 72 {
		t.Errorf("Score(Technical) = %d, want 72", got)
	}
	if got := g.Score(DomainLeadership); got != 0 {
		t.Errorf("Score(Leadership) = %d, want 0", got)
	}
}

func TestGapAnalysisNormalize(t *testing.T) {
	g := &GapAnalysis{
		ReadinessScore: 140,
		DomainScores: map[Domain]int{
			DomainSystemDesign: -5,
			DomainTechnical:    88,
		},
		Gaps: []GapItem{
			{Domain: "Technical Depth", Gap: " HIGH "},
			{Domain: "Execution Scope", Gap: "critical"},
			{Domain: "Leadership & Influence", Gap: "low"},
		},
	}

	g.Normalize()

	if g.ReadinessScore != 100 {
		t.Errorf("ReadinessScore = %d, want 100", g.ReadinessScore)
	}
	if len(g.DomainScores) != len(Domains) {
		t.Fatalf("expected %d domain scores, got %d", len(Domains), len(g.DomainScores))
	}
	if g.DomainScores[DomainSystemDesign] != 0 {
		t.Errorf("System Design score = %d, want 0", g.DomainScores[DomainSystemDesign])
	}
	if g.DomainScores[DomainTechnical] != 88 {
		t.Errorf("Technical score = %d, want 88", g.DomainScores[DomainTechnical])
	}

	wantLevels := []GapLevel{GapHigh, GapMedium, GapLow}
	for i, want := range wantLevels {
		if g.Gaps[i].Gap != want {
			t.Errorf("Gaps[%d].Gap = %q, want %q", i, g.Gaps[i].Gap, want)
		}
	}
}

func TestNormalizeNilGaps(t *testing.T) {
	g := &GapAnalysis{}
	g.Normalize()
	if g.Gaps == nil {
		t.Error("expected empty gaps slice after Normalize")
	}
}

func TestFeedbackTypeValid(t *testing.T) {
	for _, ft := range []FeedbackType{FeedbackBug, FeedbackFeature, FeedbackInterest, FeedbackGeneral} {
		if !ft.Valid() {
			t.Errorf("expected %q to be valid", ft)
		}
	}
	for _, ft := range []FeedbackType{"", "praise", "BUG"} {
		if ft.Valid() {
			t.Errorf("expected %q to be invalid", ft)
		}
	}
}

func TestAnalysisInputEmpty(t *testing.T) {
	tests := []struct {
		name  string
		input AnalysisInput
		want  bool
	}{
		{name: "zero value", input: AnalysisInput{}, want: true},
		{name: "whitespace only", input: AnalysisInput{ResumeText: "  ", TargetRole: "\t"}, want: true},
		{name: "resume text", input: AnalysisInput{ResumeText: "Go developer"}, want: false},
		{name: "target role only", input: AnalysisInput{TargetRole: "Staff Engineer"}, want: false},
		{name: "role details", input: AnalysisInput{CurrentRole: "Senior", Timeline: "12 months"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}
