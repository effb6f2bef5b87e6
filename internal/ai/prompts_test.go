package ai

import (
	"strings"
	"testing"

	"growthos/internal/types"
)

func TestRenderUserPromptDefault(t *testing.T) {
	input := types.AnalysisInput{
		ResumeText:  "Led the payments migration",
		TargetRole:  "Staff Engineer",
		CurrentRole: "Senior Engineer",
	}

	prompt := RenderUserPrompt("", input)

	for _, d := range types.Domains {
		if !strings.Contains(prompt, string(d)) {
			t.Errorf("Expected prompt to list domain %q", d)
		}
	}
	for _, want := range []string{"Current role: Senior Engineer", "Target role: Staff Engineer", "### Resume\nLed the payments migration"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
	if strings.Contains(prompt, PlaceholderProfile) || strings.Contains(prompt, PlaceholderDomains) {
		t.Error("Placeholders should be replaced")
	}
}

func TestRenderUserPromptCustomTemplate(t *testing.T) {
	got := RenderUserPrompt("Assess:\n{{profile}}", types.AnalysisInput{LinkedInText: "About me"})
	if got != "Assess:\n### LinkedIn\nAbout me" {
		t.Errorf("Unexpected rendered prompt: %q", got)
	}
}

func TestProfileBlockSkipsEmpty(t *testing.T) {
	block := ProfileBlock(types.AnalysisInput{GitHubData: "GitHub: octo", Timeline: "  "})
	if strings.Contains(block, "Timeline") || strings.Contains(block, "Resume") {
		t.Errorf("Empty fields should be omitted, got %q", block)
	}
	if !strings.Contains(block, "### GitHub\nGitHub: octo") {
		t.Errorf("Expected GitHub section, got %q", block)
	}
}

func TestPromptSetDefaults(t *testing.T) {
	ps := NewPromptSet("", "")
	system, user := ps.Get()
	if system != DefaultSystemPrompt || user != DefaultUserPrompt {
		t.Error("Expected built-in prompts for empty values")
	}

	ps.Set("custom system", "")
	system, user = ps.Get()
	if system != "custom system" || user != DefaultUserPrompt {
		t.Errorf("Unexpected prompts after Set: %q / %q", system, user)
	}
}
