package ai

import (
	"fmt"
	"strings"

	"growthos/internal/types"
)

const (
	// PlaceholderProfile is replaced with the applicant's onboarding material
	PlaceholderProfile = "{{profile}}"
	// PlaceholderDomains is replaced with the ordered list of scored domains
	PlaceholderDomains = "{{domains}}"
)

// DefaultSystemPrompt is the built-in gap analysis system instruction
const DefaultSystemPrompt = `You are a senior engineering career coach who has sat on many promotion committees.
You assess how ready an engineer is for their target role, using only the evidence provided.

Your principles:
- Never invent experience, projects or skills that are not in the material
- Cite concrete observations from the material for every gap
- Be direct about weaknesses and specific about how to close them
- Scores reflect promotion-committee expectations for the target role, not effort`

// DefaultUserPrompt is the built-in gap analysis request template
const DefaultUserPrompt = `Perform a promotion readiness gap analysis for the engineer described below.

**Tasks:**

1. **Summary**: two or three sentences on overall readiness.
2. **Readiness score**: an integer from 0 to 100 for readiness to operate at the target role.
3. **Domain scores**: an integer from 0 to 100 for each of these domains, using the exact names as keys:
{{domains}}
4. **Gaps**: for each significant gap give the domain, a severity of "high", "medium" or "low",
   what you observed, what the target role requires, and one concrete closing action.
5. **Plan**: three phases (0-30 days, 30-60 days, 60-90 days), each with a label, a theme and a list of actions.
6. **Promotion narrative**: a short first-person paragraph the engineer could use in a promotion packet,
   grounded only in the material.

**Engineer profile:**
{{profile}}`

// RenderUserPrompt fills the user prompt template with the domain list and profile block
func RenderUserPrompt(template string, input types.AnalysisInput) string {
	if template == "" {
		template = DefaultUserPrompt
	}
	return strings.NewReplacer(
		PlaceholderDomains, domainList(),
		PlaceholderProfile, ProfileBlock(input),
	).Replace(template)
}

// ProfileBlock renders the analysis input as labelled sections, skipping empty ones
func ProfileBlock(input types.AnalysisInput) string {
	var b strings.Builder
	writeLine := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	writeSection := func(title, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fmt.Fprintf(&b, "\n### %s\n%s\n", title, value)
		}
	}

	writeLine("Current role", input.CurrentRole)
	writeLine("Target role", input.TargetRole)
	writeLine("Timeline", input.Timeline)
	writeLine("Website", input.WebsiteURL)
	writeSection("Resume", input.ResumeText)
	writeSection("LinkedIn", input.LinkedInText)
	writeSection("GitHub", input.GitHubData)

	return strings.TrimSpace(b.String())
}

func domainList() string {
	lines := make([]string, len(types.Domains))
	for i, d := range types.Domains {
		lines[i] = fmt.Sprintf("   - %s", d)
	}
	return strings.Join(lines, "\n")
}
