package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"growthos/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "GapAnalysis", &GapAnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "GapAnalysis", &GapAnalysisMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case *types.GapAnalysis, types.GapAnalysis:
		return "GapAnalysis"
	default:
		return "any"
	}
}

func asGapAnalysis(data any) (*types.GapAnalysis, error) {
	switch v := data.(type) {
	case *types.GapAnalysis:
		if v == nil {
			return nil, fmt.Errorf("gap analysis is nil")
		}
		return v, nil
	case types.GapAnalysis:
		return &v, nil
	default:
		return nil, fmt.Errorf("expected GapAnalysis, got %T", data)
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// GapAnalysisTextFormatter renders a gap analysis as plain text
type GapAnalysisTextFormatter struct{}

func (tf *GapAnalysisTextFormatter) Format(data any) (string, error) {
	result, err := asGapAnalysis(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== GAP ANALYSIS ===\n\n")
	fmt.Fprintf(&output, "Readiness: %d/100\n\n", result.ReadinessScore)
	if result.Summary != "" {
		output.WriteString(result.Summary)
		output.WriteString("\n\n")
	}

	output.WriteString("=== DOMAIN SCORES ===\n")
	for _, d := range types.Domains {
		fmt.Fprintf(&output, "%-28s %3d\n", string(d), result.Score(d))
	}
	output.WriteString("\n")

	if len(result.Gaps) > 0 {
		output.WriteString("=== GAPS ===\n")
		for i, g := range result.Gaps {
			fmt.Fprintf(&output, "%d. [%s] %s\n", i+1, strings.ToUpper(string(g.Gap)), g.Domain)
			writeTextLine(&output, "Observation", g.Observation)
			writeTextLine(&output, "Requirement", g.Requirement)
			writeTextLine(&output, "Next step", g.ClosingAction)
		}
		output.WriteString("\n")
	}

	output.WriteString("=== PLAN ===\n")
	for _, phase := range []types.PlanPhase{result.Plan.Phase1, result.Plan.Phase2, result.Plan.Phase3} {
		if phase.Label == "" && len(phase.Actions) == 0 {
			continue
		}
		output.WriteString(phaseTitle(phase))
		output.WriteString("\n")
		for _, action := range phase.Actions {
			fmt.Fprintf(&output, "  - %s\n", action)
		}
	}
	output.WriteString("\n")

	output.WriteString("=== PROMOTION NARRATIVE ===\n")
	output.WriteString(narrativeText(result))
	output.WriteString("\n")

	return output.String(), nil
}

func (tf *GapAnalysisTextFormatter) SupportedType() string {
	return "GapAnalysis"
}

// GapAnalysisMarkdownFormatter renders a gap analysis as markdown
type GapAnalysisMarkdownFormatter struct{}

func (mf *GapAnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, err := asGapAnalysis(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Gap Analysis\n\n")
	fmt.Fprintf(&output, "**Readiness:** %d/100\n\n", result.ReadinessScore)
	if result.Summary != "" {
		output.WriteString(result.Summary)
		output.WriteString("\n\n")
	}

	output.WriteString("## Domain Scores\n\n")
	output.WriteString("| Domain | Score |\n|---|---|\n")
	for _, d := range types.Domains {
		fmt.Fprintf(&output, "| %s | %d |\n", string(d), result.Score(d))
	}
	output.WriteString("\n")

	if len(result.Gaps) > 0 {
		output.WriteString("## Gaps\n\n")
		for _, g := range result.Gaps {
			fmt.Fprintf(&output, "### %s (%s)\n", g.Domain, g.Gap)
			fmt.Fprintf(&output, "- **Observation:** %s\n", g.Observation)
			fmt.Fprintf(&output, "- **Requirement:** %s\n", g.Requirement)
			fmt.Fprintf(&output, "- **Next step:** %s\n\n", g.ClosingAction)
		}
	}

	output.WriteString("## Plan\n\n")
	for _, phase := range []types.PlanPhase{result.Plan.Phase1, result.Plan.Phase2, result.Plan.Phase3} {
		if phase.Label == "" && len(phase.Actions) == 0 {
			continue
		}
		fmt.Fprintf(&output, "### %s\n", phaseTitle(phase))
		for _, action := range phase.Actions {
			fmt.Fprintf(&output, "- %s\n", action)
		}
		output.WriteString("\n")
	}

	output.WriteString("## Promotion Narrative\n\n")
	output.WriteString(narrativeText(result))
	output.WriteString("\n")

	return output.String(), nil
}

func (mf *GapAnalysisMarkdownFormatter) SupportedType() string {
	return "GapAnalysis"
}

func writeTextLine(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "   %s: %s\n", label, value)
	}
}

func phaseTitle(p types.PlanPhase) string {
	if p.Theme == "" {
		return p.Label
	}
	return p.Label + ": " + p.Theme
}

func narrativeText(a *types.GapAnalysis) string {
	if a.PromotionNarrative == "" {
		return "Promotion narrative not available yet."
	}
	return a.PromotionNarrative
}

// GlobalRegistry is the global formatter registry instance
var GlobalRegistry = NewFormatterRegistry()
