package common

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"growthos/internal/ai"
	"growthos/internal/errors"
	"growthos/internal/types"
)

var testLogger = errors.NewLoggerWithWriter(io.Discard, slog.LevelDebug)

type stubParser struct {
	text  string
	err   error
	input []byte
}

func (p *stubParser) Parse(data []byte) (string, error) {
	p.input = data
	return p.text, p.err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestReadDocument(t *testing.T) {
	fp := NewFileProcessor(testLogger)

	t.Run("text file", func(t *testing.T) {
		path := writeTemp(t, "linkedin.txt", "Senior engineer at Acme")
		got, err := fp.ReadDocument(path, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got != "Senior engineer at Acme" {
			t.Errorf("Expected file content, got %q", got)
		}
	})

	t.Run("pdf goes through parser", func(t *testing.T) {
		path := writeTemp(t, "resume.pdf", "%PDF-1.4 fake")
		parser := &stubParser{text: "Extracted resume"}
		got, err := fp.ReadDocument(path, parser)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got != "Extracted resume" {
			t.Errorf("Expected parser output, got %q", got)
		}
		if string(parser.input) != "%PDF-1.4 fake" {
			t.Errorf("Expected raw bytes to reach the parser, got %q", parser.input)
		}
	})

	t.Run("pdf without parser", func(t *testing.T) {
		path := writeTemp(t, "resume.pdf", "%PDF")
		if _, err := fp.ReadDocument(path, nil); err == nil {
			t.Error("Expected an error without a parser")
		}
	})

	t.Run("parser error is returned", func(t *testing.T) {
		path := writeTemp(t, "resume.pdf", "%PDF")
		parseErr := errors.NewIOError(errors.ErrCodePDFParseFailed, "Failed to parse PDF", nil)
		_, err := fp.ReadDocument(path, &stubParser{err: parseErr})
		if !stderrors.Is(err, parseErr) {
			t.Errorf("Expected parser error, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := fp.ReadDocument(filepath.Join(t.TempDir(), "nope.txt"), nil)
		appErr, ok := errors.As(err)
		if !ok || appErr.Type != errors.ErrorTypeValidation {
			t.Errorf("Expected a validation error, got %v", err)
		}
	})
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	fp := NewFileProcessor(testLogger)
	path := filepath.Join(t.TempDir(), "nested", "out", "report.md")

	if err := fp.WriteFile(path, "# Report"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	content, err := fp.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read back: %v", err)
	}
	if content != "# Report" {
		t.Errorf("Expected written content, got %q", content)
	}
}

func TestHandleOutput(t *testing.T) {
	analysis := &types.GapAnalysis{ReadinessScore: 64, PromotionNarrative: "Lead the migration."}

	t.Run("stdout", func(t *testing.T) {
		var buf bytes.Buffer
		oh := NewOutputHandler(testLogger)
		oh.stdout = &buf

		if err := oh.HandleOutput(analysis, CommandConfig{OutputFormat: "text"}); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Readiness: 64/100") {
			t.Errorf("Expected text report on stdout, got %q", buf.String())
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "analysis.json")
		oh := NewOutputHandler(testLogger)

		if err := oh.HandleOutput(analysis, CommandConfig{OutputFile: path, OutputFormat: "json"}); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Expected output file: %v", err)
		}
		if !strings.Contains(string(content), `"readinessScore": 64`) {
			t.Errorf("Expected JSON report, got %q", content)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		oh := NewOutputHandler(testLogger)
		oh.stdout = io.Discard
		err := oh.HandleOutput(analysis, CommandConfig{OutputFormat: "xml"})
		appErr, ok := errors.As(err)
		if !ok || appErr.Code != errors.ErrCodeInvalidFormat {
			t.Errorf("Expected INVALID_FORMAT, got %v", err)
		}
	})
}

func TestRunAICommand(t *testing.T) {
	resumePath := writeTemp(t, "resume.txt", "Go developer")
	outPath := filepath.Join(t.TempDir(), "result.json")

	var seen types.AnalysisInput
	build := func(ctx context.Context, fp *FileProcessor) (types.AnalysisInput, error) {
		text, err := fp.ReadDocument(resumePath, nil)
		return types.AnalysisInput{ResumeText: text, TargetRole: "Staff"}, err
	}
	operation := func(ctx context.Context, in types.AnalysisInput) (*types.GapAnalysis, *ai.TokenUsage, error) {
		seen = in
		return &types.GapAnalysis{ReadinessScore: 50}, &ai.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, nil
	}

	err := RunAICommand(context.Background(), testLogger, CommandConfig{OutputFile: outPath, OutputFormat: "json"}, build, operation, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if seen.ResumeText != "Go developer" || seen.TargetRole != "Staff" {
		t.Errorf("Expected built input to reach the operation, got %+v", seen)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("Expected output file to be written: %v", err)
	}

	t.Run("operation error", func(t *testing.T) {
		boom := stderrors.New("model unavailable")
		failing := func(ctx context.Context, in types.AnalysisInput) (*types.GapAnalysis, *ai.TokenUsage, error) {
			return nil, nil, boom
		}
		err := RunAICommand(context.Background(), testLogger, CommandConfig{OutputFormat: "json"}, build, failing, nil)
		if !stderrors.Is(err, boom) {
			t.Errorf("Expected operation error, got %v", err)
		}
	})

	t.Run("input error skips operation", func(t *testing.T) {
		called := false
		badBuild := func(ctx context.Context, fp *FileProcessor) (types.AnalysisInput, error) {
			_, err := fp.ReadDocument(filepath.Join(t.TempDir(), "missing.txt"), nil)
			return types.AnalysisInput{}, err
		}
		tracked := func(ctx context.Context, in types.AnalysisInput) (*types.GapAnalysis, *ai.TokenUsage, error) {
			called = true
			return nil, nil, nil
		}
		if err := RunAICommand(context.Background(), testLogger, CommandConfig{OutputFormat: "json"}, badBuild, tracked, nil); err == nil {
			t.Error("Expected an input error")
		}
		if called {
			t.Error("Operation must not run when input fails")
		}
	})
}
