package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exact limit", "hello", 5, "hello"},
		{"ascii cut", "hello world", 5, "hello"},
		{"multibyte cut", "héllo wörld", 7, "héllo w"},
		{"emoji kept whole", "ab🚀cd", 3, "ab🚀"},
		{"zero limit", "hello", 0, ""},
		{"empty input", "", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.input, tt.limit); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.want)
			}
		})
	}
}

func TestTruncateRunesLongInput(t *testing.T) {
	input := strings.Repeat("é", 9000)
	got := TruncateRunes(input, 8000)
	if RuneLen(got) != 8000 {
		t.Errorf("expected 8000 runes, got %d", RuneLen(got))
	}
}

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "resume.pdf")
	if err := os.WriteFile(file, []byte("%PDF-1.4"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if err := ValidateInputFile(file); err != nil {
		t.Errorf("expected valid file, got %v", err)
	}
	if err := ValidateInputFile(""); err == nil {
		t.Error("expected error for empty filename")
	}
	if err := ValidateInputFile(dir); err == nil {
		t.Error("expected error for directory")
	}
	if err := ValidateInputFile(filepath.Join(dir, "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileKinds(t *testing.T) {
	if !IsPDFFile("Resume.PDF") {
		t.Error("expected .PDF to be detected as pdf")
	}
	if IsPDFFile("resume.txt") {
		t.Error("did not expect .txt to be pdf")
	}
	if !IsTextFile("linkedin.md") {
		t.Error("expected .md to be text")
	}
}

func TestFormatFileSize(t *testing.T) {
	if got := FormatFileSize(512); got != "512 B" {
		t.Errorf("FormatFileSize(512) = %q", got)
	}
	if got := FormatFileSize(10 * 1024 * 1024); got != "10.0 MB" {
		t.Errorf("FormatFileSize(10MB) = %q", got)
	}
}
