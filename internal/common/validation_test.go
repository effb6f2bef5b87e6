package common

import (
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name             string
		format           string
		supportedFormats []string
		expectError      bool
		expectedError    string
	}{
		{
			name:   "registry format - json",
			format: "json",
		},
		{
			name:   "registry format - text",
			format: "text",
		},
		{
			name:   "registry format - markdown",
			format: "markdown",
		},
		{
			name:          "unknown registry format",
			format:        "xml",
			expectError:   true,
			expectedError: "unsupported output format 'xml'. Supported formats: [json markdown text]",
		},
		{
			name:          "case sensitive - JSON uppercase",
			format:        "JSON",
			expectError:   true,
			expectedError: "unsupported output format 'JSON'. Supported formats: [json markdown text]",
		},
		{
			name:          "empty format string",
			format:        "",
			expectError:   true,
			expectedError: "unsupported output format ''. Supported formats: [json markdown text]",
		},
		{
			name:             "restricted list - valid",
			format:           "json",
			supportedFormats: []string{"json"},
		},
		{
			name:             "restricted list - invalid",
			format:           "text",
			supportedFormats: []string{"json"},
			expectError:      true,
			expectedError:    "unsupported output format 'text'. Supported formats: [json]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supportedFormats)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
					return
				}
				if tt.expectedError != "" && err.Error() != tt.expectedError {
					t.Errorf("Expected error '%s', got '%s'", tt.expectedError, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestGetSupportedFormats(t *testing.T) {
	tests := []struct {
		name             string
		supportedFormats []string
		expected         []string
	}{
		{
			name:     "defaults to registry",
			expected: []string{"json", "markdown", "text"},
		},
		{
			name:             "explicit list is kept",
			supportedFormats: []string{"text", "json"},
			expected:         []string{"text", "json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetSupportedFormats(tt.supportedFormats)

			if len(result) != len(tt.expected) {
				t.Fatalf("Expected %d formats, got %d (%v)", len(tt.expected), len(result), result)
			}
			for i, expected := range tt.expected {
				if result[i] != expected {
					t.Errorf("Expected format[%d] = '%s', got '%s'", i, expected, result[i])
				}
			}
		})
	}
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	b.Run("valid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("json", nil)
		}
	})

	b.Run("invalid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("xml", nil)
		}
	})
}
