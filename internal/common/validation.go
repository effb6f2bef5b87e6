package common

import (
	"fmt"
	"slices"

	"growthos/internal/formatters"
)

// DefaultOutputFormat is used when a command is run without --format
const DefaultOutputFormat = "text"

// ValidateOutputFormat validates format against the supported formats.
// An empty list means every format registered with the formatter registry.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	supported := GetSupportedFormats(supportedFormats)
	if slices.Contains(supported, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supported)
}

// GetSupportedFormats returns supportedFormats, or the registry's formats when none are given
func GetSupportedFormats(supportedFormats []string) []string {
	if len(supportedFormats) == 0 {
		return formatters.GlobalRegistry.GetSupportedFormats()
	}
	return supportedFormats
}
