package cli

import (
	"fmt"

	"growthos/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const maskedValue = "***MASKED***"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		out, err := renderMaskedConfig(cfg)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

// renderMaskedConfig returns cfg as YAML with every secret replaced
func renderMaskedConfig(cfg *config.Config) (string, error) {
	masked := *cfg
	masked.AI.APIKey = mask(masked.AI.APIKey)
	masked.AI.Analysis.APIKey = mask(masked.AI.Analysis.APIKey)
	masked.Database.URL = mask(masked.Database.URL)
	masked.Database.PublicURL = mask(masked.Database.PublicURL)
	masked.Database.ServiceKey = mask(masked.Database.ServiceKey)
	masked.Database.PublicKey = mask(masked.Database.PublicKey)
	masked.Auth.JWTSecret = mask(masked.Auth.JWTSecret)
	masked.Vault.Token = mask(masked.Vault.Token)
	masked.Observability.OTLP.Headers = maskHeaders(masked.Observability.OTLP.Headers)

	data, err := yaml.Marshal(&masked)
	if err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	return string(data), nil
}

func mask(value string) string {
	if value == "" {
		return ""
	}
	return maskedValue
}

func maskHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return headers
	}
	out := make(map[string]string, len(headers))
	for k := range headers {
		out[k] = maskedValue
	}
	return out
}
