package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// LoadedPrompts holds prompt content resolved from files
type LoadedPrompts struct {
	System string
	User   string
}

// loadPromptsFromFiles reads the gap analysis prompt files, if any are configured,
// and replaces the inline prompt text with the file contents
func (c *Config) loadPromptsFromFiles() error {
	prompts := &c.AI.Analysis.Prompts
	if prompts.SystemFile == "" && prompts.UserFile == "" {
		log.Println("[CONFIG] No custom prompt files configured - using built-in defaults")
		return nil
	}

	loaded, err := LoadPromptFiles(*prompts)
	if err != nil {
		return err
	}
	if loaded.System != "" {
		prompts.System = loaded.System
	}
	if loaded.User != "" {
		prompts.User = loaded.User
	}
	return nil
}

// LoadPromptFiles reads the system and user prompt files referenced by cfg.
// Empty paths are skipped.
func LoadPromptFiles(cfg PromptConfig) (LoadedPrompts, error) {
	var loaded LoadedPrompts
	if cfg.SystemFile != "" {
		content, err := LoadPromptFromFile(cfg.SystemFile, "system")
		if err != nil {
			return LoadedPrompts{}, err
		}
		loaded.System = content
	}
	if cfg.UserFile != "" {
		content, err := LoadPromptFromFile(cfg.UserFile, "user")
		if err != nil {
			return LoadedPrompts{}, err
		}
		loaded.User = content
	}
	return loaded, nil
}

// LoadPromptFromFile loads a prompt from a file, rejecting missing or empty files
func LoadPromptFromFile(filePath, promptType string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", promptType, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s prompt file not found: %s", promptType, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", promptType, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", promptType, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s prompt from file: %s (%d characters)",
		promptType, absPath, len(trimmedContent))

	return trimmedContent, nil
}
