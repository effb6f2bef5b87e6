package ai

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"growthos/internal/config"
)

func TestPromptWatcherReload(t *testing.T) {
	dir := t.TempDir()
	systemFile := filepath.Join(dir, "system.md")
	if err := os.WriteFile(systemFile, []byte("first system prompt"), 0600); err != nil {
		t.Fatal(err)
	}

	set := NewPromptSet("", "custom user {{profile}}")
	w := NewPromptWatcher(config.PromptConfig{SystemFile: systemFile}, set, 0, testLogger)

	if err := w.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	system, user := set.Get()
	if system != "first system prompt" {
		t.Errorf("Expected system prompt from file, got %q", system)
	}
	if user != "custom user {{profile}}" {
		t.Errorf("User prompt without a file should be kept, got %q", user)
	}

	if err := os.WriteFile(systemFile, []byte("   "), 0600); err != nil {
		t.Fatal(err)
	}
	if err := w.Reload(); err == nil {
		t.Error("Expected error for empty prompt file")
	}
	if system, _ := set.Get(); system != "first system prompt" {
		t.Errorf("Failed reload must keep previous prompt, got %q", system)
	}
}

func TestPromptWatcherStartRequiresFiles(t *testing.T) {
	w := NewPromptWatcher(config.PromptConfig{}, NewPromptSet("", ""), 0, testLogger)
	if err := w.Start(); err == nil {
		t.Error("Expected error when no prompt files are configured")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stopping an idle watcher should be a no-op, got %v", err)
	}
}

func TestPromptWatcherPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	systemFile := filepath.Join(dir, "system.md")
	if err := os.WriteFile(systemFile, []byte("before"), 0600); err != nil {
		t.Fatal(err)
	}

	set := NewPromptSet("before", "")
	w := NewPromptWatcher(config.PromptConfig{SystemFile: systemFile}, set, 20*time.Millisecond, testLogger)
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })

	if err := w.Start(); err == nil {
		t.Error("Expected error when starting twice")
	}

	if err := os.WriteFile(systemFile, []byte("after"), 0600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if system, _ := set.Get(); system == "after" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("Prompt change was not picked up")
}
