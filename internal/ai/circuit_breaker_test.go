package ai

import (
	"fmt"
	"testing"
	"time"

	"growthos/internal/config"
)

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}
}

func TestBreakerDisabledIsPassthrough(t *testing.T) {
	cfg := breakerConfig()
	cfg.Enabled = false

	b := NewBreaker[int]("AI-Generate-test", cfg, testLogger)
	if b != nil {
		t.Fatal("Expected nil breaker when disabled")
	}

	got, err := b.Execute(func() (int, error) { return 7, nil })
	if err != nil || got != 7 {
		t.Errorf("Expected passthrough result 7, got %d, %v", got, err)
	}
	if !b.Healthy() {
		t.Error("A missing breaker should report healthy")
	}
	if enabled, _ := b.Stats()["enabled"].(bool); enabled {
		t.Error("Expected stats to report disabled")
	}
}

func TestBreakerTripsAfterFailures(t *testing.T) {
	b := NewBreaker[string](breakerName("Generate", "test"), breakerConfig(), testLogger)

	stats := b.Stats()
	if stats["name"] != "AI-Generate-test" {
		t.Errorf("Expected breaker name AI-Generate-test, got %v", stats["name"])
	}
	if stats["state"] != "closed" {
		t.Errorf("Expected initial state closed, got %v", stats["state"])
	}

	fail := func() (string, error) { return "", fmt.Errorf("upstream unavailable") }
	for i := 0; i < 2; i++ {
		if _, err := b.Execute(fail); err == nil {
			t.Fatal("Expected failure to propagate")
		}
	}

	if b.Healthy() {
		t.Error("Expected breaker to be open after repeated failures")
	}

	called := false
	_, err := b.Execute(func() (string, error) {
		called = true
		return "ok", nil
	})
	if err == nil {
		t.Error("Expected open breaker to reject calls")
	}
	if called {
		t.Error("Open breaker must not invoke the function")
	}
}

func TestBreakerIndependentInstances(t *testing.T) {
	generate := NewBreaker[string]("AI-Generate-test", breakerConfig(), testLogger)
	model := NewBreaker[string]("AI-Model-test", breakerConfig(), testLogger)

	fail := func() (string, error) { return "", fmt.Errorf("boom") }
	_, _ = generate.Execute(fail)
	_, _ = generate.Execute(fail)

	if generate.Healthy() {
		t.Error("Expected generate breaker to trip")
	}
	if !model.Healthy() {
		t.Error("Model breaker should be unaffected by generate failures")
	}
}
