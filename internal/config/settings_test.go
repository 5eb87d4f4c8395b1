package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenNothingConfigured(t *testing.T) {
	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.StateDir != ".omnai/state" {
		t.Fatalf("StateDir: got %q", s.StateDir)
	}
	if s.MaxTokens != 200_000 {
		t.Fatalf("MaxTokens: got %d", s.MaxTokens)
	}
	if s.WarnThreshold != 0.70 || s.CritThreshold != 0.85 {
		t.Fatalf("thresholds: got %v/%v", s.WarnThreshold, s.CritThreshold)
	}
	if s.CharsPerToken != 4 {
		t.Fatalf("CharsPerToken: got %d", s.CharsPerToken)
	}
	if s.MaxAttempts != 3 || s.InitialDelay != 5*time.Second || s.BackoffMultiplier != 2.0 {
		t.Fatalf("retry defaults: got %d/%v/%v", s.MaxAttempts, s.InitialDelay, s.BackoffMultiplier)
	}
	if s.Timeout != 120*time.Second {
		t.Fatalf("Timeout: got %v", s.Timeout)
	}
	if s.Engine != "" || s.Model != "" {
		t.Fatalf("engine/model: got %q/%q want empty", s.Engine, s.Model)
	}
}

func TestLoad_YAMLOverridesOnlyWhatItSets(t *testing.T) {
	dir := t.TempDir()
	yaml := "engine: ollama\nmax_tokens: 32000\ninitial_delay_sec: 1\n"
	if err := os.WriteFile(filepath.Join(dir, "omnai.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write omnai.yaml: %v", err)
	}

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Engine != "ollama" {
		t.Fatalf("Engine: got %q", s.Engine)
	}
	if s.MaxTokens != 32_000 {
		t.Fatalf("MaxTokens: got %d", s.MaxTokens)
	}
	if s.InitialDelay != time.Second {
		t.Fatalf("InitialDelay: got %v", s.InitialDelay)
	}
	// Untouched fields keep their defaults.
	if s.CritThreshold != 0.85 || s.MaxAttempts != 3 {
		t.Fatalf("defaults disturbed: %v/%d", s.CritThreshold, s.MaxAttempts)
	}
}

func TestLoad_EnvWinsOverYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "omnai.yaml"), []byte("engine: ollama\n"), 0o644); err != nil {
		t.Fatalf("write omnai.yaml: %v", err)
	}
	t.Setenv("OMNAI_ENGINE", "claude")
	t.Setenv("OMNAI_MAX_ATTEMPTS", "7")

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Engine != "claude" {
		t.Fatalf("Engine: got %q want claude", s.Engine)
	}
	if s.MaxAttempts != 7 {
		t.Fatalf("MaxAttempts: got %d want 7", s.MaxAttempts)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "OMNAI_MODEL=qwen2.5-coder:7b\nOMNAI_TIMEOUT_SEC=30\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// godotenv only fills unset variables; make sure they are absent, and
	// restore whatever the host had after the test.
	for _, key := range []string{"OMNAI_MODEL", "OMNAI_TIMEOUT_SEC"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Model != "qwen2.5-coder:7b" {
		t.Fatalf("Model: got %q", s.Model)
	}
	if s.Timeout != 30*time.Second {
		t.Fatalf("Timeout: got %v", s.Timeout)
	}
}

func TestLoad_InvalidNumberSurfacesError(t *testing.T) {
	t.Setenv("OMNAI_MAX_TOKENS", "not-a-number")

	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("Load: expected error for invalid OMNAI_MAX_TOKENS")
	}
}

func TestLoad_MalformedYAMLSurfacesError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "omnai.yaml"), []byte("engine: [unclosed\n"), 0o644); err != nil {
		t.Fatalf("write omnai.yaml: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("Load: expected error for malformed omnai.yaml")
	}
}
