// Package config resolves omnai settings from defaults, an optional
// omnai.yaml in the working directory, an optional .env file, and OMNAI_*
// environment variables, in that order (later wins).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	// Engine/model selection. Empty engine means auto-detect; empty model
	// means use the engine default.
	Engine string
	Model  string

	// State layout per working directory.
	StateDir         string
	SessionStateFile string
	SessionPlanFile  string

	// Token budget.
	MaxTokens     int
	WarnThreshold float64
	CritThreshold float64
	CharsPerToken int

	// Retry and invocation.
	MaxAttempts       int
	InitialDelay      time.Duration
	BackoffMultiplier float64
	Timeout           time.Duration
}

func Defaults() Settings {
	return Settings{
		StateDir:          ".omnai/state",
		SessionStateFile:  "session_state.md",
		SessionPlanFile:   "session_plan.md",
		MaxTokens:         200_000,
		WarnThreshold:     0.70,
		CritThreshold:     0.85,
		CharsPerToken:     4,
		MaxAttempts:       3,
		InitialDelay:      5 * time.Second,
		BackoffMultiplier: 2.0,
		Timeout:           120 * time.Second,
	}
}

// fileSettings mirrors Settings for omnai.yaml. Pointer fields distinguish
// "absent" from zero so the file only overrides what it sets.
type fileSettings struct {
	Engine            *string  `yaml:"engine,omitempty"`
	Model             *string  `yaml:"model,omitempty"`
	StateDir          *string  `yaml:"state_dir,omitempty"`
	SessionStateFile  *string  `yaml:"session_state_file,omitempty"`
	SessionPlanFile   *string  `yaml:"session_plan_file,omitempty"`
	MaxTokens         *int     `yaml:"max_tokens,omitempty"`
	WarnThreshold     *float64 `yaml:"warn_threshold,omitempty"`
	CritThreshold     *float64 `yaml:"crit_threshold,omitempty"`
	CharsPerToken     *int     `yaml:"chars_per_token,omitempty"`
	MaxAttempts       *int     `yaml:"max_attempts,omitempty"`
	InitialDelaySec   *int     `yaml:"initial_delay_sec,omitempty"`
	BackoffMultiplier *float64 `yaml:"backoff_multiplier,omitempty"`
	TimeoutSec        *int     `yaml:"timeout_sec,omitempty"`
}

// Load resolves settings for one working directory.
func Load(dir string) (Settings, error) {
	s := Defaults()

	if err := applyYAML(&s, filepath.Join(dir, "omnai.yaml")); err != nil {
		return Settings{}, err
	}

	// .env is optional; absence is not an error. Values land in the process
	// environment and are picked up by applyEnv below.
	if envPath := filepath.Join(dir, ".env"); fileExists(envPath) {
		if err := godotenv.Load(envPath); err != nil {
			return Settings{}, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	if err := applyEnv(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func applyYAML(s *Settings, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var f fileSettings
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if f.Engine != nil {
		s.Engine = *f.Engine
	}
	if f.Model != nil {
		s.Model = *f.Model
	}
	if f.StateDir != nil {
		s.StateDir = *f.StateDir
	}
	if f.SessionStateFile != nil {
		s.SessionStateFile = *f.SessionStateFile
	}
	if f.SessionPlanFile != nil {
		s.SessionPlanFile = *f.SessionPlanFile
	}
	if f.MaxTokens != nil {
		s.MaxTokens = *f.MaxTokens
	}
	if f.WarnThreshold != nil {
		s.WarnThreshold = *f.WarnThreshold
	}
	if f.CritThreshold != nil {
		s.CritThreshold = *f.CritThreshold
	}
	if f.CharsPerToken != nil {
		s.CharsPerToken = *f.CharsPerToken
	}
	if f.MaxAttempts != nil {
		s.MaxAttempts = *f.MaxAttempts
	}
	if f.InitialDelaySec != nil {
		s.InitialDelay = time.Duration(*f.InitialDelaySec) * time.Second
	}
	if f.BackoffMultiplier != nil {
		s.BackoffMultiplier = *f.BackoffMultiplier
	}
	if f.TimeoutSec != nil {
		s.Timeout = time.Duration(*f.TimeoutSec) * time.Second
	}
	return nil
}

func applyEnv(s *Settings) error {
	var err error
	setStr(&s.Engine, "OMNAI_ENGINE")
	setStr(&s.Model, "OMNAI_MODEL")
	setStr(&s.StateDir, "OMNAI_STATE_DIR")
	setStr(&s.SessionStateFile, "OMNAI_SESSION_STATE_FILE")
	setStr(&s.SessionPlanFile, "OMNAI_SESSION_PLAN_FILE")
	err = firstErr(err, setInt(&s.MaxTokens, "OMNAI_MAX_TOKENS"))
	err = firstErr(err, setFloat(&s.WarnThreshold, "OMNAI_WARN_THRESHOLD"))
	err = firstErr(err, setFloat(&s.CritThreshold, "OMNAI_CRIT_THRESHOLD"))
	err = firstErr(err, setInt(&s.CharsPerToken, "OMNAI_CHARS_PER_TOKEN"))
	err = firstErr(err, setInt(&s.MaxAttempts, "OMNAI_MAX_ATTEMPTS"))
	err = firstErr(err, setSeconds(&s.InitialDelay, "OMNAI_INITIAL_DELAY_SEC"))
	err = firstErr(err, setFloat(&s.BackoffMultiplier, "OMNAI_BACKOFF_MULTIPLIER"))
	err = firstErr(err, setSeconds(&s.Timeout, "OMNAI_TIMEOUT_SEC"))
	return err
}

func setStr(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid number %q", key, v)
	}
	*dst = f
	return nil
}

func setSeconds(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid seconds %q", key, v)
	}
	*dst = time.Duration(n) * time.Second
	return nil
}

func firstErr(a error, b error) error {
	if a != nil {
		return a
	}
	return b
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
