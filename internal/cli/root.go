// Package cli implements the omnai command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/omnai-sh/omnai/internal/config"
	"github.com/omnai-sh/omnai/internal/health"
)

var workDir string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "omnai",
	Short: "One front door for AI coding CLIs",
	Long: "omnai dispatches prompts to whichever AI coding CLI is installed\n" +
		"(claude, opencode, codex, ollama, and friends), validates models,\n" +
		"retries transient failures, and tracks context health for long sessions.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&workDir, "dir", "C", ".", "Working directory for config and state")
}

func loadSettings() config.Settings {
	s, err := config.Load(workDir)
	if err != nil {
		exitErr("load settings", err)
	}
	return s
}

func newTracker(s config.Settings) *health.Tracker {
	return health.NewTracker(health.NewStore(statePath(s)), s)
}

func statePath(s config.Settings) string {
	if filepath.IsAbs(s.StateDir) {
		return s.StateDir
	}
	return filepath.Join(workDir, s.StateDir)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
