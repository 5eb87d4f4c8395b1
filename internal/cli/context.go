package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var sessionID string

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Track context health for a long-running session",
	Long: "Rot-signal tracking for long agentic sessions: repetition,\n" +
		"contradiction, forgetting, hallucination, and scope creep, plus a\n" +
		"token-budget estimate and checkpoint snapshots.",
}

func init() {
	contextCmd.PersistentFlags().StringVarP(&sessionID, "session", "S", "default", "Session id")

	contextCmd.AddCommand(
		contextInitCmd(),
		contextCheckRepetitionCmd(),
		contextCheckHallucinationCmd(),
		contextCheckScopeCmd(),
		contextCheckForgettingCmd(),
		contextRecordContradictionCmd(),
		contextTrackTokensCmd(),
		contextCalculateCmd(),
		contextStatusCmd(),
		contextCheckpointCmd(),
		contextRestoreCmd(),
		contextReportCmd(),
	)
	RootCmd.AddCommand(contextCmd)
}

func contextInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the session document if it does not exist",
		Run: func(cmd *cobra.Command, args []string) {
			t := newTracker(loadSettings())
			doc, err := t.Init(sessionID)
			if err != nil {
				exitErr("init session", err)
			}
			fmt.Printf("session %s: %s (score %d)\n", doc.SessionID, doc.Status, doc.QualityScore)
		},
	}
}

func contextCheckRepetitionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-repetition <content>",
		Short: "Flag output content seen three or more times this session",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			t := newTracker(loadSettings())
			detected, err := t.CheckRepetition(sessionID, args[0])
			if err != nil {
				exitErr("check repetition", err)
			}
			printDetected("repetition", detected)
		},
	}
}

func contextCheckHallucinationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-hallucination <path>",
		Short: "Flag a referenced path that does not exist",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			op, _ := cmd.Flags().GetString("op")
			t := newTracker(loadSettings())
			detected, err := t.CheckHallucination(sessionID, args[0], op)
			if err != nil {
				exitErr("check hallucination", err)
			}
			printDetected("hallucination", detected)
		},
	}
	cmd.Flags().String("op", "read", "Operation tag: read or write (write skips the check)")
	return cmd
}

func contextCheckScopeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-scope <path>",
		Short: "Flag a path outside the declared scope allow-list",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			t := newTracker(loadSettings())
			detected, err := t.CheckScope(sessionID, args[0])
			if err != nil {
				exitErr("check scope", err)
			}
			printDetected("scope creep", detected)
		},
	}
}

func contextCheckForgettingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-forgetting <question>",
		Short: "Flag a question already answered in the transcript",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			transcript, _ := cmd.Flags().GetString("transcript")
			s := loadSettings()
			if transcript == "" {
				transcript = filepath.Join(statePath(s), "transcript_"+sessionID+".md")
			}
			t := newTracker(s)
			detected, err := t.CheckForgetting(sessionID, args[0], transcript)
			if err != nil {
				exitErr("check forgetting", err)
			}
			printDetected("forgetting", detected)
		},
	}
	cmd.Flags().String("transcript", "", "Transcript file to search (default: <state dir>/transcript_<session>.md)")
	return cmd
}

func contextRecordContradictionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record-contradiction <detail>",
		Short: "Record an observed contradiction",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			t := newTracker(loadSettings())
			if err := t.RecordContradiction(sessionID, args[0]); err != nil {
				exitErr("record contradiction", err)
			}
			printDetected("contradiction", true)
		},
	}
}

func contextTrackTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track-tokens",
		Short: "Accumulate estimated token usage for the session",
		Run: func(cmd *cobra.Command, args []string) {
			input, _ := cmd.Flags().GetString("input")
			output, _ := cmd.Flags().GetString("output")
			t := newTracker(loadSettings())
			doc, err := t.TrackTokens(sessionID, input, output)
			if err != nil {
				exitErr("track tokens", err)
			}
			fmt.Printf("~%d in / ~%d out (%.0f%% of budget)\n",
				doc.TokenTracking.EstimatedInput,
				doc.TokenTracking.EstimatedOutput,
				doc.TokenTracking.Utilization*100)
		},
	}
	cmd.Flags().String("input", "", "Prompt text to count as input")
	cmd.Flags().String("output", "", "Response text to count as output")
	return cmd
}

func contextCalculateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calculate",
		Short: "Recompute the quality score and persist it",
		Run: func(cmd *cobra.Command, args []string) {
			t := newTracker(loadSettings())
			doc, err := t.Calculate(sessionID)
			if err != nil {
				exitErr("calculate", err)
			}
			fmt.Printf("%s (score %d): %s\n", doc.Status, doc.QualityScore, doc.Recommendation)
		},
	}
}

func contextStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the session document as JSON",
		Run: func(cmd *cobra.Command, args []string) {
			t := newTracker(loadSettings())
			doc, err := t.Status(sessionID)
			if err != nil {
				exitErr("status", err)
			}
			b, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				exitErr("encode status", err)
			}
			fmt.Println(string(b))
		},
	}
}

func contextCheckpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Snapshot the session and reset the short-term window",
		Run: func(cmd *cobra.Command, args []string) {
			reason, _ := cmd.Flags().GetString("reason")
			t := newTracker(loadSettings())
			rec, err := t.Checkpoint(sessionID, reason, workDir)
			if err != nil {
				exitErr("checkpoint", err)
			}
			fmt.Printf("checkpoint %s created (score at checkpoint: %d)\n", rec.ID, rec.Score)
		},
	}
	cmd.Flags().String("reason", "manual", "Why this checkpoint was taken")
	return cmd
}

func contextRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <checkpoint-id>",
		Short: "Restore session-state and plan files from a checkpoint",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			t := newTracker(loadSettings())
			if err := t.Restore(args[0], workDir); err != nil {
				exitErr("restore", err)
			}
			fmt.Printf("restored session files from checkpoint %s\n", args[0])
		},
	}
}

func contextReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print a human-readable session health report",
		Run: func(cmd *cobra.Command, args []string) {
			t := newTracker(loadSettings())
			out, err := t.Report(sessionID)
			if err != nil {
				exitErr("report", err)
			}
			fmt.Print(out)
		},
	}
}

func printDetected(signal string, detected bool) {
	if detected {
		fmt.Printf("%s detected\n", signal)
		return
	}
	fmt.Printf("no %s detected\n", signal)
}
