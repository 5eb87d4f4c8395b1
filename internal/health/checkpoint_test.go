package health

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/omnai-sh/omnai/internal/config"
)

func checkpointTracker(t *testing.T) (*Tracker, string, string) {
	t.Helper()
	workDir := t.TempDir()
	stateDir := filepath.Join(workDir, ".omnai", "state")
	cfg := config.Defaults()
	cfg.StateDir = stateDir
	tr := NewTracker(NewStore(stateDir), cfg)
	if _, err := tr.Init("s1"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return tr, workDir, stateDir
}

func TestCheckpoint_ResetsRepetitionPreservesLongTermSignals(t *testing.T) {
	tr, workDir, _ := checkpointTracker(t)

	content := strings.Repeat("same output again and again. ", 4)
	for i := 0; i < 3; i++ {
		if _, err := tr.CheckRepetition("s1", content); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := tr.CheckHallucination("s1", filepath.Join(workDir, "ghost.go"), "read"); err != nil {
		t.Fatal(err)
	}
	if err := tr.RecordContradiction("s1", "contradicted earlier claim"); err != nil {
		t.Fatal(err)
	}

	rec, err := tr.Checkpoint("s1", "quality drop", workDir)
	if err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("checkpoint id empty")
	}

	doc, _ := tr.Status("s1")
	if doc.RotSignals.Repetition.Count != 0 || len(doc.RotSignals.Repetition.LastHashes) != 0 {
		t.Fatalf("repetition not reset: %+v", doc.RotSignals.Repetition)
	}
	if doc.RotSignals.Hallucination.Count != 1 {
		t.Fatalf("hallucination history lost: %d", doc.RotSignals.Hallucination.Count)
	}
	if doc.RotSignals.Contradiction.Count != 1 {
		t.Fatalf("contradiction history lost: %d", doc.RotSignals.Contradiction.Count)
	}
	if doc.QualityScore != 100 || doc.Status != StatusHealthy {
		t.Fatalf("post-checkpoint: got %d/%s want 100/HEALTHY", doc.QualityScore, doc.Status)
	}
	if len(doc.Checkpoints) != 1 || doc.Checkpoints[0].Reason != "quality drop" {
		t.Fatalf("checkpoint record: %+v", doc.Checkpoints)
	}

	// The hash log is gone: the same content starts a fresh count.
	detected, err := tr.CheckRepetition("s1", content)
	if err != nil {
		t.Fatal(err)
	}
	if detected {
		t.Fatal("repetition flagged immediately after checkpoint reset")
	}
}

func TestCheckpoint_RecordsScoreAtCheckpointTime(t *testing.T) {
	tr, workDir, _ := checkpointTracker(t)
	if _, err := tr.CheckHallucination("s1", filepath.Join(workDir, "ghost.go"), "read"); err != nil {
		t.Fatal(err)
	}

	rec, err := tr.Checkpoint("s1", "manual", workDir)
	if err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	if rec.Score != 75 {
		t.Fatalf("Score: got %d want 75", rec.Score)
	}
}

func TestCheckpoint_CapturesAndRestoresSessionFiles(t *testing.T) {
	tr, workDir, _ := checkpointTracker(t)
	statePath := filepath.Join(workDir, "session_state.md")
	planPath := filepath.Join(workDir, "session_plan.md")
	if err := os.WriteFile(statePath, []byte("# State\nstep 3 done\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(planPath, []byte("# Plan\n1. build\n2. test\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec, err := tr.Checkpoint("s1", "before risky step", workDir)
	if err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}

	if err := os.WriteFile(statePath, []byte("clobbered"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := tr.Restore(rec.ID, workDir); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	b, err := os.ReadFile(statePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "# State\nstep 3 done\n" {
		t.Fatalf("restored state: got %q", string(b))
	}
}

func TestCheckpoint_MissingSessionFilesAreEmptyBlobs(t *testing.T) {
	tr, workDir, stateDir := checkpointTracker(t)

	rec, err := tr.Checkpoint("s1", "manual", workDir)
	if err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	snap, err := NewStore(stateDir).ReadCheckpoint(rec.ID)
	if err != nil {
		t.Fatalf("ReadCheckpoint: %v", err)
	}
	if snap.StateB64 != "" || snap.PlanB64 != "" {
		t.Fatalf("blobs: got %q/%q want empty", snap.StateB64, snap.PlanB64)
	}
}
