package health

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
)

// CheckpointSnapshot is the immutable record written per checkpoint. The
// session-state and session-plan documents are captured as opaque base64
// blobs; the tracker never interprets them.
type CheckpointSnapshot struct {
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason"`
	Score     int       `json:"score"`
	StateB64  string    `json:"state_b64,omitempty"`
	PlanB64   string    `json:"plan_b64,omitempty"`
}

// Checkpoint snapshots the session and starts a fresh short-term window:
// repetition counters and the hash log reset, score returns to 100.
// Hallucination, forgetting, scope-creep, and contradiction history is
// preserved as a long-term trust signal.
func (t *Tracker) Checkpoint(id string, reason string, workDir string) (CheckpointRecord, error) {
	doc, err := t.store.Load(id)
	if err != nil {
		return CheckpointRecord{}, err
	}

	stateB64, err := captureFile(filepath.Join(workDir, t.cfg.SessionStateFile))
	if err != nil {
		return CheckpointRecord{}, err
	}
	planB64, err := captureFile(filepath.Join(workDir, t.cfg.SessionPlanFile))
	if err != nil {
		return CheckpointRecord{}, err
	}

	now := t.now().UTC()
	snap := &CheckpointSnapshot{
		Version:   schemaVersion,
		ID:        ulid.Make().String(),
		SessionID: doc.SessionID,
		Timestamp: now,
		Reason:    reason,
		Score:     doc.QualityScore,
		StateB64:  stateB64,
		PlanB64:   planB64,
	}
	if _, err := t.store.WriteCheckpoint(snap); err != nil {
		return CheckpointRecord{}, err
	}

	rec := CheckpointRecord{ID: snap.ID, Timestamp: now, Reason: reason, Score: doc.QualityScore}
	doc.Checkpoints = append(doc.Checkpoints, rec)

	doc.RotSignals.Repetition.Count = 0
	doc.RotSignals.Repetition.LastHashes = nil
	if err := t.store.ResetHashLog(id); err != nil {
		return CheckpointRecord{}, err
	}

	doc.LastCheck = now
	doc.QualityScore = 100
	doc.Status = StatusHealthy
	doc.Recommendation = recommendations[StatusHealthy]
	if err := t.store.Save(doc); err != nil {
		return CheckpointRecord{}, err
	}
	return rec, nil
}

// Restore rewrites the session-state and session-plan documents from a
// checkpoint snapshot. The health document itself is not rolled back.
func (t *Tracker) Restore(checkpointID string, workDir string) error {
	snap, err := t.store.ReadCheckpoint(checkpointID)
	if err != nil {
		return err
	}
	if err := restoreFile(filepath.Join(workDir, t.cfg.SessionStateFile), snap.StateB64); err != nil {
		return err
	}
	return restoreFile(filepath.Join(workDir, t.cfg.SessionPlanFile), snap.PlanB64)
}

// captureFile base64-encodes a document, treating absence as empty.
func captureFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func restoreFile(path string, b64 string) error {
	if b64 == "" {
		return nil
	}
	b, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("decode checkpoint blob for %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("restore %s: %w", path, err)
	}
	return nil
}
