// Package health tracks context rot in long-running agentic sessions:
// repetition, contradiction, forgetting, hallucination, and scope creep,
// plus a token-budget estimate. It is an observability path invoked by the
// caller around generation steps; it never gates dispatch.
package health

import "time"

type Status string

const (
	StatusHealthy  Status = "HEALTHY"
	StatusDegraded Status = "DEGRADED"
	StatusCritical Status = "CRITICAL"
	StatusAbort    Status = "ABORT"
)

const (
	schemaVersion = 1

	// Repetition detection parameters.
	hashPrefixChars     = 500
	minMeaningfulChars  = 50
	repetitionThreshold = 3
	hashWindowSize      = 10
)

type TokenTracking struct {
	EstimatedInput  int     `json:"estimated_input"`
	EstimatedOutput int     `json:"estimated_output"`
	Utilization     float64 `json:"utilization"`
}

// Instance is one recorded occurrence of a rot signal with evidence.
type Instance struct {
	Detail string    `json:"detail"`
	At     time.Time `json:"at"`
}

// RepetitionSignal keeps a bounded rolling window of recent content hashes;
// the full history lives in the append-only hash log, not in this document.
type RepetitionSignal struct {
	Count      int      `json:"count"`
	LastHashes []string `json:"last_hashes,omitempty"`
}

type InstanceSignal struct {
	Count     int        `json:"count"`
	Instances []Instance `json:"instances,omitempty"`
}

// ScopeSignal records the deduplicated set of out-of-scope paths touched.
type ScopeSignal struct {
	Count int      `json:"count"`
	Paths []string `json:"paths,omitempty"`
}

type RotSignals struct {
	Repetition    RepetitionSignal `json:"repetition"`
	Contradiction InstanceSignal   `json:"contradiction"`
	Forgetting    InstanceSignal   `json:"forgetting"`
	Hallucination InstanceSignal   `json:"hallucination"`
	ScopeCreep    ScopeSignal      `json:"scope_creep"`
}

type CheckpointRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason"`
	Score     int       `json:"score"`
}

// SessionHealth is the per-session JSON document. QualityScore, Status, and
// Recommendation are always recomputed from the counters by recalculate;
// nothing mutates them ad hoc.
type SessionHealth struct {
	Version        int                `json:"version"`
	SessionID      string             `json:"session_id"`
	Started        time.Time          `json:"started"`
	LastCheck      time.Time          `json:"last_check"`
	TokenTracking  TokenTracking      `json:"token_tracking"`
	RotSignals     RotSignals         `json:"rot_signals"`
	QualityScore   int                `json:"quality_score"`
	Status         Status             `json:"status"`
	Recommendation string             `json:"recommendation"`
	Checkpoints    []CheckpointRecord `json:"checkpoints,omitempty"`
}

func newSession(id string, now time.Time) *SessionHealth {
	return &SessionHealth{
		Version:        schemaVersion,
		SessionID:      id,
		Started:        now,
		LastCheck:      now,
		QualityScore:   100,
		Status:         StatusHealthy,
		Recommendation: recommendations[StatusHealthy],
	}
}
