package health

import (
	"testing"
	"time"
)

func scored(signals RotSignals, tokens TokenTracking) *SessionHealth {
	doc := newSession("s", time.Now())
	doc.RotSignals = signals
	doc.TokenTracking = tokens
	recalculate(doc, 200_000, 0.70, 0.85)
	return doc
}

func TestRecalculate_CleanSessionIsHealthy(t *testing.T) {
	doc := scored(RotSignals{}, TokenTracking{})
	if doc.QualityScore != 100 || doc.Status != StatusHealthy {
		t.Fatalf("got %d/%s want 100/HEALTHY", doc.QualityScore, doc.Status)
	}
	if doc.Recommendation != recommendations[StatusHealthy] {
		t.Fatalf("Recommendation: got %q", doc.Recommendation)
	}
}

func TestRecalculate_WeightedPenalties(t *testing.T) {
	// 2 repetitions and 1 hallucination: 100 - (2*15 + 25) = 45, CRITICAL.
	doc := scored(RotSignals{
		Repetition:    RepetitionSignal{Count: 2},
		Hallucination: InstanceSignal{Count: 1},
	}, TokenTracking{})
	if doc.QualityScore != 45 {
		t.Fatalf("score: got %d want 45", doc.QualityScore)
	}
	if doc.Status != StatusCritical {
		t.Fatalf("status: got %s want CRITICAL", doc.Status)
	}
}

func TestRecalculate_StatusBands(t *testing.T) {
	cases := []struct {
		signals RotSignals
		score   int
		status  Status
	}{
		{RotSignals{Contradiction: InstanceSignal{Count: 1}}, 80, StatusHealthy},
		{RotSignals{ScopeCreep: ScopeSignal{Count: 5}}, 75, StatusDegraded},
		{RotSignals{Contradiction: InstanceSignal{Count: 2}}, 60, StatusDegraded},
		{RotSignals{Contradiction: InstanceSignal{Count: 3}}, 40, StatusCritical},
		{RotSignals{Hallucination: InstanceSignal{Count: 3}}, 25, StatusAbort},
		{RotSignals{Hallucination: InstanceSignal{Count: 5}}, 0, StatusAbort},
	}
	for _, tc := range cases {
		doc := scored(tc.signals, TokenTracking{})
		if doc.QualityScore != tc.score || doc.Status != tc.status {
			t.Fatalf("signals %+v: got %d/%s want %d/%s",
				tc.signals, doc.QualityScore, doc.Status, tc.score, tc.status)
		}
	}
}

func TestRecalculate_ScoreFlooredAtZero(t *testing.T) {
	doc := scored(RotSignals{Hallucination: InstanceSignal{Count: 10}}, TokenTracking{})
	if doc.QualityScore != 0 {
		t.Fatalf("score: got %d want 0", doc.QualityScore)
	}
}

func TestRecalculate_TokenWarningDowngradesHealthyOnly(t *testing.T) {
	// 75% utilization on a clean session: HEALTHY -> DEGRADED, -15.
	doc := scored(RotSignals{}, TokenTracking{EstimatedInput: 100_000, EstimatedOutput: 50_000})
	if doc.TokenTracking.Utilization != 0.75 {
		t.Fatalf("utilization: got %v want 0.75", doc.TokenTracking.Utilization)
	}
	if doc.Status != StatusDegraded || doc.QualityScore != 85 {
		t.Fatalf("got %d/%s want 85/DEGRADED", doc.QualityScore, doc.Status)
	}

	// Same utilization on an already-DEGRADED session: no extra penalty.
	doc = scored(RotSignals{Contradiction: InstanceSignal{Count: 2}},
		TokenTracking{EstimatedInput: 150_000})
	if doc.Status != StatusDegraded || doc.QualityScore != 60 {
		t.Fatalf("got %d/%s want 60/DEGRADED", doc.QualityScore, doc.Status)
	}
}

func TestRecalculate_TokenCriticalForcesWorseStatus(t *testing.T) {
	// 90% utilization on a clean session: CRITICAL, 100-30=70.
	doc := scored(RotSignals{}, TokenTracking{EstimatedInput: 180_000})
	if doc.Status != StatusCritical || doc.QualityScore != 70 {
		t.Fatalf("got %d/%s want 70/CRITICAL", doc.QualityScore, doc.Status)
	}

	// An ABORT verdict is never improved by the token layer.
	doc = scored(RotSignals{Hallucination: InstanceSignal{Count: 3}},
		TokenTracking{EstimatedInput: 180_000})
	if doc.Status != StatusAbort {
		t.Fatalf("status: got %s want ABORT", doc.Status)
	}
	if doc.QualityScore != 0 {
		t.Fatalf("score: got %d want 0 (25 - 30 floored)", doc.QualityScore)
	}
}

func TestRecalculate_PureFunctionOfCounters(t *testing.T) {
	doc := scored(RotSignals{Forgetting: InstanceSignal{Count: 1}}, TokenTracking{})
	first := doc.QualityScore
	// Recomputing without changing counters never drifts.
	recalculate(doc, 200_000, 0.70, 0.85)
	recalculate(doc, 200_000, 0.70, 0.85)
	if doc.QualityScore != first {
		t.Fatalf("score drifted: %d -> %d", first, doc.QualityScore)
	}
}
