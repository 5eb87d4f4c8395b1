package health

import (
	"fmt"
	"strings"
)

// Report renders a human-readable summary of one session.
func (t *Tracker) Report(id string) (string, error) {
	doc, err := t.store.Load(id)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session %s\n", doc.SessionID)
	fmt.Fprintf(&b, "  started:    %s\n", doc.Started.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "  last check: %s\n", doc.LastCheck.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "  status:     %s (score %d/100)\n", doc.Status, doc.QualityScore)
	fmt.Fprintf(&b, "  tokens:     ~%d in / ~%d out (%.0f%% of budget)\n",
		doc.TokenTracking.EstimatedInput,
		doc.TokenTracking.EstimatedOutput,
		doc.TokenTracking.Utilization*100)
	b.WriteString("  signals:\n")
	fmt.Fprintf(&b, "    repetition:    %d\n", doc.RotSignals.Repetition.Count)
	fmt.Fprintf(&b, "    contradiction: %d\n", doc.RotSignals.Contradiction.Count)
	fmt.Fprintf(&b, "    forgetting:    %d\n", doc.RotSignals.Forgetting.Count)
	fmt.Fprintf(&b, "    hallucination: %d\n", doc.RotSignals.Hallucination.Count)
	fmt.Fprintf(&b, "    scope creep:   %d\n", doc.RotSignals.ScopeCreep.Count)
	if len(doc.RotSignals.ScopeCreep.Paths) > 0 {
		b.WriteString("  out-of-scope paths:\n")
		for _, p := range doc.RotSignals.ScopeCreep.Paths {
			fmt.Fprintf(&b, "    %s\n", p)
		}
	}
	if len(doc.Checkpoints) > 0 {
		b.WriteString("  checkpoints:\n")
		for _, cp := range doc.Checkpoints {
			fmt.Fprintf(&b, "    %s  %s  score=%d  %s\n",
				cp.ID, cp.Timestamp.Format("2006-01-02 15:04"), cp.Score, cp.Reason)
		}
	}
	fmt.Fprintf(&b, "  recommendation: %s\n", doc.Recommendation)
	return b.String(), nil
}
