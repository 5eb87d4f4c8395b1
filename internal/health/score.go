package health

// Per-occurrence penalty for each rot signal. Hallucination is weighted
// hardest: a fabricated file reference poisons everything built on it.
const (
	weightRepetition    = 15
	weightContradiction = 20
	weightForgetting    = 15
	weightHallucination = 25
	weightScopeCreep    = 5
)

// Score adjustments applied by the token layer on top of the signal score.
const (
	tokenCritPenalty = 30
	tokenWarnPenalty = 15
)

var recommendations = map[Status]string{
	StatusHealthy:  "Context is healthy. Continue working.",
	StatusDegraded: "Quality is degrading. Checkpoint soon and tighten the task scope.",
	StatusCritical: "Context rot detected. Checkpoint now and compact the context.",
	StatusAbort:    "Session is unrecoverable. Checkpoint, reset the context, and resume from the plan.",
}

// recalculate derives QualityScore, Status, Recommendation, and token
// utilization from the signal counters. It is the only mutator of those
// fields, so the score is always a pure function of the counters.
func recalculate(doc *SessionHealth, maxTokens int, warnThreshold, critThreshold float64) {
	s := &doc.RotSignals
	penalty := s.Repetition.Count*weightRepetition +
		s.Contradiction.Count*weightContradiction +
		s.Forgetting.Count*weightForgetting +
		s.Hallucination.Count*weightHallucination +
		s.ScopeCreep.Count*weightScopeCreep

	score := 100 - penalty
	if score < 0 {
		score = 0
	}

	status := StatusAbort
	switch {
	case score >= 80:
		status = StatusHealthy
	case score >= 60:
		status = StatusDegraded
	case score >= 40:
		status = StatusCritical
	}

	util := 0.0
	if maxTokens > 0 {
		total := doc.TokenTracking.EstimatedInput + doc.TokenTracking.EstimatedOutput
		util = float64(total) / float64(maxTokens)
	}
	doc.TokenTracking.Utilization = util

	// The token layer only worsens the signal verdict, never improves it.
	switch {
	case util >= critThreshold:
		if status == StatusHealthy || status == StatusDegraded {
			status = StatusCritical
		}
		score -= tokenCritPenalty
	case util >= warnThreshold:
		if status == StatusHealthy {
			status = StatusDegraded
			score -= tokenWarnPenalty
		}
	}
	if score < 0 {
		score = 0
	}

	doc.QualityScore = score
	doc.Status = status
	doc.Recommendation = recommendations[status]
}
