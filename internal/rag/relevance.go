package rag

// RelevanceGate decides whether retrieved chunks are close enough to ground an answer.
type RelevanceGate struct {
	// Threshold is the maximum distance of the best result.
	Threshold float64
}

// NewRelevanceGate creates a gate with the given distance threshold.
func NewRelevanceGate(threshold float64) RelevanceGate {
	return RelevanceGate{Threshold: threshold}
}

// IsRelevant reports whether the best (first) result is within the threshold.
// Empty results are not relevant.
func (g RelevanceGate) IsRelevant(results []RetrievalResult) bool {
	return len(results) > 0 && results[0].Distance <= g.Threshold
}
