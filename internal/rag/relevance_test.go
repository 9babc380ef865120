package rag

import "testing"

func TestRelevanceGate_IsRelevant(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		results   []RetrievalResult
		want      bool
	}{
		{"empty results", 0.7, nil, false},
		{"best below threshold", 0.7, []RetrievalResult{{Distance: 0.3}}, true},
		{"best above threshold", 0.7, []RetrievalResult{{Distance: 0.9}}, false},
		{"best equals threshold", 0.7, []RetrievalResult{{Distance: 0.7}}, true},
		{"only first result counts", 0.7, []RetrievalResult{{Distance: 0.9}, {Distance: 0.1}}, false},
		{"zero threshold exact match", 0, []RetrievalResult{{Distance: 0}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewRelevanceGate(tt.threshold)
			if got := gate.IsRelevant(tt.results); got != tt.want {
				t.Errorf("IsRelevant() = %v, want %v", got, tt.want)
			}
		})
	}
}
