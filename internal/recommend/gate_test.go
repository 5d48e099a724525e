package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelfwise/librarian/internal/index"
)

func candidatesWithBest(distance float64) []index.Candidate {
	return []index.Candidate{
		{Title: "First", Distance: distance},
		{Title: "Second", Distance: distance + 0.1},
	}
}

func TestGateAdmit(t *testing.T) {
	gate := Gate{ShortQueryMaxTokens: 3, FarDistanceCutoff: 0.75}

	tests := []struct {
		name     string
		query    string
		distance float64
		want     bool
	}{
		{"short and far is rejected", "x", 0.9, false},
		{"short but close is admitted", "x", 0.3, true},
		{"long and far is admitted", "a sweeping story about grief and healing", 0.95, true},
		{"long and close is admitted", "a sweeping story about grief and healing", 0.2, true},
		{"exactly at cutoff is not far", "x", 0.75, true},
		{"exactly max tokens is not short", "dark gothic fantasy", 0.9, true},
		{"two tokens is short", "dark gothic", 0.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gate.Admit(tt.query, candidatesWithBest(tt.distance))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGateRejectsEmptyCandidates(t *testing.T) {
	gate := Gate{ShortQueryMaxTokens: 3, FarDistanceCutoff: 0.75}
	assert.False(t, gate.Admit("anything at all here", nil))
}
