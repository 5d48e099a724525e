package judge

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/librarian/internal/index"
)

func testCandidates() []index.Candidate {
	return []index.Candidate{
		{Title: "The Wizard's Pact", ShortProfile: "magic, friendship", Distance: 0.21},
		{Title: "Iron Harvest", ShortProfile: "war, machines", Distance: 0.58},
	}
}

func TestParse(t *testing.T) {
	candidates := testCandidates()

	tests := []struct {
		name string
		raw  string
		want Verdict
	}{
		{"exact title", "The Wizard's Pact", Verdict{Title: "The Wizard's Pact"}},
		{"title with whitespace", "  Iron Harvest \n", Verdict{Title: "Iron Harvest"}},
		{"title in quotes", `"Iron Harvest"`, Verdict{Title: "Iron Harvest"}},
		{"abstain token", "ABSTAIN", Verdict{Abstain: true}},
		{"abstain lowercase", "abstain", Verdict{Abstain: true}},
		{"fabricated title", "The Greatest Book Ever", Verdict{Abstain: true}},
		{"empty output", "", Verdict{Abstain: true}},
		{"chatty output", "I recommend The Wizard's Pact because...", Verdict{Abstain: true}},
		{"fenced title", "```\nIron Harvest\n```", Verdict{Title: "Iron Harvest"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw, candidates))
		})
	}
}

func TestParseNeverInventsTitles(t *testing.T) {
	// A case-mangled title is not an exact candidate identity; the parser
	// must abstain rather than coerce it.
	v := Parse("the wizard's pact", testCandidates())
	assert.True(t, v.Abstain)
	assert.Empty(t, v.Title)
}

func TestDecideRequiresCandidates(t *testing.T) {
	// Zero candidates is a caller bug, not a provider failure: the error must
	// not read as ErrUnavailable, which the HTTP layer maps to 502.
	j := New(nil, "test-model", 6, time.Second, nil)

	_, err := j.Decide(context.Background(), "any query", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestBuildPrompt(t *testing.T) {
	candidates := testCandidates()
	prompt := buildPrompt("a book about magic and friendship", candidates)

	assert.Contains(t, prompt, "Request: a book about magic and friendship")
	assert.Contains(t, prompt, "The Wizard's Pact: magic, friendship")
	assert.Contains(t, prompt, "Iron Harvest: war, machines")
	assert.Contains(t, prompt, "BestDistance: 0.210")
	assert.Contains(t, prompt, AbstainToken)
	// Full texts never enter the prompt; only titles and short profiles do.
	assert.Equal(t, 1, strings.Count(prompt, "The Wizard's Pact"))
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, "Iron Harvest", stripCodeFences("```\nIron Harvest\n```"))
	assert.Equal(t, "Iron Harvest", stripCodeFences("```text\nIron Harvest\n```"))
	assert.Equal(t, "plain", stripCodeFences("plain"))
}
