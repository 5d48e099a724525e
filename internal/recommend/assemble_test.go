package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/librarian/internal/index"
)

func TestAssemble(t *testing.T) {
	candidates := []index.Candidate{
		{Title: "Tide Songs", ShortProfile: "sea, longing", FullText: "A fisherman's daughter hears the sea sing.", Distance: 0.3},
		{Title: "Glass City", ShortProfile: "urban, mystery", FullText: "A detective in a transparent metropolis.", Distance: 0.5},
	}

	rec, err := assemble("Glass City", "noir mystery in a strange city", candidates)
	require.NoError(t, err)
	assert.Equal(t, "Glass City", rec.Title)
	assert.Equal(t, "A detective in a transparent metropolis.", rec.Summary)
	assert.Contains(t, rec.Reason, `"noir mystery in a strange city"`)
}

func TestAssembleUnknownIdentity(t *testing.T) {
	candidates := []index.Candidate{
		{Title: "Tide Songs", FullText: "…", Distance: 0.3},
	}

	_, err := assemble("Invented Title", "anything", candidates)
	assert.ErrorIs(t, err, ErrUnknownIdentity)
}

func TestDecisionShape(t *testing.T) {
	sel := Selected(Recommendation{Title: "Tide Songs"})
	assert.False(t, sel.IsRefusal())
	assert.NotNil(t, sel.Recommendation)

	ref := Refused(RefusalAbstain)
	assert.True(t, ref.IsRefusal())
	assert.Nil(t, ref.Recommendation)
}
