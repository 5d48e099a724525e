package recommend

import (
	"strings"

	"github.com/shelfwise/librarian/internal/index"
)

// Gate is the confidence gate: it pre-emptively refuses a query only when the
// query is short AND its best match is far.
//
// Short queries carry too little signal for retrieval distance to be
// meaningful; long queries earn the benefit of the doubt and are deferred to
// the judge, which sees richer context and may still abstain. The joint
// condition is the strongest signal of true nonsense, so only it blocks.
type Gate struct {
	// ShortQueryMaxTokens: queries with fewer tokens than this count as short.
	ShortQueryMaxTokens int

	// FarDistanceCutoff: best distances above this count as far.
	FarDistanceCutoff float64
}

// Admit decides whether retrieval results are trustworthy enough to hand to
// the judge. Candidates must be non-empty and ascending by distance.
func (g Gate) Admit(query string, candidates []index.Candidate) bool {
	if len(candidates) == 0 {
		return false
	}
	veryShort := len(strings.Fields(query)) < g.ShortQueryMaxTokens
	tooFar := candidates[0].Distance > g.FarDistanceCutoff
	return !(veryShort && tooFar)
}
