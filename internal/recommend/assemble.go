package recommend

import (
	"fmt"

	"github.com/shelfwise/librarian/internal/index"
)

// assemble joins the judge's chosen title back to the metadata already carried
// on the candidates — no second index round-trip — and builds the final
// answer with a justification referencing the original query verbatim.
//
// A title not present among the candidates is a judge contract violation and
// yields ErrUnknownIdentity.
func assemble(title, query string, candidates []index.Candidate) (Recommendation, error) {
	for _, c := range candidates {
		if c.Title == title {
			return Recommendation{
				Title:   c.Title,
				Reason:  fmt.Sprintf("Selected based on theme similarity to your request: %q.", query),
				Summary: c.FullText,
			}, nil
		}
	}
	return Recommendation{}, fmt.Errorf("%w: %q", ErrUnknownIdentity, title)
}
