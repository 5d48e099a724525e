package recommend

// RefusalKind enumerates the user-input refusals. Refusals are values that
// flow through Decision, not errors: they mean the system considered the
// query and declined, as opposed to a provider or internal fault.
type RefusalKind string

const (
	RefusalEmptyQuery   RefusalKind = "EMPTY_QUERY"
	RefusalGibberish    RefusalKind = "GIBBERISH"
	RefusalNoCloseMatch RefusalKind = "NO_CLOSE_MATCH"
	RefusalAbstain      RefusalKind = "ABSTAIN"
)

// Recommendation is the assembled successful answer.
type Recommendation struct {
	Title   string `json:"title"`
	Reason  string `json:"reason"`
	Summary string `json:"summary"`
}

// Decision is the outcome of one request: exactly one of Recommendation or
// Refusal is set, never both.
type Decision struct {
	Recommendation *Recommendation
	Refusal        RefusalKind
}

// Selected wraps a recommendation in a Decision.
func Selected(rec Recommendation) Decision {
	return Decision{Recommendation: &rec}
}

// Refused builds a refusal Decision.
func Refused(kind RefusalKind) Decision {
	return Decision{Refusal: kind}
}

// IsRefusal reports whether the decision is a refusal.
func (d Decision) IsRefusal() bool {
	return d.Refusal != ""
}
