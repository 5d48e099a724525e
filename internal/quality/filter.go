// Package quality implements the input quality filter: cheap, pure heuristics
// that reject empty or keyboard-mash queries before any network call is made.
//
// Very short but otherwise clean queries pass this stage; the confidence gate
// downstream applies the stricter short-query policy where retrieval distance
// is available.
package quality

import (
	"regexp"
	"strings"
)

// Result classifies a raw query.
type Result int

const (
	// OK means the query may proceed to retrieval.
	OK Result = iota

	// EmptyQuery means the query is empty or whitespace-only.
	EmptyQuery

	// Gibberish means the query failed a gibberish or content-policy heuristic.
	Gibberish
)

// Latin letters including the common accented ranges.
const letterClass = `A-Za-z\x{00C0}-\x{024F}`

var (
	nonLetterOnly = regexp.MustCompile(`^[^` + letterClass + `]+$`)
	letterRe      = regexp.MustCompile(`[` + letterClass + `]`)
	consonantRun  = regexp.MustCompile(`(?i)[bcdfghjklmnpqrstvwxz]{6,}`)
	wordToken     = regexp.MustCompile(`[` + letterClass + `]{2,}`)
)

// unsafeWords is the content-policy word list. Matched as substrings,
// case-insensitive, mirroring the policy check that must run before any
// provider call.
var unsafeWords = []string{"idiot", "stupid", "fuck", "shit"}

// Classify inspects a raw query and returns its quality classification.
// It is a pure function with no side effects and no network access.
func Classify(query string) Result {
	s := strings.TrimSpace(query)
	if s == "" {
		return EmptyQuery
	}
	if containsUnsafeContent(s) {
		return Gibberish
	}
	if looksLikeGibberish(s) {
		return Gibberish
	}
	return OK
}

// looksLikeGibberish applies the keyboard-mash heuristics:
// only non-letter characters, a low letter ratio, an absurd consonant
// cluster, a long same-character run, or no word-like token at all.
func looksLikeGibberish(s string) bool {
	if nonLetterOnly.MatchString(s) {
		return true
	}
	letters := letterRe.FindAllString(s, -1)
	if float64(len(letters))/float64(max(1, len([]rune(s)))) < 0.5 {
		return true
	}
	if consonantRun.MatchString(s) {
		return true
	}
	if hasRepeatRun(s, 5) {
		return true
	}
	// Single- and two-character queries pass here; the confidence gate applies
	// the stricter short-query policy once retrieval distance is known.
	if len([]rune(s)) > 2 && !wordToken.MatchString(s) {
		return true
	}
	return false
}

// hasRepeatRun reports whether any rune repeats n or more times consecutively.
// RE2 has no backreferences, so this is a plain scan.
func hasRepeatRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
			if run >= n {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

func containsUnsafeContent(s string) bool {
	lower := strings.ToLower(s)
	for _, w := range unsafeWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
