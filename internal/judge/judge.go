// Package judge implements the LLM-assisted final selection step.
//
// The judge receives the raw query plus a bounded list of candidate titles and
// short profiles, and must answer with exactly one candidate title or the
// abstain token. Provider output is never trusted as a validated type: the
// parser coerces anything that is neither a known title nor the abstain token
// to Abstain (fail-closed, never fabricate a title).
package judge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/shelfwise/librarian/internal/index"
)

// AbstainToken is the distinguished reply meaning "no candidate genuinely
// matches". Distinct from a provider failure.
const AbstainToken = "ABSTAIN"

// ErrUnavailable indicates the judge provider call failed or timed out.
var ErrUnavailable = errors.New("judge unavailable")

// Verdict is the judge's decision: exactly one selected title, or abstain.
type Verdict struct {
	Title   string // selected candidate title; empty when Abstain
	Abstain bool
}

const systemPrompt = "You are a strict title selector. Choose exactly one title from the provided list. " +
	"Reply EXACTLY with '" + AbstainToken + "' only if the request is not about books at all or is pure gibberish. " +
	"Do NOT abstain solely because the BestDistance is moderately high; prefer the closest title. " +
	"Never invent a title."

// Judge selects one candidate via an LLM, or abstains.
type Judge struct {
	g             *genkit.Genkit
	modelName     string
	maxCandidates int
	timeout       time.Duration
	logger        *slog.Logger
}

// New creates a Judge. maxCandidates bounds how many candidates enter the
// prompt; timeout bounds the provider call.
func New(g *genkit.Genkit, modelName string, maxCandidates int, timeout time.Duration, logger *slog.Logger) *Judge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Judge{
		g:             g,
		modelName:     modelName,
		maxCandidates: maxCandidates,
		timeout:       timeout,
		logger:        logger,
	}
}

// Decide asks the model to pick one candidate title for the query.
// Returns ErrUnavailable on provider error or timeout; an unparseable reply
// is an Abstain verdict, not an error. Calling with zero candidates is a
// caller bug, reported as a plain error rather than a provider failure.
func (j *Judge) Decide(ctx context.Context, query string, candidates []index.Candidate) (Verdict, error) {
	if len(candidates) == 0 {
		return Verdict{}, errors.New("no candidates supplied")
	}

	bounded := candidates
	if j.maxCandidates > 0 && len(bounded) > j.maxCandidates {
		bounded = bounded[:j.maxCandidates]
	}

	genCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	resp, err := genkit.Generate(genCtx, j.g,
		ai.WithModelName(j.modelName),
		ai.WithSystem(systemPrompt),
		ai.WithPrompt(buildPrompt(query, bounded)),
	)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	verdict := Parse(resp.Text(), bounded)
	j.logger.Debug("judge verdict",
		"abstain", verdict.Abstain,
		"title", verdict.Title,
		"candidates", len(bounded))
	return verdict, nil
}

// buildPrompt renders the user prompt: the request, the candidate titles with
// their short profiles, and the best match distance. Full texts are never
// included, to bound prompt size.
func buildPrompt(query string, candidates []index.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n", query)
	b.WriteString("Candidates:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s: %s\n", c.Title, c.ShortProfile)
	}
	fmt.Fprintf(&b, "BestDistance: %.3f\n", candidates[0].Distance)
	fmt.Fprintf(&b, "Reply with ONE exact title from Candidates, or '%s'.", AbstainToken)
	return b.String()
}

// Parse coerces raw model output into a Verdict. Exact known title (after
// trimming whitespace, code fences, and surrounding quotes) selects that
// candidate; the abstain token, or anything unrecognized, abstains.
func Parse(raw string, candidates []index.Candidate) Verdict {
	s := strings.TrimSpace(raw)
	s = stripCodeFences(s)
	s = strings.Trim(s, `"'`)
	s = strings.TrimSpace(s)

	if strings.EqualFold(s, AbstainToken) {
		return Verdict{Abstain: true}
	}

	for _, c := range candidates {
		if s == c.Title {
			return Verdict{Title: c.Title}
		}
	}

	// Unrecognized output: treated as abstain rather than trusting the model.
	return Verdict{Abstain: true}
}

// stripCodeFences removes a single surrounding markdown code fence, if any.
func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop an optional language tag on the opening fence line.
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], " \t") {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
