// Package recommend implements the retrieval-and-guarded-selection core:
// a stateless pipeline from a raw mood/theme query to exactly one confident
// recommendation or a well-typed refusal.
//
// Pipeline: quality filter → embedding → nearest-neighbor retrieval →
// confidence gate → judge → assembler. Any stage may short-circuit to a
// refusal. Refusals are Decision values; provider failures and internal
// consistency faults are returned as errors for the caller to translate.
//
// The core owns no state beyond its injected collaborators and is safe for
// concurrent use.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"

	"github.com/shelfwise/librarian/internal/index"
	"github.com/shelfwise/librarian/internal/judge"
	"github.com/shelfwise/librarian/internal/quality"
)

// Index is the nearest-neighbor lookup the core needs. *index.Store satisfies it.
type Index interface {
	Nearest(ctx context.Context, vector []float32, k int) ([]index.Candidate, error)
}

// Judge is the final-selection step. *judge.Judge satisfies it.
type Judge interface {
	Decide(ctx context.Context, query string, candidates []index.Candidate) (judge.Verdict, error)
}

// Options are the core's tunables. See config for defaults and documentation.
type Options struct {
	TopK                int
	ShortQueryMaxTokens int
	FarDistanceCutoff   float64
	EmbedTimeout        time.Duration
	SearchTimeout       time.Duration
}

func (o *Options) applyDefaults() {
	if o.TopK <= 0 {
		o.TopK = 6
	}
	if o.ShortQueryMaxTokens <= 0 {
		o.ShortQueryMaxTokens = 3
	}
	if o.FarDistanceCutoff <= 0 {
		o.FarDistanceCutoff = 0.75
	}
	if o.EmbedTimeout <= 0 {
		o.EmbedTimeout = 10 * time.Second
	}
	if o.SearchTimeout <= 0 {
		o.SearchTimeout = 10 * time.Second
	}
}

// Recommender is the core's entry point. All collaborators are injected,
// enabling deterministic substitution with stubs in tests.
type Recommender struct {
	embedder ai.Embedder
	index    Index
	judge    Judge
	gate     Gate
	opts     Options
	logger   *slog.Logger
}

// New creates a Recommender. A nil logger falls back to slog.Default().
func New(embedder ai.Embedder, idx Index, j Judge, opts Options, logger *slog.Logger) *Recommender {
	if logger == nil {
		logger = slog.Default()
	}
	opts.applyDefaults()
	return &Recommender{
		embedder: embedder,
		index:    idx,
		judge:    j,
		gate: Gate{
			ShortQueryMaxTokens: opts.ShortQueryMaxTokens,
			FarDistanceCutoff:   opts.FarDistanceCutoff,
		},
		opts:   opts,
		logger: logger,
	}
}

// Recommend converts a raw query into a Decision.
//
// Refusals (EMPTY_QUERY, GIBBERISH, NO_CLOSE_MATCH, ABSTAIN) come back as
// Decision values with a nil error. A non-nil error means the system could
// not even attempt a judgment: ErrEmbeddingUnavailable, index.ErrUnavailable,
// index.ErrEmpty, judge.ErrUnavailable, or ErrUnknownIdentity. No stage is
// retried here; retry policy belongs to the caller.
func (r *Recommender) Recommend(ctx context.Context, query string) (Decision, error) {
	q := strings.TrimSpace(query)

	switch quality.Classify(q) {
	case quality.EmptyQuery:
		return Refused(RefusalEmptyQuery), nil
	case quality.Gibberish:
		r.logger.Debug("query rejected by quality filter", "query", q)
		return Refused(RefusalGibberish), nil
	}

	vector, err := r.embedQuery(ctx, q)
	if err != nil {
		return Decision{}, err
	}

	searchCtx, cancel := context.WithTimeout(ctx, r.opts.SearchTimeout)
	defer cancel()
	candidates, err := r.index.Nearest(searchCtx, vector, r.opts.TopK)
	if err != nil {
		return Decision{}, err
	}

	if !r.gate.Admit(q, candidates) {
		r.logger.Debug("query rejected by confidence gate",
			"query", q,
			"best_distance", candidates[0].Distance)
		return Refused(RefusalNoCloseMatch), nil
	}

	verdict, err := r.judge.Decide(ctx, q, candidates)
	if err != nil {
		return Decision{}, err
	}
	if verdict.Abstain {
		return Refused(RefusalAbstain), nil
	}

	rec, err := assemble(verdict.Title, q, candidates)
	if err != nil {
		// Contract violation between judge and retrieval; surfaced, not masked.
		r.logger.Error("assembler rejected judge verdict", "title", verdict.Title, "error", err)
		return Decision{}, err
	}

	return Selected(rec), nil
}

// embedQuery turns the query text into a vector via the embedding gateway,
// with a per-call timeout. Provider errors map to ErrEmbeddingUnavailable.
func (r *Recommender) embedQuery(ctx context.Context, query string) ([]float32, error) {
	embedCtx, cancel := context.WithTimeout(ctx, r.opts.EmbedTimeout)
	defer cancel()

	resp, err := r.embedder.Embed(embedCtx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(query, nil)},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: timeout: %w", ErrEmbeddingUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", ErrEmbeddingUnavailable)
	}

	return resp.Embeddings[0].Embedding, nil
}
