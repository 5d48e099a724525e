// Package indexer implements the one-time catalog indexing job: it embeds
// each catalog item's short profile and rebuilds the vector index wholesale.
//
// The job is the single writer of the index and must not run concurrently
// with itself. It may run while the service is serving reads: the rebuild is
// a single transaction, so readers see an atomic snapshot swap.
package indexer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"

	"github.com/shelfwise/librarian/internal/catalog"
	"github.com/shelfwise/librarian/internal/index"
)

// Rebuilder is the index write surface the job needs. *index.Store satisfies it.
type Rebuilder interface {
	Rebuild(ctx context.Context, entries []index.Entry) error
}

// Indexer embeds catalog items and writes them to the vector index.
type Indexer struct {
	embedder ai.Embedder
	store    Rebuilder
	logger   *slog.Logger
}

// New creates an Indexer. A nil logger falls back to slog.Default().
func New(embedder ai.Embedder, store Rebuilder, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{embedder: embedder, store: store, logger: logger}
}

// Run embeds every item's short profile in one batch request and replaces the
// index contents. Item order defines the insertion order used for distance
// tie-breaking.
func (ix *Indexer) Run(ctx context.Context, items []catalog.Item) error {
	if len(items) == 0 {
		return fmt.Errorf("no catalog items to index")
	}

	docs := make([]*ai.Document, len(items))
	for i, item := range items {
		docs[i] = ai.DocumentFromText(item.ShortProfile, nil)
	}

	resp, err := ix.embedder.Embed(ctx, &ai.EmbedRequest{Input: docs})
	if err != nil {
		return fmt.Errorf("embedding catalog: %w", err)
	}
	if len(resp.Embeddings) != len(items) {
		return fmt.Errorf("embedder returned %d embeddings for %d items",
			len(resp.Embeddings), len(items))
	}

	entries := make([]index.Entry, len(items))
	for i, item := range items {
		emb := resp.Embeddings[i].Embedding
		if len(emb) == 0 {
			return fmt.Errorf("empty embedding for item %q", item.Title)
		}
		entries[i] = index.Entry{
			Title:        item.Title,
			ShortProfile: item.ShortProfile,
			FullText:     item.FullText,
			Embedding:    emb,
		}
	}

	if err := ix.store.Rebuild(ctx, entries); err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}

	ix.logger.Info("catalog indexed", "items", len(entries))
	return nil
}
