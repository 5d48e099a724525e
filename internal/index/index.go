// Package index implements the vector index adapter: a read-mostly store
// mapping catalog item identities to embeddings and metadata, backed by
// PostgreSQL + pgvector.
//
// The recommendation core is the single reader; the indexing job (Rebuild) is
// the single writer. Rebuild replaces the whole index inside one transaction,
// so concurrent readers observe either the full old or the full new snapshot.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

var (
	// ErrUnavailable indicates the underlying store could not be reached.
	ErrUnavailable = errors.New("vector index unavailable")

	// ErrEmpty indicates the index has zero entries.
	ErrEmpty = errors.New("vector index is empty")
)

// VectorDimension is the embedding dimensionality of the catalog_items table.
// It must match the embedder model output; see db/migrations and
// config.DefaultEmbedderModel.
const VectorDimension = 768

// Candidate is a nearest-neighbor result for one query. Lower distance means
// more similar. Candidates carry the full metadata snapshot so the assembler
// never needs a second index round-trip.
type Candidate struct {
	Title        string
	ShortProfile string
	FullText     string
	Distance     float64
}

// Entry is one item to be written during an index rebuild.
type Entry struct {
	Title        string
	ShortProfile string
	FullText     string
	Embedding    []float32
}

// DB is the database surface the store needs. *pgxpool.Pool satisfies it.
// Defining the interface on the consumer side keeps the store testable
// without a live database.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store provides nearest-neighbor lookup and wholesale rebuild over the
// catalog_items table. Safe for concurrent readers.
type Store struct {
	db     DB
	logger *slog.Logger
}

// New creates a Store. A nil logger falls back to slog.Default().
func New(db DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

const nearestSQL = `
SELECT title, short_profile, full_text, embedding <=> $1 AS distance
FROM catalog_items
ORDER BY distance ASC, position ASC
LIMIT $2`

// Nearest returns the k entries closest to the query vector, ascending by
// cosine distance. True numeric ties are broken by catalog insertion order
// (the position column), keeping results deterministic for an unchanged index.
//
// Returns ErrEmpty when the index holds no entries and ErrUnavailable when
// the store cannot be queried.
func (s *Store) Nearest(ctx context.Context, vector []float32, k int) ([]Candidate, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", k)
	}

	rows, err := s.db.Query(ctx, nearestSQL, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.Title, &c.ShortProfile, &c.FullText, &c.Distance); err != nil {
			return nil, fmt.Errorf("%w: scanning candidate: %w", ErrUnavailable, err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if len(candidates) == 0 {
		return nil, ErrEmpty
	}

	s.logger.Debug("nearest neighbors",
		"k", k,
		"returned", len(candidates),
		"best_distance", candidates[0].Distance)
	return candidates, nil
}

// Count returns the number of indexed entries. Used by readiness checks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM catalog_items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return count, nil
}

// Rebuild replaces the entire index with the given entries inside a single
// transaction. Entry order defines the position column used for tie-breaking.
//
// The single-writer invariant (only one rebuild at a time) is held by the
// operator; concurrent reads are safe and see an atomic snapshot swap.
func (s *Store) Rebuild(ctx context.Context, entries []Entry) (err error) {
	if len(entries) == 0 {
		return fmt.Errorf("refusing to rebuild with zero entries")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: beginning rebuild: %w", ErrUnavailable, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Warn("rebuild rollback failed", "error", rbErr)
			}
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM catalog_items`); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}

	const insertSQL = `
INSERT INTO catalog_items (position, title, short_profile, full_text, embedding)
VALUES ($1, $2, $3, $4, $5)`

	for i, e := range entries {
		if len(e.Embedding) != VectorDimension {
			return fmt.Errorf("entry %q has embedding dimension %d, want %d",
				e.Title, len(e.Embedding), VectorDimension)
		}
		if _, err = tx.Exec(ctx, insertSQL,
			i, e.Title, e.ShortProfile, e.FullText, pgvector.NewVector(e.Embedding)); err != nil {
			return fmt.Errorf("inserting entry %q: %w", e.Title, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing rebuild: %w", err)
	}

	s.logger.Info("index rebuilt", "entries", len(entries))
	return nil
}
