// Package app wires the application together: database pool, Genkit,
// embedder, vector index, judge, and the recommendation core.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/shelfwise/librarian/db"
	"github.com/shelfwise/librarian/internal/config"
	"github.com/shelfwise/librarian/internal/index"
	"github.com/shelfwise/librarian/internal/indexer"
	"github.com/shelfwise/librarian/internal/judge"
	"github.com/shelfwise/librarian/internal/recommend"
)

// App holds the initialized application components.
// Call Close to release resources.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	Pool        *pgxpool.Pool
	Genkit      *genkit.Genkit
	Embedder    ai.Embedder
	Index       *index.Store
	Recommender *recommend.Recommender
}

// Setup initializes the application: runs migrations, opens the database
// pool, initializes Genkit with the Google AI plugin, and builds the
// recommendation pipeline. On error, everything already initialized is
// released.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if os.Getenv("GEMINI_API_KEY") == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not set", config.ErrMissingAPIKey)
	}

	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if retErr != nil {
			a.Close()
		}
	}()

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Pool = pool

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	a.Genkit = g

	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}
	a.Embedder = embedder

	a.Index = index.New(pool, logger.With("component", "index"))

	j := judge.New(g, cfg.JudgeModel, cfg.MaxCandidates, cfg.JudgeTimeout,
		logger.With("component", "judge"))

	a.Recommender = recommend.New(embedder, a.Index, j, recommend.Options{
		TopK:                cfg.TopK,
		ShortQueryMaxTokens: cfg.ShortQueryMaxTokens,
		FarDistanceCutoff:   cfg.FarDistanceCutoff,
		EmbedTimeout:        cfg.EmbedTimeout,
		SearchTimeout:       cfg.SearchTimeout,
	}, logger.With("component", "recommend"))

	return a, nil
}

// NewIndexer builds the catalog indexing job from the app's components.
func (a *App) NewIndexer() *indexer.Indexer {
	return indexer.New(a.Embedder, a.Index, a.Logger.With("component", "indexer"))
}

// Close releases the application's resources.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// newPool opens a pgx pool with pgvector types registered on every
// connection, and verifies connectivity.
func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}
