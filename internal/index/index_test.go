package index_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/librarian/internal/index"
	"github.com/shelfwise/librarian/internal/log"
	"github.com/shelfwise/librarian/internal/testutil"
)

func TestNearestRejectsInvalidK(t *testing.T) {
	store := index.New(nil, log.NewNop())
	_, err := store.Nearest(context.Background(), testutil.UnitVector(index.VectorDimension, 0), 0)
	assert.Error(t, err)
}

func TestRebuildRejectsEmpty(t *testing.T) {
	store := index.New(nil, log.NewNop())
	assert.Error(t, store.Rebuild(context.Background(), nil))
}

// entry builds an Entry whose embedding is the given unit axis vector, padded
// to the table's dimension.
func entry(title, profile, full string, axis int) index.Entry {
	return index.Entry{
		Title:        title,
		ShortProfile: profile,
		FullText:     full,
		Embedding:    testutil.UnitVector(index.VectorDimension, axis),
	}
}

func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	container, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := index.New(container.Pool, log.NewNop())

	t.Run("empty index", func(t *testing.T) {
		_, err := store.Nearest(ctx, testutil.UnitVector(index.VectorDimension, 0), 3)
		assert.ErrorIs(t, err, index.ErrEmpty)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("rebuild and nearest", func(t *testing.T) {
		entries := []index.Entry{
			entry("Tide Songs", "sea, longing", "A fisherman's daughter hears the sea sing.", 0),
			entry("Glass City", "urban, mystery", "A detective in a transparent metropolis.", 1),
			entry("Iron Harvest", "war, machines", "A mechanic keeps her village alive.", 2),
		}
		require.NoError(t, store.Rebuild(ctx, entries))

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		// Query on axis 0: Tide Songs is at distance 0; the other two are
		// orthogonal (distance 1) and tie. Insertion order breaks the tie.
		got, err := store.Nearest(ctx, testutil.UnitVector(index.VectorDimension, 0), 3)
		require.NoError(t, err)
		require.Len(t, got, 3)

		assert.Equal(t, "Tide Songs", got[0].Title)
		assert.InDelta(t, 0.0, got[0].Distance, 1e-6)
		assert.Equal(t, "sea, longing", got[0].ShortProfile)
		assert.Equal(t, "A fisherman's daughter hears the sea sing.", got[0].FullText)

		assert.Equal(t, "Glass City", got[1].Title)
		assert.Equal(t, "Iron Harvest", got[2].Title)
		assert.InDelta(t, 1.0, got[1].Distance, 1e-6)
		assert.InDelta(t, 1.0, got[2].Distance, 1e-6)
	})

	t.Run("k caps the result size", func(t *testing.T) {
		got, err := store.Nearest(ctx, testutil.UnitVector(index.VectorDimension, 1), 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Glass City", got[0].Title)
	})

	t.Run("k beyond index size returns what exists", func(t *testing.T) {
		got, err := store.Nearest(ctx, testutil.UnitVector(index.VectorDimension, 0), 50)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("rebuild replaces the whole index", func(t *testing.T) {
		replacement := []index.Entry{
			entry("Night Orchard", "quiet, grief", "A widower tends a moonlit orchard.", 3),
		}
		require.NoError(t, store.Rebuild(ctx, replacement))

		got, err := store.Nearest(ctx, testutil.UnitVector(index.VectorDimension, 3), 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Night Orchard", got[0].Title)
	})

	t.Run("dimension mismatch rolls back", func(t *testing.T) {
		bad := []index.Entry{
			{Title: "Too Small", ShortProfile: "a", FullText: "b", Embedding: []float32{1, 0}},
		}
		err := store.Rebuild(ctx, bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dimension")

		// Previous snapshot survives the failed rebuild.
		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
