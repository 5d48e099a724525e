package indexer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/librarian/internal/catalog"
	"github.com/shelfwise/librarian/internal/index"
	"github.com/shelfwise/librarian/internal/indexer"
	"github.com/shelfwise/librarian/internal/log"
	"github.com/shelfwise/librarian/internal/testutil"
)

type fakeRebuilder struct {
	entries []index.Entry
	err     error
}

func (f *fakeRebuilder) Rebuild(_ context.Context, entries []index.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = entries
	return nil
}

func testItems() []catalog.Item {
	return []catalog.Item{
		{Title: "Tide Songs", ShortProfile: "sea, longing", FullText: "A fisherman's daughter hears the sea sing."},
		{Title: "Glass City", ShortProfile: "urban, mystery", FullText: "A detective in a transparent metropolis."},
	}
}

func TestRunEmbedsShortProfiles(t *testing.T) {
	emb := testutil.NewMockEmbedder(testutil.UnitVector(4, 0))
	emb.SetVector("sea, longing", testutil.UnitVector(4, 1))
	emb.SetVector("urban, mystery", testutil.UnitVector(4, 2))
	store := &fakeRebuilder{}

	ix := indexer.New(emb, store, log.NewNop())
	require.NoError(t, ix.Run(context.Background(), testItems()))

	require.Len(t, store.entries, 2)
	// Entry order follows catalog order; the short profile is what got embedded.
	assert.Equal(t, "Tide Songs", store.entries[0].Title)
	assert.Equal(t, testutil.UnitVector(4, 1), store.entries[0].Embedding)
	assert.Equal(t, "Glass City", store.entries[1].Title)
	assert.Equal(t, testutil.UnitVector(4, 2), store.entries[1].Embedding)
	assert.Equal(t, "A detective in a transparent metropolis.", store.entries[1].FullText)
}

func TestRunEmbedderFailure(t *testing.T) {
	emb := testutil.NewMockEmbedder(nil)
	emb.FailWith(errors.New("provider down"))
	store := &fakeRebuilder{}

	ix := indexer.New(emb, store, log.NewNop())
	err := ix.Run(context.Background(), testItems())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding catalog")
	assert.Empty(t, store.entries, "no partial writes on embed failure")
}

func TestRunRebuildFailure(t *testing.T) {
	emb := testutil.NewMockEmbedder(testutil.UnitVector(4, 0))
	store := &fakeRebuilder{err: index.ErrUnavailable}

	ix := indexer.New(emb, store, log.NewNop())
	err := ix.Run(context.Background(), testItems())
	assert.ErrorIs(t, err, index.ErrUnavailable)
}

func TestRunEmptyCatalog(t *testing.T) {
	emb := testutil.NewMockEmbedder(testutil.UnitVector(4, 0))
	ix := indexer.New(emb, &fakeRebuilder{}, log.NewNop())
	assert.Error(t, ix.Run(context.Background(), nil))
}
