package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRecordAndLastSuccessfulHash(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()

	hash, err := s.LastSuccessfulHash(ctx)
	require.NoError(t, err)
	assert.Empty(t, hash, "empty store has no successful build")

	require.NoError(t, s.Record(ctx, BuildRecord{BuildID: "b1", ContentHash: "h1", Cards: 3, Outcome: "success"}))
	require.NoError(t, s.Record(ctx, BuildRecord{BuildID: "b2", ContentHash: "h2", Cards: 3, Outcome: "failed"}))

	hash, err = s.LastSuccessfulHash(ctx)
	require.NoError(t, err)
	assert.Equal(t, "h1", hash, "failed builds do not advance the hash")

	require.NoError(t, s.Record(ctx, BuildRecord{BuildID: "b3", ContentHash: "h3", Cards: 4, Outcome: "success"}))
	hash, err = s.LastSuccessfulHash(ctx)
	require.NoError(t, err)
	assert.Equal(t, "h3", hash)
}

func TestStoreHistory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	for _, id := range []string{"b1", "b2", "b3"} {
		require.NoError(t, s.Record(ctx, BuildRecord{BuildID: id, ContentHash: "h", Outcome: "success"}))
	}

	records, err := s.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b3", records[0].BuildID, "newest first")
	assert.Equal(t, "b2", records[1].BuildID)
	assert.False(t, records[0].CreatedAt.IsZero())
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), BuildRecord{BuildID: "b1", ContentHash: "h1", Outcome: "success"}))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	hash, err := s2.LastSuccessfulHash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "h1", hash)
}
