package content_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtigo/backend/internal/content"
)

// TestMemoryStore_RoundTrip stores bytes and retrieves them by the returned id.
func TestMemoryStore_RoundTrip(t *testing.T) {
	store := content.NewMemoryStore()
	ctx := context.Background()
	payload := []byte("public records request, signed")

	id, err := store.Put(ctx, payload)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

// TestMemoryStore_ContentAddressed verifies same bytes yield the same id and
// different bytes a different one.
func TestMemoryStore_ContentAddressed(t *testing.T) {
	store := content.NewMemoryStore()
	ctx := context.Background()

	id1, err := store.Put(ctx, []byte("same"))
	require.NoError(t, err)
	id2, err := store.Put(ctx, []byte("same"))
	require.NoError(t, err)
	id3, err := store.Put(ctx, []byte("different"))
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
}

// TestMemoryStore_GetMissing returns ErrNotFound for unknown ids.
func TestMemoryStore_GetMissing(t *testing.T) {
	store := content.NewMemoryStore()
	_, err := store.Get(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

// TestMemoryStore_Pin tracks pinned ids and rejects unknown ones.
func TestMemoryStore_Pin(t *testing.T) {
	store := content.NewMemoryStore()
	ctx := context.Background()

	id, err := store.Put(ctx, []byte("keep me"))
	require.NoError(t, err)
	require.NoError(t, store.Pin(ctx, id))
	assert.True(t, store.Pinned(id))

	err = store.Pin(ctx, "unknown")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

// TestMemoryStore_CancelledContext refuses work once the context is done.
func TestMemoryStore_CancelledContext(t *testing.T) {
	store := content.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Put(ctx, []byte("late"))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Get(ctx, "any")
	assert.ErrorIs(t, err, context.Canceled)
}

// TestMemoryStore_SnapshotIsolation verifies Get returns a copy.
func TestMemoryStore_SnapshotIsolation(t *testing.T) {
	store := content.NewMemoryStore()
	ctx := context.Background()

	id, err := store.Put(ctx, []byte("abc"))
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	got[0] = 'x'

	fresh, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), fresh)
}
