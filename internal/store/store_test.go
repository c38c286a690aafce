package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoutes(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	dir, err := st.GetRoute(ctx, "/data/hips/")
	require.NoError(t, err)
	assert.Empty(t, dir)

	require.NoError(t, st.SetRoute(ctx, "/data/hips/", "/home/me/hips"))
	dir, err = st.GetRoute(ctx, "/data/hips/")
	require.NoError(t, err)
	assert.Equal(t, "/home/me/hips", dir)
}

func TestMemoryStoreProcessedExpires(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Unix(1000, 0)
	st.now = func() time.Time { return now }

	seen, err := st.IsProcessed(ctx, "http://x/file.fits")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, st.MarkProcessed(ctx, "http://x/file.fits", time.Minute))
	seen, _ = st.IsProcessed(ctx, "http://x/file.fits")
	assert.True(t, seen)

	now = now.Add(2 * time.Minute)
	seen, _ = st.IsProcessed(ctx, "http://x/file.fits")
	assert.False(t, seen)
}

func TestMemoryStoreClaimProcessed(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Unix(1000, 0)
	st.now = func() time.Time { return now }

	claimed, err := st.MarkProcessedIfAbsent(ctx, "download:u", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = st.MarkProcessedIfAbsent(ctx, "download:u", time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)

	require.NoError(t, st.UnmarkProcessed(ctx, "download:u"))
	claimed, _ = st.MarkProcessedIfAbsent(ctx, "download:u", time.Minute)
	assert.True(t, claimed)

	now = now.Add(2 * time.Minute)
	claimed, _ = st.MarkProcessedIfAbsent(ctx, "download:u", time.Minute)
	assert.True(t, claimed)
}

func TestMemoryStoreAckStatus(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Unix(1000, 0)
	st.now = func() time.Time { return now }

	require.NoError(t, st.SetAckStatus(ctx, "id-1", StatusDone, time.Hour))
	require.NoError(t, st.SetAckStatus(ctx, "id-2", StatusTimeout, time.Second))

	status, err := st.GetAckStatus(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, status)

	status, _ = st.GetAckStatus(ctx, "id-2")
	assert.Equal(t, StatusTimeout, status)

	now = now.Add(time.Minute)
	status, _ = st.GetAckStatus(ctx, "id-2")
	assert.Empty(t, status)

	status, _ = st.GetAckStatus(ctx, "missing")
	assert.Empty(t, status)
}

func TestRedisStoreImplementsStore(t *testing.T) {
	var _ Store = NewRedisStore("127.0.0.1:0")
	var _ Store = NewMemoryStore()
}
