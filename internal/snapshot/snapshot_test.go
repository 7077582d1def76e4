package snapshot_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderlist/tripsync/internal/snapshot"
	"github.com/wanderlist/tripsync/internal/travel"
)

func newTestCache(t *testing.T) (*snapshot.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return snapshot.NewCache(client), mr
}

func sampleDestinations() []travel.Destination {
	return []travel.Destination{
		{ID: 1, CityName: "Lisbon", Season: "summer", IsPopular: true},
		{ID: 2, CityName: "Oslo", Season: "winter"},
	}
}

func TestCache_SaveAndLoad(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, "destinations", sampleDestinations()))

	var got []travel.Destination
	ok, err := c.Load(ctx, "destinations", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleDestinations(), got, "snapshot round-trips with order intact")
}

func TestCache_Load_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	var got []travel.Destination
	ok, err := c.Load(context.Background(), "nonexistent", &got)
	require.NoError(t, err)
	assert.False(t, ok, "a miss is not an error")
	assert.Empty(t, got)
}

func TestCache_Delete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, "destinations", sampleDestinations()))
	require.NoError(t, c.Delete(ctx, "destinations"))

	var got []travel.Destination
	ok, err := c.Load(ctx, "destinations", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_EntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, "destinations", sampleDestinations()))

	mr.FastForward(25 * time.Hour) // past the 24h TTL

	var got []travel.Destination
	ok, err := c.Load(ctx, "destinations", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}
