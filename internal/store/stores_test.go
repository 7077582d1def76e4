package store_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderlist/tripsync/internal/backendtest"
	"github.com/wanderlist/tripsync/internal/snapshot"
	"github.com/wanderlist/tripsync/internal/store"
	"github.com/wanderlist/tripsync/internal/travel"
)

func newSnapshotCache(t *testing.T) *snapshot.Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return snapshot.NewCache(client)
}

func TestSyncAll_AdminSyncsEverything(t *testing.T) {
	b := backendtest.New()
	defer b.Close()
	b.SeedDestinations(travel.Destination{ID: 1, CityName: "Lisbon"})
	b.SeedSuggestions(travel.Suggestion{ID: 2, Title: "a"})
	b.SeedUsers(travel.User{ID: 3, UserName: "ana"})

	sess := &fakeSession{role: travel.RoleAdmin, userID: 3}
	stores := store.New(newClient(b, "T"), sess, nil, discardLogger())

	require.NoError(t, stores.SyncAll(context.Background()))

	assert.Equal(t, 1, stores.Destinations.Len())
	assert.Equal(t, 1, stores.Suggestions.Len())
	assert.Equal(t, 1, stores.Users.Len())
}

func TestSyncAll_NonAdminSkipsUsers(t *testing.T) {
	b := backendtest.New()
	defer b.Close()
	b.SeedDestinations(travel.Destination{ID: 1, CityName: "Lisbon"})
	b.SeedUsers(travel.User{ID: 3, UserName: "ana"})

	sess := &fakeSession{role: "user", userID: 3}
	stores := store.New(newClient(b, "T"), sess, nil, discardLogger())

	require.NoError(t, stores.SyncAll(context.Background()))

	assert.Equal(t, 1, stores.Destinations.Len())
	assert.Zero(t, stores.Users.Len(), "non-admin sessions never list users")
}

func TestSyncAll_PartialFailureKeepsOtherCollections(t *testing.T) {
	b := backendtest.New()
	defer b.Close()
	b.SeedDestinations(travel.Destination{ID: 1, CityName: "Lisbon"})
	b.SeedSuggestions(travel.Suggestion{ID: 2, Title: "a"})

	sess := &fakeSession{role: "user", userID: 3}
	stores := store.New(newClient(b, "T"), sess, nil, discardLogger())

	require.NoError(t, stores.SyncAll(context.Background()))
	assert.Equal(t, 1, stores.Destinations.Len())
	assert.Equal(t, 1, stores.Suggestions.Len())
}

func TestHydrate_RestoresLastKnownGoodSnapshots(t *testing.T) {
	b := backendtest.New()
	b.SeedDestinations(travel.Destination{ID: 1, CityName: "Lisbon"})
	b.SeedSuggestions(travel.Suggestion{ID: 2, Title: "a"})

	snapshots := newSnapshotCache(t)
	sess := &fakeSession{role: "user", userID: 3}

	// First process lifetime: sync writes snapshots.
	first := store.New(newClient(b, "T"), sess, snapshots, discardLogger())
	require.NoError(t, first.SyncAll(context.Background()))

	// Backend goes away; a fresh set of stores still hydrates.
	b.Close()
	second := store.New(newClient(b, "T"), sess, snapshots, discardLogger())
	second.Hydrate(context.Background())

	require.Equal(t, 1, second.Destinations.Len())
	assert.Equal(t, "Lisbon", second.Destinations.Items()[0].CityName)
	assert.Equal(t, 1, second.Suggestions.Len())
}
