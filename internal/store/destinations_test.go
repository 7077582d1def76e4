package store_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderlist/tripsync/internal/apiclient"
	"github.com/wanderlist/tripsync/internal/backendtest"
	"github.com/wanderlist/tripsync/internal/store"
	"github.com/wanderlist/tripsync/internal/travel"
)

// fakeSession satisfies the session surface the stores consult.
type fakeSession struct {
	role   string
	userID int
}

func (f *fakeSession) Role() string { return f.role }
func (f *fakeSession) UserID() int  { return f.userID }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(b *backendtest.Backend, token string) *apiclient.Client {
	return apiclient.New(b.URL(), apiclient.TokenSourceFunc(func() string { return token }))
}

func seedDestinations() []travel.Destination {
	return []travel.Destination{
		{ID: 1, CityName: "Lisbon", Season: "summer", Category: "beach", IsPopular: true, UserID: 7},
		{ID: 2, CityName: "Oslo", Season: "winter", Category: "city", UserID: 7},
	}
}

func TestDestinations_FetchAll_ReplacesCollection(t *testing.T) {
	b := backendtest.New()
	defer b.Close()
	b.SeedDestinations(seedDestinations()...)

	s := store.NewDestinationStore(newClient(b, "T"), nil, discardLogger())

	require.NoError(t, s.FetchAll(context.Background()))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Lisbon", items[0].CityName, "server order must be preserved")
	assert.Equal(t, "Oslo", items[1].CityName)
	assert.Equal(t, "Bearer T", b.LastAuthorization())
}

func TestDestinations_FetchAll_FailureKeepsPriorState(t *testing.T) {
	b := backendtest.New()
	b.SeedDestinations(seedDestinations()...)

	s := store.NewDestinationStore(newClient(b, "T"), nil, discardLogger())
	require.NoError(t, s.FetchAll(context.Background()))
	prior := s.Version()

	b.Close() // every further call fails at the transport
	require.Error(t, s.FetchAll(context.Background()))

	assert.Len(t, s.Items(), 2, "failed refetch must keep the last known good state")
	assert.Equal(t, prior, s.Version())
}

func TestDestinations_Add_FrontInsertsServerEntity(t *testing.T) {
	b := backendtest.New()
	defer b.Close()
	b.SeedDestinations(seedDestinations()...)

	s := store.NewDestinationStore(newClient(b, "T"), nil, discardLogger())
	require.NoError(t, s.FetchAll(context.Background()))

	created, err := s.Add(context.Background(), travel.Destination{CityName: "Porto", Season: "spring"})
	require.NoError(t, err)
	require.NotZero(t, created.ID, "backend assigns the id")

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, *created, items[0], "new entity occupies index 0")

	got, ok := s.GetByIDLocal(created.ID)
	require.True(t, ok)
	assert.Equal(t, *created, *got)
}

func TestDestinations_Add_FailureLeavesCollectionUnchanged(t *testing.T) {
	b := backendtest.New()
	b.SeedDestinations(seedDestinations()...)

	s := store.NewDestinationStore(newClient(b, "T"), nil, discardLogger())
	require.NoError(t, s.FetchAll(context.Background()))

	b.Close()
	_, err := s.Add(context.Background(), travel.Destination{CityName: "Porto"})
	require.Error(t, err)
	assert.Len(t, s.Items(), 2, "attempted entity is discarded on failure")
}

func TestDestinations_Update_ReplacesInPlace(t *testing.T) {
	b := backendtest.New()
	defer b.Close()
	b.SeedDestinations(seedDestinations()...)

	s := store.NewDestinationStore(newClient(b, "T"), nil, discardLogger())
	require.NoError(t, s.FetchAll(context.Background()))

	err := s.Update(context.Background(), 2, travel.DestinationUpdate{
		CityName: "Oslo", Season: "winter", Category: "fjords", IsPopular: true,
	})
	require.NoError(t, err)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[1].ID, "updated entry keeps its index")
	assert.Equal(t, "fjords", items[1].Category)
	assert.True(t, items[1].IsPopular)
}

func TestDestinations_Delete_RemovesByID(t *testing.T) {
	b := backendtest.New()
	defer b.Close()
	b.SeedDestinations(seedDestinations()...)

	s := store.NewDestinationStore(newClient(b, "T"), nil, discardLogger())
	require.NoError(t, s.FetchAll(context.Background()))
	before := len(s.Items())

	require.NoError(t, s.Delete(context.Background(), 1))

	_, ok := s.GetByIDLocal(1)
	assert.False(t, ok)
	assert.Len(t, s.Items(), before-1, "collection shrinks by exactly one")
}

func TestDestinations_FetchByID_AbsentOnAnyFailure(t *testing.T) {
	b := backendtest.New()
	b.SeedDestinations(seedDestinations()...)

	s := store.NewDestinationStore(newClient(b, "T"), nil, discardLogger())

	d, ok := s.FetchByID(context.Background(), 1)
	require.True(t, ok)
	assert.Equal(t, "Lisbon", d.CityName)

	// Unknown id and a dead transport degrade the same way.
	_, ok = s.FetchByID(context.Background(), 999)
	assert.False(t, ok)

	b.Close()
	_, ok = s.FetchByID(context.Background(), 1)
	assert.False(t, ok)
}

func TestDestinations_FetchFiltered_TriState(t *testing.T) {
	b := backendtest.New()
	defer b.Close()
	b.SeedDestinations(seedDestinations()...)

	s := store.NewDestinationStore(newClient(b, "T"), nil, discardLogger())

	// No filters, non-empty backend: success with the full collection.
	status := s.FetchFiltered(context.Background(), travel.DestinationFilter{})
	assert.Equal(t, store.FilterSuccess, status)
	assert.Len(t, s.Items(), 2)

	// Matching filter narrows the collection.
	season := "winter"
	status = s.FetchFiltered(context.Background(), travel.DestinationFilter{Season: &season})
	assert.Equal(t, store.FilterSuccess, status)
	require.Len(t, s.Items(), 1)
	assert.Equal(t, "Oslo", s.Items()[0].CityName)

	// Empty result array: noResults, collection cleared.
	nowhere := "monsoon"
	status = s.FetchFiltered(context.Background(), travel.DestinationFilter{Season: &nowhere})
	assert.Equal(t, store.FilterNoResults, status)
	assert.Empty(t, s.Items())
}

func TestDestinations_FetchFiltered_NotFoundVersusError(t *testing.T) {
	b := backendtest.New()
	b.SeedDestinations(seedDestinations()...)
	b.FilteredNotFound = true

	s := store.NewDestinationStore(newClient(b, "T"), nil, discardLogger())
	require.NoError(t, s.FetchAll(context.Background()))

	// Backend answers 404 for a filter that matches nothing.
	nowhere := "monsoon"
	status := s.FetchFiltered(context.Background(), travel.DestinationFilter{Season: &nowhere})
	assert.Equal(t, store.FilterNoResults, status)
	assert.Empty(t, s.Items())

	// A transport failure is distinguishable from an empty match.
	b.Close()
	status = s.FetchFiltered(context.Background(), travel.DestinationFilter{Season: &nowhere})
	assert.Equal(t, store.FilterError, status)
	assert.Empty(t, s.Items())
}
