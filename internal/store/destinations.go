package store

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/wanderlist/tripsync/internal/apiclient"
	"github.com/wanderlist/tripsync/internal/travel"
)

const (
	destinationPath     = "/Destination"
	destinationSnapshot = "destinations"
)

// DestinationStore mirrors the backend's destination collection.
type DestinationStore struct {
	api       *apiclient.Client
	snapshots snapshotStore
	log       *slog.Logger
	c         *collection[travel.Destination]
}

// NewDestinationStore constructs a DestinationStore. snapshots may be nil.
func NewDestinationStore(api *apiclient.Client, snapshots snapshotStore, log *slog.Logger) *DestinationStore {
	return &DestinationStore{
		api:       api,
		snapshots: snapshots,
		log:       log,
		c:         newCollection(func(d travel.Destination) int { return d.ID }),
	}
}

// Items returns a copy of the current collection in server-given order.
func (s *DestinationStore) Items() []travel.Destination { return s.c.snapshot() }

// Version bumps on every collection mutation; observers poll it to detect
// change cheaply.
func (s *DestinationStore) Version() uint64 { return s.c.currentVersion() }

// Len returns the current collection size.
func (s *DestinationStore) Len() int { return s.c.size() }

// Hydrate loads the last server-confirmed snapshot, if one exists. Failures
// are logged; the store simply starts empty.
func (s *DestinationStore) Hydrate(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	var items []travel.Destination
	ok, err := s.snapshots.Load(ctx, destinationSnapshot, &items)
	if err != nil {
		s.log.Warn("destination snapshot load failed", "err", err)
		return
	}
	if ok {
		s.c.replaceAll(items)
	}
}

// FetchAll replaces the collection with the backend's full destination list.
// On failure the existing collection is left unchanged.
func (s *DestinationStore) FetchAll(ctx context.Context) error {
	var items []travel.Destination
	if err := s.api.Get(ctx, destinationPath, nil, &items); err != nil {
		s.log.Warn("fetching destinations failed", "err", err)
		return err
	}

	s.c.replaceAll(items)
	saveSnapshot(ctx, s.snapshots, s.log, destinationSnapshot, items)
	return nil
}

// FetchByID fetches one destination from the backend. Any failure, including
// not-found, degrades uniformly to absence.
func (s *DestinationStore) FetchByID(ctx context.Context, id int) (*travel.Destination, bool) {
	var d travel.Destination
	if err := s.api.Get(ctx, destinationPath+"/"+strconv.Itoa(id), nil, &d); err != nil {
		s.log.Warn("fetching destination failed", "id", id, "err", err)
		return nil, false
	}
	return &d, true
}

// GetByIDLocal looks the destination up in the current cache without
// touching the network.
func (s *DestinationStore) GetByIDLocal(id int) (*travel.Destination, bool) {
	d, ok := s.c.getByID(id)
	if !ok {
		return nil, false
	}
	return &d, true
}

// Add creates a destination. The server-returned entity, with its assigned
// id, goes to the front of the collection; the attempted payload is discarded
// on failure.
func (s *DestinationStore) Add(ctx context.Context, d travel.Destination) (*travel.Destination, error) {
	var created travel.Destination
	if err := s.api.Post(ctx, destinationPath, nil, d, &created); err != nil {
		s.log.Error("adding destination failed", "cityName", d.CityName, "err", err)
		return nil, err
	}

	s.c.insertFront(created)
	return &created, nil
}

// Update replaces the destination in place once the backend confirms the new
// state. The entry keeps its index.
func (s *DestinationStore) Update(ctx context.Context, id int, upd travel.DestinationUpdate) error {
	var updated travel.Destination
	if err := s.api.Put(ctx, destinationPath+"/"+strconv.Itoa(id), upd, &updated); err != nil {
		s.log.Error("updating destination failed", "id", id, "err", err)
		return err
	}

	updated.ID = id
	s.c.replaceByID(updated)
	return nil
}

// Delete removes the destination locally after the backend confirms the
// deletion.
func (s *DestinationStore) Delete(ctx context.Context, id int) error {
	if err := s.api.Delete(ctx, destinationPath+"/"+strconv.Itoa(id)); err != nil {
		s.log.Error("deleting destination failed", "id", id, "err", err)
		return err
	}

	s.c.removeByID(id)
	return nil
}

// FetchFiltered replaces the collection with the backend's filtered result.
// Both an empty result array and a 404 clear the collection and report
// FilterNoResults; any other failure clears it and reports FilterError.
func (s *DestinationStore) FetchFiltered(ctx context.Context, f travel.DestinationFilter) FilterStatus {
	var items []travel.Destination
	if err := s.api.Get(ctx, destinationPath, f.Values(), &items); err != nil {
		s.log.Warn("filtered destination fetch failed", "err", err)
		s.c.replaceAll(nil)
		return filterOutcome(err)
	}

	s.c.replaceAll(items)
	if len(items) == 0 {
		return FilterNoResults
	}
	return FilterSuccess
}
