package store

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/wanderlist/tripsync/internal/apiclient"
	"github.com/wanderlist/tripsync/internal/travel"
)

const (
	suggestionPath     = "/Suggestion"
	suggestionSnapshot = "suggestions"
)

// userRefresher is satisfied by *UserStore. Suggestion activity changes the
// author's server-computed points, so mutations here trigger a refresh there.
type userRefresher interface {
	RefreshUser(ctx context.Context, id int)
}

// SuggestionStore mirrors the backend's suggestion collection.
type SuggestionStore struct {
	api       *apiclient.Client
	session   sessionReader
	users     userRefresher
	snapshots snapshotStore
	log       *slog.Logger
	c         *collection[travel.Suggestion]
}

// NewSuggestionStore constructs a SuggestionStore. snapshots may be nil.
func NewSuggestionStore(api *apiclient.Client, session sessionReader, users userRefresher, snapshots snapshotStore, log *slog.Logger) *SuggestionStore {
	return &SuggestionStore{
		api:       api,
		session:   session,
		users:     users,
		snapshots: snapshots,
		log:       log,
		c:         newCollection(func(sg travel.Suggestion) int { return sg.ID }),
	}
}

// Items returns a copy of the current collection in server-given order.
func (s *SuggestionStore) Items() []travel.Suggestion { return s.c.snapshot() }

// Version bumps on every collection mutation.
func (s *SuggestionStore) Version() uint64 { return s.c.currentVersion() }

// Len returns the current collection size.
func (s *SuggestionStore) Len() int { return s.c.size() }

// Hydrate loads the last server-confirmed snapshot, if one exists.
func (s *SuggestionStore) Hydrate(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	var items []travel.Suggestion
	ok, err := s.snapshots.Load(ctx, suggestionSnapshot, &items)
	if err != nil {
		s.log.Warn("suggestion snapshot load failed", "err", err)
		return
	}
	if ok {
		s.c.replaceAll(items)
	}
}

// FetchAll replaces the collection with the backend's full suggestion list.
func (s *SuggestionStore) FetchAll(ctx context.Context) error {
	var items []travel.Suggestion
	if err := s.api.Get(ctx, suggestionPath, nil, &items); err != nil {
		s.log.Warn("fetching suggestions failed", "err", err)
		return err
	}

	s.c.replaceAll(items)
	saveSnapshot(ctx, s.snapshots, s.log, suggestionSnapshot, items)
	return nil
}

// FetchByID fetches one suggestion from the backend. Any failure degrades
// uniformly to absence.
func (s *SuggestionStore) FetchByID(ctx context.Context, id int) (*travel.Suggestion, bool) {
	var sg travel.Suggestion
	if err := s.api.Get(ctx, suggestionPath+"/"+strconv.Itoa(id), nil, &sg); err != nil {
		s.log.Warn("fetching suggestion failed", "id", id, "err", err)
		return nil, false
	}
	return &sg, true
}

// GetByIDLocal looks the suggestion up in the current cache.
func (s *SuggestionStore) GetByIDLocal(id int) (*travel.Suggestion, bool) {
	sg, ok := s.c.getByID(id)
	if !ok {
		return nil, false
	}
	return &sg, true
}

// FetchByDestination fetches the suggestions attached to one destination.
// The result is returned to the caller directly and does not replace the
// collection.
func (s *SuggestionStore) FetchByDestination(ctx context.Context, destinationID int) ([]travel.Suggestion, error) {
	query := url.Values{"destinationId": {strconv.Itoa(destinationID)}}

	var items []travel.Suggestion
	if err := s.api.Get(ctx, suggestionPath, query, &items); err != nil {
		s.log.Warn("fetching suggestions by destination failed", "destinationId", destinationID, "err", err)
		return nil, err
	}
	return items, nil
}

// Add creates a suggestion under the given destination. The current session's
// user id is stamped onto the payload before sending; on success the
// server-returned entity goes to the front of the collection and the author's
// cached points are refreshed.
func (s *SuggestionStore) Add(ctx context.Context, sg travel.Suggestion, destinationID int) (*travel.Suggestion, error) {
	sg.UserID = s.session.UserID()
	query := url.Values{"destinationId": {strconv.Itoa(destinationID)}}

	var created travel.Suggestion
	if err := s.api.Post(ctx, suggestionPath, query, sg, &created); err != nil {
		s.log.Error("adding suggestion failed", "title", sg.Title, "err", err)
		return nil, err
	}

	s.c.insertFront(created)
	s.users.RefreshUser(ctx, s.session.UserID())
	return &created, nil
}

// Update edits a suggestion. On success the local entry is replaced in place.
func (s *SuggestionStore) Update(ctx context.Context, id int, upd travel.SuggestionUpdate) error {
	var updated travel.Suggestion
	if err := s.api.Put(ctx, suggestionPath+"/"+strconv.Itoa(id), upd, &updated); err != nil {
		s.log.Error("updating suggestion failed", "id", id, "err", err)
		return err
	}

	updated.ID = id
	s.c.replaceByID(updated)
	return nil
}

// Delete removes a suggestion, then refetches the whole collection and the
// author's points. The full refresh trades an extra round trip for not having
// to reason about what else the deletion changed server-side.
func (s *SuggestionStore) Delete(ctx context.Context, id int) error {
	if err := s.api.Delete(ctx, suggestionPath+"/"+strconv.Itoa(id)); err != nil {
		s.log.Error("deleting suggestion failed", "id", id, "err", err)
		return err
	}

	if err := s.FetchAll(ctx); err != nil {
		s.log.Warn("refetch after suggestion delete failed", "err", err)
	}
	s.users.RefreshUser(ctx, s.session.UserID())
	return nil
}

// FetchFiltered replaces the collection with the backend's filtered result,
// reporting the tri-state outcome.
func (s *SuggestionStore) FetchFiltered(ctx context.Context, f travel.SuggestionFilter) FilterStatus {
	var items []travel.Suggestion
	if err := s.api.Get(ctx, suggestionPath, f.Values(), &items); err != nil {
		s.log.Warn("filtered suggestion fetch failed", "err", err)
		s.c.replaceAll(nil)
		return filterOutcome(err)
	}

	s.c.replaceAll(items)
	if len(items) == 0 {
		return FilterNoResults
	}
	return FilterSuccess
}
