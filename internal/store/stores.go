package store

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/wanderlist/tripsync/internal/apiclient"
	"github.com/wanderlist/tripsync/internal/travel"
)

// Stores bundles the three entity caches behind a single sync entry point.
type Stores struct {
	Destinations *DestinationStore
	Suggestions  *SuggestionStore
	Users        *UserStore

	session sessionReader
	log     *slog.Logger
}

// New wires the three caches against one API client and session. snapshots
// may be nil to disable last-known-good persistence.
func New(api *apiclient.Client, session sessionReader, snapshots snapshotStore, log *slog.Logger) *Stores {
	users := NewUserStore(api, session, snapshots, log)
	return &Stores{
		Destinations: NewDestinationStore(api, snapshots, log),
		Suggestions:  NewSuggestionStore(api, session, users, snapshots, log),
		Users:        users,
		session:      session,
		log:          log,
	}
}

// Hydrate loads the last server-confirmed snapshot into each cache.
func (s *Stores) Hydrate(ctx context.Context) {
	s.Destinations.Hydrate(ctx)
	s.Suggestions.Hydrate(ctx)
	s.Users.Hydrate(ctx)
}

// SyncAll refetches every collection in parallel. Individual failures are
// non-fatal: each cache keeps its prior contents and the failure is logged.
// The user collection only syncs for admin sessions.
func (s *Stores) SyncAll(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.Destinations.FetchAll(gCtx); err != nil {
			s.log.Warn("destination sync failed", "err", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := s.Suggestions.FetchAll(gCtx); err != nil {
			s.log.Warn("suggestion sync failed", "err", err)
		}
		return nil
	})

	if s.session.Role() == travel.RoleAdmin {
		g.Go(func() error {
			if err := s.Users.FetchAll(gCtx); err != nil {
				s.log.Warn("user sync failed", "err", err)
			}
			return nil
		})
	}

	return g.Wait()
}
