// Package store holds the entity caches: local, versioned mirrors of the
// backend's Destination, Suggestion and User collection resources. Each cache
// mutates only after the server has confirmed the operation; a failed call
// leaves the prior collection intact.
package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wanderlist/tripsync/internal/apiclient"
)

// FilterStatus is the tri-state outcome of a filtered fetch, letting callers
// tell "filters matched nothing" apart from "the request failed".
type FilterStatus string

const (
	FilterSuccess   FilterStatus = "success"
	FilterNoResults FilterStatus = "noResults"
	FilterError     FilterStatus = "error"
)

// sessionReader is the subset of session.Manager the caches consult for
// authorization decisions. The bearer token itself flows through the API
// client's token source, not through here.
type sessionReader interface {
	Role() string
	UserID() int
}

// snapshotStore is the optional last-known-good persistence behind each cache.
// A nil snapshotStore disables hydration and snapshot writes.
type snapshotStore interface {
	Save(ctx context.Context, collection string, v any) error
	Load(ctx context.Context, collection string, dst any) (bool, error)
}

// filterOutcome maps a filtered-fetch error to its tri-state status.
func filterOutcome(err error) FilterStatus {
	var httpErr *apiclient.HTTPError
	if errors.As(err, &httpErr) && httpErr.NotFound() {
		return FilterNoResults
	}
	return FilterError
}

// saveSnapshot writes the collection snapshot, logging rather than failing:
// snapshot persistence is best-effort and never blocks a sync.
func saveSnapshot(ctx context.Context, snapshots snapshotStore, log *slog.Logger, name string, v any) {
	if snapshots == nil {
		return
	}
	if err := snapshots.Save(ctx, name, v); err != nil {
		log.Warn("snapshot save failed", "collection", name, "err", err)
	}
}
