package store

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/wanderlist/tripsync/internal/apiclient"
	"github.com/wanderlist/tripsync/internal/travel"
)

const (
	userPath     = "/User"
	userSnapshot = "users"
)

// UserStore mirrors the backend's user collection. Listing the collection and
// deleting accounts are admin-only; updates are allowed for admins and for a
// user editing their own account.
type UserStore struct {
	api       *apiclient.Client
	session   sessionReader
	snapshots snapshotStore
	log       *slog.Logger
	c         *collection[travel.User]
}

// NewUserStore constructs a UserStore. snapshots may be nil.
func NewUserStore(api *apiclient.Client, session sessionReader, snapshots snapshotStore, log *slog.Logger) *UserStore {
	return &UserStore{
		api:       api,
		session:   session,
		snapshots: snapshots,
		log:       log,
		c:         newCollection(func(u travel.User) int { return u.ID }),
	}
}

// Items returns a copy of the current collection in server-given order.
func (s *UserStore) Items() []travel.User { return s.c.snapshot() }

// Version bumps on every collection mutation.
func (s *UserStore) Version() uint64 { return s.c.currentVersion() }

// Len returns the current collection size.
func (s *UserStore) Len() int { return s.c.size() }

// Hydrate loads the last server-confirmed snapshot, if one exists.
func (s *UserStore) Hydrate(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	var items []travel.User
	ok, err := s.snapshots.Load(ctx, userSnapshot, &items)
	if err != nil {
		s.log.Warn("user snapshot load failed", "err", err)
		return
	}
	if ok {
		s.c.replaceAll(items)
	}
}

// FetchAll replaces the collection with the backend's full user list. Only
// admins may list users; a non-admin session fails with *ForbiddenError
// before any network call.
func (s *UserStore) FetchAll(ctx context.Context) error {
	if s.session.Role() != travel.RoleAdmin {
		return &apiclient.ForbiddenError{Reason: "listing users requires the admin role"}
	}

	var items []travel.User
	if err := s.api.Get(ctx, userPath, nil, &items); err != nil {
		s.log.Warn("fetching users failed", "err", err)
		return err
	}

	s.c.replaceAll(items)
	saveSnapshot(ctx, s.snapshots, s.log, userSnapshot, items)
	return nil
}

// FetchByID fetches one user from the backend. Any failure degrades
// uniformly to absence.
func (s *UserStore) FetchByID(ctx context.Context, id int) (*travel.User, bool) {
	var u travel.User
	if err := s.api.Get(ctx, userPath+"/"+strconv.Itoa(id), nil, &u); err != nil {
		s.log.Warn("fetching user failed", "id", id, "err", err)
		return nil, false
	}
	return &u, true
}

// GetByIDLocal looks the user up in the current cache.
func (s *UserStore) GetByIDLocal(id int) (*travel.User, bool) {
	u, ok := s.c.getByID(id)
	if !ok {
		return nil, false
	}
	return &u, true
}

// FindByUserName looks a user up by name in the current cache.
func (s *UserStore) FindByUserName(name string) (*travel.User, bool) {
	u, ok := s.c.find(func(u travel.User) bool { return u.UserName == name })
	if !ok {
		return nil, false
	}
	return &u, true
}

// Add registers a user. The server-returned account goes to the front of the
// collection.
func (s *UserStore) Add(ctx context.Context, u travel.User) (*travel.User, error) {
	var created travel.User
	if err := s.api.Post(ctx, userPath, nil, u, &created); err != nil {
		s.log.Error("adding user failed", "userName", u.UserName, "err", err)
		return nil, err
	}

	s.c.insertFront(created)
	return &created, nil
}

// Update edits a user. The caller must be an admin or the user being edited;
// otherwise it fails with *ForbiddenError before any network call. On success
// the local entry is replaced in place.
func (s *UserStore) Update(ctx context.Context, id int, upd travel.UserUpdate) error {
	if s.session.Role() != travel.RoleAdmin && s.session.UserID() != id {
		return &apiclient.ForbiddenError{Reason: "users may only edit their own account"}
	}

	var updated travel.User
	if err := s.api.Put(ctx, userPath+"/"+strconv.Itoa(id), upd, &updated); err != nil {
		s.log.Error("updating user failed", "id", id, "err", err)
		return err
	}

	updated.ID = id
	s.c.replaceByID(updated)
	return nil
}

// Delete removes a user account. Admin-only.
func (s *UserStore) Delete(ctx context.Context, id int) error {
	if s.session.Role() != travel.RoleAdmin {
		return &apiclient.ForbiddenError{Reason: "deleting users requires the admin role"}
	}

	if err := s.api.Delete(ctx, userPath+"/"+strconv.Itoa(id)); err != nil {
		s.log.Error("deleting user failed", "id", id, "err", err)
		return err
	}

	s.c.removeByID(id)
	return nil
}

// RefreshUser refetches one user and folds the fresh copy into the cache:
// replaced in place when already cached, front-inserted otherwise. Used after
// suggestion activity, which changes the author's points server-side.
func (s *UserStore) RefreshUser(ctx context.Context, id int) {
	u, ok := s.FetchByID(ctx, id)
	if !ok {
		return
	}
	if !s.c.replaceByID(*u) {
		s.c.insertFront(*u)
	}
}
