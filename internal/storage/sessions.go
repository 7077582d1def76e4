package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wanderlist/tripsync/internal/session"
)

// Session entry keys. One row per key, matching the string-keyed layout the
// browser client used in local storage.
const (
	keyToken  = "token"
	keyRole   = "role"
	keyUserID = "userId"
)

// Querier abstracts the subset of pgxpool.Pool used by SessionRepository.
// This allows injection of a mock in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SessionRepository is the Postgres-backed session.Store.
type SessionRepository struct {
	q Querier
}

var _ session.Store = (*SessionRepository)(nil)

// NewSessionRepository constructs a SessionRepository backed by the given pool.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{q: pool}
}

// NewSessionRepositoryWithQuerier constructs a SessionRepository with a
// custom Querier (for tests).
func NewSessionRepositoryWithQuerier(q Querier) *SessionRepository {
	return &SessionRepository{q: q}
}

// Load reads the persisted session entries. Missing rows yield a zero State,
// not an error.
func (r *SessionRepository) Load(ctx context.Context) (session.State, error) {
	const q = `SELECT key, value FROM client_session`

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return session.State{}, fmt.Errorf("querying session entries: %w", err)
	}
	defer rows.Close()

	var s session.State
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return session.State{}, fmt.Errorf("scanning session entry: %w", err)
		}

		switch key {
		case keyToken:
			s.Token = value
		case keyRole:
			s.Role = value
		case keyUserID:
			id, err := strconv.Atoi(value)
			if err != nil {
				return session.State{}, fmt.Errorf("persisted user id %q is not numeric: %w", value, err)
			}
			s.UserID = id
		}
	}

	if err := rows.Err(); err != nil {
		return session.State{}, fmt.Errorf("iterating session entries: %w", err)
	}

	return s, nil
}

// Save upserts all three session entries.
func (r *SessionRepository) Save(ctx context.Context, s session.State) error {
	const q = `
		INSERT INTO client_session (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value      = EXCLUDED.value,
		    updated_at = EXCLUDED.updated_at
	`

	entries := map[string]string{
		keyToken:  s.Token,
		keyRole:   s.Role,
		keyUserID: strconv.Itoa(s.UserID),
	}
	for _, key := range []string{keyToken, keyRole, keyUserID} {
		if _, err := r.q.Exec(ctx, q, key, entries[key]); err != nil {
			return fmt.Errorf("upserting session entry %s: %w", key, err)
		}
	}

	return nil
}

// Clear removes every session entry.
func (r *SessionRepository) Clear(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM client_session`); err != nil {
		return fmt.Errorf("clearing session entries: %w", err)
	}
	return nil
}
