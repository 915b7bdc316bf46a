// Package store is the data access layer over postgres. Store methods take
// the requesting principal's identity and run it through the authz gate
// before any SQL executes, so ownership rules hold even if a handler forgets
// to filter.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/privchat/privchat/internal/authz"
)

// Store wraps the shared database handle.
type Store struct {
	DB *sql.DB
}

var (
	// ErrNotFound is returned for reads of identifiers that do not exist,
	// or that the requester owns but which hold no row.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken maps the unique-email constraint violation on signup.
	ErrEmailTaken = errors.New("email already registered")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Profile is the application-visible record for a principal.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Message is one immutable chat turn. IsUser marks turns authored by the
// human rather than the assistant.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"is_user"`
	CreatedAt time.Time `json:"created_at"`
}

// New wraps an existing handle (used by tests).
func New(db *sql.DB) *Store { return &Store{DB: db} }

// NewWithDSN opens and pings a postgres connection.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// CreateUserWithProfile performs the signup projection: it creates the
// principal and its profile in one transaction, so no principal is ever
// observable without a profile. The profile insert runs under the system
// identity; the signing-up principal could not pass the owner check yet.
// Any failure rolls the whole signup back, without retry.
func (s *Store) CreateUserWithProfile(ctx context.Context, email, passwordHash string) (string, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1,$2) RETURNING id`,
		email, passwordHash).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrEmailTaken
		}
		return "", err
	}

	if err := authz.Authorize(authz.ResourceProfile, authz.OpCreate, authz.SystemSubject, id); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (id, email) VALUES ($1,$2)`, id, email); err != nil {
		if isUniqueViolation(err) {
			return "", ErrEmailTaken
		}
		return "", err
	}

	return id, tx.Commit()
}

// GetUserByEmail returns credentials for the login flow.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (id string, hash string, err error) {
	err = s.DB.QueryRowContext(ctx, `SELECT id, password_hash FROM users WHERE email=$1`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
	}
	return
}

// DeleteUser removes a principal. Profiles and messages go with it via
// cascade; there is no direct profile delete. Principals may only delete
// themselves.
func (s *Store) DeleteUser(ctx context.Context, requester, id string) error {
	if requester == "" || requester != id {
		return authz.ErrForbidden
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProfile returns any principal's profile; reads are public.
func (s *Store) GetProfile(ctx context.Context, requester, id string) (Profile, error) {
	if err := authz.Authorize(authz.ResourceProfile, authz.OpRead, requester, id); err != nil {
		return Profile{}, err
	}
	var p Profile
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, email, display_name, created_at FROM profiles WHERE id=$1`, id).
		Scan(&p.ID, &p.Email, &p.DisplayName, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

// UpdateDisplayName changes the only mutable profile field. Self-only.
func (s *Store) UpdateDisplayName(ctx context.Context, requester, id string, displayName *string) error {
	if err := authz.Authorize(authz.ResourceProfile, authz.OpUpdate, requester, id); err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx,
		`UPDATE profiles SET display_name=$2 WHERE id=$1`, id, displayName)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateMessage appends one chat turn for owner. The id is generated here and
// the timestamp defaults at insert; rows are never updated afterwards.
func (s *Store) CreateMessage(ctx context.Context, requester, owner, content string, isUser bool) (Message, error) {
	if err := authz.Authorize(authz.ResourceMessage, authz.OpCreate, requester, owner); err != nil {
		return Message{}, err
	}
	m := Message{ID: uuid.NewString(), UserID: owner, Content: content, IsUser: isUser}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO messages (id, user_id, content, is_user) VALUES ($1,$2,$3,$4) RETURNING created_at`,
		m.ID, m.UserID, m.Content, m.IsUser).Scan(&m.CreatedAt)
	if err != nil {
		return Message{}, err
	}
	return m, nil
}

// ListMessages returns owner's history ordered by creation time ascending.
// A non-owner gets an empty result, not an error, so message existence never
// leaks across principals.
func (s *Store) ListMessages(ctx context.Context, requester, owner string) ([]Message, error) {
	if !authz.CanRead(authz.ResourceMessage, requester, owner) {
		return []Message{}, nil
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, user_id, content, is_user, created_at FROM messages WHERE user_id=$1 ORDER BY created_at ASC`,
		owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Content, &m.IsUser, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ClearMessages deletes owner's full history and reports how many rows went.
// Idempotent: a second call deletes zero rows and is not an error.
func (s *Store) ClearMessages(ctx context.Context, requester, owner string) (int64, error) {
	if err := authz.Authorize(authz.ResourceMessage, authz.OpDelete, requester, owner); err != nil {
		return 0, err
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM messages WHERE user_id=$1`, owner)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
