package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"yatube/internal/apperr"
	"yatube/internal/models"
)

const userColumns = `id, email, username, password_hash, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, username, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at`,
		u.Email, u.Username, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	return mapErr(err, "insert user")
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, mapErr(err, fmt.Sprintf("user %d", id))
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	return u, mapErr(err, "user "+username)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	return u, mapErr(err, "user "+email)
}

// ----------------------------
// Sessions
// ----------------------------

// sessionKey parses a token; anything that is not a UUID cannot be a session.
func sessionKey(id string) (uuid.UUID, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("session %q: %w", id, apperr.ErrNoRecord)
	}
	return key, nil
}

func (s *Store) StartSession(ctx context.Context, sess *models.Session) error {
	key, err := uuid.Parse(sess.ID)
	if err != nil {
		return fmt.Errorf("session id: %w", err)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin session tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, sess.UserID); err != nil {
		return mapErr(err, "delete old sessions")
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		key, sess.UserID, sess.ExpiresAt, sess.CreatedAt,
	); err != nil {
		return mapErr(err, "insert session")
	}
	return tx.Commit(ctx)
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.Session, error) {
	key, err := sessionKey(id)
	if err != nil {
		return nil, err
	}
	var sess models.Session
	err = s.pool.QueryRow(ctx,
		`SELECT id::text, user_id, expires_at, created_at FROM sessions WHERE id = $1`, key,
	).Scan(&sess.ID, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "session")
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	key, err := sessionKey(id)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, key)
	if err != nil {
		return mapErr(err, "delete session")
	}
	if tag.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, "session")
	}
	return nil
}
