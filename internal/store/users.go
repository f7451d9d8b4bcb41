package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hourglasshq/hourglass/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

const userColumns = `id, name, email, password_hash, timezone, week_start, created_at`

// CreateUser inserts a user. PasswordHash may be nil for placeholder users.
func (s *Store) CreateUser(ctx context.Context, u model.User) error {
	_, err := s.q.ExecContext(ctx, s.rebind(`
		INSERT INTO users (id, name, email, password_hash, timezone, week_start, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.Name, u.Email, nullStr(u.PasswordHash), u.Timezone, u.WeekStart, timeToDB(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (model.User, error) {
	row := s.q.QueryRowContext(ctx, s.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	return scanUser(row)
}

// GetUserByEmail returns a user by email (exact match).
func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.q.QueryRowContext(ctx, s.rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), email)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	var hash sql.NullString
	var createdAt string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &hash, &u.Timezone, &u.WeekStart, &createdAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	u.PasswordHash = nullStrFromDB(hash)
	if u.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// ListOrganizationUsers returns every user holding a membership in the
// organization, placeholders included.
func (s *Store) ListOrganizationUsers(ctx context.Context, orgID string) ([]model.User, error) {
	rows, err := s.q.QueryContext(ctx, s.rebind(`
		SELECT u.id, u.name, u.email, u.password_hash, u.timezone, u.week_start, u.created_at
		FROM users u
		JOIN members m ON m.user_id = u.id
		WHERE m.organization_id = ?
		ORDER BY u.name`), orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organization users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateSession inserts a login session.
func (s *Store) CreateSession(ctx context.Context, sess model.Session) error {
	_, err := s.q.ExecContext(ctx, s.rebind(`
		INSERT INTO sessions (id, user_id, token, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		sess.ID, sess.UserID, sess.Token, timeToDB(sess.ExpiresAt), timeToDB(sess.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSessionByToken returns the session for a bearer token.
func (s *Store) GetSessionByToken(ctx context.Context, token string) (model.Session, error) {
	var sess model.Session
	var expiresAt, createdAt string
	err := s.q.QueryRowContext(ctx, s.rebind(`
		SELECT id, user_id, token, expires_at, created_at FROM sessions WHERE token = ?`), token).
		Scan(&sess.ID, &sess.UserID, &sess.Token, &expiresAt, &createdAt)
	if err == sql.ErrNoRows {
		return model.Session{}, ErrNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to scan session: %w", err)
	}
	if sess.ExpiresAt, err = timeFromDB(expiresAt); err != nil {
		return model.Session{}, err
	}
	if sess.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return model.Session{}, err
	}
	return sess, nil
}

// DeleteSession removes a session by token.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.q.ExecContext(ctx, s.rebind(`DELETE FROM sessions WHERE token = ?`), token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
