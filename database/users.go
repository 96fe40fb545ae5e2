package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// AddUser creates an admin user, or replaces the password of an existing one.
func (s *Store) AddUser(ctx context.Context, username string, passwordHash []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user (username, password_hash, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET password_hash = excluded.password_hash`,
		username, passwordHash, s.now(),
	)
	return errors.Wrap(err, "upsert user")
}

func (s *Store) PasswordHash(ctx context.Context, username string) ([]byte, error) {
	var hash []byte
	err := s.db.
		QueryRowContext(ctx, `SELECT password_hash FROM user WHERE username = ?`, username).
		Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return hash, err
}

// StoreToken records an issued token pair so it can be refreshed later.
func (s *Store) StoreToken(ctx context.Context, username, tokenID, refreshTokenID string, expiration time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO token (username, token_id, refresh_token_id, expiration)
		VALUES (?, ?, ?, ?)`,
		username, tokenID, refreshTokenID, expiration,
	)
	return errors.Wrap(err, "insert token")
}

// ConsumeToken deletes a stored token pair and returns its expiration.
// A pair can be consumed once; ErrNotFound means it was never issued or
// has already been used.
func (s *Store) ConsumeToken(ctx context.Context, username, tokenID, refreshTokenID string) (time.Time, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	var expiration time.Time
	err = tx.QueryRowContext(ctx, `
		SELECT expiration
		FROM token
		WHERE username = ?
			AND token_id = ?
			AND refresh_token_id = ?`,
		username, tokenID, refreshTokenID,
	).Scan(&expiration)
	if errors.Is(err, sql.ErrNoRows) {
		return expiration, ErrNotFound
	}
	if err != nil {
		return expiration, errors.Wrap(err, "select token")
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM token
		WHERE username = ?
			AND token_id = ?
			AND refresh_token_id = ?`,
		username, tokenID, refreshTokenID,
	)
	if err != nil {
		return expiration, errors.Wrap(err, "delete token")
	}
	return expiration, errors.Wrap(tx.Commit(), "commit")
}
