package tokens

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"figaros/internal/models"
)

type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) Insert(ctx context.Context, tok models.VerificationToken) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verification_tokens (id, user_id, token_hash, expires_at)
		VALUES (?, ?, ?, ?)`,
		tok.ID, tok.UserID, tok.TokenHash, tok.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert verification token: %w", err)
	}
	return nil
}

func (s *MySQLStore) GetByHash(ctx context.Context, tokenHash string) (*models.VerificationToken, error) {
	var tok models.VerificationToken
	var consumed sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, expires_at, consumed_at, created_at
		FROM verification_tokens WHERE token_hash = ?`, tokenHash,
	).Scan(&tok.ID, &tok.UserID, &tok.TokenHash, &tok.ExpiresAt, &consumed, &tok.CreatedAt)
	if err != nil {
		return nil, err
	}
	if consumed.Valid {
		tok.ConsumedAt = &consumed.Time
	}
	return &tok, nil
}

// ConsumeAndVerify commits the three consumption effects together: user
// verified, this token consumed, every other token of the user deleted.
// The token row is claimed first; losing the claim to a concurrent consume
// surfaces as sql.ErrNoRows and rolls everything back.
func (s *MySQLStore) ConsumeAndVerify(ctx context.Context, userID, tokenHash string, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE verification_tokens SET consumed_at = ? WHERE token_hash = ? AND consumed_at IS NULL",
		now, tokenHash,
	)
	if err != nil {
		return fmt.Errorf("mark token consumed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	if _, err := tx.ExecContext(ctx, "UPDATE users SET verified = TRUE WHERE id = ?", userID); err != nil {
		return fmt.Errorf("mark user verified: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM verification_tokens WHERE user_id = ? AND token_hash <> ?", userID, tokenHash); err != nil {
		return fmt.Errorf("purge stale tokens: %w", err)
	}
	return tx.Commit()
}
