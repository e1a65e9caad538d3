package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"figaros/internal/models"
	"figaros/internal/utils"
)

// Token TTL matches the "expires in 24 hours" notice in the mail body.
const DefaultTTL = 24 * time.Hour

var (
	ErrInvalidToken = errors.New("token inválido")
	ErrAlreadyUsed  = errors.New("token ya usado")
	ErrExpired      = errors.New("token expirado")
)

// Store persists verification tokens. ConsumeAndVerify is atomic: the user
// flips to verified, the token is marked consumed and the user's other
// tokens are purged in one transaction. It returns sql.ErrNoRows when the
// token was already consumed by the time the claim ran.
type Store interface {
	Insert(ctx context.Context, tok models.VerificationToken) error
	GetByHash(ctx context.Context, tokenHash string) (*models.VerificationToken, error)
	ConsumeAndVerify(ctx context.Context, userID, tokenHash string, now time.Time) error
}

// Service issues and consumes single-use email verification tokens.
type Service struct {
	store Store
	ttl   time.Duration
}

func NewService(store Store) *Service {
	return &Service{store: store, ttl: DefaultTTL}
}

// Issue creates a fresh token for the user and returns its plaintext. Only
// the SHA-256 hash is stored; the plaintext exists in the mail link alone.
func (s *Service) Issue(ctx context.Context, userID string) (string, error) {
	token, err := utils.RandomTokenHex(32)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	rec := models.VerificationToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: utils.HashToken(token),
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// Consume validates the presented plaintext token and, on success, marks
// the owning user verified. Returns the user id that was verified.
func (s *Service) Consume(ctx context.Context, token string) (string, error) {
	rec, err := s.store.GetByHash(ctx, utils.HashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if rec.ConsumedAt != nil {
		return "", ErrAlreadyUsed
	}
	now := time.Now().UTC()
	if rec.ExpiresAt.Before(now) {
		return "", ErrExpired
	}
	if err := s.store.ConsumeAndVerify(ctx, rec.UserID, rec.TokenHash, now); err != nil {
		// A concurrent consume can win between the read above and the claim.
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrAlreadyUsed
		}
		return "", err
	}
	return rec.UserID, nil
}
