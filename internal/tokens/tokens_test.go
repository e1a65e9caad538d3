package tokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"figaros/internal/models"
	"figaros/internal/utils"
)

// fakeStore keeps tokens by hash and records which users were verified.
type fakeStore struct {
	tokens   map[string]models.VerificationToken
	verified map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tokens:   make(map[string]models.VerificationToken),
		verified: make(map[string]bool),
	}
}

func (s *fakeStore) Insert(_ context.Context, tok models.VerificationToken) error {
	s.tokens[tok.TokenHash] = tok
	return nil
}

func (s *fakeStore) GetByHash(_ context.Context, tokenHash string) (*models.VerificationToken, error) {
	tok, ok := s.tokens[tokenHash]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &tok, nil
}

func (s *fakeStore) ConsumeAndVerify(_ context.Context, userID, tokenHash string, now time.Time) error {
	tok, ok := s.tokens[tokenHash]
	if !ok || tok.ConsumedAt != nil {
		return sql.ErrNoRows
	}
	s.verified[userID] = true
	tok.ConsumedAt = &now
	s.tokens[tokenHash] = tok
	for h, t := range s.tokens {
		if t.UserID == userID && h != tokenHash {
			delete(s.tokens, h)
		}
	}
	return nil
}

func TestIssueStoresHashOnly(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	plaintext, err := svc.Issue(context.Background(), "u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(plaintext) != 64 {
		t.Fatalf("expected 32 random bytes hex-encoded, got len %d", len(plaintext))
	}
	if _, ok := store.tokens[plaintext]; ok {
		t.Fatal("plaintext token must never be persisted")
	}
	rec, ok := store.tokens[utils.HashToken(plaintext)]
	if !ok {
		t.Fatal("token hash not stored")
	}
	if rec.UserID != "u1" {
		t.Fatalf("unexpected owner %q", rec.UserID)
	}
	ttl := time.Until(rec.ExpiresAt)
	if ttl < 23*time.Hour || ttl > 25*time.Hour {
		t.Fatalf("expected ~24h expiry, got %v", ttl)
	}
}

func TestConsumeMarksVerifiedAndRejectsSecondUse(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	plaintext, err := svc.Issue(ctx, "u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	userID, err := svc.Consume(ctx, plaintext)
	if err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if userID != "u1" || !store.verified["u1"] {
		t.Fatalf("expected user u1 verified, got id=%q verified=%v", userID, store.verified["u1"])
	}

	if _, err := svc.Consume(ctx, plaintext); !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("expected ErrAlreadyUsed, got %v", err)
	}
}

// staleReadStore serves reads that never see a consumption, standing in for
// a second request racing the first one past the consumed-at check.
type staleReadStore struct {
	*fakeStore
}

func (s *staleReadStore) GetByHash(ctx context.Context, tokenHash string) (*models.VerificationToken, error) {
	tok, err := s.fakeStore.GetByHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	tok.ConsumedAt = nil
	return tok, nil
}

func TestConsumeLosingClaimRaceReportsAlreadyUsed(t *testing.T) {
	store := &staleReadStore{fakeStore: newFakeStore()}
	svc := NewService(store)
	ctx := context.Background()

	plaintext, err := svc.Issue(ctx, "u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Consume(ctx, plaintext); err != nil {
		t.Fatalf("first consume: %v", err)
	}

	// The stale read passes the consumed check, so only the claim inside
	// the store can stop the second consume.
	if _, err := svc.Consume(ctx, plaintext); !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("expected ErrAlreadyUsed, got %v", err)
	}
	if !store.verified["u1"] {
		t.Fatal("first consume must still have verified the user")
	}
}

func TestConsumePurgesOtherTokens(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	first, _ := svc.Issue(ctx, "u1")
	second, _ := svc.Issue(ctx, "u1")

	if _, err := svc.Consume(ctx, second); err != nil {
		t.Fatalf("consume: %v", err)
	}
	// The earlier token was purged, so it now reads as unknown
	if _, err := svc.Consume(ctx, first); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for purged token, got %v", err)
	}
}

func TestConsumeUnknownToken(t *testing.T) {
	svc := NewService(newFakeStore())
	if _, err := svc.Consume(context.Background(), "deadbeef"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestConsumeExpiredToken(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	plaintext, _ := svc.Issue(ctx, "u1")
	hash := utils.HashToken(plaintext)
	tok := store.tokens[hash]
	tok.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	store.tokens[hash] = tok

	if _, err := svc.Consume(ctx, plaintext); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if store.verified["u1"] {
		t.Fatal("expired token must not verify the user")
	}
}
