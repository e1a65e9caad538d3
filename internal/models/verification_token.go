package models

import "time"

// VerificationToken stores only the SHA-256 hash of the opaque token that
// was mailed to the user. The plaintext is never persisted.
type VerificationToken struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
