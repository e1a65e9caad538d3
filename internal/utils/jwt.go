package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the payload carried by the signed access token cookie.
type Session struct {
	UserID string
	Email  string
	Name   string
}

var ErrInvalidSession = errors.New("invalid session")

// GenerateSessionToken signs an HS256 token carrying the user identity.
func GenerateSessionToken(s Session, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   s.UserID,
		"email": s.Email,
		"name":  s.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSessionToken validates a token string and returns the session it
// carries. Any malformed, forged or expired token yields ErrInvalidSession.
func ParseSessionToken(tokenStr, secret string) (*Session, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidSession
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrInvalidSession
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	return &Session{UserID: sub, Email: email, Name: name}, nil
}
