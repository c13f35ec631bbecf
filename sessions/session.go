package sessions

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Session is the authenticated identity and bearer token for the current
// user. The JSON form matches the login/register response payload and is
// what gets persisted in the credential store's user slot.
type Session struct {
	Token      string `json:"token"`
	TokenType  string `json:"tokenType"`
	CustomerID int64  `json:"customerId"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`

	// ExpiresIn is a millisecond timestamp, despite the name. Zero when the
	// server omits it; ExpiresAt then falls back to the token's exp claim.
	ExpiresIn int64 `json:"expiresIn,omitempty"`
}

// Decode parses a persisted or received session payload.
func Decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "[sessions.Decode] unmarshal session")
	}
	return &s, nil
}

// Encode serializes the session for persistence.
func (s *Session) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", errors.Wrap(err, "[Session.Encode] marshal session")
	}
	return string(data), nil
}

// ExpiresAt returns the session expiry. The server's expiresIn field wins;
// otherwise the bearer token's exp claim is consulted (parsed without
// signature verification, the client holds no key material). Zero time when
// neither is available.
func (s *Session) ExpiresAt() time.Time {
	if s.ExpiresIn > 0 {
		return time.UnixMilli(s.ExpiresIn)
	}
	return tokenExpiry(s.Token)
}

// Expired reports whether the session is past its expiry at the given time.
// A session without a known expiry is never considered expired.
func (s *Session) Expired(now time.Time) bool {
	exp := s.ExpiresAt()
	if exp.IsZero() {
		return false
	}
	return now.After(exp)
}

// FullName returns the user's display name.
func (s *Session) FullName() string {
	return s.FirstName + " " + s.LastName
}

func tokenExpiry(rawToken string) time.Time {
	if rawToken == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
