package application

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const (
	sessionKeyInfo = "booking-portal session signing key"
	sessionKeySize = 32
)

type sessionClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	key   []byte
	ttl   time.Duration
	now   func() time.Time
	newID func() string

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewTokenIssuer derives the signing key from secret with HKDF-SHA256.
func NewTokenIssuer(secret []byte, ttl time.Duration, now func() time.Time) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("session secret is empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}

	key := make([]byte, sessionKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(sessionKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}

	return &TokenIssuer{
		key:     key,
		ttl:     ttl,
		now:     now,
		newID:   uuid.NewString,
		revoked: make(map[string]time.Time),
	}, nil
}

// SetIDGenerator replaces the jti source. A nil next restores uuid.NewString.
func (t *TokenIssuer) SetIDGenerator(next func() string) {
	if next == nil {
		next = uuid.NewString
	}
	t.newID = next
}

// Issue returns a signed token for user and its expiry.
func (t *TokenIssuer) Issue(user User) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := sessionClaims{
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        t.newID(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses token and returns the principal it names. Any signature,
// algorithm, expiry, revocation, or role problem yields ErrInvalidCredentials.
func (t *TokenIssuer) Verify(token string) (Principal, error) {
	claims, err := t.parse(token)
	if err != nil {
		return Principal{}, err
	}

	t.mu.Lock()
	_, revoked := t.revoked[claims.ID]
	t.mu.Unlock()
	if revoked {
		return Principal{}, fmt.Errorf("%w: session revoked", ErrInvalidCredentials)
	}

	role, err := ParseRole(claims.Role)
	if err != nil || claims.Subject == "" {
		return Principal{}, fmt.Errorf("%w: malformed claims", ErrInvalidCredentials)
	}
	return Principal{UserID: claims.Subject, Name: claims.Name, Email: claims.Email, Role: role}, nil
}

// Revoke rejects token for the rest of its lifetime. Invalid tokens are ignored.
func (t *TokenIssuer) Revoke(token string) {
	claims, err := t.parse(token)
	if err != nil || claims.ID == "" {
		return
	}

	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, expiry := range t.revoked {
		if now.After(expiry) {
			delete(t.revoked, id)
		}
	}
	t.revoked[claims.ID] = claims.ExpiresAt.Time
}

func (t *TokenIssuer) parse(token string) (*sessionClaims, error) {
	if token == "" {
		return nil, ErrInvalidCredentials
	}
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(tok *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.key, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}
