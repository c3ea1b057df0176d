package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ampvending/amp-backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Identity is the public part of an admin account carried inside tokens.
type Identity struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  model.Role `json:"role"`
}

// IdentityOf extracts the token identity of an admin account.
func IdentityOf(a *model.Admin) Identity {
	return Identity{ID: a.ID, Email: a.Email, Name: a.Name, Role: a.Role}
}

// View is the dashboard identity derived from the token alone.
func (i Identity) View() model.AdminView {
	return model.AdminView{ID: i.ID, Email: i.Email, Name: i.Name, Role: i.Role, Capabilities: i.Role.Capabilities()}
}

// Claims extends JWT standard claims with the admin identity.
type Claims struct {
	jwt.RegisteredClaims
	Kind  TokenKind  `json:"kind"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  model.Role `json:"role"`
}

// Identity returns the admin identity encoded in the claims.
func (c *Claims) Identity() Identity {
	return Identity{ID: c.Subject, Email: c.Email, Name: c.Name, Role: c.Role}
}

// TokenIssuer signs and verifies HS256 session tokens.
// It holds no per-session state; a token is valid iff its signature and expiry are.
type TokenIssuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. An empty secret is a configuration error.
func NewTokenIssuer(secret, issuer string) (*TokenIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Issue mints a token of the given kind that expires after ttl.
func (t *TokenIssuer) Issue(id Identity, kind TokenKind, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, errors.New("ttl must be greater than zero")
	}
	if strings.TrimSpace(id.ID) == "" {
		return "", time.Time{}, errors.New("identity id is required")
	}

	now := t.now().UTC()
	expiresAt := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Kind:  kind,
		Email: id.Email,
		Name:  id.Name,
		Role:  id.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses a token and checks signature, issuer, expiry and kind.
// Every failure is ErrUnauthenticated.
func (t *TokenIssuer) Verify(tokenStr string, kind TokenKind) (*Claims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, ErrUnauthenticated
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(tk *jwt.Token) (interface{}, error) {
		if tk.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", tk.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrUnauthenticated
	}
	if claims.Kind != kind || claims.Subject == "" {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}
