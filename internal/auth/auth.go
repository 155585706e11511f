// Package auth supplies the verified caller identity the rest of the
// system trusts completely. Ownership is always derived from this
// identity, never from request bodies.
package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified caller the token issuer vouches for.
type Identity struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	IsGuest bool   `json:"is_guest"`
	IsAdmin bool   `json:"is_admin"`
}

// Verifier turns a bearer token into an Identity. Implementations: JWT
// against the external issuer's shared secret, and a fixed mock for
// dev/test. The mode is selected once at process start.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// NewVerifier picks the implementation from AUTH_MODE ("mock" or "jwt").
func NewVerifier() Verifier {
	if os.Getenv("AUTH_MODE") == "mock" {
		return MockVerifier{Identity: Identity{
			UID:   "mock_user_123",
			Email: "test@example.com",
		}}
	}
	return &JWTVerifier{secret: []byte(os.Getenv("JWT_SECRET"))}
}

/* ============================== JWT Claims ============================== */

// Claims represents the JWT payload we expect from the issuer.
type Claims struct {
	Sub   string `json:"sub"`   // user ID
	Email string `json:"email"` //
	Role  string `json:"role"`  // "user" | "lawyer" | "admin"
	Guest bool   `json:"guest"` // anonymous session
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 bearer tokens.
type JWTVerifier struct{ secret []byte }

func (v *JWTVerifier) Verify(tokenStr string) (Identity, error) {
	if tokenStr == "" {
		return Identity{}, errors.New("auth: missing bearer token")
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, errors.New("auth: invalid token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Identity{}, errors.New("auth: invalid claims")
	}
	return Identity{
		UID:     claims.Sub,
		Email:   claims.Email,
		IsGuest: claims.Guest,
		IsAdmin: claims.Role == "admin",
	}, nil
}

// IssueToken signs a short-lived JWT (default 7 days) for the given
// identity. Used by dev tooling and tests; production tokens come from the
// external issuer.
func IssueToken(uid, email, role string, guest bool) (string, error) {
	claims := &Claims{
		Sub:   uid,
		Email: email,
		Role:  role,
		Guest: guest,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// MockVerifier returns one fixed identity for every request, for running
// without an identity provider configured.
type MockVerifier struct{ Identity Identity }

func (v MockVerifier) Verify(string) (Identity, error) { return v.Identity, nil }
