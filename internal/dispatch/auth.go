// Package dispatch implements the worker dispatch layer: JWT-based role
// authentication and the worker-facing JSON result contract. Claim/submit
// business logic itself lives in internal/registry, which this package's
// HTTP middleware hands a verified model.Caller to.
package dispatch

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aureuma/skillregistry/internal/model"
)

// claims is the JWT payload the registry issues and verifies. Identity
// issuance itself is out of scope; this package only
// trusts tokens signed with the registry's own key, asserting a role for
// an already-authenticated principal.
type claims struct {
	jwt.RegisteredClaims
	Role model.Role `json:"role"`
}

// Authenticator mints and verifies bearer tokens for the worker/admin/user
// roles.
type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{signingKey: []byte(signingKey)}
}

// Issue mints a signed token asserting identity and role, valid for ttl.
func (a *Authenticator) Issue(identity model.Identity, role model.Role, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(identity),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(a.signingKey)
}

// Verify parses and validates a bearer token, returning the Caller it
// asserts. An anonymous caller (no token) is represented by
// model.Anonymous/model.RoleUser, not an error — queries and
// record_install both accept anonymous callers.
func (a *Authenticator) Verify(tokenString string) (model.Caller, error) {
	if tokenString == "" {
		return model.Caller{Identity: model.Anonymous, Role: model.RoleUser}, nil
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.signingKey, nil
	})
	if err != nil {
		return model.Caller{}, err
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return model.Caller{}, errors.New("invalid token")
	}
	return model.Caller{Identity: model.Identity(c.Subject), Role: c.Role}, nil
}
