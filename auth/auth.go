/*
Package auth implements the admin access gate.

PURPOSE:
  Distinguishes the authenticated administrator from anonymous kiosk
  users. There is exactly one credential pair, configured at startup;
  a successful login issues a signed HS256 session token carried in a
  cookie, and middleware turns that cookie into a request-scoped
  Identity. No process-global state: handlers read the identity from
  the request context.

TOKEN SHAPE:
  Standard registered claims plus a role. The jti is a random UUID so
  individual sessions are distinguishable in logs. Tokens expire
  after 12 hours; logout just clears the cookie (no server-side
  session table to invalidate).

SEE ALSO:
  - api/handlers.go: Login/logout endpoints
  - api/server.go: Route gating with RequireAdmin
*/
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the session cookie holding the signed token.
const CookieName = "attendance_session"

// TokenTTL is how long a login session stays valid.
const TokenTTL = 12 * time.Hour

const roleAdmin = "admin"

// ErrBadCredentials is returned when the submitted pair does not match
// the configured one.
var ErrBadCredentials = errors.New("invalid credentials")

// ErrNoSession is returned when a request carries no valid session.
var ErrNoSession = errors.New("no valid session")

// Identity is the request-scoped authentication context.
type Identity struct {
	Admin    bool
	Username string
}

type contextKey struct{}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity attached to the request, or the
// anonymous zero value.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(contextKey{}).(Identity)
	return id
}

// Gate checks credentials and mints/verifies session tokens.
type Gate struct {
	secret   []byte
	username string
	password string
}

// NewGate creates a gate for the configured credential pair.
func NewGate(secret, username, password string) *Gate {
	return &Gate{
		secret:   []byte(secret),
		username: username,
		password: password,
	}
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Login compares the submitted credentials against the configured pair
// and returns a signed session token on success.
func (g *Gate) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) == 1
	if !userOK || !passOK {
		return "", ErrBadCredentials
	}

	now := time.Now()
	claims := sessionClaims{
		Role: roleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses a session token and returns the identity it carries.
func (g *Gate) Verify(tokenString string) (Identity, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		// Reject algorithm substitution.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrNoSession
	}

	return Identity{
		Admin:    claims.Role == roleAdmin,
		Username: claims.Subject,
	}, nil
}

// SessionCookie wraps a signed token in the session cookie.
func SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(TokenTTL.Seconds()),
	}
}

// ClearCookie expires the session cookie.
func ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

// Middleware attaches the identity from the session cookie, when one
// is present and valid, to the request context. Requests without a
// session proceed as anonymous.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(CookieName); err == nil {
			if id, err := g.Verify(cookie.Value); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose identity is not the admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromContext(r.Context()).Admin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"admin login required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
