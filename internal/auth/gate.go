// Package auth gates the admin surface: it issues and validates session
// tokens and checks the signed-in email against the configured allowlist.
package auth

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password, so login failures do not reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAllowed reports a valid account whose email is not on the
	// admin allowlist.
	ErrNotAllowed = errors.New("email not allowed")
)

// Credential is one admin login: an email plus a bcrypt password hash.
type Credential struct {
	Email        string
	PasswordHash string
}

// Gate authenticates admins and answers the allowlist check.
type Gate struct {
	secret      string
	ttl         time.Duration
	credentials map[string]string
	allowed     map[string]bool
}

// NewGate builds a gate from configured credentials and an email
// allowlist. Emails are matched case-insensitively. Credentials whose
// email is not allowlisted can still never log in.
func NewGate(secret string, ttl time.Duration, credentials []Credential, allowedEmails []string) *Gate {
	g := &Gate{
		secret:      secret,
		ttl:         ttl,
		credentials: make(map[string]string),
		allowed:     make(map[string]bool),
	}
	for _, c := range credentials {
		g.credentials[normalizeEmail(c.Email)] = c.PasswordHash
	}
	for _, email := range allowedEmails {
		if e := normalizeEmail(email); e != "" {
			g.allowed[e] = true
		}
	}
	return g
}

// Login verifies the password and the allowlist, then issues a session
// token.
func (g *Gate) Login(email, password string) (string, error) {
	email = normalizeEmail(email)
	hash, exists := g.credentials[email]
	if !exists {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	if !g.Allowed(email) {
		return "", ErrNotAllowed
	}
	return GenerateToken(g.secret, email, g.ttl)
}

// Verify parses a session token and re-checks the allowlist, so revoking
// an email takes effect on the next request, not at token expiry.
func (g *Gate) Verify(tokenStr string) (*Claims, error) {
	claims, err := ParseToken(g.secret, tokenStr)
	if err != nil {
		return nil, err
	}
	if !g.Allowed(claims.Email) {
		return nil, ErrNotAllowed
	}
	return claims, nil
}

// Allowed answers the access-gate check for an email.
func (g *Gate) Allowed(email string) bool {
	return g.allowed[normalizeEmail(email)]
}

// HashPassword produces a bcrypt hash for configuring credentials.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
