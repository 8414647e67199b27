// Package secrets generates and verifies the operator tokens that guard the
// admin review API. Only bcrypt hashes are ever configured or stored.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "surebet/pkg/domain-errors"
)

const tokenBytes = 32

// Generate returns a random URL-safe token.
func Generate() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash returns the bcrypt hash of token at cost. A cost of zero uses
// bcrypt.DefaultCost.
func Hash(token string, cost int) (string, error) {
	if token == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "token cannot be empty")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "token is too long")
		}
		return "", fmt.Errorf("could not hash token: %w", err)
	}
	return string(hashed), nil
}

// Verify checks token against hash. A mismatch is CodeUnauthorized; a
// malformed hash is a plain error.
func Verify(token, hash string) error {
	if token == "" || hash == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "admin token required")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeUnauthorized, "admin token required")
		}
		return fmt.Errorf("could not verify token: %w", err)
	}
	return nil
}
