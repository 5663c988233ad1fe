// Package testing provides shared fixtures for veil's integration tests
// and benchmarks.
package testing

import (
	"testing"

	"github.com/veilkit/veil"
)

// TestKey returns a valid 32-byte key for tokenization tests.
func TestKey(tb testing.TB) []byte {
	tb.Helper()
	return []byte("32-byte-key-for-aes-256-tokens!!")
}

// TestTokenStrategy returns a tokenization strategy keyed for testing.
func TestTokenStrategy(tb testing.TB) *veil.TokenStrategy {
	tb.Helper()
	s, err := veil.Token(TestKey(tb))
	if err != nil {
		tb.Fatalf("Token() error: %v", err)
	}
	return s
}

// SimpleUser is a test type with no masking metadata.
type SimpleUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Clone implements Cloner[SimpleUser].
func (u SimpleUser) Clone() SimpleUser { return u }

// SanitizedUser is a test type exercising the builtin policies.
type SanitizedUser struct {
	ID       string `json:"id"`
	Name     string `json:"name" mask:"name"`
	Email    string `json:"email" mask:"email"`
	Phone    string `json:"phone" mask:"phone"`
	Password string `json:"password" mask:"password"`
	SSN      string `json:"ssn" mask:"ssn"`
	Note     string `json:"note"`
}

// Clone implements Cloner[SanitizedUser].
func (u SanitizedUser) Clone() SanitizedUser {
	return SanitizedUser{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Password: u.Password,
		SSN:      u.SSN,
		Note:     u.Note,
	}
}
