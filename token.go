package veil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// Tokenization errors.
var (
	ErrInvalidKeySize = errors.New("invalid key size")
	ErrTokenInvalid   = errors.New("token invalid")
)

// TokenStrategy replaces values with reversible AES-GCM tokens. Unlike the
// builtin strategies it is not one-way: a holder of the same key recovers
// the original with Detokenize. It needs key material, so it is not part of
// the builtin registry; register it under a chosen name to reference it
// from tags:
//
//	tok, _ := veil.Token(key)
//	veil.RegisterStrategy("token", func() (veil.Strategy, error) { return tok, nil })
//
// Tokens are base64url strings carrying nonce and ciphertext. Masking the
// same value twice yields different tokens.
type TokenStrategy struct {
	gcm cipher.AEAD
}

// Token returns a reversible tokenization strategy.
// Key must be 16, 24, or 32 bytes for AES-128, AES-192, or AES-256.
func Token(key []byte) (*TokenStrategy, error) {
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, fmt.Errorf("%w: must be 16, 24, or 32 bytes, got %d", ErrInvalidKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &TokenStrategy{gcm: gcm}, nil
}

// Mask replaces a string with its token. Non-string values pass through.
// If nonce generation fails the result is the empty string, never the
// original value.
func (t *TokenStrategy) Mask(value any, _ *Context) any {
	str, ok := value.(string)
	if !ok {
		return value
	}

	nonce := make([]byte, t.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return ""
	}

	// Prepend nonce to ciphertext
	sealed := t.gcm.Seal(nonce, nonce, []byte(str), nil)
	return base64.RawURLEncoding.EncodeToString(sealed)
}

// Detokenize recovers the original value from a token produced by Mask.
func (t *TokenStrategy) Detokenize(token string) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	nonceSize := t.gcm.NonceSize()
	if len(sealed) < nonceSize {
		return "", fmt.Errorf("%w: too short", ErrTokenInvalid)
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := t.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	return string(plaintext), nil
}
