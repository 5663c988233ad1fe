package veil

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// hashStrategy replaces values with a short BLAKE2b fingerprint.
type hashStrategy struct{}

// HashStrategy returns the builtin strategy that replaces a string with a
// 16 character hex BLAKE2b-256 fingerprint. The fingerprint is
// deterministic: equal inputs mask to equal outputs, which keeps masked
// datasets joinable without exposing the originals. It is not reversible;
// use Token for values a trusted side must recover.
func HashStrategy() Strategy {
	return &hashStrategy{}
}

func (s *hashStrategy) Mask(value any, _ *Context) any {
	str, ok := value.(string)
	if !ok {
		return value
	}
	sum := blake2b.Sum256([]byte(str))
	return hex.EncodeToString(sum[:8])
}
