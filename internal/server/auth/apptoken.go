package auth

import (
	"crypto/subtle"

	"github.com/Antoney20/archives/internal/common"
	"golang.org/x/crypto/blake2b"
)

// AppTokenBytes is the entropy of an app token before encoding.
const AppTokenBytes = 48

// NewAppToken returns a fresh random app token, 64 URL-safe characters.
func NewAppToken() (string, error) {
	return common.MakeRandURLSafeString(AppTokenBytes)
}

// HashToken returns the digest stored in place of token.
func HashToken(token string) []byte {
	sum := blake2b.Sum256([]byte(token))
	return sum[:]
}

// TokenMatches compares token against a stored digest in constant time.
func TokenMatches(token string, digest []byte) bool {
	return subtle.ConstantTimeCompare(HashToken(token), digest) == 1
}
