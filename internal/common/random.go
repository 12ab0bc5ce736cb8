package common

import (
	"crypto/rand"
	"encoding/base64"
)

// MakeRandURLSafeString returns size random bytes from crypto/rand encoded
// with unpadded URL-safe base64. The result is ceil(size*4/3) characters.
func MakeRandURLSafeString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
