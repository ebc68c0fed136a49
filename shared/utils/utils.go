package utils

import (
	"crypto/sha1"
	"encoding/hex"
)

// HashLength is the length of a hex encoded content hash.
const HashLength = sha1.Size * 2

// HashContent returns the hex encoded SHA-1 digest of content.
func HashContent(content []byte) string {
	hash := sha1.Sum(content)
	return hex.EncodeToString(hash[:])
}

// IsValidHash reports whether hash looks like a value produced by HashContent.
func IsValidHash(hash string) bool {
	if len(hash) != HashLength {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
