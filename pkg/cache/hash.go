package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key returns prefix + ":" + the SHA-256 of content.
func Key(prefix, content string) string {
	return prefix + ":" + Hash([]byte(content))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
