// Package cache provides response caching for evidence provider calls, so
// repeated claims across jobs do not re-query the same services.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a provider name and a claim text.
func Key(provider, claim string) string {
	hash := sha256.Sum256([]byte(claim))
	return "credence:v1:" + provider + ":" + hex.EncodeToString(hash[:])
}
