package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for oracle response caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key for one oracle exchange. The provider and model
// are part of the key so switching oracles never replays stale verdicts.
func Key(provider, model, system, user string) string {
	h := sha256.New()
	for _, part := range []string{provider, model, system, user} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "stipcheck:v1:" + hex.EncodeToString(h.Sum(nil))
}
