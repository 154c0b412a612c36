// Package keyring rotates Gemini API credentials across several quota-limited
// accounts so a single free-tier key is never the bottleneck.
package keyring

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"go.uber.org/zap"
)

const maxNumberedKeys = 9

var ErrNoKeys = errors.New("no gemini api keys configured")

type Ring struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

// LoadFromEnv reads GEMINI_API_KEY_1..9, falling back to the single
// GEMINI_API_KEY. The cursor starts at a random offset so parallel process
// instances spread load across accounts instead of hammering key 1.
func LoadFromEnv(logger *zap.Logger) (*Ring, error) {
	var keys []string
	for i := 1; i <= maxNumberedKeys; i++ {
		if key := os.Getenv(fmt.Sprintf("GEMINI_API_KEY_%d", i)); key != "" {
			keys = append(keys, key)
		}
	}

	if len(keys) == 0 {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			keys = append(keys, key)
			logger.Warn("using a single gemini api key, rotation disabled")
		}
	}

	if len(keys) == 0 {
		return nil, ErrNoKeys
	}

	logger.Info("key ring initialized", zap.Int("keys", len(keys)))
	return New(keys)
}

func New(keys []string) (*Ring, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	copied := make([]string, len(keys))
	copy(copied, keys)
	return &Ring{
		keys:   copied,
		cursor: rand.Intn(len(copied)),
	}, nil
}

// NextKey returns the next credential in round-robin order. The cursor is
// guarded so concurrent callers never observe the same index twice.
func (r *Ring) NextKey() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.keys[r.cursor]
	r.cursor = (r.cursor + 1) % len(r.keys)
	return key
}

// RandomKey picks uniformly at random, for parallel call sites that would
// otherwise contend on the cursor.
func (r *Ring) RandomKey() string {
	return r.keys[rand.Intn(len(r.keys))]
}

func (r *Ring) Keys() []string {
	copied := make([]string, len(r.keys))
	copy(copied, r.keys)
	return copied
}

func (r *Ring) Len() int {
	return len(r.keys)
}
