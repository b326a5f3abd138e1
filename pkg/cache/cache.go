// Package cache defines the memoization layer the build pipeline runs
// on. The cache is an explicit, caller-owned dependency injected into
// the engine, not a hidden process-wide singleton, so tests isolate
// trivially and callers can bound or share it as they see fit.
package cache

import (
	"fmt"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/goliatone/go-entgen/internal/codec"
)

// Key identifies one cached computation: a 32-byte BLAKE3 keyed digest
// of the deterministic encoding of the inputs. Structural equality of
// inputs, not identity, decides cache hits.
type Key [32]byte

// Cache maps keys to computed results. Implementations must tolerate
// concurrent readers computing the same key: at-least-once computation
// is acceptable, but writes for equal keys must be idempotent so
// duplicate computation never corrupts the cache.
type Cache interface {
	GetOrCompute(key Key, compute func() (any, error)) (any, error)
}

// NewKey hashes v's deterministic CBOR encoding under a domain-separated
// BLAKE3 key, so the same payload hashed for different purposes (build,
// template extension, availability) can never collide. v must be
// encodable: fingerprint views, not values carrying functions.
func NewKey(domain string, v any) (Key, error) {
	data, err := codec.Marshal(v)
	if err != nil {
		return Key{}, fmt.Errorf("cache: encode key payload: %w", err)
	}
	h, err := blake3.NewKeyed(domainKey(domain))
	if err != nil {
		return Key{}, fmt.Errorf("cache: keyed hasher: %w", err)
	}
	_, _ = h.Write(data)
	var key Key
	copy(key[:], h.Sum(nil))
	return key, nil
}

// domainKey turns a short ASCII domain name into a 32-byte BLAKE3 key,
// zero-padded so the bytes stay readable in a debugger. Longer names
// truncate.
func domainKey(domain string) []byte {
	key := make([]byte, 32)
	copy(key, domain)
	return key
}

// Memory is an unbounded, process-lifetime Cache backed by a sync.Map.
// Eviction is deliberately out of scope; callers needing a bound wrap
// or replace it through the Cache interface.
type Memory struct {
	entries sync.Map
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{}
}

// GetOrCompute returns the cached value for key, computing and storing
// it on a miss. Two goroutines racing on the same key may both compute;
// LoadOrStore keeps the first stored value so equal keys stay
// consistent. Errors are returned to the caller and never cached.
func (m *Memory) GetOrCompute(key Key, compute func() (any, error)) (any, error) {
	if v, ok := m.entries.Load(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	actual, _ := m.entries.LoadOrStore(key, v)
	return actual, nil
}
