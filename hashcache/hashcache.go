// Package hashcache implements a bounded keccak-256 digest cache: two
// fixed-key-length LRUs (32 and 64 byte inputs, the hot sizes Solidity's
// mapping-slot derivation emits) plus an uncached fallback for every other
// length.
package hashcache

import (
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"
)

// DefaultSize is the default per-bucket capacity.
const DefaultSize = 1024

// HashCache caches keccak256(x) for the two fixed input lengths the EVM's
// SHA3 opcode sees most often. It is safe for concurrent use: each bucket is
// a golang-lru.Cache, which is already internally mutex-guarded, and the two
// buckets never need to be updated atomically with respect to each other.
type HashCache struct {
	mu      sync.Mutex // guards size, not individual Get/Add calls
	size    int
	cache32 *lru.Cache
	cache64 *lru.Cache
}

// New builds a HashCache with the given per-bucket capacity.
func New(size int) *HashCache {
	c32, err := lru.New(size)
	if err != nil {
		panic(err)
	}
	c64, err := lru.New(size)
	if err != nil {
		panic(err)
	}
	return &HashCache{size: size, cache32: c32, cache64: c64}
}

// Default builds a HashCache with DefaultSize capacity per bucket.
func Default() *HashCache {
	return New(DefaultSize)
}

// Hash returns keccak256(data). Inputs of length 32 or 64 are served from the
// corresponding LRU bucket; every other length is hashed directly without
// being cached.
func (c *HashCache) Hash(data []byte) uint256.Int {
	switch len(data) {
	case 32:
		var key [32]byte
		copy(key[:], data)
		return c.lookup(c.cache32, key)
	case 64:
		var key [64]byte
		copy(key[:], data)
		return c.lookup(c.cache64, key)
	default:
		return sha3(data)
	}
}

func (c *HashCache) lookup(bucket *lru.Cache, key any) uint256.Int {
	if v, ok := bucket.Get(key); ok {
		return v.(uint256.Int)
	}
	// Recompute is idempotent and cheap enough that a lost race on Add (two
	// goroutines missing concurrently) is harmless; the LRU is the
	// authoritative store, not a pure memoization guard.
	var h uint256.Int
	switch k := key.(type) {
	case [32]byte:
		h = sha3(k[:])
	case [64]byte:
		h = sha3(k[:])
	}
	bucket.Add(key, h)
	return h
}

func sha3(data []byte) uint256.Int {
	digest := crypto.Keccak256Hash(data)
	var w uint256.Int
	w.SetBytes32(digest[:])
	return w
}

// Capacity returns the configured per-bucket size, used by tests to check
// the active size.
func (c *HashCache) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}
