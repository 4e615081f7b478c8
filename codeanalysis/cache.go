package codeanalysis

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the default number of analyzed contracts kept per
// cache, mirroring hashcache.DefaultSize: both bound the same kind of
// per-code-hash memoization.
const DefaultCacheSize = 1024

// Cache memoizes analysis results keyed by the code's keccak256 hash, so
// that a contract executed repeatedly within a process lifetime is only
// scanned once. Two independent caches exist at the VM layer, one for
// Classification and one for Rewritten analysis (the interpreter selects
// between them per call: Execute walks the Classification, the Stepper
// walks the Rewritten cells), since a given call site only ever needs one
// flavor.
type Cache struct {
	mu    sync.Mutex // guards size only; the LRU itself is internally synchronized
	size  int
	inner *lru.Cache
}

// NewCache builds a Cache with the given capacity.
func NewCache(size int) *Cache {
	inner, err := lru.New(size)
	if err != nil {
		panic(err)
	}
	return &Cache{size: size, inner: inner}
}

// DefaultCache builds a Cache with DefaultCacheSize capacity.
func DefaultCache() *Cache {
	return NewCache(DefaultCacheSize)
}

// Capacity returns the configured cache size.
func (c *Cache) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// ClassificationCache caches Classify results keyed by code hash.
type ClassificationCache struct {
	*Cache
}

// NewClassificationCache builds a ClassificationCache with the given capacity.
func NewClassificationCache(size int) *ClassificationCache {
	return &ClassificationCache{NewCache(size)}
}

// GetOrAnalyze returns the cached Classification for code, computing and
// storing it first if absent. hash must be keccak256(code); callers that
// already have it (vm.Instance takes it from the message's CodeHash or its
// hash cache) should pass it directly rather than re-hashing.
func (c *ClassificationCache) GetOrAnalyze(hash common.Hash, code []byte) []CodeByteType {
	if v, ok := c.inner.Get(hash); ok {
		return v.([]CodeByteType)
	}
	result := Classify(code)
	c.inner.Add(hash, result)
	return result
}

// RewrittenCache caches Analyze results keyed by code hash.
type RewrittenCache struct {
	*Cache
}

// NewRewrittenCache builds a RewrittenCache with the given capacity.
func NewRewrittenCache(size int) *RewrittenCache {
	return &RewrittenCache{NewCache(size)}
}

// GetOrAnalyze returns the cached Rewritten analysis for code, computing and
// storing it first if absent.
func (c *RewrittenCache) GetOrAnalyze(hash common.Hash, code []byte) *Rewritten {
	if v, ok := c.inner.Get(hash); ok {
		return v.(*Rewritten)
	}
	result := Analyze(code)
	c.inner.Add(hash, result)
	return result
}

// HashCode is a convenience wrapper for callers that don't already have the
// code hash handy (tests, mostly; the interpreter receives it from its
// caller as a parameter).
func HashCode(code []byte) common.Hash {
	return crypto.Keccak256Hash(code)
}
