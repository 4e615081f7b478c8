package hashcache

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestHashMatchesRawKeccak(t *testing.T) {
	c := Default()
	for _, n := range []int{0, 1, 31, 32, 33, 63, 64, 65, 128} {
		data := bytes.Repeat([]byte{0xab}, n)
		want := crypto.Keccak256Hash(data)

		got := c.Hash(data)
		gotBytes := got.Bytes32()
		if !bytes.Equal(gotBytes[:], want[:]) {
			t.Fatalf("len %d: hash mismatch: got %x want %x", n, gotBytes, want)
		}
	}
}

func TestHashCachedResultStable(t *testing.T) {
	c := Default()
	data := bytes.Repeat([]byte{0x11}, 32)

	first := c.Hash(data)
	second := c.Hash(data)
	if first != second {
		t.Fatalf("cached result changed across calls: %v != %v", first, second)
	}
}

func TestHashBypassesCacheForOtherLengths(t *testing.T) {
	c := New(1)
	a := c.Hash([]byte("hello"))
	b := c.Hash([]byte("hello"))
	if a != b {
		t.Fatalf("uncached hash not deterministic: %v != %v", a, b)
	}
	if c.cache32.Len() != 0 || c.cache64.Len() != 0 {
		t.Fatalf("expected non-32/64 length input to bypass both buckets")
	}
}

func TestCapacityReportsConfiguredSize(t *testing.T) {
	c := New(7)
	if got := c.Capacity(); got != 7 {
		t.Fatalf("Capacity() = %d, want 7", got)
	}
}
