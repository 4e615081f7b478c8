package stack

import (
	"testing"

	"github.com/evmgo/evmcore/u256"
)

func one(v uint64) u256.Word {
	var w u256.Word
	w.SetUint64(v)
	return w
}

func TestPushPop(t *testing.T) {
	s := New()
	defer Return(s)

	a := one(1)
	b := one(2)
	s.Push(&a)
	s.Push(&b)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if got := s.Pop(); got.Uint64() != 2 {
		t.Fatalf("Pop() = %d, want 2", got.Uint64())
	}
	if got := s.Pop(); got.Uint64() != 1 {
		t.Fatalf("Pop() = %d, want 1", got.Uint64())
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestDup(t *testing.T) {
	s := New()
	defer Return(s)

	a, b := one(10), one(20)
	s.Push(&a)
	s.Push(&b)
	s.Dup(2) // duplicate the word 2 from top (the 10)

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	if got := s.Pop(); got.Uint64() != 10 {
		t.Fatalf("top after Dup(2) = %d, want 10", got.Uint64())
	}
}

func TestSwap(t *testing.T) {
	s := New()
	defer Return(s)

	a, b, c := one(1), one(2), one(3)
	s.Push(&a)
	s.Push(&b)
	s.Push(&c)
	s.Swap(2) // swap top (3) with the word 2 below it (1)

	if got := s.Pop(); got.Uint64() != 1 {
		t.Fatalf("top after Swap(2) = %d, want 1", got.Uint64())
	}
	if got := s.Pop(); got.Uint64() != 2 {
		t.Fatalf("next after Swap(2) = %d, want 2", got.Uint64())
	}
	if got := s.Pop(); got.Uint64() != 3 {
		t.Fatalf("bottom after Swap(2) = %d, want 3", got.Uint64())
	}
}

func TestBackDoesNotMutate(t *testing.T) {
	s := New()
	defer Return(s)

	a, b := one(1), one(2)
	s.Push(&a)
	s.Push(&b)

	if got := s.Back(0).Uint64(); got != 2 {
		t.Fatalf("Back(0) = %d, want 2", got)
	}
	if got := s.Back(1).Uint64(); got != 1 {
		t.Fatalf("Back(1) = %d, want 1", got)
	}
	if s.Len() != 2 {
		t.Fatalf("Back should not mutate stack length, got Len() = %d", s.Len())
	}
}

func TestCheckDepthUnderflow(t *testing.T) {
	s := New()
	defer Return(s)

	a := one(1)
	s.Push(&a)

	err := CheckDepth(s, 2, 0)
	if err == nil {
		t.Fatalf("expected underflow error")
	}
	ue, ok := err.(*UnderflowError)
	if !ok {
		t.Fatalf("error type = %T, want *UnderflowError", err)
	}
	if ue.Len != 1 || ue.Required != 2 {
		t.Fatalf("UnderflowError = %+v, want Len=1 Required=2", ue)
	}
}

func TestCheckDepthOverflow(t *testing.T) {
	s := New()
	defer Return(s)

	for i := 0; i < Limit; i++ {
		v := one(uint64(i))
		s.Push(&v)
	}

	err := CheckDepth(s, 0, 1)
	if err == nil {
		t.Fatalf("expected overflow error when pushing past Limit")
	}
	oe, ok := err.(*OverflowError)
	if !ok {
		t.Fatalf("error type = %T, want *OverflowError", err)
	}
	if oe.Limit != Limit {
		t.Fatalf("OverflowError.Limit = %d, want %d", oe.Limit, Limit)
	}
}

func TestCheckDepthWithinLimitOK(t *testing.T) {
	s := New()
	defer Return(s)

	a := one(1)
	s.Push(&a)

	if err := CheckDepth(s, 1, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReturnClearsStack(t *testing.T) {
	s := New()
	a := one(42)
	s.Push(&a)
	Return(s)

	s2 := New()
	defer Return(s2)
	// Not guaranteed to be the same backing Stack (pool semantics), but if it
	// is, it must come back empty.
	if s2.Len() != 0 {
		t.Fatalf("Stack drawn from pool has Len() = %d, want 0", s2.Len())
	}
}

func TestData(t *testing.T) {
	s := New()
	defer Return(s)

	a, b := one(7), one(8)
	s.Push(&a)
	s.Push(&b)

	d := s.Data()
	if len(d) != 2 || d[0].Uint64() != 7 || d[1].Uint64() != 8 {
		t.Fatalf("Data() = %v, want [7 8]", d)
	}
}
