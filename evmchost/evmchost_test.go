package evmchost

import (
	"testing"

	"github.com/evmgo/evmcore/evmc"
	"github.com/evmgo/evmcore/u256"
)

func w(v uint64) u256.Word {
	var x u256.Word
	x.SetUint64(v)
	return x
}

func TestSStoreStatusNoOp(t *testing.T) {
	got := SStoreStatus(w(0), w(5), w(5))
	if got != evmc.StorageAssigned {
		t.Fatalf("current == value should report StorageAssigned, got %v", got)
	}
}

func TestSStoreStatusFreshAdd(t *testing.T) {
	got := SStoreStatus(w(0), w(0), w(7))
	if got != evmc.StorageAdded {
		t.Fatalf("0 -> 0 -> 7 should report StorageAdded, got %v", got)
	}
}

func TestSStoreStatusFreshDelete(t *testing.T) {
	got := SStoreStatus(w(9), w(9), w(0))
	if got != evmc.StorageDeleted {
		t.Fatalf("9 -> 9 -> 0 should report StorageDeleted, got %v", got)
	}
}

func TestSStoreStatusFreshModify(t *testing.T) {
	got := SStoreStatus(w(9), w(9), w(3))
	if got != evmc.StorageModified {
		t.Fatalf("9 -> 9 -> 3 should report StorageModified, got %v", got)
	}
}

func TestSStoreStatusDirtyRestore(t *testing.T) {
	// original 9, dirtied to 0 earlier in the tx, now restored to 9.
	got := SStoreStatus(w(9), w(0), w(9))
	if got != evmc.StorageDeletedRestored {
		t.Fatalf("9 -> 0 -> 9 should report StorageDeletedRestored, got %v", got)
	}
}

func TestSStoreStatusDirtyAddedThenDeleted(t *testing.T) {
	// original 0, dirtied to 5 earlier in the tx, now deleted back to 0.
	got := SStoreStatus(w(0), w(5), w(0))
	if got != evmc.StorageAddedDeleted {
		t.Fatalf("0 -> 5 -> 0 should report StorageAddedDeleted, got %v", got)
	}
}

func TestExecutionContextCachesTxContext(t *testing.T) {
	calls := 0
	host := &fakeHost{onTxContext: func() evmc.TxContext {
		calls++
		return evmc.TxContext{ChainID: w(1)}
	}}
	ctx := NewExecutionContext(host)
	ctx.TxContext()
	ctx.TxContext()
	if calls != 1 {
		t.Fatalf("GetTxContext called %d times, want 1 (cached)", calls)
	}
}

type fakeHost struct {
	HostInterface
	onTxContext func() evmc.TxContext
}

func (f *fakeHost) GetTxContext() evmc.TxContext {
	return f.onTxContext()
}

func TestSStoreStatusDirtyRecreateDifferentValue(t *testing.T) {
	// original 9, dirtied to 0 earlier in the tx, now set to a new value.
	got := SStoreStatus(w(9), w(0), w(5))
	if got != evmc.StorageDeletedAdded {
		t.Fatalf("9 -> 0 -> 5 should report StorageDeletedAdded, got %v", got)
	}
}

func TestSStoreStatusDirtyModifyThenDelete(t *testing.T) {
	// original 9, dirtied to 5 earlier in the tx, now deleted.
	got := SStoreStatus(w(9), w(5), w(0))
	if got != evmc.StorageModifiedDeleted {
		t.Fatalf("9 -> 5 -> 0 should report StorageModifiedDeleted, got %v", got)
	}
}

func TestSStoreStatusDirtyModifyThenRestore(t *testing.T) {
	// original 9, dirtied to 5 earlier in the tx, now restored to 9.
	got := SStoreStatus(w(9), w(5), w(9))
	if got != evmc.StorageModifiedRestored {
		t.Fatalf("9 -> 5 -> 9 should report StorageModifiedRestored, got %v", got)
	}
}

func TestSStoreStatusDirtyPlainAssignment(t *testing.T) {
	// Dirty writes matching no special transition settle as assignment.
	if got := SStoreStatus(w(9), w(5), w(3)); got != evmc.StorageAssigned {
		t.Fatalf("9 -> 5 -> 3 should report StorageAssigned, got %v", got)
	}
	if got := SStoreStatus(w(0), w(5), w(3)); got != evmc.StorageAssigned {
		t.Fatalf("0 -> 5 -> 3 should report StorageAssigned, got %v", got)
	}
}
