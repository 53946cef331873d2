package storage

import (
	"path/filepath"
	"testing"

	"github.com/ChenxingLi/evm-io-tracker/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistenceStore_BasicOperations(t *testing.T) {
	// Create in-memory store
	ps, err := NewMemoryPersistenceStore()
	if err != nil {
		t.Fatalf("Failed to create memory store: %v", err)
	}
	defer ps.Close()

	key := common.HexToHash("0x01")
	value := [32]byte{31: 7}
	if err := ps.Put(key, value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, found, err := ps.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("Expected key to be found")
	}
	if string(got) != string(value[:]) {
		t.Errorf("Get returned %x, want %x", got, value)
	}

	_, found, err = ps.Get(common.HexToHash("0x02"))
	if err != nil {
		t.Fatalf("Get non-existent failed: %v", err)
	}
	if found {
		t.Error("Expected key not to be found")
	}
}

func TestPersistenceStore_SeedAndApply(t *testing.T) {
	ps, err := NewPersistenceStore(filepath.Join(t.TempDir(), "db"), &Options{CacheMB: 8, BloomBits: 10})
	require.NoError(t, err)
	defer ps.Close()

	a, b, c := common.HexToHash("0xa"), common.HexToHash("0xb"), common.HexToHash("0xc")
	require.NoError(t, ps.Seed([]types.InitialStateEntry{
		{Digest: a, Value: [32]byte{31: 1}},
		{Digest: b, Value: [32]byte{31: 2}},
		{Digest: c, Value: [32]byte{31: 3}},
	}, 2))
	n, err := ps.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	d := common.HexToHash("0xd")
	res, err := ps.Apply(types.BlockWorkload{
		types.ReadTask(a),
		types.ReadTask(d),
		types.WriteTask(d, [32]byte{31: 9}),
		types.WriteTask(a, [32]byte{31: 8}),
	})
	require.NoError(t, err)
	assert.Equal(t, ApplyResult{Reads: 2, Hits: 1, Writes: 2}, res)

	got, found, err := ps.Get(a)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, byte(8), got[31])

	n, err = ps.Len()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
