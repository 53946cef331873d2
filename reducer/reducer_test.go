package reducer

import (
	"context"
	"testing"

	"github.com/ChenxingLi/evm-io-tracker/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(addr byte, slot uint64) types.StorageKey {
	return types.NewStorageKey(common.Address{addr}, uint256.NewInt(slot))
}

func rd(k types.StorageKey, v uint64) types.Access { return types.Read(k, uint256.NewInt(v)) }
func wr(k types.StorageKey, v uint64) types.Access { return types.Write(k, uint256.NewInt(v)) }
func word(v uint64) [32]byte { return uint256.NewInt(v).Bytes32() }
func tx(accesses ...types.Access) types.TransactionAccessLog { return accesses }

func TestCompactBlockLastWriteWins(t *testing.T) {
	k := key(1, 1)
	block := types.BlockAccessLog{
		tx(rd(k, 5), wr(k, 9)),
		tx(rd(k, 9), wr(k, 3)),
	}
	got := CompactBlock(block)
	assert.Equal(t, types.BlockWorkload{
		types.ReadTask(k.Digest()),
		types.WriteTask(k.Digest(), word(3)),
	}, got)
}

func TestCompactBlockWriteOnly(t *testing.T) {
	k := key(1, 1)
	got := CompactBlock(types.BlockAccessLog{tx(wr(k, 7))})
	assert.Equal(t, types.BlockWorkload{types.WriteTask(k.Digest(), word(7))}, got)
}

func TestCompactBlockReadsAfterLastWrite(t *testing.T) {
	k := key(1, 1)
	got := CompactBlock(types.BlockAccessLog{tx(wr(k, 4), rd(k, 4), wr(k, 6), rd(k, 6))})
	// first access is a write: no read task
	assert.Equal(t, types.BlockWorkload{types.WriteTask(k.Digest(), word(6))}, got)
}

func TestCompactBlockOrdering(t *testing.T) {
	a, b, c := key(1, 1), key(2, 2), key(3, 3)
	block := types.BlockAccessLog{
		tx(wr(b, 1), rd(a, 1)),
		tx(rd(c, 2), wr(a, 8), rd(b, 1)),
	}
	got := CompactBlock(block)
	// reads for a, c in encounter order, then writes for b, a
	assert.Equal(t, types.BlockWorkload{
		types.ReadTask(a.Digest()),
		types.ReadTask(c.Digest()),
		types.WriteTask(b.Digest(), word(1)),
		types.WriteTask(a.Digest(), word(8)),
	}, got)

	// at most one read and one write per key
	r, w := got.Counts()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, w)
	assert.Equal(t, got, CompactBlock(block))
}

func TestCompactEmptyBlock(t *testing.T) {
	assert.Empty(t, CompactBlock(nil))
	assert.Empty(t, CompactBlock(types.BlockAccessLog{tx()}))
}

func TestSnapshotFirstTouch(t *testing.T) {
	k1, k2, k3 := key(1, 1), key(2, 2), key(3, 3)
	l := types.FullAccessLog{
		{tx(wr(k1, 7))},
		{tx(rd(k2, 0)), tx(rd(k3, 42))},
		{tx(rd(k1, 7), rd(k2, 5), rd(k3, 43))},
	}
	s := BuildSnapshot(l)
	assert.Equal(t, 3, s.Touched())
	assert.Equal(t, 1, s.Len())

	_, ok := s.Value(k1)
	assert.False(t, ok, "written before read")
	_, ok = s.Value(k2)
	assert.False(t, ok, "zero first read")
	v, ok := s.Value(k3)
	require.True(t, ok)
	assert.Equal(t, uint64(42), v.Uint64())

	assert.Equal(t, []types.InitialStateEntry{{Digest: k3.Digest(), Value: word(42)}}, s.Entries())

	st, ok := s.Stat(k1)
	require.True(t, ok)
	assert.Equal(t, 1, st.Reads)
	assert.Equal(t, 1, st.Writes)
	_, ok = s.Stat(key(9, 9))
	assert.False(t, ok)
}

func TestSnapshotValueMatchesEntries(t *testing.T) {
	var block types.BlockAccessLog
	for i := 0; i < 200; i++ {
		k := key(byte(i), uint64(i))
		if i%3 == 0 {
			block = append(block, tx(wr(k, 1), rd(k, 1)))
		} else {
			block = append(block, tx(rd(k, uint64(i%5))))
		}
	}
	s := BuildSnapshot(types.FullAccessLog{block})

	seeded := 0
	for i := 0; i < 200; i++ {
		v, ok := s.Value(key(byte(i), uint64(i)))
		if i%3 == 0 || i%5 == 0 {
			assert.False(t, ok, "key %d", i)
			continue
		}
		require.True(t, ok, "key %d", i)
		assert.Equal(t, uint64(i%5), v.Uint64())
		assert.Equal(t, v.Bytes32(), s.Entries()[seeded].Value)
		seeded++
	}
	assert.Equal(t, s.Len(), seeded)
}

func TestSnapshotIdempotent(t *testing.T) {
	var l types.FullAccessLog
	for b := 0; b < 5; b++ {
		var block types.BlockAccessLog
		for i := 0; i < 4; i++ {
			k := key(byte(i), uint64(b%2))
			block = append(block, tx(rd(k, uint64(b+i)), wr(k, uint64(b))))
		}
		l = append(l, block)
	}
	first := BuildSnapshot(l).Entries()
	second := BuildSnapshot(l).Entries()
	assert.ElementsMatch(t, first, second)
}

func TestShuffleIsPermutation(t *testing.T) {
	var block types.BlockAccessLog
	for i := 0; i < 64; i++ {
		block = append(block, tx(rd(key(byte(i), uint64(i)), uint64(i+1))))
	}
	s := BuildSnapshot(types.FullAccessLog{block})
	require.Equal(t, 64, s.Len())

	shuffled := s.Shuffled(NewRand(7))
	assert.ElementsMatch(t, s.Entries(), shuffled)
	assert.NotEqual(t, s.Entries(), shuffled)
	assert.Equal(t, shuffled, s.Shuffled(NewRand(7)))
}

func TestHotKeys(t *testing.T) {
	a, b, c := key(1, 1), key(2, 2), key(3, 3)
	l := types.FullAccessLog{{tx(rd(a, 1), rd(b, 1), wr(b, 2), rd(c, 1), wr(c, 1), rd(c, 1))}}
	hot := BuildSnapshot(l).HotKeys(2)
	require.Len(t, hot, 2)
	assert.Equal(t, c, hot[0].Key)
	assert.Equal(t, 3, hot[0].Total())
	assert.Equal(t, b, hot[1].Key)
	assert.Len(t, BuildSnapshot(l).HotKeys(10), 3)
}

func TestReduce(t *testing.T) {
	k1, k2 := key(1, 1), key(2, 2)
	l := types.FullAccessLog{
		{tx(wr(k1, 7))},
		{tx(rd(k2, 3), wr(k2, 4)), tx(rd(k1, 7))},
	}
	res, err := Reduce(context.Background(), l, Options{Seed: 1, Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Blocks)
	assert.Equal(t, 3, res.Txs)
	assert.Equal(t, 4, res.Ops)
	assert.Equal(t, []types.InitialStateEntry{{Digest: k2.Digest(), Value: word(3)}}, res.Init)
	require.Len(t, res.Workload, 2)
	assert.Equal(t, types.BlockWorkload{types.WriteTask(k1.Digest(), word(7))}, res.Workload[0])
	assert.Equal(t, types.BlockWorkload{
		types.ReadTask(k2.Digest()),
		types.ReadTask(k1.Digest()),
		types.WriteTask(k2.Digest(), word(4)),
	}, res.Workload[1])
}

func TestCompactCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compact(ctx, types.FullAccessLog{{tx(rd(key(1, 1), 1))}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
