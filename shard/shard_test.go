package shard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ChenxingLi/evm-io-tracker/codec"
	"github.com/ChenxingLi/evm-io-tracker/ioerrors"
	"github.com/ChenxingLi/evm-io-tracker/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u64(v uint64) *uint64 { return &v }

// blocks returns n single-access blocks whose slot is the block number.
func blocks(start uint64, n int) types.FullAccessLog {
	out := make(types.FullAccessLog, n)
	for i := range out {
		k := types.NewStorageKey(common.Address{1}, uint256.NewInt(start+uint64(i)))
		out[i] = types.BlockAccessLog{{types.Read(k, uint256.NewInt(1))}}
	}
	return out
}

func writeShard(t *testing.T, dir string, start uint64, n int) {
	_, err := Write(dir, start, blocks(start, n))
	require.NoError(t, err)
}

func TestParseName(t *testing.T) {
	s, err := ParseName("100_10.trace")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), s.Start)
	assert.Equal(t, uint64(110), s.End())
	assert.Equal(t, "100_10.trace", Name(100, 10))

	for _, bad := range []string{"combined_100_10.trace", "100-10.trace", "100_10.trace.bak", "x_1.trace"} {
		_, err := ParseName(bad)
		assert.ErrorIs(t, err, ioerrors.ErrMalformedShardName, bad)
	}
}

func TestContiguousShardsCombine(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, 100, 10)
	writeShard(t, dir, 110, 10)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	out := t.TempDir()
	path, n, err := Combine(dir, out, Range{})
	require.NoError(t, err)
	assert.Equal(t, 20, n)
	assert.Equal(t, filepath.Join(out, "combined_100_20.trace"), path)

	var got types.FullAccessLog
	require.NoError(t, codec.ReadFile(path, codec.KindAccessLog, &got))
	require.Len(t, got, 20)
	assert.Equal(t, uint64(119), got[19][0][0].Key.Slot.Uint64())
}

func TestGapFails(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, 100, 10)
	writeShard(t, dir, 115, 5)
	_, _, err := Combine(dir, t.TempDir(), Range{})
	assert.ErrorIs(t, err, ioerrors.ErrShardContiguityViolation)

	// overlap fails too
	shards := []Shard{{Start: 100, Len: 10}, {Start: 105, Len: 10}}
	assert.ErrorIs(t, CheckContiguous(shards), ioerrors.ErrShardContiguityViolation)
}

func TestTruncatedShardFails(t *testing.T) {
	dir := t.TempDir()
	// named for ten blocks, holds five
	require.NoError(t, codec.WriteFile(filepath.Join(dir, Name(100, 10)), codec.KindAccessLog, blocks(100, 5)))
	writeShard(t, dir, 110, 10)

	_, _, err := Combine(dir, t.TempDir(), Range{})
	assert.ErrorIs(t, err, ioerrors.ErrShardContiguityViolation)
}

func TestStartBeforeFirstShard(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, 100, 10)

	out := t.TempDir()
	path, n, err := Combine(dir, out, Range{Start: u64(50)})
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, filepath.Join(out, "combined_100_10.trace"), path)

	var got types.FullAccessLog
	require.NoError(t, codec.ReadFile(path, codec.KindAccessLog, &got))
	assert.Equal(t, uint64(100), got[0][0][0].Key.Slot.Uint64())
}

func TestRangeFilter(t *testing.T) {
	dir := t.TempDir()
	writeShard(t, dir, 100, 10)
	writeShard(t, dir, 110, 10)
	writeShard(t, dir, 130, 10) // outside the range, gap ignored

	out := t.TempDir()
	path, n, err := Combine(dir, out, Range{Start: u64(105), End: u64(112)})
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, filepath.Join(out, "combined_105_7.trace"), path)

	var got types.FullAccessLog
	require.NoError(t, codec.ReadFile(path, codec.KindAccessLog, &got))
	assert.Equal(t, uint64(105), got[0][0][0].Key.Slot.Uint64())
	assert.Equal(t, uint64(111), got[6][0][0].Key.Slot.Uint64())

	shards, err := Scan(dir, Range{Start: u64(110)})
	require.NoError(t, err)
	require.Len(t, shards, 2)
	assert.Equal(t, uint64(110), shards[0].Start)
	assert.Equal(t, uint64(130), shards[1].Start)
}

func TestNoShards(t *testing.T) {
	dir := t.TempDir()
	_, err := Scan(dir, Range{})
	assert.ErrorIs(t, err, ioerrors.ErrNoShardsFound)

	writeShard(t, dir, 100, 10)
	_, err = Scan(dir, Range{Start: u64(110)})
	assert.ErrorIs(t, err, ioerrors.ErrNoShardsFound)
	_, err = Scan(dir, Range{End: u64(100)})
	assert.ErrorIs(t, err, ioerrors.ErrNoShardsFound)
}
