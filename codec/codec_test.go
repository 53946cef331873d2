package codec

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ChenxingLi/evm-io-tracker/ioerrors"
	"github.com/ChenxingLi/evm-io-tracker/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLog() types.FullAccessLog {
	k1 := types.NewStorageKey(common.HexToAddress("0x1"), uint256.NewInt(1))
	max := new(uint256.Int).SetAllOne()
	k2 := types.NewStorageKey(common.HexToAddress("0xdead"), max)
	return types.FullAccessLog{
		{
			{types.Read(k1, uint256.NewInt(5)), types.Write(k1, uint256.NewInt(0))},
			{},
		},
		{},
		{
			{types.Write(k2, max)},
		},
	}
}

func TestAccessLogRoundTrip(t *testing.T) {
	want := sampleLog()
	data, err := Encode(KindAccessLog, want)
	require.NoError(t, err)
	assert.Equal(t, []byte("EVMIO"), data[:5])
	assert.Equal(t, byte(KindAccessLog), data[5])
	assert.Equal(t, Version, data[6])

	var got types.FullAccessLog
	require.NoError(t, Decode(data, KindAccessLog, &got))
	require.Len(t, got, 3)
	txs, ops := got.Counts()
	assert.Equal(t, 3, txs)
	assert.Equal(t, 3, ops)
	assert.Equal(t, want[0][0], got[0][0])
	assert.Equal(t, want[2][0], got[2][0])
}

func TestArtifactFiles(t *testing.T) {
	dir := t.TempDir()
	k := types.NewStorageKey(common.HexToAddress("0x1"), uint256.NewInt(1))
	init := []types.InitialStateEntry{{Digest: k.Digest(), Value: uint256.NewInt(42).Bytes32()}}
	workload := types.Workload{
		{types.ReadTask(k.Digest()), types.WriteTask(k.Digest(), uint256.NewInt(7).Bytes32())},
		nil,
	}

	initPath := filepath.Join(dir, "out", "real_trace.init")
	dataPath := filepath.Join(dir, "out", "real_trace.data")
	require.NoError(t, WriteFile(initPath, KindInitialState, init))
	require.NoError(t, WriteFile(dataPath, KindWorkload, workload))

	var gotInit []types.InitialStateEntry
	require.NoError(t, ReadFile(initPath, KindInitialState, &gotInit))
	assert.Equal(t, init, gotInit)

	var gotWorkload types.Workload
	require.NoError(t, ReadFile(dataPath, KindWorkload, &gotWorkload))
	require.Len(t, gotWorkload, 2)
	assert.Equal(t, workload[0], gotWorkload[0])
	assert.Empty(t, gotWorkload[1])

	// wrong kind
	err := ReadFile(initPath, KindWorkload, &gotWorkload)
	assert.ErrorIs(t, err, ioerrors.ErrBadArtifactHeader)
}

func TestBadHeader(t *testing.T) {
	var v types.Workload
	assert.ErrorIs(t, Decode([]byte("EVM"), KindWorkload, &v), ioerrors.ErrBadArtifactHeader)
	assert.ErrorIs(t, Decode([]byte("NOTIT\x03\x01"), KindWorkload, &v), ioerrors.ErrBadArtifactHeader)
	assert.ErrorIs(t, Decode([]byte("EVMIO\x03\x09"), KindWorkload, &v), ioerrors.ErrBadArtifactHeader)

	kind, version, err := ReadHeader(bytes.NewReader([]byte("EVMIO\x02\x01")))
	require.NoError(t, err)
	assert.Equal(t, KindInitialState, kind)
	assert.Equal(t, Version, version)
}
