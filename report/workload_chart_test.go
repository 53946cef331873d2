package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/ChenxingLi/evm-io-tracker/bench"
	"github.com/ChenxingLi/evm-io-tracker/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	d := common.HexToHash("0x1")
	w := types.Workload{
		{types.ReadTask(d), types.WriteTask(d, [32]byte{})},
		{},
		{types.ReadTask(d)},
	}
	s := Summarize(w, 100)
	assert.Equal(t, []int{1, 0, 1}, s.Reads)
	assert.Equal(t, []int{1, 0, 0}, s.Writes)
	assert.Equal(t, []string{"100", "101", "102"}, s.labels())
}

func TestRender(t *testing.T) {
	d := common.HexToHash("0x1")
	s := Summarize(types.Workload{{types.ReadTask(d)}}, 7)
	stats := &bench.BenchmarkStats{}
	stats.AddResult(bench.BlockResult{Block: 0, Reads: 1, Duration: time.Millisecond})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, s, stats))
	out := buf.String()
	assert.Contains(t, out, "Storage Workload")
	assert.Contains(t, out, "Replay Time")
	assert.Contains(t, out, "echarts")
}
