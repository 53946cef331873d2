package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

type TaskKind uint8

const (
	TaskRead TaskKind = iota
	TaskWrite
)

// WorkloadTask is one reduced storage operation. Value is only meaningful for
// writes and holds the 32-byte big-endian word to store.
type WorkloadTask struct {
	Kind   TaskKind
	Digest common.Hash
	Value  [32]byte
}

func ReadTask(digest common.Hash) WorkloadTask {
	return WorkloadTask{Kind: TaskRead, Digest: digest}
}

func WriteTask(digest common.Hash, value [32]byte) WorkloadTask {
	return WorkloadTask{Kind: TaskWrite, Digest: digest, Value: value}
}

func (t WorkloadTask) String() string {
	if t.Kind == TaskRead {
		return fmt.Sprintf("Read(%s)", t.Digest.Hex())
	}
	return fmt.Sprintf("Write(%s, %x)", t.Digest.Hex(), t.Value)
}

type BlockWorkload []WorkloadTask

// Workload is the per-block task lists in block order.
type Workload []BlockWorkload

func (b BlockWorkload) Counts() (reads int, writes int) {
	for _, t := range b {
		if t.Kind == TaskRead {
			reads++
		} else {
			writes++
		}
	}
	return reads, writes
}

func (w Workload) Counts() (reads int, writes int) {
	for _, b := range w {
		r, wr := b.Counts()
		reads += r
		writes += wr
	}
	return reads, writes
}

// InitialStateEntry seeds one key of the benchmarked store.
type InitialStateEntry struct {
	Digest common.Hash
	Value  [32]byte
}
