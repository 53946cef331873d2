package types

import (
	"fmt"

	"github.com/holiman/uint256"
)

type AccessKind uint8

const (
	AccessRead AccessKind = iota
	AccessWrite
)

func (k AccessKind) String() string {
	switch k {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return fmt.Sprintf("AccessKind(%d)", uint8(k))
	}
}

// Access is one observed SLOAD (Read) or SSTORE (Write), attributed to the
// contract whose storage was touched.
type Access struct {
	Kind  AccessKind
	Key   StorageKey
	Value uint256.Int
}

func Read(key StorageKey, value *uint256.Int) Access {
	return Access{Kind: AccessRead, Key: key, Value: *value}
}

func Write(key StorageKey, value *uint256.Int) Access {
	return Access{Kind: AccessWrite, Key: key, Value: *value}
}

func (a Access) IsRead() bool  { return a.Kind == AccessRead }
func (a Access) IsWrite() bool { return a.Kind == AccessWrite }

func (a Access) String() string {
	return fmt.Sprintf("%s(%s, %s)", a.Kind, a.Key, a.Value.Dec())
}

// TransactionAccessLog holds one transaction's accesses in execution order,
// nested calls flattened depth first.
type TransactionAccessLog []Access

// BlockAccessLog holds one entry per traced transaction, in block order.
type BlockAccessLog []TransactionAccessLog

// FullAccessLog covers a contiguous block range, one entry per block.
type FullAccessLog []BlockAccessLog

func (b BlockAccessLog) Ops() int {
	n := 0
	for _, tx := range b {
		n += len(tx)
	}
	return n
}

// Counts returns the number of transactions and accesses in the log.
func (l FullAccessLog) Counts() (txs int, ops int) {
	for _, block := range l {
		txs += len(block)
		ops += block.Ops()
	}
	return txs, ops
}

// Each visits every access in full chronological order: block, then
// transaction, then access order.
func (l FullAccessLog) Each(fn func(block int, a *Access)) {
	for bi, block := range l {
		for _, tx := range block {
			for i := range tx {
				fn(bi, &tx[i])
			}
		}
	}
}
