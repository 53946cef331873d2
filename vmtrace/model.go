// Package vmtrace models the OpenEthereum style "vmTrace" returned by
// trace_replayTransaction and trace_replayBlockTransactions, and walks it to
// recover the storage accesses a transaction made.
package vmtrace

import (
	"bytes"
	"encoding/json"
	"fmt"

	evmcommon "github.com/ChenxingLi/evm-io-tracker/common"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Word is a 256-bit stack value as it appears in a trace. It decodes hex
// strings with or without leading zeros as well as decimal text.
type Word uint256.Int

func NewWord(v uint64) Word {
	return Word(*uint256.NewInt(v))
}

func (w *Word) Int() *uint256.Int {
	return (*uint256.Int)(w)
}

func (w Word) String() string {
	return (*uint256.Int)(&w).Hex()
}

func (w Word) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

func (w *Word) UnmarshalJSON(input []byte) error {
	text := string(bytes.Trim(input, `"`))
	v, err := evmcommon.ParseWord(text)
	if err != nil {
		return err
	}
	*w = Word(*v)
	return nil
}

// VMTrace is one call frame: the code that ran and every instruction visited.
type VMTrace struct {
	Code hexutil.Bytes `json:"code"`
	Ops  []VMOperation `json:"ops"`
}

// VMOperation is one visited instruction. Ex is nil when the instruction was
// not executed. Sub holds the nested frame opened by a call or create.
type VMOperation struct {
	Pc   uint64             `json:"pc"`
	Cost uint64             `json:"cost"`
	Ex   *ExecutedOperation `json:"ex"`
	Sub  *VMTrace           `json:"sub"`
	Op   string             `json:"op,omitempty"`
	Idx  string             `json:"idx,omitempty"`
}

type ExecutedOperation struct {
	Used  uint64       `json:"used"`
	Push  []Word       `json:"push"`
	Mem   *MemoryDiff  `json:"mem"`
	Store *StorageDiff `json:"store"`
}

type MemoryDiff struct {
	Off  uint64        `json:"off"`
	Data hexutil.Bytes `json:"data"`
}

type StorageDiff struct {
	Key Word `json:"key"`
	Val Word `json:"val"`
}

// Values copies the reported pushes into plain 256-bit words.
func (e *ExecutedOperation) Values() []uint256.Int {
	if e == nil || len(e.Push) == 0 {
		return nil
	}
	out := make([]uint256.Int, len(e.Push))
	for i := range e.Push {
		out[i] = uint256.Int(e.Push[i])
	}
	return out
}

// TransactionTrace is one element of a trace_replayBlockTransactions result,
// or the whole result of trace_replayTransaction.
type TransactionTrace struct {
	Output          hexutil.Bytes   `json:"output"`
	VMTrace         *VMTrace        `json:"vmTrace"`
	TransactionHash *common.Hash    `json:"transactionHash,omitempty"`
	Trace           json.RawMessage `json:"trace,omitempty"`
	StateDiff       json.RawMessage `json:"stateDiff,omitempty"`
}

// ParseTransactionTrace accepts either a full replay result or a bare vmTrace
// object and returns the vmTrace.
func ParseTransactionTrace(data []byte) (*VMTrace, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	if _, ok := probe["vmTrace"]; ok {
		var tx TransactionTrace
		if err := json.Unmarshal(data, &tx); err != nil {
			return nil, fmt.Errorf("decode replay result: %w", err)
		}
		if tx.VMTrace == nil {
			return nil, fmt.Errorf("replay result carries no vmTrace")
		}
		return tx.VMTrace, nil
	}
	var trace VMTrace
	if err := json.Unmarshal(data, &trace); err != nil {
		return nil, fmt.Errorf("decode vmTrace: %w", err)
	}
	return &trace, nil
}
