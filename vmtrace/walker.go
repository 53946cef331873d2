package vmtrace

import (
	"fmt"

	evmcommon "github.com/ChenxingLi/evm-io-tracker/common"
	"github.com/ChenxingLi/evm-io-tracker/integrity"
	"github.com/ChenxingLi/evm-io-tracker/ioerrors"
	"github.com/ChenxingLi/evm-io-tracker/log"
	"github.com/ChenxingLi/evm-io-tracker/opcode"
	"github.com/ChenxingLi/evm-io-tracker/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
)

// DefaultMaxDepth bounds nested frames: the EVM call depth limit plus the
// transaction's own frame.
const DefaultMaxDepth = 1025

// StepError locates a fatal walk failure.
type StepError struct {
	Pc       uint64
	Depth    int
	Op       vm.OpCode
	Contract common.Address
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s at pc %d depth %d in %s: %v", e.Op, e.Pc, e.Depth, e.Contract.Hex(), e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Walker replays vmTraces against a simulated operand stack.
type Walker struct {
	maxDepth int
}

func NewWalker(maxDepth int) *Walker {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Walker{maxDepth: maxDepth}
}

var defaultWalker = NewWalker(DefaultMaxDepth)

// Walk replays trace with the default depth limit.
func Walk(trace *VMTrace, contract common.Address) (types.TransactionAccessLog, error) {
	return defaultWalker.Walk(trace, contract)
}

// Walk returns the storage accesses of one transaction in execution order,
// nested frames flattened depth first. contract is the account whose storage
// the top-level frame uses.
func (w *Walker) Walk(trace *VMTrace, contract common.Address) (types.TransactionAccessLog, error) {
	_, accesses, err := w.WalkTree(trace, contract)
	return accesses, err
}

// pending is a call or create whose nested frame is still being walked.
type pending struct {
	op     vm.OpCode
	pc     uint64
	pushes []uint256.Int
}

type frame struct {
	trace    *VMTrace
	next     int
	contract common.Address
	depth    int
	stack    []uint256.Int
	node     *CallFrame
	waiting  *pending
}

// WalkTree is Walk that also returns the frame tree.
func (w *Walker) WalkTree(trace *VMTrace, contract common.Address) (*CallFrame, types.TransactionAccessLog, error) {
	if trace == nil {
		return nil, nil, nil
	}
	root := &CallFrame{Op: vm.STOP, Contract: contract}
	frames := []*frame{{trace: trace, contract: contract, node: root}}
	var accesses types.TransactionAccessLog

	for len(frames) > 0 {
		f := frames[len(frames)-1]

		// a nested frame just finished: complete the instruction that opened it
		if p := f.waiting; p != nil {
			f.waiting = nil
			if err := w.apply(f, p.op, p.pc, p.pushes, &accesses); err != nil {
				return root, accesses, err
			}
			continue
		}
		if f.next >= len(f.trace.Ops) {
			frames = frames[:len(frames)-1]
			continue
		}

		step := &f.trace.Ops[f.next]
		f.next++
		if step.Ex == nil {
			f.node.Skipped++
			continue
		}
		op := w.resolve(f, step)
		pushes := step.Ex.Values()
		f.node.Steps++

		if err := integrity.Verify(op, f.stack, pushes); err != nil {
			return root, accesses, f.fail(op, step.Pc, err)
		}

		if step.Sub != nil {
			mode := opcode.FrameContextOf(op)
			if mode == opcode.NoFrame {
				log.Warn(log.WalkerMonitoring, "Nested trace on non-call instruction ignored", "op", op, "pc", step.Pc, "depth", f.depth)
			} else {
				if len(frames) >= w.maxDepth {
					return root, accesses, f.fail(op, step.Pc, fmt.Errorf("%w: limit %d", ioerrors.ErrCallDepthExceeded, w.maxDepth))
				}
				next, err := f.nextContract(mode, pushes)
				if err != nil {
					return root, accesses, f.fail(op, step.Pc, err)
				}
				child := &CallFrame{Op: op, Pc: step.Pc, Contract: next, Depth: f.depth + 1}
				f.node.Children = append(f.node.Children, child)
				f.waiting = &pending{op: op, pc: step.Pc, pushes: pushes}
				frames = append(frames, &frame{trace: step.Sub, contract: next, depth: f.depth + 1, node: child})
				log.Trace(log.WalkerMonitoring, "Enter frame", "op", op, "contract", next, "depth", child.Depth)
				continue
			}
		}

		if err := w.apply(f, op, step.Pc, pushes, &accesses); err != nil {
			return root, accesses, err
		}
	}
	return root, accesses, nil
}

// resolve prefers the reported name and falls back to the code byte at pc.
// Unknown instructions become INVALID.
func (w *Walker) resolve(f *frame, step *VMOperation) vm.OpCode {
	if step.Op != "" {
		if op, ok := opcode.Resolve(step.Op); ok {
			return op
		}
		f.node.Unknown++
		log.Warn(log.WalkerMonitoring, "Unrecognized instruction", "name", step.Op, "pc", step.Pc, "depth", f.depth, "err", ioerrors.ErrUnrecognizedInstruction)
		return vm.INVALID
	}
	if op, ok := opcode.FromCode(f.trace.Code, step.Pc); ok {
		return op
	}
	f.node.Unknown++
	log.Warn(log.WalkerMonitoring, "Unrecognized instruction", "pc", step.Pc, "depth", f.depth, "err", ioerrors.ErrUnrecognizedInstruction)
	return vm.INVALID
}

// apply records the instruction's own storage effect and advances the stack.
func (w *Walker) apply(f *frame, op vm.OpCode, pc uint64, pushes []uint256.Int, accesses *types.TransactionAccessLog) error {
	switch op {
	case vm.SLOAD:
		slot, err := f.peek(1)
		if err != nil {
			return f.fail(op, pc, err)
		}
		if len(pushes) == 0 {
			return f.fail(op, pc, fmt.Errorf("%w: SLOAD reported no value", ioerrors.ErrMissingReturnValue))
		}
		*accesses = append(*accesses, types.Read(types.NewStorageKey(f.contract, slot), &pushes[0]))
		f.node.Reads++
	case vm.SSTORE:
		slot, err := f.peek(1)
		if err != nil {
			return f.fail(op, pc, err)
		}
		value, err := f.peek(2)
		if err != nil {
			return f.fail(op, pc, err)
		}
		*accesses = append(*accesses, types.Write(types.NewStorageKey(f.contract, slot), value))
		f.node.Writes++
	}

	n := opcode.Arity(op)
	if len(f.stack) < n {
		return f.fail(op, pc, fmt.Errorf("%w: pops %d, stack holds %d", ioerrors.ErrStackUnderflow, n, len(f.stack)))
	}
	f.stack = append(f.stack[:len(f.stack)-n], pushes...)
	return nil
}

// peek returns the operand i positions from the top, 1 being the top.
func (f *frame) peek(i int) (*uint256.Int, error) {
	if i > len(f.stack) {
		return nil, fmt.Errorf("%w: operand %d of %d", ioerrors.ErrStackUnderflow, i, len(f.stack))
	}
	return &f.stack[len(f.stack)-i], nil
}

func (f *frame) nextContract(mode opcode.FrameContext, pushes []uint256.Int) (common.Address, error) {
	switch mode {
	case opcode.CalleeFrame:
		target, err := f.peek(opcode.CallTargetOperand)
		if err != nil {
			return common.Address{}, err
		}
		return evmcommon.WordToAddress(target), nil
	case opcode.InheritFrame:
		return f.contract, nil
	case opcode.CreatedFrame:
		if len(pushes) == 0 {
			return common.Address{}, ioerrors.ErrUnresolvedCreationAddress
		}
		// a failed creation reports 0; its frame is kept under the zero address
		if pushes[0].IsZero() {
			log.Debug(log.WalkerMonitoring, "Creation failed, frame attributed to zero address", "depth", f.depth+1)
		}
		return evmcommon.WordToAddress(&pushes[0]), nil
	}
	return common.Address{}, fmt.Errorf("no nested frame for context %s", mode)
}

func (f *frame) fail(op vm.OpCode, pc uint64, err error) error {
	return &StepError{Pc: pc, Depth: f.depth, Op: op, Contract: f.contract, Err: err}
}
