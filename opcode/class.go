package opcode

import "github.com/ethereum/go-ethereum/core/vm"

// FrameContext says whose storage a nested frame opened by an instruction
// reads and writes.
type FrameContext uint8

const (
	// NoFrame: the instruction never opens a nested frame.
	NoFrame FrameContext = iota
	// CalleeFrame: CALL, STATICCALL run under the target named by the second stack operand.
	CalleeFrame
	// InheritFrame: CALLCODE, DELEGATECALL run foreign code on the caller's storage.
	InheritFrame
	// CreatedFrame: CREATE, CREATE2 run under the address the instruction returns.
	CreatedFrame
)

func (c FrameContext) String() string {
	switch c {
	case CalleeFrame:
		return "callee"
	case InheritFrame:
		return "inherit"
	case CreatedFrame:
		return "created"
	default:
		return "none"
	}
}

// CallTargetOperand is the 1-based stack depth of the call target for CALL,
// CALLCODE, DELEGATECALL and STATICCALL (gas is on top).
const CallTargetOperand = 2

func FrameContextOf(op vm.OpCode) FrameContext {
	switch op {
	case vm.CALL, vm.STATICCALL:
		return CalleeFrame
	case vm.CALLCODE, vm.DELEGATECALL:
		return InheritFrame
	case vm.CREATE, vm.CREATE2:
		return CreatedFrame
	default:
		return NoFrame
	}
}
