package opcode

import (
	"testing"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/stretchr/testify/assert"
)

func TestArityTable(t *testing.T) {
	testCases := []struct {
		op   vm.OpCode
		want int
	}{
		{vm.STOP, 0},
		{vm.ADD, 2},
		{vm.SUB, 2},
		{vm.MUL, 2},
		{vm.DIV, 2},
		{vm.ADDMOD, 3},
		{vm.MULMOD, 3},
		{vm.ISZERO, 1},
		{vm.NOT, 1},
		{vm.LT, 2},
		{vm.SAR, 2},
		{vm.KECCAK256, 2},
		{vm.BALANCE, 1},
		{vm.CALLDATACOPY, 3},
		{vm.EXTCODECOPY, 4},
		{vm.RETURNDATASIZE, 0},
		{vm.BLOCKHASH, 1},
		{vm.BASEFEE, 0},
		{vm.BLOBHASH, 1},
		{vm.POP, 1},
		{vm.SLOAD, 1},
		{vm.SSTORE, 2},
		{vm.JUMPI, 2},
		{vm.TLOAD, 1},
		{vm.TSTORE, 2},
		{vm.MCOPY, 3},
		{vm.PUSH0, 0},
		{vm.PUSH1, 0},
		{vm.PUSH32, 0},
		{vm.DUP1, 1},
		{vm.DUP16, 16},
		{vm.SWAP1, 2},
		{vm.SWAP16, 17},
		{vm.LOG0, 2},
		{vm.LOG4, 6},
		{vm.CREATE, 3},
		{vm.CREATE2, 4},
		{vm.CALL, 7},
		{vm.CALLCODE, 7},
		{vm.DELEGATECALL, 6},
		{vm.STATICCALL, 6},
		{vm.RETURN, 2},
		{vm.REVERT, 2},
		{vm.INVALID, 0},
		{vm.SELFDESTRUCT, 1},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Arity(tc.op), tc.op.String())
		assert.True(t, IsDefined(tc.op), tc.op.String())
	}
}

func TestDupSwapLogFamilies(t *testing.T) {
	for k := 1; k <= 16; k++ {
		dup := vm.DUP1 + vm.OpCode(k-1)
		swap := vm.SWAP1 + vm.OpCode(k-1)
		assert.Equal(t, k, Arity(dup))
		assert.Equal(t, k+1, Arity(swap))

		d, ok := DupDepth(dup)
		assert.True(t, ok)
		assert.Equal(t, k, d)
		s, ok := SwapDepth(swap)
		assert.True(t, ok)
		assert.Equal(t, k, s)
	}
	for k := 0; k <= 4; k++ {
		assert.Equal(t, k+2, Arity(vm.LOG0+vm.OpCode(k)))
	}
	_, ok := DupDepth(vm.SWAP1)
	assert.False(t, ok)
	_, ok = SwapDepth(vm.DUP16)
	assert.False(t, ok)
}

func TestUndefinedOpcodes(t *testing.T) {
	for _, b := range []byte{0x0c, 0x0f, 0x21, 0x4b, 0xa5, 0xef, 0xfb} {
		op := vm.OpCode(b)
		assert.False(t, IsDefined(op), "0x%x", b)
		assert.Equal(t, 0, Arity(op))
	}
}

func TestResolve(t *testing.T) {
	op, ok := Resolve("SSTORE")
	assert.True(t, ok)
	assert.Equal(t, vm.SSTORE, op)

	op, ok = Resolve("SHA3")
	assert.True(t, ok)
	assert.Equal(t, vm.KECCAK256, op)

	op, ok = Resolve("suicide")
	assert.True(t, ok)
	assert.Equal(t, vm.SELFDESTRUCT, op)

	op, ok = Resolve("PUSH32")
	assert.True(t, ok)
	assert.Equal(t, vm.PUSH32, op)

	op, ok = Resolve("FROBNICATE")
	assert.False(t, ok)
	assert.Equal(t, vm.INVALID, op)
}

func TestFromCode(t *testing.T) {
	code := []byte{byte(vm.PUSH1), 0x01, byte(vm.SLOAD), 0x0c}
	op, ok := FromCode(code, 2)
	assert.True(t, ok)
	assert.Equal(t, vm.SLOAD, op)

	_, ok = FromCode(code, 3)
	assert.False(t, ok)
	_, ok = FromCode(code, 10)
	assert.False(t, ok)
}

func TestFrameContext(t *testing.T) {
	assert.Equal(t, CalleeFrame, FrameContextOf(vm.CALL))
	assert.Equal(t, CalleeFrame, FrameContextOf(vm.STATICCALL))
	assert.Equal(t, InheritFrame, FrameContextOf(vm.DELEGATECALL))
	assert.Equal(t, InheritFrame, FrameContextOf(vm.CALLCODE))
	assert.Equal(t, CreatedFrame, FrameContextOf(vm.CREATE))
	assert.Equal(t, CreatedFrame, FrameContextOf(vm.CREATE2))
	assert.Equal(t, NoFrame, FrameContextOf(vm.SLOAD))
}
