// Package opcode holds the instruction tables the trace walker needs: how many
// operands each instruction consumes, how instruction names resolve, and which
// instructions open a nested frame.
package opcode

import (
	"github.com/ethereum/go-ethereum/core/vm"
)

const undefined = -1

// arity is indexed by opcode byte; undefined codes hold -1.
var arity [256]int8

func init() {
	for i := range arity {
		arity[i] = undefined
	}
	set := func(n int8, ops ...vm.OpCode) {
		for _, op := range ops {
			arity[op] = n
		}
	}

	// 0x00 - 0x0b arithmetic
	set(0, vm.STOP)
	set(2, vm.ADD, vm.MUL, vm.SUB, vm.DIV, vm.SDIV, vm.MOD, vm.SMOD, vm.EXP, vm.SIGNEXTEND)
	set(3, vm.ADDMOD, vm.MULMOD)

	// 0x10 - 0x1d comparison and bitwise
	set(2, vm.LT, vm.GT, vm.SLT, vm.SGT, vm.EQ, vm.AND, vm.OR, vm.XOR, vm.BYTE, vm.SHL, vm.SHR, vm.SAR)
	set(1, vm.ISZERO, vm.NOT)

	set(2, vm.KECCAK256)

	// 0x30 - 0x3f environment
	set(0, vm.ADDRESS, vm.ORIGIN, vm.CALLER, vm.CALLVALUE, vm.CALLDATASIZE, vm.CODESIZE, vm.GASPRICE, vm.RETURNDATASIZE)
	set(1, vm.BALANCE, vm.CALLDATALOAD, vm.EXTCODESIZE, vm.EXTCODEHASH)
	set(3, vm.CALLDATACOPY, vm.CODECOPY, vm.RETURNDATACOPY)
	set(4, vm.EXTCODECOPY)

	// 0x40 - 0x4a block
	set(1, vm.BLOCKHASH, vm.BLOBHASH)
	set(0, vm.COINBASE, vm.TIMESTAMP, vm.NUMBER, vm.DIFFICULTY, vm.GASLIMIT, vm.CHAINID, vm.SELFBALANCE, vm.BASEFEE, vm.BLOBBASEFEE)

	// 0x50 - 0x5f stack, memory, storage and flow
	set(1, vm.POP, vm.MLOAD, vm.SLOAD, vm.JUMP, vm.TLOAD)
	set(2, vm.MSTORE, vm.MSTORE8, vm.SSTORE, vm.JUMPI, vm.TSTORE)
	set(3, vm.MCOPY)
	set(0, vm.PC, vm.MSIZE, vm.GAS, vm.JUMPDEST, vm.PUSH0)

	for i := 0; i < 32; i++ {
		set(0, vm.PUSH1+vm.OpCode(i))
	}
	for k := 1; k <= 16; k++ {
		set(int8(k), vm.DUP1+vm.OpCode(k-1))
		set(int8(k+1), vm.SWAP1+vm.OpCode(k-1))
	}
	for k := 0; k <= 4; k++ {
		set(int8(k+2), vm.LOG0+vm.OpCode(k))
	}

	// 0xf0 - 0xff system
	set(3, vm.CREATE)
	set(4, vm.CREATE2)
	set(7, vm.CALL, vm.CALLCODE)
	set(6, vm.DELEGATECALL, vm.STATICCALL)
	set(2, vm.RETURN, vm.REVERT)
	set(0, vm.INVALID)
	set(1, vm.SELFDESTRUCT)
}

// Arity returns the number of stack operands op consumes. Undefined codes
// behave like INVALID and consume nothing.
func Arity(op vm.OpCode) int {
	if n := arity[op]; n != undefined {
		return int(n)
	}
	return 0
}

// IsDefined reports whether op has an entry in the arity table.
func IsDefined(op vm.OpCode) bool {
	return arity[op] != undefined
}

// DupDepth returns k for DUPk.
func DupDepth(op vm.OpCode) (int, bool) {
	if op >= vm.DUP1 && op <= vm.DUP16 {
		return int(op-vm.DUP1) + 1, true
	}
	return 0, false
}

// SwapDepth returns k for SWAPk.
func SwapDepth(op vm.OpCode) (int, bool) {
	if op >= vm.SWAP1 && op <= vm.SWAP16 {
		return int(op-vm.SWAP1) + 1, true
	}
	return 0, false
}
