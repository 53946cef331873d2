// Package integrity recomputes the results of a subset of instructions and
// checks them against the values a trace reports. The walker trusts the
// trace for everything else, so a failure here means the simulated stack can
// no longer be relied on.
package integrity

import (
	"fmt"

	"github.com/ChenxingLi/evm-io-tracker/ioerrors"
	"github.com/ChenxingLi/evm-io-tracker/opcode"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
)

// Class tags which kind of check an instruction receives.
type Class uint8

const (
	Unchecked Class = iota
	Unary
	Binary
	Ternary
	Dup
	Swap
)

func (c Class) String() string {
	switch c {
	case Unary:
		return "unary"
	case Binary:
		return "binary"
	case Ternary:
		return "ternary"
	case Dup:
		return "dup"
	case Swap:
		return "swap"
	default:
		return "unchecked"
	}
}

// MismatchError reports a recomputed value that disagrees with the trace.
// Index is the position in the instruction's reported pushes.
type MismatchError struct {
	Op       vm.OpCode
	Index    int
	Expected uint256.Int
	Reported uint256.Int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%v: %s push[%d] expected %s, reported %s",
		ioerrors.ErrIntegrityMismatch, e.Op, e.Index, e.Expected.Hex(), e.Reported.Hex())
}

func (e *MismatchError) Unwrap() error { return ioerrors.ErrIntegrityMismatch }

// check receives the stack bottom first, so the top operand is stack[len-1].
type check func(op vm.OpCode, stack, pushes []uint256.Int) error

type entry struct {
	class Class
	check check
}

var table [256]entry

func init() {
	binary := func(fn func(z, a, b *uint256.Int), ops ...vm.OpCode) {
		for _, op := range ops {
			table[op] = entry{Binary, binaryCheck(fn)}
		}
	}
	bool256 := func(cond bool, z *uint256.Int) {
		if cond {
			z.SetOne()
		} else {
			z.Clear()
		}
	}

	binary(func(z, a, b *uint256.Int) { z.Add(a, b) }, vm.ADD)
	binary(func(z, a, b *uint256.Int) { z.Mul(a, b) }, vm.MUL)
	binary(func(z, a, b *uint256.Int) { z.Sub(a, b) }, vm.SUB)
	binary(func(z, a, b *uint256.Int) { z.Div(a, b) }, vm.DIV)
	binary(func(z, a, b *uint256.Int) { z.SDiv(a, b) }, vm.SDIV)
	binary(func(z, a, b *uint256.Int) { z.Mod(a, b) }, vm.MOD)
	binary(func(z, a, b *uint256.Int) { z.SMod(a, b) }, vm.SMOD)
	binary(func(z, a, b *uint256.Int) { z.Exp(a, b) }, vm.EXP)
	binary(func(z, a, b *uint256.Int) { z.ExtendSign(b, a) }, vm.SIGNEXTEND)

	binary(func(z, a, b *uint256.Int) { bool256(a.Lt(b), z) }, vm.LT)
	binary(func(z, a, b *uint256.Int) { bool256(a.Gt(b), z) }, vm.GT)
	binary(func(z, a, b *uint256.Int) { bool256(a.Slt(b), z) }, vm.SLT)
	binary(func(z, a, b *uint256.Int) { bool256(a.Sgt(b), z) }, vm.SGT)
	binary(func(z, a, b *uint256.Int) { bool256(a.Eq(b), z) }, vm.EQ)

	binary(func(z, a, b *uint256.Int) { z.And(a, b) }, vm.AND)
	binary(func(z, a, b *uint256.Int) { z.Or(a, b) }, vm.OR)
	binary(func(z, a, b *uint256.Int) { z.Xor(a, b) }, vm.XOR)
	binary(func(z, a, b *uint256.Int) { z.Set(b).Byte(a) }, vm.BYTE)

	// shift amount on top, value beneath
	binary(func(z, a, b *uint256.Int) {
		if a.LtUint64(256) {
			z.Lsh(b, uint(a.Uint64()))
		} else {
			z.Clear()
		}
	}, vm.SHL)
	binary(func(z, a, b *uint256.Int) {
		if a.LtUint64(256) {
			z.Rsh(b, uint(a.Uint64()))
		} else {
			z.Clear()
		}
	}, vm.SHR)
	binary(func(z, a, b *uint256.Int) {
		if a.GtUint64(255) {
			if b.Sign() >= 0 {
				z.Clear()
			} else {
				z.SetAllOne()
			}
			return
		}
		z.SRsh(b, uint(a.Uint64()))
	}, vm.SAR)

	table[vm.ISZERO] = entry{Unary, unaryCheck(func(z, a *uint256.Int) { bool256(a.IsZero(), z) })}
	table[vm.NOT] = entry{Unary, unaryCheck(func(z, a *uint256.Int) { z.Not(a) })}

	table[vm.ADDMOD] = entry{Ternary, ternaryCheck(func(z, a, b, m *uint256.Int) { z.AddMod(a, b, m) })}
	table[vm.MULMOD] = entry{Ternary, ternaryCheck(func(z, a, b, m *uint256.Int) { z.MulMod(a, b, m) })}

	for i := 0; i < 256; i++ {
		op := vm.OpCode(i)
		if k, ok := opcode.DupDepth(op); ok {
			table[op] = entry{Dup, dupCheck(k)}
		} else if k, ok := opcode.SwapDepth(op); ok {
			table[op] = entry{Swap, swapCheck(k)}
		}
	}
}

// ClassOf returns the check class registered for op.
func ClassOf(op vm.OpCode) Class {
	return table[op].class
}

// Verify checks the pushes reported for op against the stack as it was
// before op ran. Instructions without a registered check always pass.
func Verify(op vm.OpCode, stack, pushes []uint256.Int) error {
	e := table[op]
	if e.check == nil {
		return nil
	}
	return e.check(op, stack, pushes)
}

func operands(op vm.OpCode, stack []uint256.Int, n int) ([]uint256.Int, error) {
	if len(stack) < n {
		return nil, fmt.Errorf("%w: %s needs %d operands, stack holds %d", ioerrors.ErrStackUnderflow, op, n, len(stack))
	}
	return stack[len(stack)-n:], nil
}

func firstPush(op vm.OpCode, pushes []uint256.Int) (*uint256.Int, error) {
	if len(pushes) == 0 {
		return nil, fmt.Errorf("%w: %s reported no result", ioerrors.ErrMissingReturnValue, op)
	}
	return &pushes[0], nil
}

func compare(op vm.OpCode, idx int, expected, reported *uint256.Int) error {
	if expected.Eq(reported) {
		return nil
	}
	return &MismatchError{Op: op, Index: idx, Expected: *expected, Reported: *reported}
}

func unaryCheck(fn func(z, a *uint256.Int)) check {
	return func(op vm.OpCode, stack, pushes []uint256.Int) error {
		args, err := operands(op, stack, 1)
		if err != nil {
			return err
		}
		got, err := firstPush(op, pushes)
		if err != nil {
			return err
		}
		var z uint256.Int
		fn(&z, &args[0])
		return compare(op, 0, &z, got)
	}
}

func binaryCheck(fn func(z, a, b *uint256.Int)) check {
	return func(op vm.OpCode, stack, pushes []uint256.Int) error {
		args, err := operands(op, stack, 2)
		if err != nil {
			return err
		}
		got, err := firstPush(op, pushes)
		if err != nil {
			return err
		}
		var z uint256.Int
		fn(&z, &args[1], &args[0])
		return compare(op, 0, &z, got)
	}
}

func ternaryCheck(fn func(z, a, b, m *uint256.Int)) check {
	return func(op vm.OpCode, stack, pushes []uint256.Int) error {
		args, err := operands(op, stack, 3)
		if err != nil {
			return err
		}
		got, err := firstPush(op, pushes)
		if err != nil {
			return err
		}
		var z uint256.Int
		fn(&z, &args[2], &args[1], &args[0])
		return compare(op, 0, &z, got)
	}
}

// dupCheck expects DUPk to report the k copied operands unchanged followed
// by the new copy of the deepest one.
func dupCheck(k int) check {
	return func(op vm.OpCode, stack, pushes []uint256.Int) error {
		args, err := operands(op, stack, k)
		if err != nil {
			return err
		}
		if len(pushes) != k+1 {
			return fmt.Errorf("%w: %s reported %d values, want %d", ioerrors.ErrMissingReturnValue, op, len(pushes), k+1)
		}
		for i := 0; i < k; i++ {
			if err := compare(op, i, &args[i], &pushes[i]); err != nil {
				return err
			}
		}
		return compare(op, k, &args[0], &pushes[k])
	}
}

// swapCheck expects SWAPk to report the k+1 affected operands with the
// outermost two exchanged.
func swapCheck(k int) check {
	return func(op vm.OpCode, stack, pushes []uint256.Int) error {
		args, err := operands(op, stack, k+1)
		if err != nil {
			return err
		}
		if len(pushes) != k+1 {
			return fmt.Errorf("%w: %s reported %d values, want %d", ioerrors.ErrMissingReturnValue, op, len(pushes), k+1)
		}
		if err := compare(op, 0, &args[k], &pushes[0]); err != nil {
			return err
		}
		for i := 1; i < k; i++ {
			if err := compare(op, i, &args[i], &pushes[i]); err != nil {
				return err
			}
		}
		return compare(op, k, &args[0], &pushes[k])
	}
}
