package opcode

import (
	"strings"

	"github.com/ethereum/go-ethereum/core/vm"
)

// aliases maps names older clients still emit to the canonical instruction.
var aliases = map[string]vm.OpCode{
	"SHA3":       vm.KECCAK256,
	"SUICIDE":    vm.SELFDESTRUCT,
	"DIFFICULTY": vm.DIFFICULTY,
	"PREVRANDAO": vm.DIFFICULTY,
	"RANDOM":     vm.DIFFICULTY,
}

var names = make(map[string]vm.OpCode)

func init() {
	for i := 0; i < 256; i++ {
		op := vm.OpCode(i)
		if IsDefined(op) {
			names[op.String()] = op
		}
	}
	for name, op := range aliases {
		names[name] = op
	}
}

// Resolve maps an instruction name reported by a trace to its opcode. Unknown
// names return INVALID and false.
func Resolve(name string) (vm.OpCode, bool) {
	if op, ok := names[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return op, true
	}
	return vm.INVALID, false
}

// FromCode reads the instruction byte at pc. It is used when a trace omits the
// instruction name.
func FromCode(code []byte, pc uint64) (vm.OpCode, bool) {
	if pc >= uint64(len(code)) {
		return vm.INVALID, false
	}
	op := vm.OpCode(code[pc])
	if !IsDefined(op) {
		return vm.INVALID, false
	}
	return op, true
}
