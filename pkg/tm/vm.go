package tm

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	tiny "go.tinylang.dev/pkg"
)

const numRegisters = 8

// Register names mirror tiny.Register; duplicated here since the VM has no
// dependency on the code generator's types, only on the convention both
// sides agree on (spec GLOSSARY).
const (
	RegAC Register = 0
	RegAC1 Register = 1
	RegGP Register = 5
	RegMP Register = 6
	RegPC Register = 7
)

// Register is a TM register index.
type Register = int

// memory is a dynamically growing integer region, indexed non-negatively.
// Out-of-range writes grow it to at least 2x the index (spec §4.6); reads
// of never-written cells return zero.
type memory struct {
	cells []int64
}

func (m *memory) ensure(index int) {
	if index < len(m.cells) {
		return
	}
	grown := make([]int64, 2*(index+1))
	copy(grown, m.cells)
	m.cells = grown
}

func (m *memory) Load(index int) int64 {
	if index < 0 || index >= len(m.cells) {
		return 0
	}
	return m.cells[index]
}

func (m *memory) Store(index int, v int64) {
	m.ensure(index)
	m.cells[index] = v
}

// VM executes an assembled instruction map over the two-region TM memory
// model (spec §3 "VM state", §4.6 "Run").
type VM struct {
	sink   *tiny.Sink
	instrs map[int]Instruction
	lines  []int

	reg        [numRegisters]int64
	globalMem  memory
	tmpMem     memory

	in  *bufio.Reader
	out io.Writer
}

// NewVM constructs a VM over instrs, reading IN values from in and writing
// OUT values to out.
func NewVM(instrs map[int]Instruction, sink *tiny.Sink, in io.Reader, out io.Writer) *VM {
	lines := make([]int, 0, len(instrs))
	for line := range instrs {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	return &VM{
		sink:   sink,
		instrs: instrs,
		lines:  lines,
		in:     bufio.NewReader(in),
		out:    out,
	}
}

func (vm *VM) loc(line int) tiny.Location {
	return tiny.Location{File: "<generated>", Line: line}
}

// Run initializes registers to zero, sets pc := 1, and dispatches
// instructions until HALT, an out-of-range pc, or a runtime error.
func (vm *VM) Run() {
	vm.reg = [numRegisters]int64{}
	vm.reg[RegPC] = 1

	for {
		pc := int(vm.reg[RegPC])
		instr, ok := vm.instrs[pc]
		if !ok {
			return
		}

		if !vm.validRegisters(instr) {
			return
		}

		halted := vm.dispatch(instr)
		if halted || vm.sink.VMError() {
			return
		}

		vm.reg[RegPC]++
	}
}

func (vm *VM) validRegisters(instr Instruction) bool {
	if instr.P1 < 0 || instr.P1 >= numRegisters {
		vm.sink.VMRuntime(vm.loc(instr.Line), "invalid register %d", instr.P1)
		return false
	}
	if instr.P3 < 0 || instr.P3 >= numRegisters {
		vm.sink.VMRuntime(vm.loc(instr.Line), "invalid register %d", instr.P3)
		return false
	}
	if ROSet[instr.Opcode] && (instr.P2 < 0 || instr.P2 >= numRegisters) {
		vm.sink.VMRuntime(vm.loc(instr.Line), "invalid register %d", instr.P2)
		return false
	}
	return true
}

// regionFor picks global_mem or tmp_mem by which base register addresses
// the operand (spec §3: "region is tmp_mem iff p3 == mp, else global_mem").
func (vm *VM) regionFor(base Register) *memory {
	if base == RegMP {
		return &vm.tmpMem
	}
	return &vm.globalMem
}

// dispatch executes one instruction and reports whether it was HALT.
func (vm *VM) dispatch(instr Instruction) bool {
	switch instr.Opcode {
	case ValueHalt:
		return true

	case ValueIn:
		var v int64
		if _, err := fmt.Fscan(vm.in, &v); err != nil {
			vm.sink.VMRuntime(vm.loc(instr.Line), "failed to read integer: %v", err)
			return true
		}
		vm.reg[instr.P1] = v

	case ValueOut:
		fmt.Fprintf(vm.out, "%d\n", vm.reg[instr.P1])

	case ValueAdd:
		vm.reg[instr.P1] = vm.reg[instr.P2] + vm.reg[instr.P3]
	case ValueSub:
		vm.reg[instr.P1] = vm.reg[instr.P2] - vm.reg[instr.P3]
	case ValueMul:
		vm.reg[instr.P1] = vm.reg[instr.P2] * vm.reg[instr.P3]
	case ValueDiv:
		if vm.reg[instr.P3] == 0 {
			vm.sink.VMRuntime(vm.loc(instr.Line), "division by zero")
			return true
		}
		vm.reg[instr.P1] = vm.reg[instr.P2] / vm.reg[instr.P3]

	case ValueLd:
		region := vm.regionFor(instr.P3)
		vm.reg[instr.P1] = region.Load(instr.P2 + int(vm.reg[instr.P3]))
	case ValueSt:
		region := vm.regionFor(instr.P3)
		region.Store(instr.P2+int(vm.reg[instr.P3]), vm.reg[instr.P1])
	case ValueLda:
		vm.reg[instr.P1] = int64(instr.P2) + vm.reg[instr.P3]
	case ValueLdc:
		vm.reg[instr.P1] = int64(instr.P2)

	case ValueJlt, ValueJle, ValueJge, ValueJgt, ValueJeq, ValueJne:
		if vm.condition(instr.Opcode, vm.reg[instr.P1]) {
			vm.reg[RegPC] = int64(instr.P2) + vm.reg[instr.P3]
		}

	default:
		vm.sink.VMRuntime(vm.loc(instr.Line), "invalid instruction '%s'", mnemonicName(instr.Opcode))
		return true
	}

	return false
}

func (vm *VM) condition(op TokenValue, v int64) bool {
	switch op {
	case ValueJlt:
		return v < 0
	case ValueJle:
		return v <= 0
	case ValueJge:
		return v >= 0
	case ValueJgt:
		return v > 0
	case ValueJeq:
		return v == 0
	case ValueJne:
		return v != 0
	}
	return false
}
