// Package ir defines the intermediate representation the renamer and allocator
// operate on: a straight-line, doubly-linked sequence of Operation values.
package ir

import "fmt"

// Opcode enumerates the ILOC operations this allocator understands.
type Opcode int

const (
	LoadI Opcode = iota
	Load
	Store
	Add
	Sub
	Mult
	Lshift
	Rshift
	Output
	Nop
)

var opcodeNames = [...]string{
	LoadI:  "loadI",
	Load:   "load",
	Store:  "store",
	Add:    "add",
	Sub:    "sub",
	Mult:   "mult",
	Lshift: "lshift",
	Rshift: "rshift",
	Output: "output",
	Nop:    "nop",
}

func (o Opcode) String() string { return opcodeNames[o] }

// IsArith reports whether o is a binary arithmetic opcode.
func (o Opcode) IsArith() bool { return o >= Add && o <= Rshift }

// NextUse records the source line of the next reference to an operand, or Never if
// there is none.
type NextUse int32

// Never marks "no further use in this block". Ordering must satisfy Never > any real
// line number, which holds here because source files never reach MaxInt32 lines.
const Never NextUse = 1<<31 - 1

// Absent marks a register slot (sr/vr/pr) that the operand position does not use.
const Absent = -1

// Operation is one ILOC instruction on a specific source line. For each operand
// position i in {1,2,3}, SRi/VRi/PRi/NUi track the source, virtual, physical
// register and next-use line; Absent means "not present". Store's third slot is a
// USE (the destination address), never a def — see HasDef.
type Operation struct {
	Line   int
	Opcode Opcode

	SR1, SR2, SR3 int
	VR1, VR2, VR3 int
	PR1, PR2, PR3 int
	NU1, NU2, NU3 NextUse

	prev, next *Operation
}

func newOperation(line int, op Opcode) *Operation {
	return &Operation{
		Line:   line,
		Opcode: op,
		SR1:    Absent, SR2: Absent, SR3: Absent,
		VR1: Absent, VR2: Absent, VR3: Absent,
		PR1: Absent, PR2: Absent, PR3: Absent,
		NU1: Never, NU2: Never, NU3: Never,
	}
}

// Prev returns the preceding operation in the block, or nil at the head.
func (o *Operation) Prev() *Operation { return o.prev }

// Next returns the following operation in the block, or nil at the tail.
func (o *Operation) Next() *Operation { return o.next }

// HasDef reports whether this opcode defines a register in position 3. Store is
// excluded: its position-3 register is a use (the store address), not a def.
func (o *Operation) HasDef() bool {
	return o.Opcode == LoadI || o.Opcode == Load || o.Opcode.IsArith()
}

// String renders the operation using its SOURCE registers, in canonical ILOC text.
// No CLI mode calls it; the IR-table, renamed and allocated printers render their
// own forms directly (see internal/printer).
func (o *Operation) String() string {
	switch o.Opcode {
	case LoadI:
		return fmt.Sprintf("loadI %d => r%d", o.SR1, o.SR3)
	case Load:
		return fmt.Sprintf("load r%d => r%d", o.SR1, o.SR3)
	case Store:
		return fmt.Sprintf("store r%d => r%d", o.SR1, o.SR3)
	case Output:
		return fmt.Sprintf("output %d", o.SR1)
	case Nop:
		return "nop"
	default:
		return fmt.Sprintf("%s r%d, r%d => r%d", o.Opcode, o.SR1, o.SR2, o.SR3)
	}
}
