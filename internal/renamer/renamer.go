// Package renamer implements the first allocator pass: it assigns virtual register
// numbers to source registers (forward pass) and computes next-use line numbers
// (backward pass).
package renamer

import "ilocalloc/internal/ir"

// Result carries the statistics a caller (the CLI's -v logging, in particular) cares
// about beyond the mutated IR itself.
type Result struct {
	VirtualRegisters int // total distinct virtual registers minted
}

// Rename performs both passes over b in place and returns the virtual register count.
func Rename(b *ir.Block) Result {
	nextVR := forwardPass(b)
	backwardPass(b)
	return Result{VirtualRegisters: nextVR}
}

// forwardPass walks operations in source order, minting a fresh virtual register at
// every definition and reusing the live mapping at every use. Uses are processed
// before the definition within one operation, so a self-referential instruction like
// `add r1, r1 => r1` sees the old vr at its uses and a new vr at its def.
func forwardPass(b *ir.Block) int {
	srToVR := make(map[int]int)
	next := 0

	mint := func(sr int) int {
		if vr, ok := srToVR[sr]; ok {
			return vr
		}
		vr := next
		srToVR[sr] = vr
		next++
		return vr
	}

	define := func(sr int) int {
		vr := next
		srToVR[sr] = vr
		next++
		return vr
	}

	b.Forward(func(op *ir.Operation) {
		switch op.Opcode {
		case ir.LoadI:
			op.VR3 = define(op.SR3)
		case ir.Load:
			op.VR1 = mint(op.SR1)
			op.VR3 = define(op.SR3)
		case ir.Store:
			op.VR1 = mint(op.SR1)
			op.VR3 = mint(op.SR3) // store's position 3 is a use, not a def
		case ir.Output, ir.Nop:
			// no register operands
		default:
			if op.Opcode.IsArith() {
				op.VR1 = mint(op.SR1)
				op.VR2 = mint(op.SR2)
				op.VR3 = define(op.SR3)
			}
		}
	})

	return next
}

// backwardPass walks operations in reverse source order, filling NU1/NU2/NU3 from a
// live map of "next line this vr is referenced on". Definitions are processed before
// uses within an operation (the reverse of the forward pass's order), because a def
// kills the live range above it while a use extends it downward.
func backwardPass(b *ir.Block) {
	vrNext := make(map[int]int)

	lookup := func(vr int) ir.NextUse {
		if line, ok := vrNext[vr]; ok {
			return ir.NextUse(line)
		}
		return ir.Never
	}

	useAt := func(vr, line int) ir.NextUse {
		nu := lookup(vr)
		vrNext[vr] = line
		return nu
	}

	b.Backward(func(op *ir.Operation) {
		if op.HasDef() && op.VR3 != ir.Absent {
			op.NU3 = lookup(op.VR3)
			delete(vrNext, op.VR3)
		}

		switch op.Opcode {
		case ir.Store:
			if op.VR1 != ir.Absent {
				op.NU1 = useAt(op.VR1, op.Line)
			}
			if op.VR3 != ir.Absent {
				op.NU3 = useAt(op.VR3, op.Line)
			}
		case ir.Load:
			if op.VR1 != ir.Absent {
				op.NU1 = useAt(op.VR1, op.Line)
			}
		default:
			if op.Opcode.IsArith() {
				if op.VR1 != ir.Absent {
					op.NU1 = useAt(op.VR1, op.Line)
				}
				if op.VR2 != ir.Absent {
					op.NU2 = useAt(op.VR2, op.Line)
				}
			}
		}
	})
}
