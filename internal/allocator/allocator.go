// Package allocator implements bottom-up local register allocation over a renamed
// IR block: it assigns physical registers to virtual ones, spilling the occupant
// whose next use is furthest away when registers run out, and rematerializing
// loadI constants instead of spilling them. A dedicated bookkeeping type
// (registerFile) drives a single forward pass over the block, one operation at a
// time, rather than building an interference graph and coloring it.
package allocator

import (
	"fmt"

	"github.com/pkg/errors"

	"ilocalloc/internal/ir"
)

// Emitted is one physical-register-level instruction produced by allocation: either a
// rewritten source operation or synthesized spill/restore/rematerialization code.
// Instruction is a canonical ILOC opcode name ("loadI", "store", ...); A/B/C hold
// operands whose meaning depends on Instruction, mirroring ir.Operation's layout but
// at the physical-register level.
type Emitted struct {
	Instruction string
	A, B, C     int // meaning depends on Instruction; see String
}

// String renders one line of allocated ILOC text: exactly one instruction, using
// only r0..r(k-1).
func (e Emitted) String() string {
	switch e.Instruction {
	case "loadI":
		return fmt.Sprintf("loadI %d => r%d", e.A, e.C)
	case "load":
		return fmt.Sprintf("load r%d => r%d", e.A, e.C)
	case "store":
		return fmt.Sprintf("store r%d => r%d", e.A, e.C)
	case "output":
		return fmt.Sprintf("output %d", e.A)
	case "nop":
		return "nop"
	default:
		return fmt.Sprintf("%s r%d, r%d => r%d", e.Instruction, e.A, e.B, e.C)
	}
}

// Result holds the emitted instruction stream plus statistics the CLI's -v logging
// surfaces (spill and rematerialization counts).
type Result struct {
	Instructions       []Emitted
	Spills             int
	Rematerializations int
}

// Allocate runs the bottom-up allocator over a renamed block b with register budget
// k (3 <= k <= 64; the last register is reserved as scratch for spill/restore
// addressing). It returns the emitted instruction stream in source order.
func Allocate(b *ir.Block, k int) (Result, error) {
	if k < 3 || k > 64 {
		return Result{}, errors.Errorf("register budget k=%d out of range [3, 64]", k)
	}

	a := &allocState{rf: newRegisterFile(k)}
	var res Result

	b.Forward(func(op *ir.Operation) {
		a.step(op, &res)
	})

	res.Spills = a.spills
	res.Rematerializations = a.remats
	return res, nil
}

// allocState is the mutable state threaded through one call to Allocate.
type allocState struct {
	rf     *registerFile
	spills int
	remats int
}

func (a *allocState) emit(res *Result, e Emitted) {
	res.Instructions = append(res.Instructions, e)
}

// step runs the five-part allocation algorithm for one operation op: defer loadI,
// materialize uses, free dead uses, bind the def, then emit the final form.
func (a *allocState) step(op *ir.Operation, res *Result) {
	if op.Opcode == ir.LoadI {
		// Step 1: defer emission, record as a rematerialization candidate.
		a.rf.vrLoadI[op.VR3] = op.SR1
		a.rf.vrNU[op.VR3] = op.NU3
		return
	}

	// Step 2: materialize every use, in position order (1, 2, then 3-as-use for store).
	for _, u := range usesOf(op) {
		pr := a.materialize(u.vr, res)
		*u.pr = pr
		a.rf.vrNU[u.vr] = u.nu
	}

	// Step 3: free dead uses.
	for _, u := range usesOf(op) {
		if u.nu == ir.Never {
			a.rf.unbind(u.vr)
		}
	}

	// Step 4: bind the def, if any (loadI already returned above).
	if op.HasDef() {
		delete(a.rf.vrLoadI, op.VR3)
		pr := a.rf.selectPR()
		a.evict(pr, res)
		a.rf.bind(op.VR3, pr)
		op.PR3 = pr
		a.rf.vrNU[op.VR3] = op.NU3
		if op.NU3 == ir.Never {
			a.rf.unbind(op.VR3)
		}
	}

	// Step 5: emit the operation itself using its chosen physical registers.
	a.emit(res, canonical(op))
}

// use describes one operand occurrence to materialize: which vr, where to write the
// chosen pr back, and its next-use line (for vr_nu bookkeeping).
type use struct {
	vr int
	pr *int
	nu ir.NextUse
}

// usesOf returns the use-position operands of op in left-to-right order, so operand
// 1's materialization always precedes operand 2's. Store's position 3 is a use (the
// destination address), never a def.
func usesOf(op *ir.Operation) []use {
	switch op.Opcode {
	case ir.Load:
		return []use{{op.VR1, &op.PR1, op.NU1}}
	case ir.Store:
		return []use{{op.VR1, &op.PR1, op.NU1}, {op.VR3, &op.PR3, op.NU3}}
	default:
		if op.Opcode.IsArith() {
			return []use{{op.VR1, &op.PR1, op.NU1}, {op.VR2, &op.PR2, op.NU2}}
		}
		return nil
	}
}

// materialize ensures vr is bound to a physical register, evicting and
// spilling/rematerializing as needed, and returns that register.
func (a *allocState) materialize(vr int, res *Result) int {
	if pr, ok := a.rf.vrToPR[vr]; ok {
		return pr
	}

	pr := a.rf.selectPR()
	a.evict(pr, res)

	switch {
	case isLoadIConst(a.rf, vr):
		a.emit(res, Emitted{Instruction: "loadI", A: a.rf.vrLoadI[vr], C: pr})
		a.remats++
	case isSpilled(a.rf, vr):
		addr := a.rf.vrSpilled[vr]
		a.emit(res, Emitted{Instruction: "loadI", A: addr, C: a.rf.scratch()})
		a.emit(res, Emitted{Instruction: "load", A: a.rf.scratch(), C: pr})
	default:
		// Upward-exposed use with no known constant or spill slot: the value is
		// assumed already live-in from above the block, so no restore is emitted.
	}

	a.rf.bind(vr, pr)
	return pr
}

// evict frees pr's current occupant, spilling it to memory first unless it is a
// known constant or already spilled.
func (a *allocState) evict(pr int, res *Result) {
	old := a.rf.prToVR[pr]
	if old == empty {
		return
	}

	_, isConst := a.rf.vrLoadI[old]
	_, isSpilled := a.rf.vrSpilled[old]
	if !isConst && !isSpilled {
		addr := a.rf.allocSpillSlot(old)
		a.emit(res, Emitted{Instruction: "loadI", A: addr, C: a.rf.scratch()})
		a.emit(res, Emitted{Instruction: "store", A: pr, C: a.rf.scratch()})
		a.spills++
	}

	a.rf.unbind(old)
}

func isLoadIConst(rf *registerFile, vr int) bool {
	_, ok := rf.vrLoadI[vr]
	return ok
}

func isSpilled(rf *registerFile, vr int) bool {
	_, ok := rf.vrSpilled[vr]
	return ok
}

// canonical renders op's final form using its now-assigned physical registers.
func canonical(op *ir.Operation) Emitted {
	switch op.Opcode {
	case ir.Load:
		return Emitted{Instruction: "load", A: op.PR1, C: op.PR3}
	case ir.Store:
		return Emitted{Instruction: "store", A: op.PR1, C: op.PR3}
	case ir.Output:
		return Emitted{Instruction: "output", A: op.SR1}
	case ir.Nop:
		return Emitted{Instruction: "nop"}
	default:
		return Emitted{Instruction: op.Opcode.String(), A: op.PR1, B: op.PR2, C: op.PR3}
	}
}
