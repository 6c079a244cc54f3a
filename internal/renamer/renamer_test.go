package renamer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ilocalloc/internal/ir"
	"ilocalloc/internal/parser"
)

func parseOrFail(t *testing.T, src string) *ir.Block {
	t.Helper()
	b, err := parser.Parse(src)
	require.NoError(t, err)
	return b
}

// TestRename_S1 checks that every definition mints a distinct vr.
func TestRename_S1(t *testing.T) {
	src := "loadI 1024 => r0\nloadI 2    => r1\nadd r0, r1 => r2\noutput 1024\n"
	b := parseOrFail(t, src)
	res := Rename(b)
	assert.Equal(t, 3, res.VirtualRegisters)

	ops := b.Slice()
	assert.Equal(t, 0, ops[0].VR3)
	assert.Equal(t, 1, ops[1].VR3)
	assert.Equal(t, 0, ops[2].VR1)
	assert.Equal(t, 1, ops[2].VR2)
	assert.Equal(t, 2, ops[2].VR3)
}

// TestRename_UseBeforeDef checks that in `add r1,r1 => r1`, both uses share a vr
// distinct from the def's fresh vr.
func TestRename_UseBeforeDef(t *testing.T) {
	src := "loadI 5 => r1\nadd r1, r1 => r1\noutput 1024\n"
	b := parseOrFail(t, src)
	Rename(b)

	ops := b.Slice()
	addOp := ops[1]
	assert.Equal(t, addOp.VR1, addOp.VR2)
	assert.NotEqual(t, addOp.VR1, addOp.VR3)
}

// TestRename_DeadDefinition covers two loadI defs of the same source register,
// neither used again: both must carry nu3 == Never.
func TestRename_DeadDefinition(t *testing.T) {
	src := "loadI 42 => r0\nloadI 99 => r0\noutput 1024\n"
	b := parseOrFail(t, src)
	Rename(b)

	ops := b.Slice()
	assert.NotEqual(t, ops[0].VR3, ops[1].VR3)
	assert.Equal(t, ir.Never, ops[0].NU3)
	assert.Equal(t, ir.Never, ops[1].NU3)
}

// TestRename_NextUseMonotonicity checks that successive occurrences of the same vr
// report strictly increasing next-use lines, Never on the last occurrence.
func TestRename_NextUseMonotonicity(t *testing.T) {
	src := "loadI 1 => r1\nloadI 2 => r2\nloadI 3 => r3\nadd r1, r2 => r4\nadd r4, r3 => r5\nadd r5, r1 => r6\noutput 1024\n"
	b := parseOrFail(t, src)
	Rename(b)

	ops := b.Slice()
	// r1's vr (ops[0].VR3) is referenced at line 4 (as operand 1, "add r1, r2 => r4")
	// and line 6 (as operand 2, "add r5, r1 => r6"); the def's nu3 must point at the
	// first of those, the first use's nu1 at the second, and the final use is dead.
	vr1 := ops[0].VR3
	assert.Equal(t, vr1, ops[3].VR1)
	assert.Equal(t, vr1, ops[5].VR2)
	assert.Equal(t, ir.NextUse(4), ops[0].NU3)
	assert.Equal(t, ir.NextUse(6), ops[3].NU1)
	assert.Equal(t, ir.Never, ops[5].NU2)
}

// TestRename_StoreOperandsAreBothUses covers store's position-3-as-use asymmetry.
func TestRename_StoreOperandsAreBothUses(t *testing.T) {
	src := "loadI 1024 => r0\nloadI 7 => r1\nstore r1 => r0\noutput 1024\n"
	b := parseOrFail(t, src)
	Rename(b)

	ops := b.Slice()
	store := ops[2]
	assert.NotEqual(t, ir.Absent, store.VR1)
	assert.NotEqual(t, ir.Absent, store.VR3)
	assert.Equal(t, ir.Never, store.NU1)
	assert.Equal(t, ir.Never, store.NU3)
}
