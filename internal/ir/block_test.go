package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock_AppendAndTraverse(t *testing.T) {
	b := NewBlock()
	b.Append(1, LoadI)
	b.Append(2, Add)
	require.Equal(t, 2, b.Len())

	var forward []int
	b.Forward(func(o *Operation) { forward = append(forward, o.Line) })
	assert.Equal(t, []int{1, 2}, forward)

	var backward []int
	b.Backward(func(o *Operation) { backward = append(backward, o.Line) })
	assert.Equal(t, []int{2, 1}, backward)
}

func TestBlock_PrevNextLinks(t *testing.T) {
	b := NewBlock()
	o1 := b.Append(1, Nop)
	o2 := b.Append(2, Nop)

	assert.Nil(t, o1.Prev())
	assert.Same(t, o2, o1.Next())
	assert.Same(t, o1, o2.Prev())
	assert.Nil(t, o2.Next())
}

func TestOperation_HasDef(t *testing.T) {
	op := &Operation{Opcode: Store}
	assert.False(t, op.HasDef())

	op = &Operation{Opcode: Add}
	assert.True(t, op.HasDef())

	op = &Operation{Opcode: LoadI}
	assert.True(t, op.HasDef())
}

func TestNextUse_NeverIsGreatestAny(t *testing.T) {
	assert.Greater(t, int32(Never), int32(500000))
}
