package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ilocalloc/internal/ir"
)

func TestParse_S1(t *testing.T) {
	src := "loadI 1024 => r0\nloadI 2    => r1\nadd r0, r1 => r2\noutput 1024\n"
	b, err := Parse(src)
	require.NoError(t, err)
	require.Equal(t, 4, b.Len())

	ops := b.Slice()
	assert.Equal(t, ir.LoadI, ops[0].Opcode)
	assert.Equal(t, 1024, ops[0].SR1)
	assert.Equal(t, 0, ops[0].SR3)
	assert.Equal(t, ir.Add, ops[2].Opcode)
	assert.Equal(t, 0, ops[2].SR1)
	assert.Equal(t, 1, ops[2].SR2)
	assert.Equal(t, 2, ops[2].SR3)
	assert.Equal(t, ir.Output, ops[3].Opcode)
	assert.Equal(t, 1024, ops[3].SR1)
}

func TestParse_StoreTreatsPosition3AsUse(t *testing.T) {
	src := "loadI 1024 => r0\nloadI 7 => r1\nstore r1 => r0\noutput 1024\n"
	b, err := Parse(src)
	require.NoError(t, err)
	ops := b.Slice()
	assert.Equal(t, ir.Store, ops[2].Opcode)
	assert.Equal(t, 1, ops[2].SR1)
	assert.Equal(t, 0, ops[2].SR3)
}

func TestParse_CommentsAndBlankLines(t *testing.T) {
	src := "// a comment\n\nnop\n// trailing\n"
	b, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
}

func TestParse_SyntaxErrorsAreCollectedNotFatalImmediately(t *testing.T) {
	src := "loadI => r0\nnop\n"
	_, err := Parse(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
}

func TestParse_ResyncsAfterError(t *testing.T) {
	p := New("loadI => r0\noutput 1024\n")
	b, errs := p.Parse()
	require.Len(t, errs, 1)
	// The malformed loadI line produced one error; the well-formed output line
	// after it should still have been parsed, proving resynchronization worked.
	require.Equal(t, 1, b.Len())
	assert.Equal(t, ir.Output, b.Head().Opcode)
}

func TestParse_UnknownOpcode(t *testing.T) {
	_, errs := New("bogus r0 => r1\n").Parse()
	require.Len(t, errs, 1)
}
