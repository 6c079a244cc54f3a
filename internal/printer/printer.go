// Package printer renders the IR at each pipeline stage to text: the scan-mode token
// table, the human-readable IR table (-r), renamed ILOC (-x) and allocated ILOC. It
// carries no allocation logic of its own.
package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"ilocalloc/internal/allocator"
	"ilocalloc/internal/ir"
	"ilocalloc/internal/token"
)

// Tokens writes a tabular token stream, one row per token, matching the -s CLI mode.
func Tokens(w io.Writer, tokens []token.Token) error {
	tw := tabwriter.NewWriter(w, 6, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "Value\tType\tLine"); err != nil {
		return err
	}
	for _, t := range tokens {
		if _, err := fmt.Fprintf(tw, "%q\t%s\t%d\n", t.Text, t.Kind, t.Line); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// IRTable writes the human-readable operation table for the -r CLI mode, one row per
// source-register form operation, in a fixed-width bracketed layout.
func IRTable(w io.Writer, b *ir.Block) error {
	var err error
	b.Forward(func(op *ir.Operation) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintln(w, formatRow(op))
	})
	return err
}

func formatRow(op *ir.Operation) string {
	switch op.Opcode {
	case ir.LoadI:
		return fmt.Sprintf("[ %-8s | val: %6d |        -       | r%-6d | ]", "loadI", op.SR1, op.SR3)
	case ir.Load, ir.Store:
		return fmt.Sprintf("[ %-8s | r%-6d |        -       | r%-6d | ]", op.Opcode, op.SR1, op.SR3)
	case ir.Output:
		return fmt.Sprintf("[ %-8s | val: %6d |        -       |        -       | ]", "output", op.SR1)
	case ir.Nop:
		return fmt.Sprintf("[ %-8s |        -       |        -       |        -       | ]", "nop")
	default:
		return fmt.Sprintf("[ %-8s | r%-6d | r%-6d | r%-6d | ]", op.Opcode, op.SR1, op.SR2, op.SR3)
	}
}

// Renamed writes renamed ILOC text (virtual registers in place of source registers),
// the -x CLI mode's output.
func Renamed(w io.Writer, b *ir.Block) error {
	var err error
	b.Forward(func(op *ir.Operation) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintln(w, renamedLine(op))
	})
	return err
}

func renamedLine(op *ir.Operation) string {
	switch op.Opcode {
	case ir.LoadI:
		return fmt.Sprintf("loadI %d => r%d", op.SR1, op.VR3)
	case ir.Load:
		return fmt.Sprintf("load r%d => r%d", op.VR1, op.VR3)
	case ir.Store:
		return fmt.Sprintf("store r%d => r%d", op.VR1, op.VR3)
	case ir.Output:
		return fmt.Sprintf("output %d", op.SR1)
	case ir.Nop:
		return "nop"
	default:
		return fmt.Sprintf("%s r%d, r%d => r%d", op.Opcode, op.VR1, op.VR2, op.VR3)
	}
}

// Allocated writes the final allocated ILOC text stream: one instruction per line,
// source order, no comments or blank lines.
func Allocated(w io.Writer, res allocator.Result) error {
	for _, ins := range res.Instructions {
		if _, err := fmt.Fprintln(w, ins.String()); err != nil {
			return err
		}
	}
	return nil
}
