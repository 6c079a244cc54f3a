// Command ilocalloc selects a pipeline mode (scan, parse, IR table, rename,
// allocate) and wires the scanner, parser, renamer and allocator together.
package main

import (
	"fmt"
	"os"

	"ilocalloc/internal/cli"
)

func main() {
	root := cli.NewRootCommand(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
