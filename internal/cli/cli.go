// Package cli wires the scanner, parser, renamer, allocator and printer into the
// allocator's command-line surface, using github.com/spf13/cobra and
// github.com/spf13/pflag for flag parsing.
package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ilocalloc/internal/allocator"
	"ilocalloc/internal/parser"
	"ilocalloc/internal/printer"
	"ilocalloc/internal/renamer"
	"ilocalloc/internal/scanner"
	"ilocalloc/internal/token"
)

// flags holds the parsed command-line configuration for one invocation.
type flags struct {
	scan    bool
	parseIR bool
	irTable bool
	rename  bool
	k       int
	file    string
	verbose bool
	logJSON bool
}

// NewRootCommand builds the cobra.Command tree for the allocator CLI. out/errOut let
// tests capture stdout/stderr instead of the process streams.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	f := &flags{}
	log := logrus.New()
	log.SetOutput(errOut)

	root := &cobra.Command{
		Use:           "ilocalloc [flags] <file>",
		Short:         "Two-pass local register allocator for straight-line ILOC",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.logJSON {
				log.SetFormatter(&logrus.JSONFormatter{})
			}
			if f.verbose {
				log.SetLevel(logrus.DebugLevel)
			}
			return run(cmd, args, f, log, out)
		},
	}

	root.Flags().BoolVarP(&f.scan, "scan", "s", false, "print the token stream and exit")
	root.Flags().BoolVarP(&f.parseIR, "parse", "p", false, "parse and report the operation count or errors")
	root.Flags().BoolVarP(&f.irTable, "ir", "r", false, "parse and print the IR table")
	root.Flags().BoolVarP(&f.rename, "rename", "x", false, "parse, rename, and print renamed ILOC")
	root.Flags().Var(&kFlag{v: &f.k}, "k", "register budget for allocation (3-64); 0 means allocation mode is not requested")
	root.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log pass statistics to stderr")
	root.Flags().BoolVar(&f.logJSON, "log-format-json", false, "use JSON structured logging instead of text")

	return root
}

// run dispatches to the requested mode, in precedence order -r > -p > -s > -x >
// allocate. Cobra handles -h itself (it short-circuits before RunE), so only those
// five are resolved here, plus the legacy bare "<k> <file>" invocation.
func run(cmd *cobra.Command, args []string, f *flags, log *logrus.Logger, out io.Writer) error {
	file, k, allocateMode, err := resolveInvocation(args, f)
	if err != nil {
		return err
	}
	f.file = file

	src, err := readSource(f.file)
	if err != nil {
		return errors.Wrap(err, "reading source")
	}

	switch {
	case f.irTable:
		return doIRTable(src, out)
	case f.parseIR:
		return doParse(src, out)
	case f.scan:
		return doScan(src, out)
	case f.rename:
		return doRename(src, out, log)
	case allocateMode:
		return doAllocate(src, k, out, log)
	default:
		return cmd.Help()
	}
}

// resolveInvocation reconciles the flag-based surface with the legacy positional
// "<k> <file>" form: if no mode flag was given and exactly two bare args were passed
// where the first parses as an integer, that is an allocate invocation.
func resolveInvocation(args []string, f *flags) (file string, k int, allocate bool, err error) {
	anyModeFlag := f.scan || f.parseIR || f.irTable || f.rename || f.k != 0

	if !anyModeFlag && len(args) == 2 {
		if n, convErr := strconv.Atoi(args[0]); convErr == nil {
			return args[1], n, true, validateK(n)
		}
	}

	if f.k != 0 {
		if len(args) != 1 {
			return "", 0, false, errors.New("allocate mode expects exactly one file argument")
		}
		return args[0], f.k, true, validateK(f.k)
	}

	if len(args) != 1 {
		return "", 0, false, errors.New("expected exactly one file argument")
	}
	return args[0], 0, false, nil
}

func validateK(k int) error {
	if k < 3 || k > 64 {
		return errors.Errorf("register budget k=%d out of range [3, 64]", k)
	}
	return nil
}

// kFlag is a pflag.Value for --k that rejects an out-of-range register budget at
// flag-parse time rather than after a mode has already started running.
type kFlag struct {
	v *int
}

var _ pflag.Value = (*kFlag)(nil)

func (f *kFlag) String() string {
	if f.v == nil {
		return "0"
	}
	return strconv.Itoa(*f.v)
}

func (f *kFlag) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return errors.Wrap(err, "register budget must be an integer")
	}
	if err := validateK(n); err != nil {
		return err
	}
	*f.v = n
	return nil
}

func (f *kFlag) Type() string { return "int" }

func readSource(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func doScan(src string, out io.Writer) error {
	s := scanner.New(src)
	go s.Run()
	var toks []token.Token
	for t := range s.Tokens() {
		if t.Kind == token.Error {
			return errors.Errorf("line %d: %s", t.Line, t.Text)
		}
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return printer.Tokens(out, toks)
}

func doParse(src string, out io.Writer) error {
	b, perrErr := parser.Parse(src)
	if perrErr != nil {
		return perrErr
	}
	_, err := fmt.Fprintf(out, "parsed %d operation(s) successfully\n", b.Len())
	return err
}

func doIRTable(src string, out io.Writer) error {
	b, err := parser.Parse(src)
	if err != nil {
		return err
	}
	return printer.IRTable(out, b)
}

func doRename(src string, out io.Writer, log *logrus.Logger) error {
	b, err := parser.Parse(src)
	if err != nil {
		return err
	}
	res := renamer.Rename(b)
	log.WithField("virtual_registers", res.VirtualRegisters).Debug("renaming complete")
	return printer.Renamed(out, b)
}

func doAllocate(src string, k int, out io.Writer, log *logrus.Logger) error {
	b, err := parser.Parse(src)
	if err != nil {
		return err
	}
	renamer.Rename(b)
	res, err := allocator.Allocate(b, k)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"spills":             res.Spills,
		"rematerializations": res.Rematerializations,
		"instructions":       len(res.Instructions),
	}).Debug("allocation complete")
	return printer.Allocated(out, res)
}
