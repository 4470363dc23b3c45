// args.go provides command line argument parsing for the slc compiler driver.

package util

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Mode selects which compiler stage the driver stops at and what it emits.
type Mode int

// Options holds the fully parsed command line configuration of a compiler invocation.
type Options struct {
	Src         string // Path to source file. Empty means read stdin.
	Out         string // Path to output file. Empty means write stdout.
	Mode        Mode   // Requested output: koopa-style IR text, RISC-V assembly, or LLVM IR text.
	TokenStream bool   // Set true if compiler should print the token stream and exit.
	Verbose     bool   // Set true if compiler should print intermediate stages to stdout.
}

// ---------------------
// ----- Constants -----
// ---------------------

const appVersion = "slc compiler 1.0"

// Output modes.
const (
	ModeNone  Mode = iota // No backend requested; parse/validate only.
	ModeKoopa             // -koopa: textual SSA IR dump.
	ModeRiscv             // -riscv: RISC-V 32I+M assembly.
	ModeLLVM              // -llvm: textual LLVM IR via tinygo.org/x/go-llvm.
)

// ---------------------
// ----- functions -----
// ---------------------

// ParseArgs parses command line arguments into an Options structure.
func ParseArgs() (Options, error) {
	opt := Options{}
	args := os.Args[1:]
	if len(args) == 0 {
		return opt, fmt.Errorf("no arguments given, use -h for usage")
	}
	for i1 := 0; i1 < len(args); i1++ {
		switch args[i1] {
		case "-h", "--h", "-help", "--help":
			printHelp()
			os.Exit(0)
		case "-v", "--v", "-version", "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case "-vb":
			opt.Verbose = true
		case "-ts":
			opt.TokenStream = true
		case "-koopa", "-riscv", "-llvm":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no source file argument", args[i1])
			}
			if strings.HasPrefix(args[i1+1], "-") {
				return opt, fmt.Errorf("expected path to source file, got new flag %s", args[i1+1])
			}
			switch args[i1] {
			case "-koopa":
				opt.Mode = ModeKoopa
			case "-riscv":
				opt.Mode = ModeRiscv
			case "-llvm":
				opt.Mode = ModeLLVM
			}
			opt.Src = args[i1+1]
			i1++
		case "-o":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			if strings.HasPrefix(args[i1+1], "-") {
				return opt, fmt.Errorf("expected path to output file, got new flag %s", args[i1+1])
			}
			opt.Out = args[i1+1]
			i1++
		default:
			if strings.HasPrefix(args[i1], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i1])
			}
			// Bare path: treat as source file if not already set.
			if len(opt.Src) == 0 {
				opt.Src = args[i1]
			} else {
				return opt, fmt.Errorf("unexpected argument: %s", args[i1])
			}
		}
	}
	return opt, nil
}

// printHelp prints a helpful usage message to stdout.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-h, -help\tPrints this help message and exits.")
	_, _ = fmt.Fprintln(w, "-koopa <file>\tParse and lower <file>, print textual SSA IR.")
	_, _ = fmt.Fprintln(w, "-riscv <file>\tCompile <file> to RISC-V 32I+M assembly.")
	_, _ = fmt.Fprintln(w, "-llvm <file>\tLower <file> to LLVM IR text via the system LLVM.")
	_, _ = fmt.Fprintln(w, "-o <file>\tPath of the output file. Defaults to stdout.")
	_, _ = fmt.Fprintln(w, "-ts\tPrint the token stream of the source file and exit.")
	_, _ = fmt.Fprintln(w, "-v, -version\tPrints application version and exits.")
	_, _ = fmt.Fprintln(w, "-vb\tVerbose mode: print intermediate stages to stdout.")
	_ = w.Flush()
}
