// Command slc compiles SL source into Koopa-style IR text, RV32I+M
// assembly, or LLVM IR text, selected by the -koopa/-riscv/-llvm flags.
package main

import (
	"fmt"
	"os"

	"slc/src/backend"
	"slc/src/frontend"
	"slc/src/ir"
	llvmgen "slc/src/ir/llvm"
	"slc/src/util"
)

// run reads source code and drives the compiler stages. Behaviour is
// defined by the util.Options structure.
func run(opt util.Options) error {
	src, err := util.ReadSource(opt)
	if err != nil {
		return fmt.Errorf("could not read source code: %s", err)
	}

	if opt.TokenStream {
		text, err := frontend.TokenStream(src)
		if err != nil {
			return fmt.Errorf("lex error: %s", err)
		}
		fmt.Println(text)
		return nil
	}

	items, err := frontend.Parse(src)
	if err != nil {
		return fmt.Errorf("parse error: %s", err)
	}

	prog, err := ir.Build(items)
	if err != nil {
		return fmt.Errorf("compile error: %s", err)
	}

	if opt.Verbose {
		fmt.Fprintln(os.Stdout, prog.String())
	}

	switch opt.Mode {
	case util.ModeKoopa:
		return writeText(opt, prog.String())
	case util.ModeRiscv:
		return backend.GenerateAssembler(opt, prog)
	case util.ModeLLVM:
		return llvmgen.GenLLVM(opt, prog)
	default:
		return nil
	}
}

func writeText(opt util.Options, text string) error {
	var f *os.File
	if len(opt.Out) > 0 {
		var err error
		f, err = os.OpenFile(opt.Out, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
	}
	w := util.NewWriter(f)
	w.WriteString(text)
	return w.Flush()
}

func main() {
	opt, err := util.ParseArgs()
	if err != nil {
		fmt.Printf("argument error: %s\n", err)
		os.Exit(1)
	}
	if err := run(opt); err != nil {
		fmt.Printf("error: %s\n", err)
		os.Exit(1)
	}
}
