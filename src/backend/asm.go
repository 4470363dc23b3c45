// Package backend drives the RISC-V assembly generator (components F-K)
// against a fully lowered ir.Program.
package backend

import (
	"os"

	"slc/src/backend/riscv"
	"slc/src/ir"
	"slc/src/util"
)

// GenerateAssembler writes prog's RV32I+M assembly to opt.Out, or stdout if
// opt.Out is empty.
func GenerateAssembler(opt util.Options, prog *ir.Program) error {
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
	return riscv.Generate(prog, w)
}
