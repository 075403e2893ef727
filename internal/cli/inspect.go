package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ricardopieper/pony-lang/internal/vm"
)

func newInspectCommand() *cobra.Command {
	var disasm bool
	cmd := &cobra.Command{
		Use:   "inspect <program-or-bundle>",
		Short: "Show the dispatch tables and code layout of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := loadImage(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderTables(out, img)
			renderFunctions(out, img)
			if disasm {
				fmt.Fprint(out, vm.Disassemble(img))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&disasm, "disasm", false, "also print disassembled bytecode")
	return cmd
}

func renderTables(out io.Writer, img *vm.Image) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Dispatch Tables")
	t.AppendHeader(table.Row{"#", "Struct", "Trait", "Slot", "Method", "Addr"})
	for i, ct := range img.Tables {
		for slot, idx := range ct.FuncIdx {
			t.AppendRow(table.Row{i, ct.StructName, ct.TraitName, slot,
				img.Functions[idx].Name, fmt.Sprintf("%04d", ct.Addrs[slot])})
		}
		t.AppendSeparator()
	}
	t.Render()
}

func renderFunctions(out io.Writer, img *vm.Image) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Functions")
	t.AppendHeader(table.Row{"#", "Name", "Owner", "Arity", "Addr", "Bytes"})
	for i, fn := range img.Functions {
		owner := "-"
		if name, ok := img.StructNames[fn.OwnerSt]; ok {
			owner = name
			if trait, ok := img.TraitNames[fn.OwnerTr]; ok {
				owner += " as " + trait
			}
		}
		t.AppendRow(table.Row{i, fn.Name, owner, fn.Arity,
			fmt.Sprintf("%04d", fn.Addr), len(fn.Chunk.Code)})
	}
	t.Render()
}
