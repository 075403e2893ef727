package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ricardopieper/pony-lang/internal/pipeline"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <program>",
		Short: "Type-check a program and report every error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := pipeline.New(logger,
				pipeline.DecodeProcessor{},
				pipeline.AnalyzeProcessor{},
				pipeline.DispatchProcessor{},
			)
			ctx := p.Run(pipeline.NewContext(args[0]))
			if err := reportDiagnostics(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d dispatch tables)\n", args[0], ctx.Tables.Len())
			return nil
		},
	}
}
