package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ricardopieper/pony-lang/internal/vm"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <program-or-bundle>",
		Short: "Compile and execute a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := loadImage(args[0])
			if err != nil {
				return err
			}

			result, err := vm.NewVM(img).Run()
			if err != nil {
				return fmt.Errorf("runtime error: %w", err)
			}
			if result.Type != vm.ValUnit {
				fmt.Fprintln(cmd.OutOrStdout(), result)
			}
			return nil
		},
	}
}

// loadImage produces a runnable image from either a bundle or a program
// file, compiling the latter on the fly.
func loadImage(path string) (*vm.Image, error) {
	if isBundlePath(path) {
		b, err := vm.LoadBundle(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("bundle loaded", zap.String("build_id", b.BuildID))
		return b.Image, nil
	}
	ctx := compileFile(path)
	if err := reportDiagnostics(ctx); err != nil {
		return nil, err
	}
	return ctx.Image, nil
}
