package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ricardopieper/pony-lang/internal/config"
	"github.com/ricardopieper/pony-lang/internal/pipeline"
	"github.com/ricardopieper/pony-lang/internal/vm"
)

func newBuildCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "build [program]",
		Short: "Compile a program into a bundle",
		Long: "Compile a front-end program file into a runnable bundle.\n" +
			"With no argument, the entry point is taken from " + config.ProjectConfigFile + ".",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, out, err := resolveBuildTarget(args, output)
			if err != nil {
				return err
			}

			ctx := compileFile(entry)
			if err := reportDiagnostics(ctx); err != nil {
				return err
			}
			if err := vm.SaveBundle(out, ctx.Image); err != nil {
				return err
			}
			logger.Debug("bundle written",
				zap.String("path", out),
				zap.Int("functions", len(ctx.Image.Functions)),
				zap.Int("tables", len(ctx.Image.Tables)))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "bundle output path")
	return cmd
}

// resolveBuildTarget decides entry and output paths from the argument, the
// -o flag, and pony.yaml when no argument is given.
func resolveBuildTarget(args []string, output string) (string, string, error) {
	if len(args) == 1 {
		entry := args[0]
		if output == "" {
			output = defaultBundlePath(entry)
		}
		return entry, output, nil
	}
	proj, err := config.LoadProject(config.ProjectConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", fmt.Errorf("no program given and no %s found", config.ProjectConfigFile)
		}
		return "", "", err
	}
	if output == "" {
		output = proj.Output
	}
	return proj.Entry, output, nil
}

func defaultBundlePath(entry string) string {
	base := entry
	for ext := filepath.Ext(base); ext != ""; ext = filepath.Ext(base) {
		base = base[:len(base)-len(ext)]
	}
	return base + config.BundleFileExt
}

// compileFile runs the full stage sequence on one program file.
func compileFile(path string) *pipeline.Context {
	p := pipeline.New(logger,
		pipeline.DecodeProcessor{},
		pipeline.AnalyzeProcessor{},
		pipeline.DispatchProcessor{},
		pipeline.CompileProcessor{},
	)
	return p.Run(pipeline.NewContext(path))
}

// isBundlePath reports whether a path names a compiled bundle rather than a
// front-end program file.
func isBundlePath(path string) bool {
	return strings.HasSuffix(path, config.BundleFileExt)
}
