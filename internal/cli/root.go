// Package cli implements the pony command line: check, build, run, inspect.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ricardopieper/pony-lang/internal/pipeline"
)

var (
	verbose bool
	logger  = zap.NewNop()
)

// NewRootCommand builds the full pony command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "pony",
		Short:         "Compiler and runtime for trait-dispatch programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = newLogger(verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable stage-level debug logging")

	root.AddCommand(newCheckCommand())
	root.AddCommand(newBuildCommand())
	root.AddCommand(newRunCommand())
	root.AddCommand(newInspectCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the CLI and returns a process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func newLogger(verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// reportDiagnostics renders collected errors and converts the context state
// into a command error.
func reportDiagnostics(ctx *pipeline.Context) error {
	if ctx.FatalErr != nil {
		return ctx.FatalErr
	}
	if ctx.Diags.HasErrors() {
		ctx.Diags.Render(os.Stderr)
		return fmt.Errorf("%d errors", ctx.Diags.Len())
	}
	return nil
}
