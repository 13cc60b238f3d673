package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jotvcs/jot/pkg/repo"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var chdir string

	root := &cobra.Command{
		Use:           "jot",
		Short:         "Content-addressed version control",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if chdir != "" {
				if err := os.Chdir(chdir); err != nil {
					return fmt.Errorf("change directory: %w", err)
				}
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&chdir, "chdir", "C", "", "run as if jot was started in this directory")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newCommitCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "jot 0.1.0-dev")
		},
	}
}

// openRepo locates the repository enclosing the current directory.
func openRepo(cmd *cobra.Command) (*repo.Repo, error) {
	return repo.Find(".", newLogger(cmd))
}

// newLogger builds the CLI logger to stderr: warn level so staging-area
// corruption warnings surface, debug when requested.
func newLogger(cmd *cobra.Command) *zap.Logger {
	level := zapcore.WarnLevel
	if debugRequested(cmd) {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// debugRequested reports whether debug logging was asked for, via the
// --debug flag or the JOT_DEBUG environment variable.
func debugRequested(cmd *cobra.Command) bool {
	if v, err := cmd.Flags().GetBool("debug"); err == nil && v {
		return true
	}
	env := os.Getenv("JOT_DEBUG")
	return env == "1" || strings.EqualFold(env, "true")
}
