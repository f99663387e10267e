// Package main is the entry point for the undotree command.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/undotree/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath   string
	logLevel     string
	strictConfig bool
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "undotree",
		Short: "Branching undo/redo history playground",
		Long: `undotree edits a text document through a branching undo history.

Recording an edit after undoing keeps the undone edits on their own branch,
and any state can be reached again along the shortest path.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a TOML or YAML configuration file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&flags.strictConfig, "strict-config", false, "reject unknown keys in the configuration file")

	root.AddCommand(
		newReplCmd(flags),
		newRunCmd(flags),
		newLuaCmd(flags),
		newVersionCmd(),
	)
	return root
}

func (f *rootFlags) application(cmd *cobra.Command) (*app.Application, error) {
	return app.New(app.Options{
		ConfigPath:   f.configPath,
		LogLevel:     f.logLevel,
		StrictConfig: f.strictConfig,
		LogOutput:    cmd.ErrOrStderr(),
	})
}

func newReplCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Edit interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := flags.application(cmd)
			if err != nil {
				return err
			}
			return application.Interactive(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), "undotree> ")
		},
	}
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	var watchFile bool
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Execute a file of session commands",
		Example: `  undotree run edits.txt

where edits.txt contains lines such as:
  insert 0 "hello"
  undo
  tree`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := flags.application(cmd)
			if err != nil {
				return err
			}
			run := func(ctx context.Context) error {
				return application.RunCommands(ctx, args[0], cmd.OutOrStdout())
			}
			if watchFile {
				return application.Watch(cmd.Context(), args[0], cmd.ErrOrStderr(), run)
			}
			return run(cmd.Context())
		},
	}
	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "rerun the file every time it is saved")
	return cmd
}

func newLuaCmd(flags *rootFlags) *cobra.Command {
	var watchFile bool
	cmd := &cobra.Command{
		Use:   "lua <file>",
		Short: "Run a Lua script against a fresh history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := flags.application(cmd)
			if err != nil {
				return err
			}
			run := func(ctx context.Context) error {
				return application.RunLua(ctx, args[0], cmd.OutOrStdout())
			}
			if watchFile {
				return application.Watch(cmd.Context(), args[0], cmd.ErrOrStderr(), run)
			}
			return run(cmd.Context())
		},
	}
	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "rerun the script every time it is saved")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "undotree %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
		},
	}
}
