// Package cli provides the quill command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/funvibe/quill/internal/config"
	quill "github.com/funvibe/quill/pkg/embed"
)

var cfgFile string

// errReported marks a failure whose diagnostic was already written.
var errReported = errors.New("reported")

// appKey is used to store the loaded app in context.
type appKey struct{}

// app is the per-invocation state built from the settings.
type app struct {
	settings *config.Settings
	logger   *slog.Logger
	styles   *Styles
}

// NewRootCmd creates and returns the root command. Without a subcommand
// it runs the given file, or starts the REPL when there is none.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "quill [file]",
		Short: "Quill - a small dynamic scripting language",
		Long: `Quill runs scripts written in a small dynamically typed language with
closures, classes and file imports.

Run a file with "quill run FILE" (or just "quill FILE"), evaluate a
snippet with "quill eval", or start an interactive session with "quill repl".`,
		Version: config.Version,
		Args:    cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip settings for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			settings, err := config.LoadSettings(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			a, err := newApp(settings, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if settings.File != "" {
				a.logger.Debug("using settings file", "path", settings.File)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runFile(cmd, args[0])
			}
			return runREPL(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	// Global persistent flags; names match the settings keys.
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "settings file (default: ./quill.yaml)")
	flags.Int("recursion-limit", config.DefaultRecursionLimit, "maximum active calls of one function")
	flags.Bool("ignore-overflow", false, "warn instead of failing when the recursion limit is exceeded")
	flags.String("log-level", "warn", "log level (debug|info|warn|error)")
	flags.String("color", config.ColorAuto, "colorize diagnostics (auto|always|never)")
	flags.StringSlice("paths", nil, "extra directories searched by import")

	_ = rootCmd.RegisterFlagCompletionFunc("color", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.ColorAuto, config.ColorAlways, config.ColorNever}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewEvalCommand())
	rootCmd.AddCommand(NewReplCommand())
	rootCmd.AddCommand(NewFmtCommand())
	rootCmd.AddCommand(NewVersionCommand(config.Version))

	return rootCmd
}

func newApp(settings *config.Settings, stderr io.Writer) (*app, error) {
	level, err := config.ParseLogLevel(settings.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return &app{
		settings: settings,
		logger:   logger,
		styles:   NewStyles(stderr, settings.Color),
	}, nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// getApp retrieves the app from the command context.
func getApp(cmd *cobra.Command) *app {
	if ctx := cmd.Context(); ctx != nil {
		if a, ok := ctx.Value(appKey{}).(*app); ok {
			return a
		}
	}
	// Fall back to defaults when run without the root pre-run
	a, _ := newApp(config.DefaultSettings(), cmd.ErrOrStderr())
	return a
}

// newInterpreter builds a session that prints to the command's output.
func newInterpreter(cmd *cobra.Command) *quill.Interpreter {
	a := getApp(cmd)
	return quill.New(
		quill.WithSettings(a.settings),
		quill.WithLogger(a.logger),
		quill.WithOutput(cmd.OutOrStdout()),
		quill.WithContext(cmd.Context()),
	)
}

// report writes err as a styled diagnostic and returns errReported.
func report(cmd *cobra.Command, err error) error {
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), getApp(cmd).styles.FormatError(err))
	return errReported
}
