package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/funvibe/quill/internal/config"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Watch bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Run a Quill script",
		Long: `Run a Quill script. Without a file, or with "-", the script is read
from standard input.

With --watch the script is run again whenever a source file in its
directory changes, until interrupted.`,
		Example: `  # Run a script
  quill run main.ql

  # Re-run on every change
  quill run --watch main.ql

  # Run from a pipe
  echo 'print(1 + 2);' | quill run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			if opts.Watch {
				if path == "-" {
					return fmt.Errorf("--watch needs a file")
				}
				return watchFile(cmd.Context(), cmd, path)
			}
			return runFile(cmd, path)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "re-run when source files change")

	return cmd
}

// runFile runs path in a fresh session; "-" reads standard input.
func runFile(cmd *cobra.Command, path string) error {
	source, file, err := readSource(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	if _, err := newInterpreter(cmd).Exec(source, file); err != nil {
		return report(cmd, err)
	}
	return nil
}

func readSource(stdin io.Reader, path string) (source, file string, err error) {
	if path == "-" {
		if f, ok := stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return "", "", fmt.Errorf("usage: quill run <file> or pipe a script to standard input")
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("error reading input: %w", err)
		}
		return string(data), "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("error reading input: %w", err)
	}
	return string(data), path, nil
}

// watchFile runs path, then runs it again after every change to a source
// file under its directory. Failed runs are reported and watching goes on.
func watchFile(ctx context.Context, cmd *cobra.Command, path string) error {
	a := getApp(cmd)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDir(watcher, filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	run := func() {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), a.styles.Muted.Render(
			fmt.Sprintf("[%s] running %s", time.Now().Format("15:04:05"), path)))
		_ = runFile(cmd, path)
	}
	run()

	// Debounce bursts of events from a single save.
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !config.HasSourceExt(event.Name) {
				continue
			}
			a.logger.Debug("change detected", "path", event.Name)
			pending = time.After(100 * time.Millisecond)
		case <-pending:
			pending = nil
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watcher error", "error", err)
		}
	}
}

// watchDir recursively adds a directory to the watcher.
func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		// Skip hidden directories
		if path != dir && len(info.Name()) > 0 && info.Name()[0] == '.' {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
