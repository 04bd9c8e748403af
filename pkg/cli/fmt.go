package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/funvibe/quill/internal/config"
	"github.com/funvibe/quill/internal/modules"
	"github.com/funvibe/quill/internal/prettyprinter"
)

// FmtOptions holds options for the fmt command.
type FmtOptions struct {
	Write bool
	List  bool
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand() *cobra.Command {
	opts := &FmtOptions{}

	cmd := &cobra.Command{
		Use:   "fmt <path>...",
		Short: "Reformat Quill source files",
		Long: `Reformat Quill source files into the canonical layout. Directories are
searched for source files recursively. By default the formatted source
is written to standard output.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectSources(args)
			if err != nil {
				return err
			}
			failed := false
			for _, file := range files {
				if err := formatFile(cmd, file, opts); err != nil {
					_ = report(cmd, err)
					failed = true
				}
			}
			if failed {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "write the result back to the file")
	cmd.Flags().BoolVarP(&opts.List, "list", "l", false, "list files whose formatting differs")

	return cmd
}

func formatFile(cmd *cobra.Command, file string, opts *FmtOptions) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	program, err := modules.Parse(string(content), file)
	if err != nil {
		return err
	}
	formatted := prettyprinter.Format(program)
	changed := formatted != string(content)

	if opts.List && changed {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), file)
	}
	if opts.Write {
		if changed {
			return os.WriteFile(file, []byte(formatted), 0o644)
		}
		return nil
	}
	if !opts.List {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), formatted)
	}
	return nil
}

// collectSources expands directories into the source files below them.
func collectSources(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && config.HasSourceExt(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
