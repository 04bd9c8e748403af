package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/funvibe/quill/internal/evaluator"
)

// EvalOptions holds options for the eval command.
type EvalOptions struct {
	Print bool
}

// NewEvalCommand creates the eval command.
func NewEvalCommand() *cobra.Command {
	opts := &EvalOptions{}

	cmd := &cobra.Command{
		Use:   "eval <source>",
		Short: "Evaluate Quill source given on the command line",
		Example: `  quill eval 'print(2 ** 10);'
  quill eval -p '[1, 2, 3].size()'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := newInterpreter(cmd).Exec(args[0], "")
			if err != nil {
				return report(cmd, err)
			}
			if opts.Print && res != nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), display(res))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Print, "print", "p", false, "print the value of the last expression")

	return cmd
}

// display renders a result the way it would be written in source.
func display(obj evaluator.Object) string {
	if s, ok := obj.(*evaluator.String); ok {
		return strconv.Quote(s.Value)
	}
	return obj.Inspect()
}
