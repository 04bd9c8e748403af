package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/funvibe/quill/internal/config"
	"github.com/funvibe/quill/internal/diagnostics"
	"github.com/funvibe/quill/internal/evaluator"
	"github.com/funvibe/quill/internal/lexer"
	"github.com/funvibe/quill/internal/token"
	quill "github.com/funvibe/quill/pkg/embed"
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Long: `Start an interactive session. Input spanning several lines is collected
until its brackets balance. Type .help for commands, .quit to exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}
}

// repl holds one interactive session. Lines are fed to handleLine, which
// buffers incomplete input and executes complete input.
type repl struct {
	id     uuid.UUID
	interp *quill.Interpreter
	reset  func() *quill.Interpreter
	out    io.Writer
	errOut io.Writer
	styles *Styles

	prompt       string
	buf          strings.Builder
	continuation bool
}

func newREPL(cmd *cobra.Command) *repl {
	a := getApp(cmd)
	id := uuid.New()
	logger := a.logger.With("session", id.String())
	build := func() *quill.Interpreter {
		return quill.New(
			quill.WithSettings(a.settings),
			quill.WithLogger(logger),
			quill.WithOutput(cmd.OutOrStdout()),
		)
	}
	return &repl{
		id:     id,
		interp: build(),
		reset:  build,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		styles: a.styles,
		prompt: a.settings.Prompt,
	}
}

func runREPL(cmd *cobra.Command) error {
	a := getApp(cmd)
	r := newREPL(cmd)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.prompt,
		HistoryFile:     a.settings.HistoryFile,
		AutoComplete:    newCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r.banner()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			r.discard()
			rl.SetPrompt(r.currentPrompt())
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if quit := r.handleLine(line); quit {
			break
		}
		rl.SetPrompt(r.currentPrompt())
	}
	return nil
}

func (r *repl) banner() {
	_, _ = fmt.Fprintln(r.out, r.styles.Banner.Render(fmt.Sprintf("Quill %s", config.Version)))
	_, _ = fmt.Fprintln(r.out, r.styles.Muted.Render(fmt.Sprintf("session %s", r.id)))
	_, _ = fmt.Fprintln(r.out, "Type .help for commands, .quit to exit")
}

func (r *repl) currentPrompt() string {
	if r.continuation {
		return config.ContinuationPrompt
	}
	return r.prompt
}

func (r *repl) discard() {
	r.buf.Reset()
	r.continuation = false
}

// handleLine processes one line of input and reports whether the session
// should end.
func (r *repl) handleLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !r.continuation {
		if trimmed == "" {
			return false
		}
		// Handle dot-commands
		if strings.HasPrefix(trimmed, ".") {
			return r.dotCommand(trimmed)
		}
	}

	r.buf.WriteString(line)
	r.buf.WriteString("\n")
	if incomplete(r.buf.String()) {
		r.continuation = true
		return false
	}

	source := r.buf.String()
	r.discard()
	r.execute(source, "")
	return false
}

func (r *repl) execute(source, file string) {
	res, err := r.interp.Exec(source, file)
	if err != nil {
		_, _ = fmt.Fprintln(r.errOut, r.styles.FormatError(err))
		return
	}
	if res != nil && res != evaluator.NONE {
		_, _ = fmt.Fprintln(r.out, r.styles.Value.Render(display(res)))
	}
}

// incomplete reports whether source ends inside brackets, a string or a
// block comment, so more input is needed.
func incomplete(source string) bool {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		var diag *diagnostics.Error
		return errors.As(err, &diag) && strings.HasPrefix(diag.Message, "unterminated")
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACKET, token.RBRACE:
			depth--
		}
	}
	return depth > 0
}

func (r *repl) dotCommand(line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(r.out)

	case ".vars":
		r.printVars()

	case ".reset":
		r.interp = r.reset()
		_, _ = fmt.Fprintln(r.out, r.styles.Muted.Render("session reset"))

	case ".load":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(r.errOut, "Usage: .load <file>")
			return false
		}
		content, err := os.ReadFile(parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
			return false
		}
		r.execute(string(content), parts[1])

	default:
		_, _ = fmt.Fprintf(r.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .vars           List global variables
  .load <file>    Run a file in this session
  .reset          Start over with an empty session
  .quit / .exit   Exit the REPL

Tips:
  - Input continues on the next line while brackets are open
  - Use arrow keys to navigate history
  - Tab completion works for builtins and commands
`
	_, _ = fmt.Fprintln(w, help)
}

// printVars lists the global bindings in a table.
func (r *repl) printVars() {
	names := r.interp.Globals()
	if len(names) == 0 {
		_, _ = fmt.Fprintln(r.out, "(no variables)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Type", "Value"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 48, WidthMaxEnforcer: text.Trim},
	})
	for _, name := range names {
		obj, ok := r.interp.Lookup(name)
		if !ok {
			continue
		}
		t.AppendRow(table.Row{name, typeLabel(obj), display(obj)})
	}
	t.Render()
}

func typeLabel(obj evaluator.Object) string {
	if inst, ok := obj.(*evaluator.Instance); ok {
		return inst.Class.Name
	}
	return string(obj.Type())
}

// newCompleter creates a readline completer for builtins and dot-commands.
func newCompleter() *readline.PrefixCompleter {
	names := make([]string, 0, len(evaluator.Builtins()))
	for name := range evaluator.Builtins() {
		names = append(names, name)
	}
	sort.Strings(names)

	var items []readline.PrefixCompleterInterface
	for _, name := range names {
		items = append(items, readline.PcItem(name))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".vars"),
		readline.PcItem(".load"),
		readline.PcItem(".reset"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return readline.NewPrefixCompleter(items...)
}
