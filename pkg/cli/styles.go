package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/funvibe/quill/internal/config"
	"github.com/funvibe/quill/internal/diagnostics"
)

// Styles renders diagnostics and REPL chrome. With color disabled every
// style renders its input unchanged.
type Styles struct {
	Location lipgloss.Style
	Kind     lipgloss.Style
	Message  lipgloss.Style
	Banner   lipgloss.Style
	Muted    lipgloss.Style
	Value    lipgloss.Style
}

// NewStyles builds styles for w under a color mode (auto, always, never).
func NewStyles(w io.Writer, mode string) *Styles {
	r := lipgloss.NewRenderer(w)
	if colorEnabled(w, mode) {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Styles{
		Location: r.NewStyle().Bold(true),
		Kind:     r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Message:  r.NewStyle(),
		Banner:   r.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		Muted:    r.NewStyle().Foreground(lipgloss.Color("8")),
		Value:    r.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

func colorEnabled(w io.Writer, mode string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// FormatError renders err in the file:line:col: Kind: message layout of
// diagnostics.Error, styling each part.
func (s *Styles) FormatError(err error) string {
	var diag *diagnostics.Error
	if !errors.As(err, &diag) {
		return s.Kind.Render("Error:") + " " + s.Message.Render(err.Error())
	}

	loc := ""
	if diag.File != "" {
		loc = diag.File + ":"
	}
	if diag.Line > 0 {
		loc += fmt.Sprintf("%d:%d:", diag.Line, diag.Column)
	}
	out := s.Kind.Render(diag.Kind.String()+":") + " " + s.Message.Render(diag.Message)
	if loc != "" {
		out = s.Location.Render(loc) + " " + out
	}
	return out
}
