package modules

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/quill/internal/ast"
	"github.com/funvibe/quill/internal/diagnostics"
	"github.com/funvibe/quill/internal/utils"
)

// Loader resolves, reads and parses imported files and tracks the stack
// of files currently executing. Import paths are relative to the file
// that contains the import, or to BaseDir outside of any file. A relative
// import that does not exist there is looked up in SearchPaths in order.
type Loader struct {
	BaseDir     string
	SearchPaths []string
	Logger      *slog.Logger

	LoadedModules map[string]*Module // Parsed files by absolute path
	Processing    map[string]bool    // Files on the execution stack

	stack []string
}

func NewLoader() *Loader {
	return &Loader{
		BaseDir:       ".",
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		LoadedModules: make(map[string]*Module),
		Processing:    make(map[string]bool),
	}
}

// Current returns the file on top of the execution stack, or "" when no
// file is executing.
func (l *Loader) Current() string {
	if len(l.stack) == 0 {
		return ""
	}
	return l.stack[len(l.stack)-1]
}

// Stack returns the execution stack, outermost first.
func (l *Loader) Stack() []string {
	return append([]string(nil), l.stack...)
}

// Resolve returns the absolute path an import of path refers to from the
// current context.
func (l *Loader) Resolve(path string) (string, error) {
	base := l.BaseDir
	if cur := l.Current(); cur != "" {
		base = utils.GetModuleDir(cur)
	}
	local, err := filepath.Abs(utils.ResolveImportPath(base, path))
	if err != nil || filepath.IsAbs(path) {
		return local, err
	}
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}
	for _, dir := range l.SearchPaths {
		candidate, err := filepath.Abs(utils.ResolveImportPath(dir, path))
		if err != nil {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			l.Logger.Debug("resolved from search path", "import", path, "dir", dir)
			return candidate, nil
		}
	}
	return local, nil
}

// Load resolves path and returns its parsed program. Each file is parsed
// once per loader; a program is re-evaluated on every import.
func (l *Loader) Load(path string) (*ast.Program, error) {
	absPath, err := l.Resolve(path)
	if err != nil {
		return nil, err
	}
	if mod, ok := l.LoadedModules[absPath]; ok {
		return mod.Program, nil
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, diagnostics.At(diagnostics.Runtime, 0, 0, "cannot import '%s': file not found", path)
		}
		return nil, diagnostics.At(diagnostics.Runtime, 0, 0, "cannot import '%s': %v", path, err)
	}
	program, err := Parse(string(content), absPath)
	if err != nil {
		return nil, err
	}
	l.Logger.Debug("parsed module", "path", absPath, "statements", len(program.Statements))
	l.LoadedModules[absPath] = newModule(absPath, program)
	return program, nil
}

// Enter pushes file onto the execution stack. Entering a file that is
// already executing is a circular import.
func (l *Loader) Enter(file string) error {
	absPath, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	if l.Processing[absPath] {
		chain := append(l.Stack(), absPath)
		return diagnostics.At(diagnostics.Runtime, 0, 0,
			"circular import of '%s' (%s)", filepath.Base(absPath), describeChain(chain))
	}
	l.Processing[absPath] = true
	l.stack = append(l.stack, absPath)
	return nil
}

// Leave pops the innermost file.
func (l *Loader) Leave() {
	if len(l.stack) == 0 {
		return
	}
	top := l.stack[len(l.stack)-1]
	l.stack = l.stack[:len(l.stack)-1]
	delete(l.Processing, top)
}

func describeChain(chain []string) string {
	names := make([]string, len(chain))
	for i, p := range chain {
		names[i] = filepath.Base(p)
	}
	return strings.Join(names, " -> ")
}
