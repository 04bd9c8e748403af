package modules

import (
	"path/filepath"

	"github.com/funvibe/quill/internal/ast"
	"github.com/funvibe/quill/internal/lexer"
	"github.com/funvibe/quill/internal/parser"
	"github.com/funvibe/quill/internal/pipeline"
	"github.com/funvibe/quill/internal/utils"
)

// Module is one parsed source file.
type Module struct {
	Name    string
	Path    string
	Dir     string
	Program *ast.Program
}

// Parse runs the front end over source. file is recorded on the program
// and on any syntax error.
func Parse(source, file string) (*ast.Program, error) {
	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = file
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ctx.AstRoot, nil
}

func newModule(path string, program *ast.Program) *Module {
	return &Module{
		Name:    utils.ExtractModuleName(path),
		Path:    path,
		Dir:     filepath.Dir(path),
		Program: program,
	}
}
