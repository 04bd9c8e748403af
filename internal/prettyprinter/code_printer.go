package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/funvibe/quill/internal/ast"
)

// --- Code Printer (Output looks like source code) ---

// CodePrinter renders an AST back to source text. By default grouping is
// reproduced from the parenthesised expressions kept in the tree. In
// explicit mode every operation is parenthesised, which makes the parsed
// precedence visible.
type CodePrinter struct {
	buf      bytes.Buffer
	indent   int
	explicit bool
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// NewExplicitPrinter returns a printer that wraps every prefix and infix
// operation in parentheses.
func NewExplicitPrinter() *CodePrinter {
	return &CodePrinter{explicit: true}
}

// Format renders a whole program, one statement per line.
func Format(program *ast.Program) string {
	p := NewCodePrinter()
	p.Print(program)
	return p.String()
}

// Explicit renders node with every operation parenthesised.
func Explicit(node ast.Node) string {
	p := NewExplicitPrinter()
	p.Print(node)
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

// Print renders node into the buffer.
func (p *CodePrinter) Print(node ast.Node) {
	switch n := node.(type) {
	case *ast.Program:
		for _, stmt := range n.Statements {
			p.printStatement(stmt)
			p.write("\n")
		}
	case ast.Statement:
		p.printStatement(n)
	case ast.Expression:
		p.printExpr(n)
	}
}

func (p *CodePrinter) printStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		p.printExpr(s.Expression)
		p.write(";")
	case *ast.AssignStatement:
		p.printAssign(s)
		p.write(";")
	case *ast.BlockStatement:
		p.printBlock(s)
	case *ast.IfStatement:
		for i, branch := range s.Branches {
			if i == 0 {
				p.write("if ")
			} else {
				p.write(" elif ")
			}
			p.printExpr(branch.Condition)
			p.write(" ")
			p.printBlock(branch.Body)
		}
		if s.Alternative != nil {
			p.write(" else ")
			p.printBlock(s.Alternative)
		}
	case *ast.WhileStatement:
		p.write("while ")
		p.printExpr(s.Condition)
		p.write(" ")
		p.printBlock(s.Body)
	case *ast.ForStatement:
		p.write("for ")
		if s.Iterable != nil {
			p.printExpr(s.Target)
			p.write(" in ")
			p.printExpr(s.Iterable)
		} else {
			p.write(s.Variable.Value + " = ")
			p.printExpr(s.Init)
			p.write(", ")
			p.printExpr(s.Condition)
			p.write(", ")
			p.printAssign(s.Update)
		}
		p.write(" ")
		p.printBlock(s.Body)
	case *ast.FunctionStatement:
		p.printFunction(s.Function)
	case *ast.ClassStatement:
		p.write("class " + s.Name.Value + " ")
		p.printBlock(s.Body)
	case *ast.ReturnStatement:
		p.write("return")
		if s.Value != nil {
			p.write(" ")
			p.printExpr(s.Value)
		}
		p.write(";")
	case *ast.BreakStatement:
		p.write("break;")
	case *ast.ContinueStatement:
		p.write("continue;")
	case *ast.GlobalStatement:
		names := make([]string, len(s.Names))
		for i, name := range s.Names {
			names[i] = name.Value
		}
		p.write("global " + strings.Join(names, ", ") + ";")
	case *ast.ImportStatement:
		p.write("import " + quoteString(s.Path.Value) + ";")
	case *ast.ThrowStatement:
		p.write("throw ")
		p.printExpr(s.Value)
		p.write(";")
	}
}

func (p *CodePrinter) printAssign(s *ast.AssignStatement) {
	p.printExpr(s.Target)
	p.write(" " + s.Operator + " ")
	p.printExpr(s.Value)
}

func (p *CodePrinter) printBlock(b *ast.BlockStatement) {
	if len(b.Statements) == 0 {
		p.write("{ }")
		return
	}
	p.write("{\n")
	p.indent++
	for _, stmt := range b.Statements {
		p.writeIndent()
		p.printStatement(stmt)
		p.write("\n")
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

func (p *CodePrinter) printFunction(fn *ast.FunctionLiteral) {
	p.write("func")
	if fn.Name != "" {
		p.write(" " + fn.Name)
	}
	params := make([]string, len(fn.Parameters))
	for i, param := range fn.Parameters {
		params[i] = param.Value
	}
	p.write("(" + strings.Join(params, ", ") + ") ")
	p.printBlock(fn.Body)
}

func (p *CodePrinter) printExprList(exprs []ast.Expression) {
	for i, e := range exprs {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(e)
	}
}

func (p *CodePrinter) printExpr(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.Identifier:
		p.write(e.Value)
	case *ast.IntegerLiteral:
		p.write(strconv.FormatInt(e.Value, 10))
	case *ast.FloatLiteral:
		p.write(formatFloat(e.Value))
	case *ast.StringLiteral:
		p.write(quoteString(e.Value))
	case *ast.BooleanLiteral:
		p.write(strconv.FormatBool(e.Value))
	case *ast.NoneLiteral:
		p.write("None")
	case *ast.TypeLiteral:
		p.write(e.Name)
	case *ast.ParenExpression:
		if p.explicit {
			p.printExpr(e.Inner)
			return
		}
		p.write("(")
		p.printExpr(e.Inner)
		p.write(")")
	case *ast.PrefixExpression:
		p.open()
		p.write(e.Operator)
		if e.Operator == "not" {
			p.write(" ")
		}
		p.printExpr(e.Right)
		p.close()
	case *ast.InfixExpression:
		p.open()
		p.printExpr(e.Left)
		p.write(" " + e.Operator + " ")
		p.printExpr(e.Right)
		p.close()
	case *ast.ListLiteral:
		p.write("[")
		p.printExprList(e.Elements)
		p.write("]")
	case *ast.DictLiteral:
		p.write("{")
		for i, pair := range e.Pairs {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(pair.Key)
			p.write(": ")
			p.printExpr(pair.Value)
		}
		p.write("}")
	case *ast.IndexExpression:
		p.printExpr(e.Left)
		p.write("[")
		if e.IsSlice {
			if e.Start != nil {
				p.printExpr(e.Start)
			}
			p.write(":")
			if e.End != nil {
				p.printExpr(e.End)
			}
		} else {
			p.printExpr(e.Index)
		}
		p.write("]")
	case *ast.MemberExpression:
		p.printExpr(e.Left)
		p.write("." + e.Member.Value)
	case *ast.MethodCall:
		p.printExpr(e.Left)
		p.write("." + e.Member.Value + "(")
		p.printExprList(e.Arguments)
		p.write(")")
	case *ast.CallExpression:
		p.printExpr(e.Function)
		p.write("(")
		p.printExprList(e.Arguments)
		p.write(")")
	case *ast.FunctionLiteral:
		p.printFunction(e)
	}
}

func (p *CodePrinter) open() {
	if p.explicit {
		p.write("(")
	}
}

func (p *CodePrinter) close() {
	if p.explicit {
		p.write(")")
	}
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// quoteString produces a double-quoted literal using only the escapes the
// lexer understands.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
