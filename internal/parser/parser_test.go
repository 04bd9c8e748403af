package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/quill/internal/ast"
	"github.com/funvibe/quill/internal/diagnostics"
	"github.com/funvibe/quill/internal/lexer"
	"github.com/funvibe/quill/internal/parser"
	"github.com/funvibe/quill/internal/pipeline"
	"github.com/funvibe/quill/internal/prettyprinter"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	ctx := pipeline.NewPipelineContext(input)
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	require.NoError(t, ctx.Err(), "input: %s", input)
	return ctx.AstRoot
}

func parseError(t *testing.T, input string) *diagnostics.Error {
	t.Helper()
	ctx := pipeline.NewPipelineContext(input)
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	require.NotEmpty(t, ctx.Errors, "expected a syntax error for: %s", input)
	return ctx.Errors[0]
}

func explicitExpr(t *testing.T, input string) string {
	t.Helper()
	tokens, err := lexer.Tokenize(input)
	require.NoError(t, err)
	expr, err := parser.New(tokens).ParseExpression()
	require.NoError(t, err, "input: %s", input)
	return prettyprinter.Explicit(expr)
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"a or b and c", "(a or (b and c))"},
		{"a || b && c", "(a or (b and c))"},
		{"a == b < c", "(a == (b < c))"},
		{"a < b == c != d", "(((a < b) == c) != d)"},
		{"x in xs and y", "((x in xs) and y)"},
		{"a + b in c", "((a + b) in c)"},
		{"-2 ** 2", "(-(2 ** 2))"},
		{"2 ** 3 ** 2", "(2 ** (3 ** 2))"},
		{"2 ^ 3", "(2 ** 3)"},
		{"2 ** -1", "(2 ** (-1))"},
		{"-a * b", "((-a) * b)"},
		{"7 // 2 % 3", "((7 // 2) % 3)"},
		{"not a == b", "((not a) == b)"},
		{"!a", "(not a)"},
		{"!x ** 2", "((not x) ** 2)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"a[1] + b.c", "(a[1] + b.c)"},
		{"f(x)(y)[0].z(1, 2)", "f(x)(y)[0].z(1, 2)"},
		{"-a[0]", "(-a[0])"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, explicitExpr(t, tt.input))
		})
	}
}

func TestSlices(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"xs[1:3]", "xs[1:3]"},
		{"xs[:3]", "xs[:3]"},
		{"xs[1:]", "xs[1:]"},
		{"xs[:]", "xs[:]"},
		{"xs[-2:][0]", "xs[(-2):][0]"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, explicitExpr(t, tt.input))
		})
	}

	tokens, err := lexer.Tokenize("xs[1:]")
	require.NoError(t, err)
	expr, err := parser.New(tokens).ParseExpression()
	require.NoError(t, err)
	idx, ok := expr.(*ast.IndexExpression)
	require.True(t, ok)
	assert.True(t, idx.IsSlice)
	assert.NotNil(t, idx.Start)
	assert.Nil(t, idx.End)
}

func TestLiterals(t *testing.T) {
	assert.Equal(t, `[1, 2.5, "s", true, None, Integer]`, explicitExpr(t, `[1, 2.5, 's', true, None, Integer,]`))
	assert.Equal(t, `{"a": 1, 2: [3]}`, explicitExpr(t, `{"a": 1, 2: [3]}`))
	assert.Equal(t, `{}`, explicitExpr(t, `{}`))
	assert.Equal(t, `func(a, b) {
    return (a + b);
}`, explicitExpr(t, `func(a, b) { return a + b }`))
}

func TestIfChainLinking(t *testing.T) {
	program := parse(t, `if (false) { } elif (true) { print(1); } else { print(2); }`)
	require.Len(t, program.Statements, 1)
	stmt, ok := program.Statements[0].(*ast.IfStatement)
	require.True(t, ok)
	assert.Len(t, stmt.Branches, 2)
	assert.NotNil(t, stmt.Alternative)
}

func TestIfChainsDoNotLeakAcrossBlocks(t *testing.T) {
	// The inner if must not absorb the outer elif.
	program := parse(t, `
if a {
    if b { x = 1; }
} elif c {
    x = 2;
}
if d { } else { }
`)
	require.Len(t, program.Statements, 2)
	outer := program.Statements[0].(*ast.IfStatement)
	assert.Len(t, outer.Branches, 2)
	inner := outer.Branches[0].Body.Statements[0].(*ast.IfStatement)
	assert.Len(t, inner.Branches, 1)
	assert.Nil(t, inner.Alternative)

	second := program.Statements[1].(*ast.IfStatement)
	assert.NotNil(t, second.Alternative)
}

func TestDanglingElifAndElse(t *testing.T) {
	tests := []string{
		`elif x { }`,
		`else { }`,
		`if x { } y = 1; else { }`,
		`if x { } else { } else { }`,
		`while x { } elif y { }`,
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			err := parseError(t, input)
			assert.Equal(t, diagnostics.Syntax, err.Kind)
		})
	}
}

func TestForForms(t *testing.T) {
	program := parse(t, `
for x in xs { }
for [k, v] in d { }
for i = 0, i < 10, i += 1 { }
for (j = 10, j > 0, j = j - 2) { }
`)
	require.Len(t, program.Statements, 4)

	each := program.Statements[0].(*ast.ForStatement)
	assert.NotNil(t, each.Iterable)
	assert.IsType(t, &ast.Identifier{}, each.Target)

	pairs := program.Statements[1].(*ast.ForStatement)
	target, ok := pairs.Target.(*ast.ListLiteral)
	require.True(t, ok)
	assert.Len(t, target.Elements, 2)

	counting := program.Statements[2].(*ast.ForStatement)
	assert.Nil(t, counting.Iterable)
	assert.Equal(t, "i", counting.Variable.Value)
	assert.Equal(t, "+=", counting.Update.Operator)

	parens := program.Statements[3].(*ast.ForStatement)
	assert.Equal(t, "j", parens.Variable.Value)
}

func TestForUpdateMustAssignLoopVariable(t *testing.T) {
	err := parseError(t, `for i = 0, i < 3, j += 1 { }`)
	assert.Contains(t, err.Message, "for loop update must assign to 'i'")
	assert.Equal(t, 1, err.Line)
	assert.Equal(t, 19, err.Column)

	err = parseError(t, `for i = 0, i < 3, i { }`)
	assert.Contains(t, err.Message, "for loop update must assign to 'i'")
}

func TestAssignmentTargets(t *testing.T) {
	program := parse(t, `a = 1; b.c = 2; d[0] = 3; e[1:2] = [4]; [f, g] = [5, 6]; h += 1; i -= 1; j *= 2; k /= 2;`)
	require.Len(t, program.Statements, 9)
	ops := []string{"=", "=", "=", "=", "=", "+=", "-=", "*=", "/="}
	for i, stmt := range program.Statements {
		assign, ok := stmt.(*ast.AssignStatement)
		require.True(t, ok, "statement %d", i)
		assert.Equal(t, ops[i], assign.Operator)
	}

	for _, input := range []string{`1 = 2`, `f() = 1`, `[a, b] += [1, 2]`, `[a, 1] = [1, 2]`, `a + b = 3`} {
		t.Run(input, func(t *testing.T) {
			parseError(t, input)
		})
	}
}

func TestStatements(t *testing.T) {
	program := parse(t, `
func add(a, b) { return a + b }
class Point { x = 0; func Point(x) { this.x = x; } }
global a, b
import "lib/util"
throw "bad"
while true { break; continue }
func() { return; }
`)
	require.Len(t, program.Statements, 7)
	assert.IsType(t, &ast.FunctionStatement{}, program.Statements[0])
	assert.IsType(t, &ast.ClassStatement{}, program.Statements[1])
	global := program.Statements[2].(*ast.GlobalStatement)
	assert.Len(t, global.Names, 2)
	imp := program.Statements[3].(*ast.ImportStatement)
	assert.Equal(t, "lib/util", imp.Path.Value)
	assert.IsType(t, &ast.ThrowStatement{}, program.Statements[4])
	assert.IsType(t, &ast.WhileStatement{}, program.Statements[5])

	anon := program.Statements[6].(*ast.ExpressionStatement).Expression.(*ast.FunctionLiteral)
	ret := anon.Body.Statements[0].(*ast.ReturnStatement)
	assert.Nil(t, ret.Value)
}

func TestSyntaxErrorPositions(t *testing.T) {
	tests := []struct {
		input  string
		line   int
		column int
	}{
		{"x = (1 + 2", 1, 11},
		{"print(1,, 2)", 1, 9},
		{"if x print(1)", 1, 6},
		{"xs[]", 1, 4},
		{"func f(a, a) { }", 1, 11},
		{"a = 1\nb = ]", 2, 5},
		{"class { }", 1, 7},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := parseError(t, tt.input)
			assert.Equal(t, diagnostics.Syntax, err.Kind)
			assert.Equal(t, tt.line, err.Line, err.Error())
			assert.Equal(t, tt.column, err.Column, err.Error())
		})
	}
}

func TestNestingLimit(t *testing.T) {
	deep := ""
	for i := 0; i < parser.MaxRecursionDepth+10; i++ {
		deep += "("
	}
	err := parseError(t, "x = "+deep+"1")
	assert.Contains(t, err.Message, "nested too deeply")
}

func TestTruncatedInput(t *testing.T) {
	inputs := []string{
		"x = [1, 2", "f(", "f(1", "d = {1: ", "d = {1: 2", "func f(a,", "func f(a",
		"a.", "class", "import", "for [", "for [a, 1] in xs { }", "for i = 0, i < 3,",
		"if x { y = (", "while true { [a, b] += ", "else { }", "xs[1:",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			var err *diagnostics.Error
			require.NotPanics(t, func() { err = parseError(t, input) })
			assert.Equal(t, diagnostics.Syntax, err.Kind)
		})
	}
}

func TestOnlyFirstSyntaxErrorIsReported(t *testing.T) {
	ctx := pipeline.NewPipelineContext("a = )\nb = ]\nc = (")
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	require.Len(t, ctx.Errors, 1)
	assert.Nil(t, ctx.AstRoot)
	assert.Equal(t, 1, ctx.Errors[0].Line)
	assert.Equal(t, 5, ctx.Errors[0].Column)
}

func TestParseExpressionRejectsTrailingInput(t *testing.T) {
	tokens, err := lexer.Tokenize("1 + 2 3")
	require.NoError(t, err)
	_, err = parser.New(tokens).ParseExpression()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unexpected "3" after expression`)
}

func TestFormatRoundTrip(t *testing.T) {
	src := `
x = [1, 2, 3];
func f(a) {
    if a > 1 {
        return a * (a - 1);
    } elif a == 1 {
        return 1;
    } else {
        throw "negative";
    }
}
for [k, v] in {"a": 1} {
    print(k, v);
}
for i = 0, i < 3, i += 1 { }
s = "tab\there";
`
	first := prettyprinter.Format(parse(t, src))
	second := prettyprinter.Format(parse(t, first))
	assert.Equal(t, first, second)
	assert.Contains(t, first, `return a * (a - 1);`)
	assert.Contains(t, first, `s = "tab\there";`)
}
