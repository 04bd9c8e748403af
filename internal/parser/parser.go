package parser

import (
	"fmt"

	"github.com/funvibe/quill/internal/ast"
	"github.com/funvibe/quill/internal/diagnostics"
	"github.com/funvibe/quill/internal/token"
)

// MaxRecursionDepth bounds expression nesting so hostile input cannot
// exhaust the Go stack.
const MaxRecursionDepth = 500

// Parser is a recursive-descent parser over an eagerly lexed token slice.
// The first syntax error aborts parsing.
type Parser struct {
	tokens   []token.Token
	pos      int
	curToken token.Token

	depth int

	// openChains holds, per block nesting level, the if statement that
	// a following elif/else attaches to.
	openChains []*ast.IfStatement

	// err is the first syntax error. Once set the cursor stays at EOF.
	err *diagnostics.Error
}

func New(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens, token.Token{Type: token.EOF})
	}
	p := &Parser{tokens: tokens}
	p.curToken = tokens[0]
	return p
}

// ParseProgram parses every statement up to EOF.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{}
	p.openChains = []*ast.IfStatement{nil}
	for !p.curTokenIs(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return program, nil
}

// ParseExpression parses source consisting of exactly one expression.
func (p *Parser) ParseExpression() (ast.Expression, error) {
	expr := p.parseExpression()
	if !p.curTokenIs(token.EOF) {
		p.fail(p.curToken, "unexpected %s after expression", describe(p.curToken))
	}
	if p.err != nil {
		return nil, p.err
	}
	return expr, nil
}

// fail records the first syntax error and skips to EOF, which ends every
// parsing loop.
func (p *Parser) fail(tok token.Token, format string, args ...interface{}) {
	if p.err == nil {
		p.err = diagnostics.NewError(diagnostics.Syntax, tok, format, args...)
	}
	p.pos = len(p.tokens) - 1
	p.curToken = p.tokens[p.pos]
}

func (p *Parser) failed() bool { return p.err != nil }

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.curToken = p.tokens[p.pos]
}

func (p *Parser) peekToken() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken().Type == t
}

// expect consumes the current token if it has type t and fails otherwise.
func (p *Parser) expect(t token.TokenType) token.Token {
	tok := p.curToken
	if tok.Type != t {
		p.fail(tok, "expected %s, got %s", t, describe(tok))
	}
	p.nextToken()
	return tok
}

// skipTerminator consumes an optional ';'.
func (p *Parser) skipTerminator() {
	if p.curTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
}

func describe(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}
