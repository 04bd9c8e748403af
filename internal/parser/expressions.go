package parser

import (
	"github.com/funvibe/quill/internal/ast"
	"github.com/funvibe/quill/internal/token"
)

// enter guards against unbounded nesting. Every call must be paired with
// leave.
func (p *Parser) enter() {
	p.depth++
	if p.depth > MaxRecursionDepth {
		p.fail(p.curToken, "expression nested too deeply (limit %d)", MaxRecursionDepth)
	}
}

func (p *Parser) leave() { p.depth-- }

func (p *Parser) parseExpression() ast.Expression {
	p.enter()
	defer p.leave()
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expression {
	left := p.parseAnd()
	for p.curTokenIs(token.OR) || p.curTokenIs(token.KW_OR) {
		tok := p.curToken
		p.nextToken()
		left = &ast.InfixExpression{Token: tok, Left: left, Operator: "or", Right: p.parseAnd()}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expression {
	left := p.parseEquality()
	for p.curTokenIs(token.AND) || p.curTokenIs(token.KW_AND) {
		tok := p.curToken
		p.nextToken()
		left = &ast.InfixExpression{Token: tok, Left: left, Operator: "and", Right: p.parseEquality()}
	}
	return left
}

// binaryLevel parses a left-associative run of the operators in ops, with
// operands produced by next.
func (p *Parser) binaryLevel(next func() ast.Expression, ops ...token.TokenType) ast.Expression {
	left := next()
	for {
		matched := false
		for _, op := range ops {
			if p.curTokenIs(op) {
				matched = true
				break
			}
		}
		if !matched {
			return left
		}
		tok := p.curToken
		p.nextToken()
		operator := tok.Lexeme
		if tok.Type == token.IN {
			operator = "in"
		}
		left = &ast.InfixExpression{Token: tok, Left: left, Operator: operator, Right: next()}
	}
}

func (p *Parser) parseEquality() ast.Expression {
	return p.binaryLevel(p.parseRelational, token.EQ, token.NOT_EQ)
}

func (p *Parser) parseRelational() ast.Expression {
	return p.binaryLevel(p.parseAdditive, token.LT, token.LTE, token.GT, token.GTE, token.IN)
}

func (p *Parser) parseAdditive() ast.Expression {
	return p.binaryLevel(p.parseMultiplicative, token.PLUS, token.MINUS)
}

func (p *Parser) parseMultiplicative() ast.Expression {
	return p.binaryLevel(p.parseUnary, token.ASTERISK, token.SLASH, token.FLOOR_DIV, token.PERCENT)
}

// parseUnary handles prefix + and -. They bind looser than the power
// operators, so -2 ** 2 is -(2 ** 2).
func (p *Parser) parseUnary() ast.Expression {
	if p.curTokenIs(token.MINUS) || p.curTokenIs(token.PLUS) {
		p.enter()
		defer p.leave()
		tok := p.curToken
		p.nextToken()
		return &ast.PrefixExpression{Token: tok, Operator: tok.Lexeme, Right: p.parseUnary()}
	}
	return p.parsePower()
}

// parsePower is right-associative: the right operand re-enters parseUnary.
func (p *Parser) parsePower() ast.Expression {
	left := p.parseNot()
	if p.curTokenIs(token.CARET) || p.curTokenIs(token.POWER) {
		p.enter()
		defer p.leave()
		tok := p.curToken
		p.nextToken()
		return &ast.InfixExpression{Token: tok, Left: left, Operator: "**", Right: p.parseUnary()}
	}
	return left
}

func (p *Parser) parseNot() ast.Expression {
	if p.curTokenIs(token.BANG) || p.curTokenIs(token.KW_NOT) {
		p.enter()
		defer p.leave()
		tok := p.curToken
		p.nextToken()
		return &ast.PrefixExpression{Token: tok, Operator: "not", Right: p.parseNot()}
	}
	return p.parsePostfix()
}

// parsePostfix parses chains of subscripts, slices, calls and member
// accesses: a.b(c)[d:e].f
func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch p.curToken.Type {
		case token.LBRACKET:
			expr = p.parseIndex(expr)
		case token.LPAREN:
			tok := p.curToken
			p.nextToken()
			args := p.parseExpressionList(token.RPAREN)
			expr = &ast.CallExpression{Token: tok, Function: expr, Arguments: args}
		case token.DOT:
			tok := p.curToken
			p.nextToken()
			nameTok := p.expect(token.IDENT)
			member := &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}
			if p.curTokenIs(token.LPAREN) {
				p.nextToken()
				args := p.parseExpressionList(token.RPAREN)
				expr = &ast.MethodCall{Token: tok, Left: expr, Member: member, Arguments: args}
			} else {
				expr = &ast.MemberExpression{Token: tok, Left: expr, Member: member}
			}
		default:
			return expr
		}
	}
}

func (p *Parser) parseIndex(left ast.Expression) ast.Expression {
	idx := &ast.IndexExpression{Token: p.curToken, Left: left}
	p.nextToken() // [

	if p.curTokenIs(token.RBRACKET) {
		p.fail(p.curToken, "empty subscript")
	}

	var first ast.Expression
	if !p.curTokenIs(token.COLON) {
		first = p.parseExpression()
	}

	if p.curTokenIs(token.COLON) {
		p.nextToken()
		idx.IsSlice = true
		idx.Start = first
		if !p.curTokenIs(token.RBRACKET) {
			idx.End = p.parseExpression()
		}
	} else {
		idx.Index = first
	}

	p.expect(token.RBRACKET)
	return idx
}

// parseExpressionList parses comma separated expressions up to and
// including the closing token. A trailing comma is allowed.
func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	var list []ast.Expression
	for !p.curTokenIs(end) && !p.curTokenIs(token.EOF) {
		list = append(list, p.parseExpression())
		if p.curTokenIs(end) {
			break
		}
		p.expect(token.COMMA)
	}
	p.expect(end)
	return list
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.curToken
	switch tok.Type {
	case token.INT:
		p.nextToken()
		return &ast.IntegerLiteral{Token: tok, Value: tok.Literal.(int64)}
	case token.FLOAT:
		p.nextToken()
		return &ast.FloatLiteral{Token: tok, Value: tok.Literal.(float64)}
	case token.STRING:
		p.nextToken()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal.(string)}
	case token.TRUE, token.FALSE:
		p.nextToken()
		return &ast.BooleanLiteral{Token: tok, Value: tok.Type == token.TRUE}
	case token.NONE:
		p.nextToken()
		return &ast.NoneLiteral{Token: tok}
	case token.TYPE:
		p.nextToken()
		return &ast.TypeLiteral{Token: tok, Name: tok.Lexeme}
	case token.IDENT:
		p.nextToken()
		return &ast.Identifier{Token: tok, Value: tok.Lexeme}
	case token.LPAREN:
		p.nextToken()
		inner := p.parseExpression()
		p.expect(token.RPAREN)
		return &ast.ParenExpression{Token: tok, Inner: inner}
	case token.LBRACKET:
		return p.parseListLiteral()
	case token.LBRACE:
		return p.parseDictLiteral()
	case token.FUNC:
		return p.parseFunctionLiteral()
	}
	p.fail(tok, "unexpected %s", describe(tok))
	return nil
}

func (p *Parser) parseListLiteral() *ast.ListLiteral {
	list := &ast.ListLiteral{Token: p.curToken}
	p.nextToken()
	list.Elements = p.parseExpressionList(token.RBRACKET)
	return list
}

func (p *Parser) parseDictLiteral() *ast.DictLiteral {
	dict := &ast.DictLiteral{Token: p.curToken}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		key := p.parseExpression()
		p.expect(token.COLON)
		value := p.parseExpression()
		dict.Pairs = append(dict.Pairs, ast.DictPair{Key: key, Value: value})
		if p.curTokenIs(token.RBRACE) {
			break
		}
		p.expect(token.COMMA)
	}
	p.expect(token.RBRACE)
	return dict
}

// parseFunctionLiteral parses func(params) { body } in expression position.
// A name is accepted and only used for diagnostics.
func (p *Parser) parseFunctionLiteral() *ast.FunctionLiteral {
	fn := &ast.FunctionLiteral{Token: p.curToken}
	p.nextToken()
	if p.curTokenIs(token.IDENT) {
		fn.Name = p.curToken.Lexeme
		p.nextToken()
	}
	fn.Parameters = p.parseFunctionParameters()
	fn.Body = p.parseBlockStatement()
	return fn
}
