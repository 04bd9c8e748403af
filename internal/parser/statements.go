package parser

import (
	"github.com/funvibe/quill/internal/ast"
	"github.com/funvibe/quill/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.SEMICOLON:
		p.nextToken()
		return nil
	case token.IF:
		stmt := p.parseIfStatement()
		p.setOpenChain(stmt)
		return stmt
	case token.ELIF:
		p.parseElif()
		return nil
	case token.ELSE:
		p.parseElse()
		return nil
	}

	p.setOpenChain(nil)

	switch p.curToken.Type {
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.FUNC:
		if p.peekTokenIs(token.IDENT) {
			return p.parseFunctionStatement()
		}
	case token.CLASS:
		return p.parseClassStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		stmt := &ast.BreakStatement{Token: p.curToken}
		p.nextToken()
		p.skipTerminator()
		return stmt
	case token.CONTINUE:
		stmt := &ast.ContinueStatement{Token: p.curToken}
		p.nextToken()
		p.skipTerminator()
		return stmt
	case token.GLOBAL:
		return p.parseGlobalStatement()
	case token.IMPORT:
		return p.parseImportStatement()
	case token.THROW:
		stmt := &ast.ThrowStatement{Token: p.curToken}
		p.nextToken()
		stmt.Value = p.parseExpression()
		p.skipTerminator()
		return stmt
	}

	stmt := p.parseSimpleStatement()
	p.skipTerminator()
	return stmt
}

func (p *Parser) setOpenChain(stmt *ast.IfStatement) {
	p.openChains[len(p.openChains)-1] = stmt
}

func (p *Parser) openChain() *ast.IfStatement {
	return p.openChains[len(p.openChains)-1]
}

var assignOperators = map[token.TokenType]bool{
	token.ASSIGN:          true,
	token.PLUS_ASSIGN:     true,
	token.MINUS_ASSIGN:    true,
	token.ASTERISK_ASSIGN: true,
	token.SLASH_ASSIGN:    true,
}

// parseSimpleStatement parses an expression statement or an assignment.
func (p *Parser) parseSimpleStatement() ast.Statement {
	first := p.curToken
	expr := p.parseExpression()
	if p.failed() {
		return nil
	}

	if !assignOperators[p.curToken.Type] {
		return &ast.ExpressionStatement{Token: first, Expression: expr}
	}

	opTok := p.curToken
	p.nextToken()
	if !p.checkAssignTarget(expr, opTok) {
		return nil
	}
	value := p.parseExpression()
	return &ast.AssignStatement{Token: opTok, Operator: opTok.Lexeme, Target: expr, Value: value}
}

func (p *Parser) checkAssignTarget(target ast.Expression, opTok token.Token) bool {
	switch t := target.(type) {
	case *ast.Identifier, *ast.MemberExpression, *ast.IndexExpression:
		return true
	case *ast.ListLiteral:
		if opTok.Type != token.ASSIGN {
			p.fail(opTok, "cannot use %s with a destructuring target", opTok.Lexeme)
			return false
		}
		for _, el := range t.Elements {
			switch el.(type) {
			case *ast.Identifier, *ast.MemberExpression, *ast.IndexExpression:
			default:
				p.fail(el.GetToken(), "cannot assign to %s", describe(el.GetToken()))
				return false
			}
		}
		return true
	}
	p.fail(target.GetToken(), "cannot assign to %s", describe(target.GetToken()))
	return false
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.expect(token.LBRACE)}

	p.openChains = append(p.openChains, nil)
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.fail(p.curToken, "expected %s, got %s", token.RBRACE, describe(p.curToken))
			return block
		}
		if stmt := p.parseStatement(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
	p.openChains = p.openChains[:len(p.openChains)-1]

	p.nextToken() // }
	return block
}

func (p *Parser) parseConditionalBranch() *ast.ConditionalBranch {
	branch := &ast.ConditionalBranch{Token: p.curToken}
	p.nextToken()
	branch.Condition = p.parseExpression()
	branch.Body = p.parseBlockStatement()
	return branch
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{Token: p.curToken}
	stmt.Branches = append(stmt.Branches, p.parseConditionalBranch())
	return stmt
}

func (p *Parser) parseElif() {
	chain := p.openChain()
	if chain == nil {
		p.fail(p.curToken, "'elif' without a preceding 'if'")
		return
	}
	chain.Branches = append(chain.Branches, p.parseConditionalBranch())
}

func (p *Parser) parseElse() {
	chain := p.openChain()
	if chain == nil {
		p.fail(p.curToken, "'else' without a preceding 'if'")
		return
	}
	p.nextToken()
	chain.Alternative = p.parseBlockStatement()
	p.setOpenChain(nil)
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{Token: p.curToken}
	p.nextToken()
	stmt.Condition = p.parseExpression()
	stmt.Body = p.parseBlockStatement()
	return stmt
}

// parseForStatement parses both for forms, with an optional pair of
// parentheses around the header.
func (p *Parser) parseForStatement() *ast.ForStatement {
	stmt := &ast.ForStatement{Token: p.curToken}
	p.nextToken()

	parens := p.curTokenIs(token.LPAREN)
	if parens {
		p.nextToken()
	}

	switch {
	case p.curTokenIs(token.IDENT) && p.peekTokenIs(token.IN):
		stmt.Target = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		p.nextToken()
		p.nextToken()
		stmt.Iterable = p.parseExpression()

	case p.curTokenIs(token.LBRACKET):
		list := p.parseListLiteral()
		if p.failed() {
			return nil
		}
		if len(list.Elements) == 0 {
			p.fail(list.Token, "empty destructuring target in for loop")
			return nil
		}
		for _, el := range list.Elements {
			if _, ok := el.(*ast.Identifier); !ok {
				p.fail(el.GetToken(), "for loop targets must be identifiers")
				return nil
			}
		}
		stmt.Target = list
		p.expect(token.IN)
		stmt.Iterable = p.parseExpression()

	case p.curTokenIs(token.IDENT) && p.peekTokenIs(token.ASSIGN):
		stmt.Variable = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		p.nextToken()
		p.nextToken()
		stmt.Init = p.parseExpression()
		p.expect(token.COMMA)
		stmt.Condition = p.parseExpression()
		p.expect(token.COMMA)
		stmt.Update = p.parseForUpdate(stmt.Variable)

	default:
		p.fail(p.curToken, "expected 'name in expr' or 'name = start, condition, update' after 'for', got %s", describe(p.curToken))
		return nil
	}

	if parens {
		p.expect(token.RPAREN)
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

// parseForUpdate parses the increment clause, which must assign to the
// loop variable.
func (p *Parser) parseForUpdate(variable *ast.Identifier) *ast.AssignStatement {
	target := p.parseExpression()
	if p.failed() {
		return nil
	}
	if !assignOperators[p.curToken.Type] {
		p.fail(p.curToken, "for loop update must assign to '%s'", variable.Value)
		return nil
	}
	ident, ok := target.(*ast.Identifier)
	if !ok || ident.Value != variable.Value {
		p.fail(target.GetToken(), "for loop update must assign to '%s'", variable.Value)
		return nil
	}
	opTok := p.curToken
	p.nextToken()
	return &ast.AssignStatement{Token: opTok, Operator: opTok.Lexeme, Target: ident, Value: p.parseExpression()}
}

func (p *Parser) parseFunctionStatement() *ast.FunctionStatement {
	tok := p.curToken
	p.nextToken()
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	p.nextToken()

	fn := &ast.FunctionLiteral{Token: tok, Name: name.Value}
	fn.Parameters = p.parseFunctionParameters()
	fn.Body = p.parseBlockStatement()
	return &ast.FunctionStatement{Token: tok, Name: name, Function: fn}
}

func (p *Parser) parseFunctionParameters() []*ast.Identifier {
	p.expect(token.LPAREN)
	var params []*ast.Identifier
	seen := make(map[string]bool)
	for !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
		tok := p.expect(token.IDENT)
		if p.failed() {
			break
		}
		if seen[tok.Lexeme] {
			p.fail(tok, "duplicate parameter '%s'", tok.Lexeme)
			break
		}
		seen[tok.Lexeme] = true
		params = append(params, &ast.Identifier{Token: tok, Value: tok.Lexeme})
		if !p.curTokenIs(token.RPAREN) {
			p.expect(token.COMMA)
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseClassStatement() *ast.ClassStatement {
	stmt := &ast.ClassStatement{Token: p.curToken}
	p.nextToken()
	tok := p.expect(token.IDENT)
	stmt.Name = &ast.Identifier{Token: tok, Value: tok.Lexeme}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	p.nextToken()
	if !p.curTokenIs(token.SEMICOLON) && !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		stmt.Value = p.parseExpression()
	}
	p.skipTerminator()
	return stmt
}

func (p *Parser) parseGlobalStatement() *ast.GlobalStatement {
	stmt := &ast.GlobalStatement{Token: p.curToken}
	p.nextToken()
	for {
		tok := p.expect(token.IDENT)
		stmt.Names = append(stmt.Names, &ast.Identifier{Token: tok, Value: tok.Lexeme})
		if !p.curTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	p.skipTerminator()
	return stmt
}

func (p *Parser) parseImportStatement() *ast.ImportStatement {
	stmt := &ast.ImportStatement{Token: p.curToken}
	p.nextToken()
	tok := p.expect(token.STRING)
	if p.failed() {
		return nil
	}
	stmt.Path = &ast.StringLiteral{Token: tok, Value: tok.Literal.(string)}
	p.skipTerminator()
	return stmt
}
