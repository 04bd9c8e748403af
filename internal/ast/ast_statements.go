package ast

import (
	"github.com/funvibe/quill/internal/token"
)

// ExpressionStatement is a statement that consists of a single expression.
type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }

// AssignStatement covers =, +=, -=, *= and /=. Target is an Identifier,
// MemberExpression, IndexExpression or ListLiteral.
type AssignStatement struct {
	Token    token.Token // the operator token
	Operator string
	Target   Expression
	Value    Expression
}

func (as *AssignStatement) statementNode()        {}
func (as *AssignStatement) TokenLiteral() string  { return as.Token.Lexeme }
func (as *AssignStatement) GetToken() token.Token { return as.Token }

// BlockStatement represents a list of statements within curly braces.
type BlockStatement struct {
	Token      token.Token // {
	Statements []Statement
}

func (bs *BlockStatement) statementNode()        {}
func (bs *BlockStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token { return bs.Token }

// ConditionalBranch is one if/elif arm.
type ConditionalBranch struct {
	Token     token.Token // 'if' or 'elif'
	Condition Expression
	Body      *BlockStatement
}

// IfStatement is an if/elif/else chain. The parser links elif and else
// arms to the if that opened the chain in the same block.
type IfStatement struct {
	Token       token.Token // 'if'
	Branches    []*ConditionalBranch
	Alternative *BlockStatement
}

func (is *IfStatement) statementNode()        {}
func (is *IfStatement) TokenLiteral() string  { return is.Token.Lexeme }
func (is *IfStatement) GetToken() token.Token { return is.Token }

type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()        {}
func (ws *WhileStatement) TokenLiteral() string  { return ws.Token.Lexeme }
func (ws *WhileStatement) GetToken() token.Token { return ws.Token }

// ForStatement has two shapes. With Iterable set it is
// `for target in iterable`, where Target is an Identifier or a ListLiteral
// of identifiers. Otherwise it is the counting form
// `for var = init, condition, update`.
type ForStatement struct {
	Token     token.Token
	Target    Expression
	Iterable  Expression
	Variable  *Identifier
	Init      Expression
	Condition Expression
	Update    *AssignStatement
	Body      *BlockStatement
}

func (fs *ForStatement) statementNode()        {}
func (fs *ForStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *ForStatement) GetToken() token.Token { return fs.Token }

// FunctionStatement binds a named function literal in the current scope.
type FunctionStatement struct {
	Token    token.Token
	Name     *Identifier
	Function *FunctionLiteral
}

func (fs *FunctionStatement) statementNode()        {}
func (fs *FunctionStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *FunctionStatement) GetToken() token.Token { return fs.Token }

// ClassStatement declares a class. The body must define a function named
// after the class, which is its constructor.
type ClassStatement struct {
	Token token.Token
	Name  *Identifier
	Body  *BlockStatement
}

func (cs *ClassStatement) statementNode()        {}
func (cs *ClassStatement) TokenLiteral() string  { return cs.Token.Lexeme }
func (cs *ClassStatement) GetToken() token.Token { return cs.Token }

type ReturnStatement struct {
	Token token.Token
	Value Expression // nil for a bare return
}

func (rs *ReturnStatement) statementNode()        {}
func (rs *ReturnStatement) TokenLiteral() string  { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token { return rs.Token }

type BreakStatement struct {
	Token token.Token
}

func (bs *BreakStatement) statementNode()        {}
func (bs *BreakStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BreakStatement) GetToken() token.Token { return bs.Token }

type ContinueStatement struct {
	Token token.Token
}

func (cs *ContinueStatement) statementNode()        {}
func (cs *ContinueStatement) TokenLiteral() string  { return cs.Token.Lexeme }
func (cs *ContinueStatement) GetToken() token.Token { return cs.Token }

// GlobalStatement declares names that resolve to the outermost frame for
// the rest of the enclosing block.
type GlobalStatement struct {
	Token token.Token
	Names []*Identifier
}

func (gs *GlobalStatement) statementNode()        {}
func (gs *GlobalStatement) TokenLiteral() string  { return gs.Token.Lexeme }
func (gs *GlobalStatement) GetToken() token.Token { return gs.Token }

type ImportStatement struct {
	Token token.Token
	Path  *StringLiteral
}

func (is *ImportStatement) statementNode()        {}
func (is *ImportStatement) TokenLiteral() string  { return is.Token.Lexeme }
func (is *ImportStatement) GetToken() token.Token { return is.Token }

// ThrowStatement raises a user-level error carrying Value.
type ThrowStatement struct {
	Token token.Token
	Value Expression
}

func (ts *ThrowStatement) statementNode()        {}
func (ts *ThrowStatement) TokenLiteral() string  { return ts.Token.Lexeme }
func (ts *ThrowStatement) GetToken() token.Token { return ts.Token }
