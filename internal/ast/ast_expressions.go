package ast

import (
	"github.com/funvibe/quill/internal/token"
)

// PrefixExpression represents -x, +x, !x and not x.
type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()       {}
func (pe *PrefixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }

// InfixExpression represents a binary operation. Logical operators are
// normalised to "and"/"or" by the parser.
type InfixExpression struct {
	Token    token.Token // The operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()       {}
func (ie *InfixExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token { return ie.Token }

// ParenExpression keeps explicit grouping for error positions and printing.
type ParenExpression struct {
	Token token.Token // (
	Inner Expression
}

func (pe *ParenExpression) expressionNode()       {}
func (pe *ParenExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *ParenExpression) GetToken() token.Token { return pe.Token }

// ListLiteral is [a, b, c]. It is also a destructuring target.
type ListLiteral struct {
	Token    token.Token // [
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()       {}
func (ll *ListLiteral) TokenLiteral() string  { return ll.Token.Lexeme }
func (ll *ListLiteral) GetToken() token.Token { return ll.Token }

type DictPair struct {
	Key   Expression
	Value Expression
}

// DictLiteral is {k: v, ...}.
type DictLiteral struct {
	Token token.Token // {
	Pairs []DictPair
}

func (dl *DictLiteral) expressionNode()       {}
func (dl *DictLiteral) TokenLiteral() string  { return dl.Token.Lexeme }
func (dl *DictLiteral) GetToken() token.Token { return dl.Token }

// IndexExpression represents arr[i] or, when IsSlice is set, arr[start:end]
// with either bound optional.
type IndexExpression struct {
	Token   token.Token // The '[' token
	Left    Expression
	Index   Expression
	IsSlice bool
	Start   Expression
	End     Expression
}

func (ie *IndexExpression) expressionNode()       {}
func (ie *IndexExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IndexExpression) GetToken() token.Token { return ie.Token }

// MemberExpression represents obj.name without a call.
type MemberExpression struct {
	Token  token.Token // The '.' token
	Left   Expression
	Member *Identifier
}

func (me *MemberExpression) expressionNode()       {}
func (me *MemberExpression) TokenLiteral() string  { return me.Token.Lexeme }
func (me *MemberExpression) GetToken() token.Token { return me.Token }

// MethodCall represents obj.name(args).
type MethodCall struct {
	Token     token.Token // The '.' token
	Left      Expression
	Member    *Identifier
	Arguments []Expression
}

func (mc *MethodCall) expressionNode()       {}
func (mc *MethodCall) TokenLiteral() string  { return mc.Token.Lexeme }
func (mc *MethodCall) GetToken() token.Token { return mc.Token }

// CallExpression represents callee(args).
type CallExpression struct {
	Token     token.Token // The '(' token
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }

// FunctionLiteral is func name?(params) { body }. Name is empty for
// anonymous functions.
type FunctionLiteral struct {
	Token      token.Token // The 'func' token
	Name       string
	Parameters []*Identifier
	Body       *BlockStatement
}

func (fl *FunctionLiteral) expressionNode()       {}
func (fl *FunctionLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FunctionLiteral) GetToken() token.Token { return fl.Token }
