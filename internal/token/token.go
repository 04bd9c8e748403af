package token

import "fmt"

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers and literals
	IDENT  TokenType = "IDENT"
	INT    TokenType = "INT"
	FLOAT  TokenType = "FLOAT"
	STRING TokenType = "STRING"
	TRUE   TokenType = "TRUE"
	FALSE  TokenType = "FALSE"
	NONE   TokenType = "NONE"
	TYPE   TokenType = "TYPE" // Integer, Float, ... used as values

	// Operators
	ASSIGN          TokenType = "="
	PLUS_ASSIGN     TokenType = "+="
	MINUS_ASSIGN    TokenType = "-="
	ASTERISK_ASSIGN TokenType = "*="
	SLASH_ASSIGN    TokenType = "/="
	PLUS            TokenType = "+"
	MINUS           TokenType = "-"
	ASTERISK        TokenType = "*"
	SLASH           TokenType = "/"
	FLOOR_DIV       TokenType = "//"
	PERCENT         TokenType = "%"
	CARET           TokenType = "^"
	POWER           TokenType = "**"
	BANG            TokenType = "!"
	EQ              TokenType = "=="
	NOT_EQ          TokenType = "!="
	LT              TokenType = "<"
	LTE             TokenType = "<="
	GT              TokenType = ">"
	GTE             TokenType = ">="
	AND             TokenType = "&&"
	OR              TokenType = "||"

	// Delimiters
	DOT       TokenType = "."
	COMMA     TokenType = ","
	COLON     TokenType = ":"
	SEMICOLON TokenType = ";"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"

	// Keywords
	IF       TokenType = "IF"
	ELIF     TokenType = "ELIF"
	ELSE     TokenType = "ELSE"
	WHILE    TokenType = "WHILE"
	FOR      TokenType = "FOR"
	IN       TokenType = "IN"
	FUNC     TokenType = "FUNC"
	CLASS    TokenType = "CLASS"
	RETURN   TokenType = "RETURN"
	BREAK    TokenType = "BREAK"
	CONTINUE TokenType = "CONTINUE"
	GLOBAL   TokenType = "GLOBAL"
	IMPORT   TokenType = "IMPORT"
	THROW    TokenType = "THROW"
	KW_AND   TokenType = "AND"
	KW_OR    TokenType = "OR"
	KW_NOT   TokenType = "NOT"
)

// Token is immutable once produced by the lexer.
// Literal holds the decoded payload: int64, float64, bool or string.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

var keywords = map[string]TokenType{
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"func":     FUNC,
	"class":    CLASS,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"global":   GLOBAL,
	"import":   IMPORT,
	"throw":    THROW,
	"and":      KW_AND,
	"or":       KW_OR,
	"not":      KW_NOT,
	"true":     TRUE,
	"false":    FALSE,
	"None":     NONE,
}

// TypeNames are the keywords that evaluate to Type values.
var TypeNames = []string{
	"NoneType", "Boolean", "Integer", "Float", "String", "List", "Dictionary",
	"Function", "Builtin", "Type", "Class", "Instance",
}

func init() {
	for _, name := range TypeNames {
		keywords[name] = TYPE
	}
}

// LookupIdent returns the keyword token type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether name is reserved.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}
