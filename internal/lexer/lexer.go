package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/quill/internal/diagnostics"
	"github.com/funvibe/quill/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// Tokenize converts source into a complete token slice terminated by EOF.
// The first malformed token aborts lexing.
func Tokenize(source string) ([]token.Token, error) {
	l := New(source)
	var tokens []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

// single maps one-character tokens that never start a longer operator.
var single = map[rune]token.TokenType{
	'%': token.PERCENT,
	'^': token.CARET,
	'.': token.DOT,
	',': token.COMMA,
	':': token.COLON,
	';': token.SEMICOLON,
	'(': token.LPAREN,
	')': token.RPAREN,
	'[': token.LBRACKET,
	']': token.RBRACKET,
	'{': token.LBRACE,
	'}': token.RBRACE,
}

// pairs maps a leading character to the two-character operators it may start.
var pairs = map[rune]struct {
	alone token.TokenType
	next  map[rune]token.TokenType
}{
	'+': {token.PLUS, map[rune]token.TokenType{'=': token.PLUS_ASSIGN}},
	'-': {token.MINUS, map[rune]token.TokenType{'=': token.MINUS_ASSIGN}},
	'*': {token.ASTERISK, map[rune]token.TokenType{'*': token.POWER, '=': token.ASTERISK_ASSIGN}},
	'/': {token.SLASH, map[rune]token.TokenType{'/': token.FLOOR_DIV, '=': token.SLASH_ASSIGN}},
	'=': {token.ASSIGN, map[rune]token.TokenType{'=': token.EQ}},
	'!': {token.BANG, map[rune]token.TokenType{'=': token.NOT_EQ}},
	'<': {token.LT, map[rune]token.TokenType{'=': token.LTE}},
	'>': {token.GT, map[rune]token.TokenType{'=': token.GTE}},
	'&': {token.ILLEGAL, map[rune]token.TokenType{'&': token.AND}},
	'|': {token.ILLEGAL, map[rune]token.TokenType{'|': token.OR}},
}

func (l *Lexer) NextToken() (token.Token, error) {
	if err := l.skipWhitespace(); err != nil {
		return token.Token{}, err
	}

	line, col := l.line, l.column

	if tt, ok := single[l.ch]; ok {
		tok := newToken(tt, l.ch, line, col)
		l.readChar()
		return tok, nil
	}

	if p, ok := pairs[l.ch]; ok {
		first := l.ch
		if tt, ok := p.next[l.peekChar()]; ok {
			l.readChar()
			lexeme := string(first) + string(l.ch)
			l.readChar()
			return token.Token{Type: tt, Lexeme: lexeme, Literal: lexeme, Line: line, Column: col}, nil
		}
		if p.alone == token.ILLEGAL {
			return token.Token{}, diagnostics.At(diagnostics.Syntax, line, col, "unexpected character %q", first)
		}
		l.readChar()
		return newToken(p.alone, first, line, col), nil
	}

	switch {
	case l.ch == 0 && l.position >= len(l.input):
		return token.Token{Type: token.EOF, Line: line, Column: col}, nil
	case l.ch == '"' || l.ch == '\'':
		return l.readString()
	case isLetter(l.ch):
		lexeme := l.readIdentifier()
		tt := token.LookupIdent(lexeme)
		var lit interface{} = lexeme
		switch tt {
		case token.TRUE:
			lit = true
		case token.FALSE:
			lit = false
		}
		return token.Token{Type: tt, Lexeme: lexeme, Literal: lit, Line: line, Column: col}, nil
	case isDigit(l.ch):
		return l.readNumber()
	}

	return token.Token{}, diagnostics.At(diagnostics.Syntax, line, col, "unexpected character %q", l.ch)
}

// readString reads a single- or double-quoted string, resolving escapes.
func (l *Lexer) readString() (token.Token, error) {
	line, col := l.line, l.column
	quote := l.ch
	start := l.position
	var sb strings.Builder

	for {
		l.readChar()
		if l.ch == 0 && l.position >= len(l.input) {
			return token.Token{}, diagnostics.At(diagnostics.Syntax, line, col, "unterminated string literal")
		}
		if l.ch == quote {
			break
		}
		if l.ch != '\\' {
			sb.WriteRune(l.ch)
			continue
		}
		l.readChar()
		switch l.ch {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case '\\', '"', '\'':
			sb.WriteRune(l.ch)
		default:
			// Unknown escape - keep both
			sb.WriteByte('\\')
			sb.WriteRune(l.ch)
		}
	}

	lexeme := l.input[start : l.position+1]
	l.readChar() // closing quote
	return token.Token{Type: token.STRING, Lexeme: lexeme, Literal: sb.String(), Line: line, Column: col}, nil
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a digit run with at most one '.'.
// Out-of-range literals are rejected the way strconv rejects them.
func (l *Lexer) readNumber() (token.Token, error) {
	line, col := l.line, l.column
	position := l.position
	isFloat := false

	for isDigit(l.ch) || l.ch == '.' {
		if l.ch == '.' {
			if isFloat {
				return token.Token{}, diagnostics.At(diagnostics.Syntax, l.line, l.column, "malformed number literal: second '.'")
			}
			isFloat = true
		}
		l.readChar()
	}

	lexeme := l.input[position:l.position]
	if isFloat {
		val, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return token.Token{}, diagnostics.At(diagnostics.Syntax, line, col, "invalid float literal %s: %v", lexeme, err)
		}
		return token.Token{Type: token.FLOAT, Lexeme: lexeme, Literal: val, Line: line, Column: col}, nil
	}

	val, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return token.Token{}, diagnostics.At(diagnostics.Syntax, line, col, "integer literal %s out of range", lexeme)
	}
	return token.Token{Type: token.INT, Lexeme: lexeme, Literal: val, Line: line, Column: col}, nil
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func newToken(tokenType token.TokenType, ch rune, line, col int) token.Token {
	literal := string(ch)
	return token.Token{Type: tokenType, Lexeme: literal, Literal: literal, Line: line, Column: col}
}

func (l *Lexer) skipWhitespace() error {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		if l.ch == '#' {
			for l.ch != '\n' && !(l.ch == 0 && l.position >= len(l.input)) {
				l.readChar()
			}
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			line, col := l.line, l.column
			l.readChar() // consume /
			l.readChar() // consume *
			for {
				if l.ch == 0 && l.position >= len(l.input) {
					return diagnostics.At(diagnostics.Syntax, line, col, "unterminated block comment")
				}
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar() // consume *
					l.readChar() // consume /
					break
				}
				l.readChar()
			}
			continue
		}
		return nil
	}
}
