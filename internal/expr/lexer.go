package expr

import (
	"fmt"
	"strings"
)

type tokenType int

const (
	tokLiteral tokenType = iota
	tokOperator
	tokLeftParen
	tokRightParen
	tokEOF
)

type token struct {
	typ tokenType
	val string
	pos int
}

// keywords are the only bare words a literal expression may contain.
var keywords = map[string]any{
	"true":      true,
	"false":     false,
	"null":      nil,
	"undefined": nil,
}

// operators ordered longest first so the lexer matches greedily.
var operators = []string{
	"===", "!==",
	"==", "!=", "<=", ">=", "&&", "||",
	"<", ">", "+", "-", "*", "/", "%", "!",
}

// precedence of binary operators; higher binds tighter.
var precedence = map[string]int{
	"||": 10,
	"&&": 20,
	"==": 30, "!=": 30, "===": 30, "!==": 30,
	"<": 40, "<=": 40, ">": 40, ">=": 40,
	"+": 50, "-": 50,
	"*": 60, "/": 60, "%": 60,
}

// unaryPrecedence sits above every binary operator.
const unaryPrecedence = 70

type lexer struct {
	input  string
	pos    int
	tokens []token
}

func tokenize(input string) ([]token, error) {
	l := &lexer{input: input}
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case isWhitespace(c):
			l.pos++
		case c == '(':
			l.emit(tokLeftParen, "(")
		case c == ')':
			l.emit(tokRightParen, ")")
		case c == '\'' || c == '"':
			if err := l.str(); err != nil {
				return nil, err
			}
		case isDigit(c) || (c == '.' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])):
			l.number()
		case isAlpha(c) || c == '_' || c == '$':
			if err := l.word(); err != nil {
				return nil, err
			}
		default:
			if !l.operator() {
				return nil, fmt.Errorf("%w: unexpected character %q at position %d", ErrSyntax, c, l.pos)
			}
		}
	}
	l.tokens = append(l.tokens, token{typ: tokEOF, pos: len(l.input)})
	return l.tokens, nil
}

func (l *lexer) emit(typ tokenType, val string) {
	l.tokens = append(l.tokens, token{typ: typ, val: val, pos: l.pos})
	l.pos += len(val)
}

func (l *lexer) str() error {
	quote := l.input[l.pos]
	start := l.pos
	l.pos++
	for l.pos < len(l.input) && l.input[l.pos] != quote {
		if l.input[l.pos] == '\\' && l.pos+1 < len(l.input) {
			l.pos += 2
			continue
		}
		l.pos++
	}
	if l.pos >= len(l.input) {
		return fmt.Errorf("%w: unterminated string at position %d", ErrSyntax, start)
	}
	l.pos++
	l.tokens = append(l.tokens, token{typ: tokLiteral, val: l.input[start:l.pos], pos: start})
	return nil
}

func (l *lexer) number() {
	start := l.pos
	seenDot, seenExp := false, false
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case isDigit(c):
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && !seenExp:
			seenExp = true
			if l.pos+1 < len(l.input) && (l.input[l.pos+1] == '+' || l.input[l.pos+1] == '-') {
				l.pos++
			}
		default:
			l.tokens = append(l.tokens, token{typ: tokLiteral, val: l.input[start:l.pos], pos: start})
			return
		}
		l.pos++
	}
	l.tokens = append(l.tokens, token{typ: tokLiteral, val: l.input[start:l.pos], pos: start})
}

func (l *lexer) word() error {
	start := l.pos
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}
	w := l.input[start:l.pos]
	if _, ok := keywords[w]; !ok {
		return fmt.Errorf("%w: identifier %q is not allowed in a literal expression", ErrSyntax, w)
	}
	l.tokens = append(l.tokens, token{typ: tokLiteral, val: w, pos: start})
	return nil
}

func (l *lexer) operator() bool {
	rest := l.input[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			l.emit(tokOperator, op)
			return true
		}
	}
	return false
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
