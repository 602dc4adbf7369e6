package expr

import (
	"fmt"
	"strconv"
	"strings"
)

type nodeKind int

const (
	nodeLiteral nodeKind = iota
	nodeUnary
	nodeBinary
)

type node struct {
	kind     nodeKind
	value    any
	op       string
	children []*node
}

type parser struct {
	tokens []token
	pos    int
}

func parse(src string) (*node, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	if p.peek().typ == tokEOF {
		return &node{kind: nodeLiteral}, nil
	}
	n, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.typ != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %q at position %d", ErrSyntax, t.val, t.pos)
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.typ != tokEOF {
		p.pos++
	}
	return t
}

// expression parses by precedence climbing: operators binding at least as
// tightly as minPrec are folded left-associatively.
func (p *parser) expression(minPrec int) (*node, error) {
	left, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.typ != tokOperator {
			return left, nil
		}
		prec, ok := precedence[t.val]
		if !ok || prec < minPrec {
			return left, nil
		}
		p.next()
		right, err := p.expression(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &node{kind: nodeBinary, op: t.val, children: []*node{left, right}}
	}
}

func (p *parser) primary() (*node, error) {
	t := p.next()
	switch t.typ {
	case tokLiteral:
		v, err := literal(t.val)
		if err != nil {
			return nil, fmt.Errorf("%w: %v at position %d", ErrSyntax, err, t.pos)
		}
		return &node{kind: nodeLiteral, value: v}, nil
	case tokLeftParen:
		inner, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.typ != tokRightParen {
			return nil, fmt.Errorf("%w: expected ')' at position %d", ErrSyntax, closing.pos)
		}
		return inner, nil
	case tokOperator:
		if t.val == "!" || t.val == "-" || t.val == "+" {
			operand, err := p.expression(unaryPrecedence)
			if err != nil {
				return nil, err
			}
			return &node{kind: nodeUnary, op: t.val, children: []*node{operand}}, nil
		}
		return nil, fmt.Errorf("%w: unexpected operator %q at position %d", ErrSyntax, t.val, t.pos)
	case tokEOF:
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	}
	return nil, fmt.Errorf("%w: unexpected %q at position %d", ErrSyntax, t.val, t.pos)
}

func literal(raw string) (any, error) {
	if v, ok := keywords[raw]; ok {
		return v, nil
	}
	if raw[0] == '\'' || raw[0] == '"' {
		return unquote(raw[1 : len(raw)-1]), nil
	}
	return strconv.ParseFloat(raw, 64)
}

func unquote(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
