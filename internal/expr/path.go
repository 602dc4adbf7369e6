package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one `identifier(suffix)*` hop of a property path.
type Segment struct {
	Name     string
	Alias    bool // Name was written as @Name
	Suffixes []Suffix
}

// Suffix is an index `[n]` or a call `(args)` applied after a segment.
type Suffix struct {
	Call  bool
	Index int
	Args  []string // raw argument expressions, trimmed
}

// ParsePath splits a property path into segments. Segments are separated by
// dots; each may be followed by any number of index and call suffixes.
func ParsePath(path string) ([]Segment, error) {
	p := pathParser{src: strings.TrimSpace(path)}
	if p.src == "" {
		return nil, fmt.Errorf("%w: empty path", ErrMalformedPath)
	}
	var segs []Segment
	for {
		seg, err := p.segment()
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
		p.skipSpace()
		if p.done() {
			return segs, nil
		}
		if p.src[p.pos] != '.' {
			return nil, p.errorf("expected '.'")
		}
		p.pos++
	}
}

type pathParser struct {
	src string
	pos int
}

func (p *pathParser) done() bool { return p.pos >= len(p.src) }

func (p *pathParser) skipSpace() {
	for !p.done() && isWhitespace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *pathParser) errorf(msg string) error {
	return fmt.Errorf("%w: %s at offset %d in %q", ErrMalformedPath, msg, p.pos, p.src)
}

func (p *pathParser) segment() (Segment, error) {
	p.skipSpace()
	var seg Segment
	if !p.done() && p.src[p.pos] == '@' {
		seg.Alias = true
		p.pos++
	}
	start := p.pos
	for !p.done() && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return seg, p.errorf("expected identifier")
	}
	seg.Name = p.src[start:p.pos]

	for !p.done() {
		switch p.src[p.pos] {
		case '[':
			end := strings.IndexByte(p.src[p.pos:], ']')
			if end < 0 {
				return seg, p.errorf("unclosed '['")
			}
			inner := strings.TrimSpace(p.src[p.pos+1 : p.pos+end])
			n, err := strconv.Atoi(inner)
			if err != nil || n < 0 {
				return seg, p.errorf(fmt.Sprintf("index %q is not a non-negative integer", inner))
			}
			seg.Suffixes = append(seg.Suffixes, Suffix{Index: n})
			p.pos += end + 1
		case '(':
			args, err := p.args()
			if err != nil {
				return seg, err
			}
			seg.Suffixes = append(seg.Suffixes, Suffix{Call: true, Args: args})
		default:
			return seg, nil
		}
	}
	return seg, nil
}

// args consumes a parenthesized, comma-separated argument list. Commas
// nested inside parentheses, brackets, braces or quotes do not split.
func (p *pathParser) args() ([]string, error) {
	open := p.pos
	p.pos++
	depth := 0
	var quote byte
	var args []string
	argStart := p.pos
	for !p.done() {
		c := p.src[p.pos]
		switch {
		case quote != 0:
			if c == '\\' {
				p.pos++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' && depth == 0:
			last := strings.TrimSpace(p.src[argStart:p.pos])
			if last != "" || len(args) > 0 {
				args = append(args, last)
			}
			p.pos++
			for _, a := range args {
				if a == "" {
					return nil, p.errorf("empty argument")
				}
			}
			return args, nil
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == ',' && depth == 0:
			args = append(args, strings.TrimSpace(p.src[argStart:p.pos]))
			argStart = p.pos + 1
		}
		p.pos++
	}
	p.pos = open
	return nil, p.errorf("unclosed '('")
}

// IsPathArg reports whether a call argument is a path reference rather than
// a literal expression.
func IsPathArg(arg string) bool {
	if arg == "" {
		return false
	}
	if _, ok := keywords[arg]; ok {
		return false
	}
	c := arg[0]
	return isAlpha(c) || c == '_' || c == '$' || c == '@'
}

func isIdentChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '_' || c == '$'
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
