package sexp

import (
	"github.com/watlink/watlink/errors"
)

// Parse converts source text into a single root node. Line comments (;; to
// end of line) and block comments ((; ... ;), nesting allowed) are skipped
// and not represented in the tree, so they do not survive a round-trip.
// Whitespace between atoms is not significant. Unbalanced parentheses and
// unterminated strings or block comments are fatal; the returned error is a
// *errors.Error with KindSyntax and the offending byte offset.
func Parse(source string) (*Node, error) {
	p := &parser{src: source}
	if err := p.skipTrivia(); err != nil {
		return nil, err
	}
	if p.eof() {
		return nil, errors.Syntax(p.pos, "empty input")
	}
	if p.src[p.pos] != '(' {
		return nil, errors.Syntax(p.pos, "expected '('")
	}
	node, err := p.parseList()
	if err != nil {
		return nil, err
	}
	return node, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

// parseList consumes "(" item* ")". The leading tag, if any, is just the
// first atom child; the parser assigns no meaning to it.
func (p *parser) parseList() (*Node, error) {
	open := p.pos
	p.pos++ // consume '('

	node := NewList()
	for {
		if err := p.skipTrivia(); err != nil {
			return nil, err
		}
		if p.eof() {
			return nil, errors.Syntax(open, "unterminated list")
		}
		switch p.src[p.pos] {
		case ')':
			p.pos++
			return node, nil
		case '(':
			child, err := p.parseList()
			if err != nil {
				return nil, err
			}
			node.Items = append(node.Items, child)
		default:
			atom, err := p.parseAtom()
			if err != nil {
				return nil, err
			}
			node.Items = append(node.Items, atom)
		}
	}
}

// parseAtom consumes a run of non-delimiter bytes. A '"' begins a string
// literal that runs to the matching unescaped closing quote and terminates
// the atom; the quotes and any escape sequences are kept verbatim.
func (p *parser) parseAtom() (*Node, error) {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if c == '"' {
			if err := p.scanString(); err != nil {
				return nil, err
			}
			break
		}
		if c == '(' || c == ')' || isSpace(c) {
			break
		}
		p.pos++
	}
	return NewAtom(p.src[start:p.pos]), nil
}

// scanString consumes a double-quoted literal. A backslash escapes the next
// byte, so \" does not close the string. The content is not decoded.
func (p *parser) scanString() error {
	open := p.pos
	p.pos++ // consume '"'
	for !p.eof() {
		switch p.src[p.pos] {
		case '"':
			p.pos++
			return nil
		case '\\':
			p.pos += 2
		default:
			p.pos++
		}
	}
	return errors.Syntax(open, "unterminated string literal")
}

// skipTrivia consumes whitespace and comments.
func (p *parser) skipTrivia() error {
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case isSpace(c):
			p.pos++
		case c == ';' && p.peekAt(p.pos+1) == ';':
			for !p.eof() && p.src[p.pos] != '\n' {
				p.pos++
			}
		case c == '(' && p.peekAt(p.pos+1) == ';':
			if err := p.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

// skipBlockComment consumes "(;" ... ";)" with nesting.
func (p *parser) skipBlockComment() error {
	open := p.pos
	p.pos += 2
	depth := 1
	for !p.eof() && depth > 0 {
		switch {
		case p.src[p.pos] == '(' && p.peekAt(p.pos+1) == ';':
			depth++
			p.pos += 2
		case p.src[p.pos] == ';' && p.peekAt(p.pos+1) == ')':
			depth--
			p.pos += 2
		default:
			p.pos++
		}
	}
	if depth > 0 {
		return errors.Syntax(open, "unterminated block comment")
	}
	return nil
}

func (p *parser) peekAt(i int) byte {
	if i >= len(p.src) {
		return 0
	}
	return p.src[i]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
