package javadoc

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dhamidi/docsig/signature"
)

var ErrMalformedType = errors.New("malformed type expression")

// ParseType parses a documented type expression: qualified or simple names,
// primitives, generic arguments, wildcards with bounds, arrays written as []
// or as a trailing varargs ..., and unions joined by '|'.
func ParseType(expr string) (signature.Type, error) {
	p := &typeParser{input: []rune(expr)}
	t, err := p.parseUnion()
	if err != nil {
		return signature.Type{}, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return signature.Type{}, p.errorf("unexpected %q", string(p.input[p.pos]))
	}
	return t, nil
}

type typeParser struct {
	input []rune
	pos   int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d in %q: %s", ErrMalformedType, p.pos, string(p.input), fmt.Sprintf(format, args...))
}

func (p *typeParser) parseUnion() (signature.Type, error) {
	first, err := p.parseType()
	if err != nil {
		return signature.Type{}, err
	}
	alts := []signature.Type{first}
	for p.accept('|') {
		next, err := p.parseType()
		if err != nil {
			return signature.Type{}, err
		}
		alts = append(alts, next)
	}
	if len(alts) == 1 {
		return first, nil
	}
	return signature.Union(alts...), nil
}

func (p *typeParser) parseType() (signature.Type, error) {
	p.skipSpace()

	var t signature.Type
	if p.accept('?') {
		t.Name = "?"
		p.skipSpace()
		if kw := p.peekWord(); kw == "extends" || kw == "super" {
			p.pos += len(kw)
			bound, err := p.parseType()
			if err != nil {
				return signature.Type{}, err
			}
			t.BoundKind = kw
			t.Bounds = []signature.Type{bound}
		}
		return t, nil
	}

	name, err := p.parseName()
	if err != nil {
		return signature.Type{}, err
	}
	t.Name = name

	if p.accept('<') {
		for {
			arg, err := p.parseType()
			if err != nil {
				return signature.Type{}, err
			}
			t.Arguments = append(t.Arguments, arg)
			if p.accept(',') {
				continue
			}
			if p.accept('>') {
				break
			}
			return signature.Type{}, p.errorf("expected ',' or '>'")
		}
	}

	for {
		p.skipSpace()
		if p.acceptString("[]") {
			t.ArrayDepth++
			continue
		}
		if p.acceptString("...") {
			t.ArrayDepth++
			continue
		}
		break
	}
	return t, nil
}

func (p *typeParser) parseName() (string, error) {
	p.skipSpace()
	var sb strings.Builder
	for {
		start := p.pos
		if p.pos >= len(p.input) || !isJavaIdentifierStart(p.input[p.pos]) {
			return "", p.errorf("expected identifier")
		}
		for p.pos < len(p.input) && isJavaIdentifierPart(p.input[p.pos]) {
			p.pos++
		}
		sb.WriteString(string(p.input[start:p.pos]))

		// a trailing "..." is varargs, not a qualifier
		if p.peek() == '.' && !p.hasPrefix("...") {
			p.pos++
			sb.WriteByte('.')
			continue
		}
		return sb.String(), nil
	}
}

func (p *typeParser) peek() rune {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *typeParser) peekWord() string {
	end := p.pos
	for end < len(p.input) && unicode.IsLetter(p.input[end]) {
		end++
	}
	return string(p.input[p.pos:end])
}

func (p *typeParser) hasPrefix(s string) bool {
	return strings.HasPrefix(string(p.input[p.pos:]), s)
}

func (p *typeParser) accept(ch rune) bool {
	p.skipSpace()
	if p.peek() == ch {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) acceptString(s string) bool {
	if p.hasPrefix(s) {
		p.pos += len([]rune(s))
		return true
	}
	return false
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(p.input[p.pos]) {
		p.pos++
	}
}
