package classfile

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedDescriptor = errors.New("malformed descriptor")

// TypeSig is a type as written in a descriptor or a generic signature
// attribute. Exactly one of Base, Class and Var is set.
type TypeSig struct {
	Base       string // primitive keyword
	Class      string // internal name, nested classes joined with '$'
	Var        string // type variable
	Args       []TypeArg
	ArrayDepth int
}

// TypeArg is one argument of a parameterized class type. Bound is '*' for an
// unbounded wildcard, '+' for "? extends", '-' for "? super" and 0 for an
// exact type.
type TypeArg struct {
	Bound byte
	Type  *TypeSig
}

// MethodSig is a parsed method descriptor or method signature. Return is
// nil for void.
type MethodSig struct {
	TypeParams []string
	Params     []TypeSig
	Return     *TypeSig
	Throws     []TypeSig
}

// Slots is the number of local variable slots a value of this type occupies.
func (t *TypeSig) Slots() int {
	if t.ArrayDepth == 0 && (t.Base == "long" || t.Base == "double") {
		return 2
	}
	return 1
}

// SourceName is the dotted class name with nested classes separated by '.'.
func (t *TypeSig) SourceName() string {
	switch {
	case t.Base != "":
		return t.Base
	case t.Var != "":
		return t.Var
	}
	return strings.ReplaceAll(InternalToSourceName(t.Class), "$", ".")
}

func (t *TypeSig) String() string {
	var sb strings.Builder
	sb.WriteString(t.SourceName())
	if len(t.Args) > 0 {
		sb.WriteByte('<')
		for i, arg := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			switch arg.Bound {
			case '*':
				sb.WriteByte('?')
				continue
			case '+':
				sb.WriteString("? extends ")
			case '-':
				sb.WriteString("? super ")
			}
			sb.WriteString(arg.Type.String())
		}
		sb.WriteByte('>')
	}
	for range t.ArrayDepth {
		sb.WriteString("[]")
	}
	return sb.String()
}

func (m *MethodSig) String() string {
	params := make([]string, len(m.Params))
	for i := range m.Params {
		params[i] = m.Params[i].String()
	}
	ret := "void"
	if m.Return != nil {
		ret = m.Return.String()
	}
	return "(" + strings.Join(params, ", ") + ") " + ret
}

// ParseMethodDescriptor parses an erased descriptor such as
// (I[Ljava/lang/String;)V.
func ParseMethodDescriptor(desc string) (*MethodSig, error) {
	r := &sigReader{s: desc}
	m := r.method(false)
	if err := r.done(); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseMethodSignature parses the generic form kept in a Signature
// attribute, e.g. <T:Ljava/lang/Object;>(TT;)Ljava/util/List<TT;>;^TE;.
func ParseMethodSignature(sig string) (*MethodSig, error) {
	r := &sigReader{s: sig}
	m := r.method(true)
	if err := r.done(); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseFieldDescriptor parses a single field descriptor.
func ParseFieldDescriptor(desc string) (*TypeSig, error) {
	r := &sigReader{s: desc}
	t := r.typ(false)
	if err := r.done(); err != nil {
		return nil, err
	}
	return t, nil
}

type sigReader struct {
	s   string
	pos int
	err error
}

func (r *sigReader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w %q at %d: %s", ErrMalformedDescriptor, r.s, r.pos, fmt.Sprintf(format, args...))
	}
}

func (r *sigReader) done() error {
	if r.err == nil && r.pos != len(r.s) {
		r.fail("trailing input")
	}
	return r.err
}

func (r *sigReader) peek() byte {
	if r.err != nil || r.pos >= len(r.s) {
		return 0
	}
	return r.s[r.pos]
}

func (r *sigReader) expect(c byte) {
	if r.peek() != c {
		r.fail("expected %q", c)
		return
	}
	r.pos++
}

// until consumes up to, not including, the first of stops.
func (r *sigReader) until(stops string) string {
	start := r.pos
	for r.pos < len(r.s) && !strings.ContainsRune(stops, rune(r.s[r.pos])) {
		r.pos++
	}
	if r.pos == start {
		r.fail("expected identifier")
	}
	return r.s[start:r.pos]
}

func (r *sigReader) method(generic bool) *MethodSig {
	m := &MethodSig{}
	if generic && r.peek() == '<' {
		r.pos++
		for r.err == nil && r.peek() != '>' {
			m.TypeParams = append(m.TypeParams, r.until(":"))
			// class bound, possibly empty, then interface bounds
			for r.peek() == ':' {
				r.pos++
				if c := r.peek(); c != ':' && c != '>' && !isIdentStart(r) {
					r.typ(true)
				}
			}
		}
		r.expect('>')
	}
	r.expect('(')
	for r.err == nil && r.peek() != ')' {
		if t := r.typ(generic); t != nil {
			m.Params = append(m.Params, *t)
		}
	}
	r.expect(')')
	if r.peek() == 'V' {
		r.pos++
	} else {
		m.Return = r.typ(generic)
	}
	for generic && r.peek() == '^' {
		r.pos++
		if t := r.typ(true); t != nil {
			m.Throws = append(m.Throws, *t)
		}
	}
	if r.err != nil {
		return nil
	}
	return m
}

// isIdentStart reports whether the reader sits on the next type parameter
// name rather than a bound, which happens after an empty class bound.
func isIdentStart(r *sigReader) bool {
	i := strings.IndexAny(r.s[r.pos:], ":;<>")
	return i > 0 && r.s[r.pos+i] == ':'
}

func (r *sigReader) typ(generic bool) *TypeSig {
	t := &TypeSig{}
	for r.peek() == '[' {
		t.ArrayDepth++
		r.pos++
	}
	c := r.peek()
	switch c {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		t.Base = baseTypes[c]
		r.pos++
	case 'L':
		r.pos++
		r.classType(t, generic)
	case 'T':
		if !generic {
			r.fail("type variable in descriptor")
			return nil
		}
		r.pos++
		t.Var = r.until(";")
		r.expect(';')
	default:
		r.fail("unexpected %q", c)
	}
	if r.err != nil {
		return nil
	}
	return t
}

func (r *sigReader) classType(t *TypeSig, generic bool) {
	stops := ";"
	if generic {
		stops = ";<."
	}
	t.Class = r.until(stops)
	for r.err == nil {
		switch r.peek() {
		case '<':
			t.Args = r.typeArgs()
		case '.':
			// Outer<A>.Inner<B>: the inner arguments replace the outer ones.
			r.pos++
			t.Class += "$" + r.until(stops)
			t.Args = nil
		case ';':
			r.pos++
			return
		default:
			r.fail("unterminated class type")
		}
	}
}

func (r *sigReader) typeArgs() []TypeArg {
	r.expect('<')
	var args []TypeArg
	for r.err == nil && r.peek() != '>' {
		switch c := r.peek(); c {
		case '*':
			r.pos++
			args = append(args, TypeArg{Bound: '*'})
		case '+', '-':
			r.pos++
			args = append(args, TypeArg{Bound: c, Type: r.typ(true)})
		default:
			args = append(args, TypeArg{Type: r.typ(true)})
		}
	}
	r.expect('>')
	return args
}

var baseTypes = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}
