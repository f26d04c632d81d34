// Package java provides the method variants the signature resolver consumes:
// methods read from class files, methods scanned from source, and a
// decorator that attaches documentation found elsewhere.
package java

import (
	"strings"

	"github.com/dhamidi/docsig/signature"
)

// Method is a signature.Method that also exposes its declared shape.
type Method interface {
	signature.Method

	// Descriptor is the JVM method descriptor, or "" when the method was not
	// read from a class file.
	Descriptor() string
	Parameters() []Parameter
	ReturnType() signature.Type
	Visibility() string
	IsStatic() bool
	IsConstructor() bool
	// Exceptions lists the declared checked exceptions, qualified.
	Exceptions() []string
	// IsDeprecated reports a @Deprecated annotation or the class-file
	// Deprecated attribute, independent of any doc comment.
	IsDeprecated() bool
	// Line is the 1-based declaration line, 0 when unknown.
	Line() int
}

type Parameter struct {
	Name  string
	Type  signature.Type
	Index int
	// Varargs marks a trailing T... parameter; Type is then the array T[].
	Varargs bool
}

func (p Parameter) String() string {
	typ := p.Type.String()
	if p.Varargs && p.Type.ArrayDepth > 0 {
		elem := p.Type
		elem.ArrayDepth--
		typ = elem.String() + "..."
	}
	if p.Name != "" {
		return typ + " " + p.Name
	}
	return typ
}

// InternalPolicy decides which declaring classes are internal to a runtime
// or library and not part of its public API.
type InternalPolicy struct {
	Prefixes []string
}

var DefaultInternalPolicy = InternalPolicy{
	Prefixes: []string{"sun.", "jdk.internal.", "com.sun.internal."},
}

func (p InternalPolicy) IsInternalClass(className string) bool {
	for _, prefix := range p.Prefixes {
		if strings.HasPrefix(className, prefix) {
			return true
		}
	}
	return false
}

// Signature renders m the way it would be declared, e.g.
// "public static int sum(int a, int b)".
func Signature(m Method) string {
	var sb strings.Builder
	if v := m.Visibility(); v != "package" {
		sb.WriteString(v)
		sb.WriteString(" ")
	}
	if m.IsStatic() {
		sb.WriteString("static ")
	}
	if m.IsFinal() {
		sb.WriteString("final ")
	}
	if !m.IsConstructor() {
		sb.WriteString(m.ReturnType().String())
		sb.WriteString(" ")
	}
	sb.WriteString(m.Name())
	sb.WriteString("(")
	for i, p := range m.Parameters() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(")")
	return sb.String()
}
