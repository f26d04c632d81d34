package javadoc

import (
	"slices"
	"strings"
	"unicode"

	"github.com/dhamidi/docsig/signature"
)

// Context is the naming environment of a declaring class, used to turn the
// simple names written in documentation into qualified ones.
type Context struct {
	Package         string
	Imports         map[string]string // simple name -> qualified name
	WildcardImports []string          // package or class names imported with .*
	ClassName       string            // qualified, nested classes joined with '.'
	TypeParameters  []string

	// Known reports whether a qualified class name exists. It backs nested
	// class and wildcard import resolution and may be nil.
	Known func(className string) bool
}

var javaLang = map[string]bool{
	"AutoCloseable": true, "Boolean": true, "Byte": true, "CharSequence": true,
	"Character": true, "Class": true, "ClassCastException": true,
	"ClassNotFoundException": true, "CloneNotSupportedException": true,
	"Cloneable": true, "Comparable": true, "Double": true, "Enum": true,
	"Error": true, "Exception": true, "Float": true,
	"IllegalArgumentException": true, "IllegalStateException": true,
	"IndexOutOfBoundsException": true, "Integer": true,
	"InterruptedException": true, "Iterable": true, "Long": true, "Math": true,
	"NullPointerException": true, "Number": true, "NumberFormatException": true,
	"Object": true, "Override": true, "Process": true, "Record": true,
	"Runnable": true, "RuntimeException": true, "SecurityException": true,
	"Short": true, "String": true, "StringBuilder": true, "System": true,
	"Thread": true, "Throwable": true, "UnsupportedOperationException": true,
	"Void": true,
}

func isPrimitiveName(name string) bool {
	switch name {
	case "boolean", "byte", "char", "short", "int", "long", "float", "double", "void":
		return true
	}
	return false
}

// Qualify resolves a simple or partially qualified class name. Lookup order:
// primitives and type parameters stay as written, then explicit imports,
// classes nested in the declaring class or its enclosing classes, java.lang,
// wildcard imports, and finally the declaring package.
func (c Context) Qualify(name string) string {
	if name == "" || name == "?" || isPrimitiveName(name) || slices.Contains(c.TypeParameters, name) {
		return name
	}

	head, rest, dotted := strings.Cut(name, ".")
	if dotted {
		// Map.Entry with java.util.Map imported qualifies through its head;
		// anything else is taken to be qualified already.
		if !startsUpper(head) {
			return name
		}
		if q, ok := c.lookup(head); ok {
			return q + "." + rest
		}
		return name
	}

	if q, ok := c.lookup(name); ok {
		return q
	}
	if c.Package == "" {
		return name
	}
	return c.Package + "." + name
}

func (c Context) lookup(simple string) (string, bool) {
	if q, ok := c.Imports[simple]; ok {
		return q, true
	}
	if c.Known != nil {
		for outer := c.ClassName; outer != "" && outer != c.Package; outer = parentName(outer) {
			if candidate := outer + "." + simple; c.Known(candidate) {
				return candidate, true
			}
		}
	}
	if javaLang[simple] {
		return "java.lang." + simple, true
	}
	if c.Known != nil {
		for _, w := range c.WildcardImports {
			if candidate := w + "." + simple; c.Known(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

// QualifyType qualifies every class name in t, including generic arguments,
// wildcard bounds and union alternatives.
func (c Context) QualifyType(t signature.Type) signature.Type {
	if t.IsUnion() {
		alts := make([]signature.Type, len(t.Alternatives))
		for i, alt := range t.Alternatives {
			alts[i] = c.QualifyType(alt)
		}
		return signature.Type{Alternatives: alts}
	}

	out := signature.Type{
		Name:       c.Qualify(t.Name),
		ArrayDepth: t.ArrayDepth,
		BoundKind:  t.BoundKind,
	}
	for _, arg := range t.Arguments {
		out.Arguments = append(out.Arguments, c.QualifyType(arg))
	}
	for _, b := range t.Bounds {
		out.Bounds = append(out.Bounds, c.QualifyType(b))
	}
	return out
}

// WithTypeParameters returns a copy of c that also treats names as type
// parameters, e.g. those a method declares.
func (c Context) WithTypeParameters(names ...string) Context {
	if len(names) == 0 {
		return c
	}
	c.TypeParameters = append(slices.Clone(c.TypeParameters), names...)
	return c
}

// ContextForClass derives a context from a qualified class name alone,
// assuming lower-case leading segments form the package.
func ContextForClass(className string) Context {
	segments := strings.Split(className, ".")
	i := 0
	for i < len(segments)-1 && !startsUpper(segments[i]) {
		i++
	}
	return Context{
		Package:   strings.Join(segments[:i], "."),
		ClassName: className,
	}
}

func parentName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
