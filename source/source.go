// Package source scans Java source files for the declarations and doc
// comments of their methods.
package source

import (
	"slices"
	"strings"
)

// File is the scanned outline of one .java file.
type File struct {
	Path      string   `json:"path"`
	Package   string   `json:"package,omitempty"`
	Imports   []Import `json:"imports,omitempty"`
	Classes   []Class  `json:"classes,omitempty"`
	Hash      string   `json:"hash"`
	HasErrors bool     `json:"has_errors,omitempty"`
}

type Import struct {
	Path     string `json:"path"`
	Static   bool   `json:"static,omitempty"`
	Wildcard bool   `json:"wildcard,omitempty"`
}

// Class is a type declaration. Nested declarations appear as separate
// classes whose Name includes the enclosing class, e.g. com.example.Outer.Inner.
type Class struct {
	Name           string   `json:"name"`
	SimpleName     string   `json:"simple_name"`
	Kind           string   `json:"kind"`
	Modifiers      []string `json:"modifiers,omitempty"`
	TypeParameters []string `json:"type_parameters,omitempty"`
	Methods        []Method `json:"methods,omitempty"`
	Line           int      `json:"line"`
}

type Method struct {
	Name           string      `json:"name"`
	DocComment     string      `json:"doc_comment,omitempty"`
	Modifiers      []string    `json:"modifiers,omitempty"`
	Annotations    []string    `json:"annotations,omitempty"`
	TypeParameters []string    `json:"type_parameters,omitempty"`
	Parameters     []Parameter `json:"parameters,omitempty"`
	ReturnType     string      `json:"return_type,omitempty"`
	Throws         []string    `json:"throws,omitempty"`
	IsConstructor  bool        `json:"is_constructor,omitempty"`
	StartLine      int         `json:"start_line"`
	EndLine        int         `json:"end_line"`
}

type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (c *Class) HasModifier(m string) bool {
	return slices.Contains(c.Modifiers, m)
}

// IsFinal reports a class whose methods cannot be overridden: declared
// final, or a record.
func (c *Class) IsFinal() bool {
	return c.Kind == "record" || c.HasModifier("final")
}

func (c *Class) MethodsNamed(name string) []*Method {
	var out []*Method
	for i := range c.Methods {
		if c.Methods[i].Name == name {
			out = append(out, &c.Methods[i])
		}
	}
	return out
}

func (m *Method) HasModifier(mod string) bool {
	return slices.Contains(m.Modifiers, mod)
}

func (m *Method) HasDocComment() bool {
	return strings.HasPrefix(m.DocComment, "/**")
}

// Contains reports whether line (1-based) falls within the declaration.
func (m *Method) Contains(line int) bool {
	return line >= m.StartLine && line <= m.EndLine
}

// Class returns the class with the given qualified name.
func (f *File) Class(name string) *Class {
	for i := range f.Classes {
		if f.Classes[i].Name == name {
			return &f.Classes[i]
		}
	}
	return nil
}
