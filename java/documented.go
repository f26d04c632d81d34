package java

import (
	"slices"
	"strings"

	"github.com/dhamidi/docsig/signature"
)

// Documented decorates a method with a doc comment and declaring file found
// elsewhere, typically the source of a method read from a class file. All
// other properties come from the wrapped method.
type Documented struct {
	Method
	Doc  string
	File string
}

func (d *Documented) DocComment() signature.Optional[string] {
	return signature.Some(d.Doc)
}

func (d *Documented) FileName() signature.Optional[string] {
	if d.File == "" {
		return d.Method.FileName()
	}
	return signature.Some(d.File)
}

// Documentation finds the declaration among candidates that matches m by
// name and erased parameter types. It returns nil when the match is
// ambiguous, missing or has no doc comment of its own; the doc of an
// overload never stands in for another.
func Documentation(m Method, candidates []*SourceMethod) *SourceMethod {
	params := m.Parameters()
	var match *SourceMethod
	for _, c := range candidates {
		if c.Name() != m.Name() || !parametersMatch(params, c) {
			continue
		}
		if match != nil {
			return nil
		}
		match = c
	}
	if match == nil || !match.DocComment().IsPresent() {
		return nil
	}
	return match
}

// parametersMatch compares erased parameter types by simple name. Type
// variables of the source declaration match any class-file type, since
// their erasure depends on bounds the scanner does not resolve.
func parametersMatch(params []Parameter, candidate *SourceMethod) bool {
	other := candidate.Parameters()
	if len(params) != len(other) {
		return false
	}
	ctx := candidate.context()
	for i := range params {
		a, b := params[i].Type.Erasure(), other[i].Type.Erasure()
		if a.ArrayDepth != b.ArrayDepth {
			return false
		}
		if slices.Contains(ctx.TypeParameters, b.Name) {
			continue
		}
		if simpleName(a.Name) != simpleName(b.Name) {
			return false
		}
	}
	return true
}

func simpleName(name string) string {
	return name[strings.LastIndexByte(name, '.')+1:]
}

// Decorate attaches the documentation of the matching candidate to m, or
// returns m unchanged when none matches.
func Decorate(m Method, candidates []*SourceMethod) Method {
	doc := Documentation(m, candidates)
	if doc == nil {
		return m
	}
	return &Documented{
		Method: m,
		Doc:    doc.method.DocComment,
		File:   doc.file.Path,
	}
}
