package format

import (
	"github.com/dhamidi/docsig/analysis"
	"github.com/dhamidi/docsig/javadoc"
)

// Document is the model shared by the structured encoders. Absent optional
// values are omitted; a present but empty deprecation message is kept.
type Document struct {
	Methods []Method `json:"methods" yaml:"methods"`
}

type Method struct {
	Class              string            `json:"class" yaml:"class"`
	Method             string            `json:"method" yaml:"method"`
	Descriptor         string            `json:"descriptor,omitempty" yaml:"descriptor,omitempty"`
	Signature          string            `json:"signature,omitempty" yaml:"signature,omitempty"`
	File               string            `json:"file,omitempty" yaml:"file,omitempty"`
	Line               int               `json:"line,omitempty" yaml:"line,omitempty"`
	Documented         bool              `json:"documented" yaml:"documented"`
	Description        string            `json:"description,omitempty" yaml:"description,omitempty"`
	DeclaredThrows     []string          `json:"declaredThrows,omitempty" yaml:"declaredThrows,omitempty"`
	DeclaredDeprecated bool              `json:"declaredDeprecated,omitempty" yaml:"declaredDeprecated,omitempty"`
	ParameterTypes     map[string]string `json:"parameterTypes,omitempty" yaml:"parameterTypes,omitempty"`
	ReturnType         *string           `json:"returnType,omitempty" yaml:"returnType,omitempty"`
	ThrowType          *string           `json:"throwType,omitempty" yaml:"throwType,omitempty"`
	Deprecated         bool              `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	DeprecationMessage *string           `json:"deprecationMessage,omitempty" yaml:"deprecationMessage,omitempty"`
	Internal           bool              `json:"internal,omitempty" yaml:"internal,omitempty"`
	Final              bool              `json:"final,omitempty" yaml:"final,omitempty"`
	Unresolvable       bool              `json:"unresolvable,omitempty" yaml:"unresolvable,omitempty"`
	Error              string            `json:"error,omitempty" yaml:"error,omitempty"`
}

func NewDocument(results []analysis.Result) Document {
	doc := Document{Methods: make([]Method, len(results))}
	for i := range results {
		doc.Methods[i] = newMethod(&results[i])
	}
	return doc
}

func newMethod(r *analysis.Result) Method {
	m := Method{
		Class:      r.Class,
		Method:     r.Method,
		Descriptor: r.Descriptor,
		Signature:  r.Signature,
		File:       r.File,
		Line:       r.Line,
		Documented: r.Documented,

		DeclaredThrows:     r.Throws,
		DeclaredDeprecated: r.Deprecated,
	}
	if r.Documented {
		m.Description = javadoc.FormatPlainText(javadoc.Parse(r.Doc))
	}
	if r.Err != nil {
		m.Error = r.Err.Error()
		m.Unresolvable = r.Unresolvable()
		return m
	}

	spec := r.Spec
	if len(spec.ParameterTypes) > 0 {
		m.ParameterTypes = make(map[string]string, len(spec.ParameterTypes))
		for name, t := range spec.ParameterTypes {
			m.ParameterTypes[name] = t.String()
		}
	}
	if t, ok := spec.ReturnType.Get(); ok {
		s := t.String()
		m.ReturnType = &s
	}
	if t, ok := spec.ThrowType.Get(); ok {
		s := t.String()
		m.ThrowType = &s
	}
	if msg, ok := spec.DeprecationMessage.Get(); ok {
		m.DeprecationMessage = &msg
	}
	m.Deprecated = spec.IsDeprecated
	m.Internal = spec.IsInternal
	m.Final = spec.IsFinal
	return m
}
