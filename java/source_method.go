package java

import (
	"slices"
	"strings"

	"github.com/dhamidi/docsig/javadoc"
	"github.com/dhamidi/docsig/signature"
	"github.com/dhamidi/docsig/source"
)

// SourceMethod is a method declared in a scanned .java file.
type SourceMethod struct {
	file   *source.File
	class  *source.Class
	method *source.Method
	policy InternalPolicy
}

var _ Method = (*SourceMethod)(nil)

// MethodsFromSource returns every method and constructor declared in file.
func MethodsFromSource(file *source.File, policy InternalPolicy) []*SourceMethod {
	var methods []*SourceMethod
	for i := range file.Classes {
		class := &file.Classes[i]
		for j := range class.Methods {
			methods = append(methods, NewSourceMethod(file, class, &class.Methods[j], policy))
		}
	}
	return methods
}

func NewSourceMethod(file *source.File, class *source.Class, method *source.Method, policy InternalPolicy) *SourceMethod {
	return &SourceMethod{file: file, class: class, method: method, policy: policy}
}

func (m *SourceMethod) DeclaringClassName() string { return m.class.Name }

func (m *SourceMethod) Name() string { return m.method.Name }

func (m *SourceMethod) FileName() signature.Optional[string] {
	return signature.Some(m.file.Path)
}

func (m *SourceMethod) DocComment() signature.Optional[string] {
	if !m.method.HasDocComment() {
		return signature.None[string]()
	}
	return signature.Some(m.method.DocComment)
}

func (m *SourceMethod) IsInternal() bool {
	return m.policy.IsInternalClass(m.class.Name)
}

func (m *SourceMethod) IsFinal() bool {
	return m.method.HasModifier("final") || m.class.IsFinal()
}

func (m *SourceMethod) Descriptor() string { return "" }

func (m *SourceMethod) Parameters() []Parameter {
	ctx := m.context()
	params := make([]Parameter, len(m.method.Parameters))
	for i, p := range m.method.Parameters {
		params[i] = Parameter{
			Name:    p.Name,
			Type:    sourceType(p.Type, ctx),
			Index:   i,
			Varargs: strings.HasSuffix(p.Type, "..."),
		}
	}
	return params
}

func (m *SourceMethod) ReturnType() signature.Type {
	if m.method.IsConstructor || m.method.ReturnType == "" {
		return signature.Named("void")
	}
	return sourceType(m.method.ReturnType, m.context())
}

func (m *SourceMethod) Visibility() string {
	for _, v := range []string{"public", "protected", "private"} {
		if m.method.HasModifier(v) {
			return v
		}
	}
	if m.class.Kind == "interface" || m.class.Kind == "annotation" {
		return "public"
	}
	return "package"
}

func (m *SourceMethod) IsStatic() bool { return m.method.HasModifier("static") }

func (m *SourceMethod) IsConstructor() bool { return m.method.IsConstructor }

func (m *SourceMethod) Exceptions() []string {
	if len(m.method.Throws) == 0 {
		return nil
	}
	ctx := m.context()
	out := make([]string, len(m.method.Throws))
	for i, name := range m.method.Throws {
		out[i] = ctx.Qualify(name)
	}
	return out
}

func (m *SourceMethod) IsDeprecated() bool {
	return slices.ContainsFunc(m.method.Annotations, func(a string) bool {
		return a == "Deprecated" || a == "java.lang.Deprecated"
	})
}

func (m *SourceMethod) Line() int { return m.method.StartLine }

// Source returns the scanned declaration backing m.
func (m *SourceMethod) Source() (*source.File, *source.Class, *source.Method) {
	return m.file, m.class, m.method
}

func (m *SourceMethod) context() javadoc.Context {
	return ContextFor(m.file, m.class).WithTypeParameters(m.method.TypeParameters...)
}

// sourceType parses a declared type, falling back to the raw text for
// anything the type grammar does not cover, such as annotated types.
func sourceType(text string, ctx javadoc.Context) signature.Type {
	t, err := javadoc.ParseType(text)
	if err != nil {
		return signature.Named(text)
	}
	return ctx.QualifyType(t)
}

// ContextFor builds the naming context of class as declared in file. Type
// parameters of enclosing classes are visible too.
func ContextFor(file *source.File, class *source.Class) javadoc.Context {
	ctx := javadoc.Context{
		Package:   file.Package,
		Imports:   map[string]string{},
		ClassName: class.Name,
	}
	for _, imp := range file.Imports {
		switch {
		case imp.Static:
		case imp.Wildcard:
			ctx.WildcardImports = append(ctx.WildcardImports, imp.Path)
		default:
			ctx.Imports[imp.Path[strings.LastIndexByte(imp.Path, '.')+1:]] = imp.Path
		}
	}
	for _, c := range file.Classes {
		if c.Name == class.Name || strings.HasPrefix(class.Name, c.Name+".") {
			for _, tp := range c.TypeParameters {
				if !slices.Contains(ctx.TypeParameters, tp) {
					ctx.TypeParameters = append(ctx.TypeParameters, tp)
				}
			}
		}
	}
	return ctx
}
