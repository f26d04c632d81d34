package java

import (
	"strings"

	"github.com/dhamidi/docsig/classfile"
	"github.com/dhamidi/docsig/signature"
)

// ClassMethod is a method read from a compiled class. Class files carry no
// documentation, so DocComment is always absent.
type ClassMethod struct {
	class  *classfile.ClassFile
	info   *classfile.MethodInfo
	policy InternalPolicy
}

var _ Method = (*ClassMethod)(nil)

// MethodsFromClassFile returns the methods of cf, leaving out bridge methods
// and the static initializer. A module-info class has none.
func MethodsFromClassFile(cf *classfile.ClassFile, policy InternalPolicy) []*ClassMethod {
	if cf.IsModule() {
		return nil
	}
	var methods []*ClassMethod
	for i := range cf.Methods {
		info := &cf.Methods[i]
		if info.IsBridge() || info.IsStaticInitializer(cf.ConstantPool) {
			continue
		}
		methods = append(methods, &ClassMethod{class: cf, info: info, policy: policy})
	}
	return methods
}

func (m *ClassMethod) DeclaringClassName() string {
	return m.class.SourceName()
}

// Name returns the method name, using the simple class name for
// constructors as source code does.
func (m *ClassMethod) Name() string {
	if m.IsConstructor() {
		name := m.class.ClassName()
		if i := strings.LastIndexAny(name, "/$"); i >= 0 {
			name = name[i+1:]
		}
		return name
	}
	return m.info.Name(m.class.ConstantPool)
}

// FileName is the package-relative path recorded by the SourceFile attribute.
func (m *ClassMethod) FileName() signature.Optional[string] {
	if path, ok := m.class.SourcePath(); ok {
		return signature.Some(path)
	}
	return signature.None[string]()
}

func (m *ClassMethod) DocComment() signature.Optional[string] {
	return signature.None[string]()
}

func (m *ClassMethod) IsInternal() bool {
	return m.info.IsSynthetic(m.class.ConstantPool) || m.policy.IsInternalClass(m.DeclaringClassName())
}

func (m *ClassMethod) IsFinal() bool {
	return m.info.IsFinal() || m.class.AccessFlags.IsFinal()
}

func (m *ClassMethod) Descriptor() string {
	return m.info.Descriptor(m.class.ConstantPool)
}

func (m *ClassMethod) Parameters() []Parameter {
	sig := m.methodType()
	if sig == nil {
		return nil
	}
	names := m.info.ParameterNames(m.class.ConstantPool)

	params := make([]Parameter, len(sig.Params))
	for i := range sig.Params {
		params[i] = Parameter{Type: typeFromSig(&sig.Params[i]), Index: i}
		if i < len(names) {
			params[i].Name = names[i]
		}
	}
	if n := len(params); n > 0 && m.info.IsVarargs() {
		params[n-1].Varargs = true
	}
	return params
}

func (m *ClassMethod) ReturnType() signature.Type {
	sig := m.methodType()
	if sig == nil {
		return signature.Named("void")
	}
	return typeFromSig(sig.Return)
}

// methodType prefers the generic signature. javac leaves synthetic
// parameters such as an inner class's outer instance out of it, so it is
// only used when it lines up with the descriptor.
func (m *ClassMethod) methodType() *classfile.MethodSig {
	desc := m.info.ParsedDescriptor(m.class.ConstantPool)
	if generic, ok := m.info.GenericSignature(m.class.ConstantPool); ok {
		if desc == nil || len(generic.Params) == len(desc.Params) {
			return generic
		}
	}
	return desc
}

// Exceptions are the checked exceptions listed in the class file.
func (m *ClassMethod) Exceptions() []string {
	return m.info.Exceptions(m.class.ConstantPool)
}

// IsDeprecated reports the Deprecated attribute javac emits for @deprecated.
func (m *ClassMethod) IsDeprecated() bool {
	return m.info.IsDeprecated(m.class.ConstantPool)
}

func (m *ClassMethod) Visibility() string {
	return m.info.AccessFlags.Visibility()
}

func (m *ClassMethod) IsStatic() bool {
	return m.info.IsStatic()
}

func (m *ClassMethod) IsConstructor() bool {
	return m.info.IsConstructor(m.class.ConstantPool)
}

func (m *ClassMethod) Line() int { return 0 }

func typeFromSig(t *classfile.TypeSig) signature.Type {
	if t == nil {
		return signature.Named("void")
	}
	out := signature.Type{Name: t.SourceName(), ArrayDepth: t.ArrayDepth}
	for _, arg := range t.Args {
		switch arg.Bound {
		case '*':
			out.Arguments = append(out.Arguments, signature.Named("?"))
		case '+', '-':
			kind := "extends"
			if arg.Bound == '-' {
				kind = "super"
			}
			out.Arguments = append(out.Arguments, signature.Type{Name: "?", BoundKind: kind, Bounds: []signature.Type{typeFromSig(arg.Type)}})
		default:
			out.Arguments = append(out.Arguments, typeFromSig(arg.Type))
		}
	}
	return out
}
