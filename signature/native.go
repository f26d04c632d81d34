package signature

// NativeMethodInfo is the structural view of a method, obtained without
// reading any documentation text.
type NativeMethodInfo struct {
	HasDocComment      bool
	RawDocComment      Optional[string]
	DeclaringClassName string
	MethodName         string
	DeclaringFileName  Optional[string]
	IsInternal         bool
	IsFinal            bool
}

// Method is implemented by every kind of method the resolver can consume:
// methods read from class files, methods scanned from source, and
// decorators that attach documentation found elsewhere.
type Method interface {
	DeclaringClassName() string
	Name() string
	FileName() Optional[string]
	DocComment() Optional[string]
	IsInternal() bool
	IsFinal() bool
}

// InfoOf captures the structural view of m.
func InfoOf(m Method) NativeMethodInfo {
	doc := m.DocComment()
	return NativeMethodInfo{
		HasDocComment:      doc.IsPresent(),
		RawDocComment:      doc,
		DeclaringClassName: m.DeclaringClassName(),
		MethodName:         m.Name(),
		DeclaringFileName:  m.FileName(),
		IsInternal:         m.IsInternal(),
		IsFinal:            m.IsFinal(),
	}
}
