package signature

import (
	"errors"
	"fmt"
)

// ResolvedDoc is the structured content of one documentation block.
// ParameterTypes only holds parameters whose type was documented.
type ResolvedDoc struct {
	ParameterTypes     map[string]Type
	ReturnType         Optional[Type]
	ThrowType          Optional[Type]
	DeprecationMessage Optional[string]
	IsInternal         bool
	IsFinal            bool
}

// DocCommentParser turns raw documentation text into a ResolvedDoc, using the
// method identity to locate the class and file context the text belongs to.
type DocCommentParser interface {
	ParseDocComment(rawComment, declaringClassName, methodName string, declaringFileName Optional[string]) (ResolvedDoc, error)
}

// DocCommentParserFunc adapts a function to DocCommentParser.
type DocCommentParserFunc func(rawComment, declaringClassName, methodName string, declaringFileName Optional[string]) (ResolvedDoc, error)

func (f DocCommentParserFunc) ParseDocComment(rawComment, declaringClassName, methodName string, declaringFileName Optional[string]) (ResolvedDoc, error) {
	return f(rawComment, declaringClassName, methodName, declaringFileName)
}

// ErrUnresolvableDocBlock is matched by every UnresolvableDocBlockError.
var ErrUnresolvableDocBlock = errors.New("unresolvable doc block")

// UnresolvableDocBlockError reports a documentation block that could not be
// tied to a class or file context.
type UnresolvableDocBlockError struct {
	ClassName  string
	MethodName string
	FileName   Optional[string]
	Reason     string
}

func (e *UnresolvableDocBlockError) Error() string {
	msg := fmt.Sprintf("unresolvable doc block for %s#%s", e.ClassName, e.MethodName)
	if file, ok := e.FileName.Get(); ok {
		msg += " in " + file
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *UnresolvableDocBlockError) Is(target error) bool {
	return target == ErrUnresolvableDocBlock
}
