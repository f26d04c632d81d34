package signature

import (
	"errors"
	"maps"
)

// MethodSignatureSpec is the reconciled signature of one method.
//
// ParameterTypes holds exactly the documented parameters. Parameters that are
// only declared structurally are left out; callers that want a declared-type
// fallback layer it on top.
type MethodSignatureSpec struct {
	ParameterTypes     map[string]Type
	ReturnType         Optional[Type]
	ThrowType          Optional[Type]
	IsDeprecated       bool
	DeprecationMessage Optional[string]
	IsInternal         bool
	IsFinal            bool
}

var errNilParser = errors.New("signature: method has a doc comment but no parser was given")

// Resolve reconciles native with the documentation parser returns for it.
//
// A method without a doc comment resolves to its native flags only and the
// parser is not called. Errors returned by the parser, including
// UnresolvableDocBlockError, are returned unchanged with a zero spec.
func Resolve(native NativeMethodInfo, parser DocCommentParser) (MethodSignatureSpec, error) {
	if !native.HasDocComment {
		return MethodSignatureSpec{
			ParameterTypes: map[string]Type{},
			IsInternal:     native.IsInternal,
			IsFinal:        native.IsFinal,
		}, nil
	}
	if parser == nil {
		return MethodSignatureSpec{}, errNilParser
	}

	doc, err := parser.ParseDocComment(
		native.RawDocComment.OrElse(""),
		native.DeclaringClassName,
		native.MethodName,
		native.DeclaringFileName,
	)
	if err != nil {
		return MethodSignatureSpec{}, err
	}

	params := make(map[string]Type, len(doc.ParameterTypes))
	maps.Copy(params, doc.ParameterTypes)

	return MethodSignatureSpec{
		ParameterTypes:     params,
		ReturnType:         doc.ReturnType,
		ThrowType:          doc.ThrowType,
		IsDeprecated:       doc.DeprecationMessage.IsPresent(),
		DeprecationMessage: doc.DeprecationMessage,
		IsInternal:         native.IsInternal || doc.IsInternal,
		IsFinal:            native.IsFinal || doc.IsFinal,
	}, nil
}

// ResolveMethod resolves any Method variant.
func ResolveMethod(m Method, parser DocCommentParser) (MethodSignatureSpec, error) {
	return Resolve(InfoOf(m), parser)
}
