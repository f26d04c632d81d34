package javadoc

import (
	"github.com/dhamidi/docsig/signature"
)

// Extract collects the signature information documented in doc, qualifying
// every type against ctx.
//
// Only typed tags contribute types: "@param {T} name" and "@return {T}".
// Type expressions that do not parse are skipped. When a tag is repeated,
// the last @param for a name and the last typed @return win, @throws tags
// accumulate into a union, and the first @deprecated supplies the message.
func Extract(doc *DocComment, ctx Context) signature.ResolvedDoc {
	out := signature.ResolvedDoc{ParameterTypes: map[string]signature.Type{}}
	if doc == nil {
		return out
	}

	var typeParams []string
	for _, tag := range doc.BlockTags {
		if p, ok := tag.(Param); ok && p.IsTypeParam && p.Name != "" {
			typeParams = append(typeParams, p.Name)
		}
	}
	ctx = ctx.WithTypeParameters(typeParams...)

	parse := func(expr string) (signature.Type, bool) {
		if expr == "" {
			return signature.Type{}, false
		}
		t, err := ParseType(expr)
		if err != nil {
			log.Debugf("skipping type %q in %s: %s", expr, ctx.ClassName, err)
			return signature.Type{}, false
		}
		return ctx.QualifyType(t), true
	}

	var throws []signature.Type
	for _, tag := range doc.BlockTags {
		switch n := tag.(type) {
		case Param:
			if n.IsTypeParam || n.Name == "" {
				continue
			}
			if t, ok := parse(n.Type); ok {
				out.ParameterTypes[n.Name] = t
			}
		case Return:
			if t, ok := parse(n.Type); ok {
				out.ReturnType = signature.Some(t)
			}
		case Throws:
			if t, ok := parse(n.Exception); ok {
				throws = append(throws, t)
			}
		case Deprecated:
			if !out.DeprecationMessage.IsPresent() {
				out.DeprecationMessage = signature.Some(PlainText(n.Description))
			}
		case Hidden, Internal:
			out.IsInternal = true
		case Final:
			out.IsFinal = true
		}
	}
	if len(throws) > 0 {
		out.ThrowType = signature.Some(signature.Union(throws...))
	}

	return out
}
