package lsp

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/docsig/analysis"
	"github.com/dhamidi/docsig/javadoc"
)

var errNotInitialized = errors.New("language server not initialized")

// Diagnostics reports unresolvable documentation as errors and deprecated
// methods as hints, each on the method's declaration line.
func Diagnostics(results []analysis.Result, content []byte) []protocol.Diagnostic {
	lines := bytes.Split(content, []byte("\n"))
	diags := []protocol.Diagnostic{}

	for _, r := range results {
		if r.Line <= 0 {
			continue
		}
		rng := lineRange(lines, r.Line)
		switch {
		case r.Err != nil:
			diags = append(diags, protocol.Diagnostic{
				Range:    rng,
				Severity: severityPtr(protocol.DiagnosticSeverityError),
				Source:   stringPtr(lsName),
				Message:  fmt.Sprintf("documentation of %s cannot be resolved: %s", r.Method, r.Err),
			})
		case r.Spec.IsDeprecated:
			msg := fmt.Sprintf("%s is deprecated", r.Method)
			if text := r.Spec.DeprecationMessage.OrElse(""); text != "" {
				msg += ": " + text
			}
			diags = append(diags, protocol.Diagnostic{
				Range:    rng,
				Severity: severityPtr(protocol.DiagnosticSeverityHint),
				Source:   stringPtr(lsName),
				Message:  msg,
				Tags:     []protocol.DiagnosticTag{protocol.DiagnosticTagDeprecated},
			})
		}
	}
	return diags
}

// lineRange spans the non-blank text of the 1-based line.
func lineRange(lines [][]byte, line int) protocol.Range {
	var text []byte
	if line-1 < len(lines) {
		text = bytes.TrimRight(lines[line-1], "\r")
	}
	start := len(text) - len(bytes.TrimLeft(text, " \t"))
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(line - 1), Character: protocol.UInteger(start)},
		End:   protocol.Position{Line: protocol.UInteger(line - 1), Character: protocol.UInteger(len(text))},
	}
}

// HoverMarkdown renders a resolved method for display.
func HoverMarkdown(r analysis.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "```java\n%s\n```\n", r.Signature)

	if r.Err != nil {
		fmt.Fprintf(&sb, "\n**Unresolvable documentation:** %s\n", r.Err)
		return sb.String()
	}

	if r.Documented {
		if text := javadoc.Format(javadoc.Parse(r.Doc)); text != "" {
			fmt.Fprintf(&sb, "\n%s\n", text)
		}
	}

	spec := r.Spec
	if len(spec.ParameterTypes) > 0 {
		sb.WriteString("\n**Parameters**\n\n")
		seen := map[string]bool{}
		for _, p := range r.Parameters {
			if t, ok := spec.ParameterTypes[p.Name]; ok {
				fmt.Fprintf(&sb, "- `%s`: `%s`\n", p.Name, t)
				seen[p.Name] = true
			}
		}
		var rest []string
		for name := range spec.ParameterTypes {
			if !seen[name] {
				rest = append(rest, name)
			}
		}
		slices.Sort(rest)
		for _, name := range rest {
			fmt.Fprintf(&sb, "- `%s`: `%s`\n", name, spec.ParameterTypes[name])
		}
	}
	if t, ok := spec.ReturnType.Get(); ok {
		fmt.Fprintf(&sb, "\n**Returns** `%s`\n", t)
	}
	if t, ok := spec.ThrowType.Get(); ok {
		fmt.Fprintf(&sb, "\n**Throws** `%s`\n", t)
	} else if len(r.Throws) > 0 {
		fmt.Fprintf(&sb, "\n**Declares** `throws %s`\n", strings.Join(r.Throws, ", "))
	}
	if msg, ok := spec.DeprecationMessage.Get(); ok {
		if msg == "" {
			sb.WriteString("\n**Deprecated**\n")
		} else {
			fmt.Fprintf(&sb, "\n**Deprecated:** %s\n", msg)
		}
	} else if r.Deprecated {
		sb.WriteString("\n**Deprecated** (annotation)\n")
	}

	var flags []string
	if spec.IsInternal {
		flags = append(flags, "_internal_")
	}
	if spec.IsFinal {
		flags = append(flags, "_final_")
	}
	if len(flags) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", strings.Join(flags, " "))
	}
	return sb.String()
}

func severityPtr(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func stringPtr(s string) *string {
	return &s
}
