package format

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dhamidi/docsig/analysis"
	"github.com/dhamidi/docsig/signature"
)

// LineEncoder writes one tab-separated line per method:
//
//	class#method  signature  params  return  throws  flags  note
//
// Empty columns are written as "-". Without a documented throw type the
// throws column lists the declared exceptions in parentheses. The note
// carries the deprecation message or, for failed methods, the error.
type LineEncoder struct {
	w       io.Writer
	results []analysis.Result
	// styles by the token they apply to; nil when not coloring
	styles map[string]lipgloss.Style
}

func NewLineEncoder(w io.Writer, color bool) *LineEncoder {
	e := &LineEncoder{w: w}
	if color {
		r := lipgloss.NewRenderer(w)
		r.SetColorProfile(termenv.ANSI256)
		failed := r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
		e.styles = map[string]lipgloss.Style{
			"method":       r.NewStyle().Bold(true),
			"deprecated":   r.NewStyle().Foreground(lipgloss.Color("214")),
			"internal":     r.NewStyle().Faint(true),
			"error":        failed,
			"unresolvable": failed,
		}
	}
	return e
}

func (e *LineEncoder) Encode(results []analysis.Result) error {
	e.results = results
	return write(e.w, e)
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for i := range e.results {
		r := &e.results[i]
		if r.Err != nil {
			kind := "error"
			if r.Unresolvable() {
				kind = "unresolvable"
			}
			fmt.Fprintf(&sb, "%s\t%s\t-\t-\t-\t%s\t%s\n",
				e.style("method", r.Class+"#"+r.Method),
				orDash(r.Signature),
				e.style(kind, kind),
				oneLine(r.Err.Error()),
			)
			continue
		}

		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.style("method", r.Class+"#"+r.Method),
			orDash(r.Signature),
			parametersStr(r),
			orDash(optionalTypeStr(r.Spec.ReturnType.Get())),
			throwsStr(r),
			e.flagsStr(r),
			orDash(oneLine(r.Spec.DeprecationMessage.OrElse(""))),
		)
	}
	return []byte(sb.String()), nil
}

func (e *LineEncoder) flagsStr(r *analysis.Result) string {
	var flags []string
	if r.Spec.IsDeprecated {
		flags = append(flags, e.style("deprecated", "deprecated"))
	}
	if r.Deprecated && !r.Spec.IsDeprecated {
		flags = append(flags, e.style("deprecated", "declared-deprecated"))
	}
	if r.Spec.IsInternal {
		flags = append(flags, e.style("internal", "internal"))
	}
	if r.Spec.IsFinal {
		flags = append(flags, "final")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

func (e *LineEncoder) style(key, text string) string {
	s, ok := e.styles[key]
	if !ok {
		return text
	}
	return s.Render(text)
}

// parametersStr lists documented parameter types as name:Type in
// declaration order, followed by documented names the declaration lacks.
func parametersStr(r *analysis.Result) string {
	types := r.Spec.ParameterTypes
	if len(types) == 0 {
		return "-"
	}
	var parts []string
	seen := map[string]bool{}
	for _, p := range r.Parameters {
		if t, ok := types[p.Name]; ok && !seen[p.Name] {
			parts = append(parts, p.Name+":"+t.String())
			seen[p.Name] = true
		}
	}
	var rest []string
	for name := range types {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	for _, name := range rest {
		parts = append(parts, name+":"+types[name].String())
	}
	return strings.Join(parts, ",")
}

func throwsStr(r *analysis.Result) string {
	if t, ok := r.Spec.ThrowType.Get(); ok {
		return t.String()
	}
	if len(r.Throws) == 0 {
		return "-"
	}
	return "(" + strings.Join(r.Throws, "|") + ")"
}

func optionalTypeStr(t signature.Type, ok bool) string {
	if !ok {
		return ""
	}
	return t.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
