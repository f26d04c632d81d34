package javadoc

import (
	"strings"
)

// Format renders a comment as lightweight markdown: the description, then
// one line per block tag.
func Format(doc *DocComment) string {
	if doc == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(normalizeWhitespace(formatNodes(doc.Body, false)))

	if len(doc.BlockTags) > 0 && sb.Len() > 0 {
		sb.WriteString("\n")
	}
	for _, tag := range doc.BlockTags {
		if s := formatBlockTag(tag); s != "" {
			sb.WriteString("\n")
			sb.WriteString(s)
		}
	}

	return strings.TrimSpace(sb.String())
}

// FormatPlainText renders only the description, without markup.
func FormatPlainText(doc *DocComment) string {
	if doc == nil {
		return ""
	}
	return PlainText(doc.Body)
}

// PlainText renders nodes as a single line of text with markup removed and
// runs of whitespace collapsed.
func PlainText(nodes []Node) string {
	return strings.Join(strings.Fields(formatNodes(nodes, true)), " ")
}

func formatNodes(nodes []Node, plain bool) string {
	var sb strings.Builder
	for i, node := range nodes {
		if !plain && isPreAroundMultilineCode(nodes, i) {
			continue
		}
		sb.WriteString(formatNode(node, plain))
	}
	return sb.String()
}

// isPreAroundMultilineCode reports a <pre> or </pre> that wraps a multi-line
// {@code} block, which is rendered as a fenced block on its own.
func isPreAroundMultilineCode(nodes []Node, idx int) bool {
	step := 0
	switch n := nodes[idx].(type) {
	case StartElement:
		if strings.EqualFold(n.Name, "pre") {
			step = 1
		}
	case EndElement:
		if strings.EqualFold(n.Name, "pre") {
			step = -1
		}
	}
	if step == 0 {
		return false
	}
	for i := idx + step; i >= 0 && i < len(nodes); i += step {
		switch n := nodes[i].(type) {
		case Text:
			if strings.TrimSpace(n.Content) == "" {
				continue
			}
			return false
		case Code:
			return strings.Contains(n.Content, "\n")
		default:
			return false
		}
	}
	return false
}

func formatNode(node Node, plain bool) string {
	switch n := node.(type) {
	case Text:
		return n.Content
	case Code:
		if plain {
			return n.Content
		}
		content := strings.TrimSpace(stripLinePrefix(n.Content))
		if strings.Contains(content, "\n") {
			return "\n```\n" + content + "\n```\n"
		}
		return "`" + content + "`"
	case Literal:
		return n.Content
	case Link:
		if len(n.Label) > 0 {
			return formatNodes(n.Label, plain)
		}
		return formatReference(n.Reference)
	case Value:
		return formatReference(n.Reference)
	case InheritDoc:
		if plain {
			return ""
		}
		return "[inherited documentation]"
	case Summary:
		return formatNodes(n.Content, plain)
	case Return:
		if n.Inline {
			return formatNodes(n.Description, plain)
		}
		return ""
	case UnknownInlineTag:
		return n.Content
	case StartElement:
		if plain {
			return ""
		}
		return formatStartElement(n)
	case EndElement:
		if plain {
			return ""
		}
		return formatEndElement(n)
	case Entity:
		return decodeEntity(n.Name)
	case Erroneous:
		if plain {
			return ""
		}
		return n.Content
	}
	return ""
}

// formatReference shortens java.util.List#add(E) to add and java.util.List
// to List.
func formatReference(ref string) string {
	if idx := strings.LastIndex(ref, "#"); idx >= 0 {
		member := ref[idx+1:]
		if paren := strings.Index(member, "("); paren >= 0 {
			member = member[:paren]
		}
		return member
	}
	if idx := strings.LastIndex(ref, "."); idx >= 0 {
		return ref[idx+1:]
	}
	return ref
}

func formatStartElement(e StartElement) string {
	switch strings.ToLower(e.Name) {
	case "p", "h1", "h2", "h3", "h4", "h5", "h6":
		return "\n\n"
	case "br", "ul", "ol", "table", "thead", "tbody", "tr", "dl", "dt":
		return "\n"
	case "pre":
		return "\n```\n"
	case "code":
		return "`"
	case "li":
		return "\n- "
	case "blockquote":
		return "\n> "
	case "td", "th":
		return " "
	case "dd":
		return "\n  "
	}
	return ""
}

func formatEndElement(e EndElement) string {
	switch strings.ToLower(e.Name) {
	case "pre":
		return "\n```\n"
	case "code":
		return "`"
	case "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6":
		return "\n"
	}
	return ""
}

func formatBlockTag(node Node) string {
	desc := func(nodes []Node) string {
		return strings.TrimSpace(formatNodes(nodes, false))
	}
	typed := func(t string) string {
		if t == "" {
			return ""
		}
		return "{" + t + "} "
	}

	var s string
	switch n := node.(type) {
	case Param:
		name := n.Name
		if n.IsTypeParam {
			name = "<" + name + ">"
		}
		s = "@param " + typed(n.Type) + name + " " + desc(n.Description)
	case Return:
		s = "@return " + typed(n.Type) + desc(n.Description)
	case Throws:
		s = "@throws " + n.Exception + " " + desc(n.Description)
	case See:
		s = "@see " + desc(n.Reference)
	case Since:
		s = "@since " + desc(n.Version)
	case Deprecated:
		s = "@deprecated " + desc(n.Description)
	case Hidden:
		s = "@hidden"
	case Internal:
		s = "@internal " + desc(n.Description)
	case Final:
		s = "@final"
	case UnknownBlockTag:
		s = "@" + n.Name + " " + desc(n.Content)
	}
	return strings.TrimSpace(s)
}

func decodeEntity(name string) string {
	switch name {
	case "lt", "#60":
		return "<"
	case "gt", "#62":
		return ">"
	case "amp", "#38":
		return "&"
	case "quot", "#34":
		return "\""
	case "apos", "#39":
		return "'"
	case "nbsp", "#160":
		return " "
	case "mdash", "#8212":
		return "—"
	case "ndash", "#8211":
		return "–"
	case "copy", "#169":
		return "©"
	}
	return "&" + name + ";"
}

// normalizeWhitespace collapses runs of blank lines into one.
func normalizeWhitespace(s string) string {
	var result []string
	prevEmpty := false
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			if !prevEmpty {
				result = append(result, "")
			}
			prevEmpty = true
			continue
		}
		result = append(result, line)
		prevEmpty = false
	}
	return strings.Join(result, "\n")
}

// stripLinePrefix removes the indentation and '*' that start each line of a
// comment from raw {@code} content.
func stripLinePrefix(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "*") && !strings.HasPrefix(trimmed, "*/") {
			lines[i] = strings.TrimPrefix(trimmed[1:], " ")
		}
	}
	return strings.Join(lines, "\n")
}
