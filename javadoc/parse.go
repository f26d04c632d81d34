package javadoc

import (
	"strings"
	"unicode"
)

// commentParser is a recursive-descent parser over the runes of one comment.
type commentParser struct {
	input []rune
	pos   int
	len   int
	start int // first rune after the opening delimiter
}

// Parse parses a comment, with or without its /** */ delimiters. It never
// fails; input it cannot interpret ends up as Text or Erroneous nodes.
func Parse(comment string) *DocComment {
	p := &commentParser{input: []rune(comment)}
	p.len = len(p.input)

	p.skipWhitespace()
	if p.match("/**") {
		p.advance(3)
	}
	p.start = p.pos
	p.skipLinePrefix()

	doc := &DocComment{}
	doc.Body = p.parseContent(false)
	doc.BlockTags = p.parseBlockTags()
	return doc
}

// skipLinePrefix skips indentation and the leading '*' of a comment line.
func (p *commentParser) skipLinePrefix() {
	p.skipHorizontalWhitespace()
	if p.peek() == '*' && p.peekAt(1) != '/' {
		p.advance(1)
		if p.peek() == ' ' {
			p.advance(1)
		}
	}
}

// parseContent reads text, HTML and inline tags. Inside an inline tag it
// stops at the unmatched closing brace; otherwise at the next block tag.
func (p *commentParser) parseContent(inInlineTag bool) []Node {
	var nodes []Node
	var text strings.Builder
	depth := 0

	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, Text{Content: text.String()})
			text.Reset()
		}
	}

	for p.pos < p.len {
		ch := p.peek()
		if ch == '*' && p.peekAt(1) == '/' {
			break
		}
		if !inInlineTag && p.isAtBlockTag() {
			break
		}

		switch ch {
		case '\n', '\r':
			text.WriteRune(ch)
			p.advance(1)
			if ch == '\r' && p.peek() == '\n' {
				text.WriteRune('\n')
				p.advance(1)
			}
			p.skipLinePrefix()

		case '{':
			if p.peekAt(1) == '@' {
				flush()
				if node := p.parseInlineTag(); node != nil {
					nodes = append(nodes, node)
				}
				continue
			}
			if inInlineTag {
				depth++
			}
			text.WriteRune(ch)
			p.advance(1)

		case '}':
			if inInlineTag {
				if depth == 0 {
					flush()
					return nodes
				}
				depth--
			}
			text.WriteRune(ch)
			p.advance(1)

		case '<':
			flush()
			if node := p.parseHTML(); node != nil {
				nodes = append(nodes, node)
			}

		case '&':
			flush()
			if node := p.parseEntity(); node != nil {
				nodes = append(nodes, node)
			}

		default:
			text.WriteRune(ch)
			p.advance(1)
		}
	}

	flush()
	return nodes
}

// isAtBlockTag reports whether the current '@' is the first thing on its
// line, ignoring indentation and the '*' line prefix.
func (p *commentParser) isAtBlockTag() bool {
	if p.peek() != '@' {
		return false
	}
	for i := p.pos - 1; i >= p.start; i-- {
		switch ch := p.input[i]; ch {
		case '\n', '\r':
			return true
		case ' ', '\t':
		case '*':
			j := i - 1
			for j >= p.start && (p.input[j] == ' ' || p.input[j] == '\t') {
				j--
			}
			return j < p.start || p.input[j] == '\n' || p.input[j] == '\r'
		default:
			return false
		}
	}
	return true
}

func (p *commentParser) parseInlineTag() Node {
	p.advance(2) // {@

	name := p.readIdentifier()
	if name == "" {
		return Erroneous{Content: "{@", Message: "missing tag name"}
	}
	p.skipHorizontalWhitespace()

	var node Node
	switch name {
	case "code":
		node = Code{Content: p.readBalancedContent()}
	case "literal":
		node = Literal{Content: p.readBalancedContent()}
	case "link", "linkplain":
		ref := p.readReference()
		p.skipHorizontalWhitespace()
		var label []Node
		if p.peek() != '}' {
			label = p.parseContent(true)
		}
		node = Link{Reference: ref, Label: label, Plain: name == "linkplain"}
	case "value":
		node = Value{Reference: p.readReference()}
	case "inheritDoc":
		node = InheritDoc{Reference: p.readReference()}
	case "summary":
		node = Summary{Content: p.parseContent(true)}
	case "return":
		node = Return{Description: p.parseContent(true), Inline: true}
	default:
		node = UnknownInlineTag{Name: name, Content: p.readBalancedContent()}
	}

	if p.peek() == '}' {
		p.advance(1)
	}
	return node
}

func (p *commentParser) parseHTML() Node {
	if p.match("<!--") {
		p.advance(4)
		start := p.pos
		for p.pos < p.len && !p.match("-->") {
			p.advance(1)
		}
		content := string(p.input[start:p.pos])
		p.advance(3)
		return Text{Content: "<!--" + content + "-->"}
	}

	p.advance(1)

	if p.peek() == '/' {
		p.advance(1)
		name := p.readHTMLName()
		p.skipHorizontalWhitespace()
		if p.peek() == '>' {
			p.advance(1)
		}
		return EndElement{Name: name}
	}

	name := p.readHTMLName()
	if name == "" {
		return Text{Content: "<"}
	}

	var attrs []Attribute
	for {
		p.skipWhitespaceInTag()
		if p.pos >= p.len || p.peek() == '>' || p.peek() == '/' {
			break
		}
		attrName := p.readHTMLName()
		if attrName == "" {
			break
		}
		p.skipWhitespaceInTag()
		var value string
		if p.peek() == '=' {
			p.advance(1)
			p.skipWhitespaceInTag()
			if p.peek() == '"' || p.peek() == '\'' {
				value = p.readQuotedString()
			} else {
				value = p.readUnquotedAttrValue()
			}
		}
		attrs = append(attrs, Attribute{Name: attrName, Value: value})
	}

	selfClose := false
	if p.peek() == '/' {
		selfClose = true
		p.advance(1)
	}
	if p.peek() == '>' {
		p.advance(1)
	}
	return StartElement{Name: name, Attributes: attrs, SelfClose: selfClose}
}

// skipWhitespaceInTag lets HTML tags span comment lines.
func (p *commentParser) skipWhitespaceInTag() {
	for p.pos < p.len {
		switch p.peek() {
		case ' ', '\t':
			p.advance(1)
		case '\n', '\r':
			p.advance(1)
			if p.peek() == '\n' {
				p.advance(1)
			}
			p.skipLinePrefix()
		default:
			return
		}
	}
}

func (p *commentParser) parseEntity() Node {
	p.advance(1) // &

	start := p.pos
	if p.peek() == '#' {
		p.advance(1)
		if p.peek() == 'x' || p.peek() == 'X' {
			p.advance(1)
			for isHexDigit(p.peek()) {
				p.advance(1)
			}
		} else {
			for isDigit(p.peek()) {
				p.advance(1)
			}
		}
	} else {
		for unicode.IsLetter(p.peek()) {
			p.advance(1)
		}
	}

	name := string(p.input[start:p.pos])
	if p.peek() == ';' {
		p.advance(1)
		return Entity{Name: name}
	}
	return Text{Content: "&" + name}
}

func (p *commentParser) parseBlockTags() []Node {
	var tags []Node

	for p.pos < p.len {
		p.skipWhitespace()
		p.skipLinePrefix()
		if p.match("*/") {
			break
		}
		if p.peek() != '@' {
			p.advance(1)
			continue
		}

		p.advance(1)
		name := p.readIdentifier()
		if name == "" {
			continue
		}
		p.skipHorizontalWhitespace()

		switch name {
		case "param":
			tags = append(tags, p.parseParamTag())
		case "return":
			typ := p.readTypeBraces()
			tags = append(tags, Return{Type: typ, Description: p.parseContent(false)})
		case "throws", "exception":
			exc := p.readReference()
			p.skipHorizontalWhitespace()
			tags = append(tags, Throws{Exception: exc, Description: p.parseContent(false)})
		case "see":
			tags = append(tags, See{Reference: p.parseContent(false)})
		case "since":
			tags = append(tags, Since{Version: p.parseContent(false)})
		case "deprecated":
			tags = append(tags, Deprecated{Description: p.parseContent(false)})
		case "hidden":
			tags = append(tags, Hidden{Description: p.parseContent(false)})
		case "internal":
			tags = append(tags, Internal{Description: p.parseContent(false)})
		case "final":
			tags = append(tags, Final{Description: p.parseContent(false)})
		default:
			tags = append(tags, UnknownBlockTag{Name: name, Content: p.parseContent(false)})
		}
	}

	return tags
}

// parseParamTag handles "@param name", "@param <T>" and the typed form
// "@param {Type} name".
func (p *commentParser) parseParamTag() Node {
	typ := p.readTypeBraces()

	isTypeParam := false
	if p.peek() == '<' {
		isTypeParam = true
		p.advance(1)
	}
	name := p.readIdentifier()
	if isTypeParam && p.peek() == '>' {
		p.advance(1)
	}
	p.skipHorizontalWhitespace()

	return Param{
		Name:        name,
		Type:        typ,
		IsTypeParam: isTypeParam,
		Description: p.parseContent(false),
	}
}

// readTypeBraces consumes a "{Type}" group. An inline tag such as
// {@code x} is not a type and is left in place.
func (p *commentParser) readTypeBraces() string {
	if p.peek() != '{' || p.peekAt(1) == '@' {
		return ""
	}
	p.advance(1)
	typ := strings.TrimSpace(p.readBalancedContent())
	if p.peek() == '}' {
		p.advance(1)
	}
	p.skipHorizontalWhitespace()
	return typ
}

func (p *commentParser) peek() rune {
	if p.pos >= p.len {
		return 0
	}
	return p.input[p.pos]
}

func (p *commentParser) peekAt(offset int) rune {
	pos := p.pos + offset
	if pos >= p.len || pos < 0 {
		return 0
	}
	return p.input[pos]
}

func (p *commentParser) advance(n int) {
	p.pos = min(p.pos+n, p.len)
}

func (p *commentParser) match(s string) bool {
	i := p.pos
	for _, ch := range s {
		if i >= p.len || p.input[i] != ch {
			return false
		}
		i++
	}
	return true
}

func (p *commentParser) skipWhitespace() {
	for p.pos < p.len && isWhitespace(p.peek()) {
		p.advance(1)
	}
}

func (p *commentParser) skipHorizontalWhitespace() {
	for p.peek() == ' ' || p.peek() == '\t' {
		p.advance(1)
	}
}

func (p *commentParser) readIdentifier() string {
	start := p.pos
	if isJavaIdentifierStart(p.peek()) {
		p.advance(1)
		for isJavaIdentifierPart(p.peek()) {
			p.advance(1)
		}
	}
	return string(p.input[start:p.pos])
}

// readReference reads a package.Class#member(params) reference.
func (p *commentParser) readReference() string {
	start := p.pos
	parens := 0
	for p.pos < p.len {
		ch := p.peek()
		if ch == '(' {
			parens++
		} else if ch == ')' && parens > 0 {
			parens--
		} else if ch == '}' || (isWhitespace(ch) && parens == 0) {
			break
		}
		p.advance(1)
	}
	return strings.TrimSpace(string(p.input[start:p.pos]))
}

func (p *commentParser) readQuotedString() string {
	quote := p.peek()
	p.advance(1)

	start := p.pos
	for p.pos < p.len && p.peek() != quote {
		if p.peek() == '\\' && p.peekAt(1) == quote {
			p.advance(2)
		} else {
			p.advance(1)
		}
	}
	result := string(p.input[start:p.pos])
	if p.peek() == quote {
		p.advance(1)
	}
	return result
}

func (p *commentParser) readUnquotedAttrValue() string {
	start := p.pos
	for p.pos < p.len {
		ch := p.peek()
		if isWhitespace(ch) || ch == '>' || ch == '}' {
			break
		}
		p.advance(1)
	}
	return string(p.input[start:p.pos])
}

func (p *commentParser) readHTMLName() string {
	start := p.pos
	for {
		ch := p.peek()
		if !unicode.IsLetter(ch) && !isDigit(ch) && ch != '-' && ch != '_' && ch != ':' {
			break
		}
		p.advance(1)
	}
	return string(p.input[start:p.pos])
}

// readBalancedContent reads up to the '}' matching the current nesting
// level, or to the end of the comment. A single leading space is dropped.
func (p *commentParser) readBalancedContent() string {
	start := p.pos
	depth := 0

loop:
	for p.pos < p.len {
		switch p.peek() {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				break loop
			}
			depth--
		case '*':
			if p.peekAt(1) == '/' {
				break loop
			}
		}
		p.advance(1)
	}

	return strings.TrimPrefix(string(p.input[start:p.pos]), " ")
}

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isJavaIdentifierStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_' || ch == '$'
}

func isJavaIdentifierPart(ch rune) bool {
	return isJavaIdentifierStart(ch) || unicode.IsDigit(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
