// Package javadoc parses Javadoc comments and extracts the typed signature
// information they document.
package javadoc

// Node is implemented by every element of a parsed comment.
type Node interface {
	node()
}

// DocComment is a parsed comment: the main description followed by its
// block tags in source order.
type DocComment struct {
	Body      []Node
	BlockTags []Node
}

func (DocComment) node() {}

type Text struct {
	Content string
}

func (Text) node() {}

// Code is {@code ...}.
type Code struct {
	Content string
}

func (Code) node() {}

// Literal is {@literal ...}.
type Literal struct {
	Content string
}

func (Literal) node() {}

// Link is {@link ref label} or, when Plain is set, {@linkplain ref label}.
type Link struct {
	Reference string
	Label     []Node
	Plain     bool
}

func (Link) node() {}

type Value struct {
	Reference string
}

func (Value) node() {}

type InheritDoc struct {
	Reference string
}

func (InheritDoc) node() {}

type Summary struct {
	Content []Node
}

func (Summary) node() {}

type UnknownInlineTag struct {
	Name    string
	Content string
}

func (UnknownInlineTag) node() {}

// Param is a @param block tag. Type holds the text between braces in the
// typed form "@param {List<String>} names ..." and is empty otherwise.
type Param struct {
	Name        string
	Type        string
	IsTypeParam bool
	Description []Node
}

func (Param) node() {}

// Return is either the {@return ...} inline tag or the @return block tag.
// Only the block form may carry a Type.
type Return struct {
	Type        string
	Description []Node
	Inline      bool
}

func (Return) node() {}

// Throws is @throws or @exception.
type Throws struct {
	Exception   string
	Description []Node
}

func (Throws) node() {}

type See struct {
	Reference []Node
}

func (See) node() {}

type Since struct {
	Version []Node
}

func (Since) node() {}

type Deprecated struct {
	Description []Node
}

func (Deprecated) node() {}

// Hidden is @hidden, which excludes an element from generated API docs.
type Hidden struct {
	Description []Node
}

func (Hidden) node() {}

// Internal is @internal.
type Internal struct {
	Description []Node
}

func (Internal) node() {}

// Final is @final: the method is documented as not meant to be overridden
// even though the language does not enforce it.
type Final struct {
	Description []Node
}

func (Final) node() {}

type UnknownBlockTag struct {
	Name    string
	Content []Node
}

func (UnknownBlockTag) node() {}

type StartElement struct {
	Name       string
	Attributes []Attribute
	SelfClose  bool
}

func (StartElement) node() {}

type EndElement struct {
	Name string
}

func (EndElement) node() {}

type Attribute struct {
	Name  string
	Value string
}

// Entity is an HTML character reference such as &lt; or &#160;. Name
// excludes the & and ; delimiters.
type Entity struct {
	Name string
}

func (Entity) node() {}

// Erroneous holds input the parser could not make sense of.
type Erroneous struct {
	Content string
	Message string
}

func (Erroneous) node() {}
