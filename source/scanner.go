package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("docsig.source")

const (
	DefaultMaxFileSize = 10 * 1024 * 1024
	warnFileSize       = 1024 * 1024
)

var (
	ErrFileTooLarge   = errors.New("file too large")
	ErrInvalidContent = errors.New("invalid content")
)

type ScannerOption func(*Scanner)

// WithMaxFileSize sets the largest input Scan accepts. Non-positive values
// are ignored.
func WithMaxFileSize(bytes int64) ScannerOption {
	return func(s *Scanner) {
		if bytes > 0 {
			s.maxFileSize = bytes
		}
	}
}

// Scanner extracts a File outline from Java source using tree-sitter. It is
// safe for concurrent use; every Scan gets its own tree-sitter parser.
type Scanner struct {
	maxFileSize int64
}

func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan parses content, the source of the file at path. Syntax errors do not
// fail the scan: whatever declarations tree-sitter recovered are returned
// and File.HasErrors is set.
func (s *Scanner) Scan(ctx context.Context, content []byte, path string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan canceled before start: %w", err)
	}
	if int64(len(content)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, len(content), s.maxFileSize)
	}
	if len(content) > warnFileSize {
		log.Warningf("scanning large file %s (%d bytes)", path, len(content))
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidContent, path)
	}

	hash := sha256.Sum256(content)

	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse of %s failed: %w", path, err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan canceled: %w", err)
	}

	file := &File{
		Path: path,
		Hash: hex.EncodeToString(hash[:]),
	}

	root := tree.RootNode()
	if root == nil {
		file.HasErrors = true
		return file, nil
	}
	file.HasErrors = root.HasError()

	w := &walker{content: content, file: file}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			file.Package = w.qualifiedName(child)
		case "import_declaration":
			file.Imports = append(file.Imports, w.importDecl(child))
		default:
			w.typeDecl(child, file.Package)
		}
	}

	log.Debugf("scanned %s: %d classes", path, len(file.Classes))
	return file, nil
}

type walker struct {
	content []byte
	file    *File
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(w.content)
}

// qualifiedName returns the first identifier or scoped_identifier below n.
func (w *walker) qualifiedName(n *sitter.Node) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "identifier", "scoped_identifier":
			return w.text(child)
		}
	}
	return ""
}

func (w *walker) importDecl(n *sitter.Node) Import {
	imp := Import{Path: w.qualifiedName(n)}
	for i := 0; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case "static":
			imp.Static = true
		case "asterisk", "*":
			imp.Wildcard = true
		}
	}
	return imp
}

var classKinds = map[string]string{
	"class_declaration":           "class",
	"interface_declaration":       "interface",
	"enum_declaration":            "enum",
	"record_declaration":          "record",
	"annotation_type_declaration": "annotation",
}

// typeDecl records n if it declares a type, then descends into its body.
func (w *walker) typeDecl(n *sitter.Node, outer string) {
	kind, ok := classKinds[n.Type()]
	if !ok {
		return
	}

	simple := w.text(n.ChildByFieldName("name"))
	name := simple
	if outer != "" {
		name = outer + "." + simple
	}

	mods, _ := w.modifiers(n)
	w.file.Classes = append(w.file.Classes, Class{
		Name:           name,
		SimpleName:     simple,
		Kind:           kind,
		Modifiers:      mods,
		TypeParameters: w.typeParameters(n.ChildByFieldName("type_parameters")),
		Line:           int(n.StartPoint().Row) + 1,
	})
	idx := len(w.file.Classes) - 1

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	w.members(body, name, idx)
}

func (w *walker) members(body *sitter.Node, className string, idx int) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
			m := w.method(child)
			// nested declarations may have grown the slice, so index afresh
			w.file.Classes[idx].Methods = append(w.file.Classes[idx].Methods, m)
		case "enum_body_declarations":
			w.members(child, className, idx)
		default:
			w.typeDecl(child, className)
		}
	}
}

func (w *walker) method(n *sitter.Node) Method {
	mods, annotations := w.modifiers(n)
	m := Method{
		Name:           w.text(n.ChildByFieldName("name")),
		DocComment:     w.docComment(n),
		Modifiers:      mods,
		Annotations:    annotations,
		TypeParameters: w.typeParameters(n.ChildByFieldName("type_parameters")),
		IsConstructor:  n.Type() != "method_declaration",
		StartLine:      int(n.StartPoint().Row) + 1,
		EndLine:        int(n.EndPoint().Row) + 1,
	}
	if !m.IsConstructor {
		m.ReturnType = w.text(n.ChildByFieldName("type")) + w.text(n.ChildByFieldName("dimensions"))
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		m.Parameters = w.parameters(params)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "throws" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			m.Throws = append(m.Throws, w.text(child.NamedChild(j)))
		}
	}
	return m
}

func (w *walker) parameters(n *sitter.Node) []Parameter {
	var params []Parameter
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "formal_parameter":
			params = append(params, Parameter{
				Name: w.text(child.ChildByFieldName("name")),
				Type: w.text(child.ChildByFieldName("type")) + w.text(child.ChildByFieldName("dimensions")),
			})
		case "spread_parameter":
			var p Parameter
			for j := 0; j < int(child.NamedChildCount()); j++ {
				part := child.NamedChild(j)
				switch part.Type() {
				case "modifiers":
				case "variable_declarator":
					p.Name = w.text(part.ChildByFieldName("name"))
				default:
					if p.Type == "" {
						p.Type = w.text(part) + "..."
					}
				}
			}
			params = append(params, p)
		}
	}
	return params
}

// modifiers splits the modifiers child of a declaration into keywords and
// annotation names.
func (w *walker) modifiers(n *sitter.Node) (mods, annotations []string) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() != "modifiers" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			mod := child.Child(j)
			switch mod.Type() {
			case "marker_annotation", "annotation":
				annotations = append(annotations, w.text(mod.ChildByFieldName("name")))
			default:
				if kw := w.text(mod); kw != "" {
					mods = append(mods, kw)
				}
			}
		}
	}
	return mods, annotations
}

func (w *walker) typeParameters(n *sitter.Node) []string {
	if n == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		param := n.NamedChild(i)
		if param.Type() != "type_parameter" {
			continue
		}
		for j := 0; j < int(param.NamedChildCount()); j++ {
			if id := param.NamedChild(j); id.Type() == "type_identifier" || id.Type() == "identifier" {
				names = append(names, w.text(id))
				break
			}
		}
	}
	return names
}

// docComment returns the /** */ comment closest above n. Line comments and
// plain block comments in between are skipped.
func (w *walker) docComment(n *sitter.Node) string {
	for prev := n.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		switch prev.Type() {
		case "block_comment", "comment", "line_comment":
			text := w.text(prev)
			if strings.HasPrefix(text, "/**") && text != "/**/" {
				return text
			}
		default:
			return ""
		}
	}
	return ""
}
