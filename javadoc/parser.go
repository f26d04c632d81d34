package javadoc

import (
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/docsig/signature"
)

var log = commonlog.GetLogger("docsig.javadoc")

// Locator finds the naming context of a class and the file it is declared in.
type Locator interface {
	LocateClass(className string) (ctx Context, file string, ok bool)
}

// Parser parses doc comments in the context of their declaring class.
type Parser struct {
	locator Locator
}

var _ signature.DocCommentParser = (*Parser)(nil)

// NewParser returns a Parser that resolves names through locator. With a nil
// locator every class is accepted and names are qualified against the
// package implied by the class name.
func NewParser(locator Locator) *Parser {
	return &Parser{locator: locator}
}

func (p *Parser) ParseDocComment(rawComment, declaringClassName, methodName string, declaringFileName signature.Optional[string]) (signature.ResolvedDoc, error) {
	ctx, err := p.context(declaringClassName, methodName, declaringFileName)
	if err != nil {
		return signature.ResolvedDoc{}, err
	}
	return Extract(Parse(rawComment), ctx), nil
}

func (p *Parser) context(className, methodName string, fileName signature.Optional[string]) (Context, error) {
	if p.locator == nil {
		return ContextForClass(className), nil
	}

	ctx, located, ok := p.locator.LocateClass(className)
	if !ok {
		log.Debugf("no context for %s#%s", className, methodName)
		return Context{}, &signature.UnresolvableDocBlockError{
			ClassName:  className,
			MethodName: methodName,
			FileName:   fileName,
			Reason:     "declaring class not found",
		}
	}
	if file, given := fileName.Get(); given && file != "" && !SameFile(file, located) {
		log.Debugf("%s#%s: %s does not declare the class, %s does", className, methodName, file, located)
		return Context{}, &signature.UnresolvableDocBlockError{
			ClassName:  className,
			MethodName: methodName,
			FileName:   fileName,
			Reason:     "class is declared in " + located,
		}
	}
	return ctx, nil
}

// SameFile reports whether a and b name the same file, allowing one to be a
// path relative to a source root, e.g. com/example/Repo.java against
// src/main/java/com/example/Repo.java.
func SameFile(a, b string) bool {
	a, b = filepath.ToSlash(filepath.Clean(a)), filepath.ToSlash(filepath.Clean(b))
	if a == b {
		return true
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	return strings.HasSuffix(b, "/"+a)
}
