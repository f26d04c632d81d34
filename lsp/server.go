// Package lsp serves resolved method signatures to editors: hover shows the
// reconciled signature and diagnostics flag unresolvable or deprecated
// documentation.
package lsp

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/docsig/analysis"
	"github.com/dhamidi/docsig/index"
	"github.com/dhamidi/docsig/java"
	"github.com/dhamidi/docsig/metrics"
	"github.com/dhamidi/docsig/project"
	"github.com/dhamidi/docsig/source"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "docsig"

var log = commonlog.GetLogger("docsig.lsp")

// Options configure a Server. Sources, when empty, are detected from the
// workspace root.
type Options struct {
	Sources     []string
	Policy      java.InternalPolicy
	Store       *index.Store
	Metrics     *metrics.Metrics
	Concurrency int
}

type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string
	opts    Options

	mu       sync.Mutex
	builder  *index.Builder
	analyzer *analysis.Analyzer
	docs     map[string]*document
}

// document is an open editor buffer and what was resolved from it.
type document struct {
	content []byte
	file    *source.File
	results []analysis.Result
}

func NewServer(version string, opts Options) *Server {
	s := &Server{
		version: version,
		opts:    opts,
		docs:    map[string]*document{},
	}

	s.handler = protocol.Handler{
		Initialize:            s.initialize,
		Initialized:           s.initialized,
		Shutdown:              s.shutdown,
		SetTrace:              s.setTrace,
		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentHover:     s.textDocumentHover,
	}

	s.server = server.NewServer(&s.handler, lsName, false)
	return s
}

func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

// Open indexes the sources of the workspace at rootDir.
func (s *Server) Open(ctx context.Context, rootDir string) error {
	roots := s.opts.Sources
	if len(roots) == 0 {
		proj, err := project.Detect(rootDir)
		if err != nil {
			return err
		}
		roots = proj.SourceRoots()
		log.Infof("detected %s layout with %d source roots", proj.Layout, len(roots))
	}

	ix := index.New(s.opts.Policy)
	b := index.NewBuilder(ix)
	b.Store = s.opts.Store
	b.Metrics = s.opts.Metrics
	if s.opts.Concurrency > 0 {
		b.Concurrency = s.opts.Concurrency
	}
	if err := b.Build(ctx, roots...); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.builder = b
	s.analyzer = &analysis.Analyzer{
		Index:       ix,
		Policy:      s.opts.Policy,
		Concurrency: s.opts.Concurrency,
		Metrics:     s.opts.Metrics,
	}
	return nil
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := getRootDir()
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	if err := s.Open(context.Background(), rootDir); err != nil {
		return nil, err
	}

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.refresh(ctx, params.TextDocument.URI, []byte(params.TextDocument.Text))
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		s.refresh(ctx, params.TextDocument.URI, []byte(whole.Text))
	}
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI
	if params.Text != nil {
		s.refresh(ctx, uri, []byte(*params.Text))
		return nil
	}
	path, err := uriToPath(uri)
	if err != nil {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		log.Warningf("reading saved %s: %s", path, err)
		return nil
	}
	s.refresh(ctx, uri, content)
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	delete(s.docs, path)
	s.mu.Unlock()

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	r, ok := s.ResultAt(path, int(params.Position.Line)+1)
	if !ok {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: HoverMarkdown(r),
		},
	}, nil
}

// refresh re-indexes the buffer at uri and publishes its diagnostics.
func (s *Server) refresh(ctx *glsp.Context, uri protocol.DocumentUri, content []byte) {
	path, err := uriToPath(uri)
	if err != nil {
		return
	}
	results, err := s.Update(context.Background(), path, content)
	if err != nil {
		log.Warningf("%s: %s", path, err)
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: Diagnostics(results, content),
	})
}

// Update indexes content as the file at path and resolves its methods.
func (s *Server) Update(ctx context.Context, path string, content []byte) ([]analysis.Result, error) {
	s.mu.Lock()
	b, a := s.builder, s.analyzer
	s.mu.Unlock()
	if b == nil {
		return nil, errNotInitialized
	}

	file, err := b.AddContent(ctx, path, content)
	if err != nil {
		return nil, err
	}

	var methods []java.Method
	for _, m := range java.MethodsFromSource(file, s.opts.Policy) {
		methods = append(methods, m)
	}
	results, err := a.Resolve(ctx, methods)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.docs[path] = &document{content: content, file: file, results: results}
	s.mu.Unlock()
	return results, nil
}

// ResultAt returns the resolution of the innermost method declared around
// the 1-based line of an open document.
func (s *Server) ResultAt(path string, line int) (analysis.Result, bool) {
	s.mu.Lock()
	doc, ok := s.docs[path]
	s.mu.Unlock()
	if !ok {
		return analysis.Result{}, false
	}

	var best *source.Method
	var bestClass string
	for i := range doc.file.Classes {
		class := &doc.file.Classes[i]
		for j := range class.Methods {
			m := &class.Methods[j]
			if !m.Contains(line) {
				continue
			}
			if best == nil || m.EndLine-m.StartLine < best.EndLine-best.StartLine {
				best, bestClass = m, class.Name
			}
		}
	}
	if best == nil {
		return analysis.Result{}, false
	}

	for _, r := range doc.results {
		if r.Class == bestClass && r.Method == best.Name && r.Line == best.StartLine {
			return r, true
		}
	}
	return analysis.Result{}, false
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}

func getRootDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}
