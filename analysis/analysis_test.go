package analysis

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/docsig/classfile"
	"github.com/dhamidi/docsig/classfile/classfiletest"
	"github.com/dhamidi/docsig/index"
	"github.com/dhamidi/docsig/java"
	"github.com/dhamidi/docsig/metrics"
	"github.com/dhamidi/docsig/signature"
)

const repoSource = `package com.example;

import java.io.IOException;
import java.util.List;

public class Repo<E> {
    /**
     * Finds by query.
     * @param {CharSequence} query the query
     * @return {List<E>} matches
     * @throws IOException when the store is gone
     */
    public List<E> find(String query, int limit) throws IOException { return null; }

    /**
     * Looks up a key.
     * @deprecated use find instead
     */
    public void lookup(String key) {}

    public final void close() {}
}
`

func repoClassBytes() []byte {
	return classfiletest.New("com/example/Repo").
		SourceFile("Repo.java").
		Method(classfiletest.Method{Access: classfile.AccPublic, Name: "<init>", Descriptor: "()V"}).
		Method(classfiletest.Method{
			Access:         classfile.AccPublic,
			Name:           "find",
			Descriptor:     "(Ljava/lang/String;I)Ljava/util/List;",
			ParameterNames: []string{"query", "limit"},
			Exceptions:     []string{"java/io/IOException"},
		}).
		Method(classfiletest.Method{
			Access:         classfile.AccPublic,
			Name:           "lookup",
			Descriptor:     "(Ljava/lang/String;)V",
			ParameterNames: []string{"key"},
			Deprecated:     true,
		}).
		Method(classfiletest.Method{Access: classfile.AccPublic | classfile.AccFinal, Name: "close", Descriptor: "()V"}).
		Bytes()
}

type project struct {
	sources  string
	source   string
	class    string
	archive  string
	index    *index.Index
	analyzer *Analyzer
}

func newProject(t *testing.T) *project {
	t.Helper()
	root := t.TempDir()
	p := &project{
		sources: filepath.Join(root, "src"),
		source:  filepath.Join(root, "src", "com", "example", "Repo.java"),
		class:   filepath.Join(root, "classes", "com", "example", "Repo.class"),
		archive: filepath.Join(root, "repo.jar"),
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(p.source), 0o755))
	require.NoError(t, os.WriteFile(p.source, []byte(repoSource), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Dir(p.class), 0o755))
	require.NoError(t, os.WriteFile(p.class, repoClassBytes(), 0o644))
	writeJar(t, p.archive, map[string][]byte{
		"META-INF/MANIFEST.MF":   []byte("Manifest-Version: 1.0\n"),
		"module-info.class":      []byte("not parsed"),
		"com/example/Repo.class": repoClassBytes(),
		"com/example/readme.txt": []byte("hello"),
	})

	p.index = index.New(java.DefaultInternalPolicy)
	p.analyzer = &Analyzer{
		Index:       p.index,
		Policy:      java.DefaultInternalPolicy,
		Concurrency: 2,
		Metrics:     metrics.New(),
	}
	return p
}

func (p *project) buildIndex(t *testing.T) {
	t.Helper()
	require.NoError(t, index.NewBuilder(p.index).Build(context.Background(), p.sources))
}

func writeJar(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, data := range entries {
		ew, err := w.Create(name)
		require.NoError(t, err)
		_, err = ew.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func methodNames(results []Result) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Method
	}
	return names
}

func find(t *testing.T, results []Result, method string) Result {
	t.Helper()
	for _, r := range results {
		if r.Method == method {
			return r
		}
	}
	t.Fatalf("no result for %s", method)
	return Result{}
}

func TestAnalyzeClassFileWithSourceDocs(t *testing.T) {
	p := newProject(t)
	p.buildIndex(t)

	results, err := p.analyzer.Analyze(context.Background(), []string{p.class})
	require.NoError(t, err)
	assert.Equal(t, []string{"Repo", "close", "find", "lookup"}, methodNames(results))

	f := find(t, results, "find")
	require.NoError(t, f.Err)
	assert.True(t, f.Documented)
	assert.Equal(t, p.source, f.File)
	assert.Equal(t, "(Ljava/lang/String;I)Ljava/util/List;", f.Descriptor)
	assert.Equal(t, "public java.util.List find(java.lang.String query, int limit)", f.Signature)
	require.Contains(t, f.Spec.ParameterTypes, "query")
	assert.Equal(t, "java.lang.CharSequence", f.Spec.ParameterTypes["query"].String())
	assert.NotContains(t, f.Spec.ParameterTypes, "limit")
	assert.Equal(t, "java.util.List<E>", f.Spec.ReturnType.MustGet().String())
	assert.Equal(t, "java.io.IOException", f.Spec.ThrowType.MustGet().String())
	assert.Equal(t, []string{"java.io.IOException"}, f.Throws)
	assert.Contains(t, f.Doc, "Finds by query.")

	l := find(t, results, "lookup")
	require.NoError(t, l.Err)
	assert.True(t, l.Deprecated, "Deprecated attribute")
	assert.True(t, l.Spec.IsDeprecated)
	assert.Equal(t, "use find instead", l.Spec.DeprecationMessage.MustGet())

	c := find(t, results, "close")
	require.NoError(t, c.Err)
	assert.False(t, c.Documented)
	assert.True(t, c.Spec.IsFinal)
	assert.Empty(t, c.Spec.ParameterTypes)

	expected := `
# HELP docsig_resolutions_total Method signature resolutions by outcome
# TYPE docsig_resolutions_total counter
docsig_resolutions_total{outcome="native_only"} 2
docsig_resolutions_total{outcome="resolved"} 2
# HELP docsig_documented_parameters_total Parameters whose type came from documentation
# TYPE docsig_documented_parameters_total counter
docsig_documented_parameters_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(p.analyzer.Metrics.Registry(), strings.NewReader(expected),
		"docsig_resolutions_total", "docsig_documented_parameters_total"))
}

func TestAnalyzeClassFileWithoutIndex(t *testing.T) {
	p := newProject(t)
	p.analyzer.Index = nil

	results, err := p.analyzer.Analyze(context.Background(), []string{p.class})
	require.NoError(t, err)
	for _, r := range results {
		assert.False(t, r.Documented, r.Method)
		assert.NoError(t, r.Err)
	}
	assert.Equal(t, "com/example/Repo.java", find(t, results, "find").File)
}

func TestAnalyzeArchive(t *testing.T) {
	p := newProject(t)
	p.buildIndex(t)

	results, err := p.analyzer.Analyze(context.Background(), []string{p.archive})
	require.NoError(t, err)
	assert.Equal(t, []string{"Repo", "close", "find", "lookup"}, methodNames(results))
	assert.True(t, find(t, results, "find").Documented)
}

func TestAnalyzeSource(t *testing.T) {
	p := newProject(t)

	results, err := p.analyzer.Analyze(context.Background(), []string{p.source})
	require.NoError(t, err)
	assert.Equal(t, []string{"close", "find", "lookup"}, methodNames(results))
	assert.Contains(t, p.index.Classes(), "com.example.Repo")

	f := find(t, results, "find")
	require.NoError(t, f.Err)
	assert.Equal(t, 13, f.Line)
	assert.Empty(t, f.Descriptor)
	assert.Equal(t, "java.lang.CharSequence", f.Spec.ParameterTypes["query"].String())
}

func TestAnalyzeDirectorySourcesFirst(t *testing.T) {
	p := newProject(t)

	// the class file sorts before the source, but must see its docs
	results, err := p.analyzer.Analyze(context.Background(), []string{filepath.Dir(p.class), p.sources})
	require.NoError(t, err)

	var documented int
	for _, r := range results {
		if r.Descriptor != "" && r.Documented {
			documented++
		}
	}
	assert.Equal(t, 2, documented)
}

func TestAnalyzeUnsupportedInput(t *testing.T) {
	p := newProject(t)
	readme := filepath.Join(filepath.Dir(p.archive), "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("# repo\n"), 0o644))

	_, err := p.analyzer.Analyze(context.Background(), []string{readme})
	assert.ErrorIs(t, err, ErrUnsupportedInput)

	_, err = p.analyzer.Analyze(context.Background(), []string{filepath.Join(filepath.Dir(p.archive), "missing.class")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func movedMethods(t *testing.T, p *project) []java.Method {
	t.Helper()
	cf, err := classfile.ParseFile(p.class)
	require.NoError(t, err)

	var out []java.Method
	for _, m := range java.MethodsFromClassFile(cf, java.DefaultInternalPolicy) {
		if m.Name() == "find" {
			out = append(out, &java.Documented{Method: m, Doc: "/** @param {String} query q */", File: "old/Repo.java"})
			continue
		}
		out = append(out, m)
	}
	return out
}

func TestResolveUnresolvableIsDegraded(t *testing.T) {
	p := newProject(t)
	p.buildIndex(t)

	results, err := p.analyzer.Resolve(context.Background(), movedMethods(t, p))
	require.NoError(t, err)
	require.Len(t, results, 4)

	f := find(t, results, "find")
	assert.True(t, f.Unresolvable())
	var unresolvable *signature.UnresolvableDocBlockError
	require.True(t, errors.As(f.Err, &unresolvable))
	assert.Equal(t, "com.example.Repo", unresolvable.ClassName)

	assert.NoError(t, find(t, results, "close").Err)
}

func TestResolveFailFast(t *testing.T) {
	p := newProject(t)
	p.buildIndex(t)
	p.analyzer.FailFast = true

	results, err := p.analyzer.Resolve(context.Background(), movedMethods(t, p))
	assert.ErrorIs(t, err, signature.ErrUnresolvableDocBlock)
	assert.Nil(t, results)
}

func TestResolveNativeFallback(t *testing.T) {
	p := newProject(t)
	p.buildIndex(t)
	p.analyzer.NativeFallback = true

	results, err := p.analyzer.Analyze(context.Background(), []string{p.class})
	require.NoError(t, err)

	f := find(t, results, "find")
	assert.Equal(t, "java.lang.CharSequence", f.Spec.ParameterTypes["query"].String())
	assert.Equal(t, "int", f.Spec.ParameterTypes["limit"].String())
}

func TestNativeParameterFallback(t *testing.T) {
	spec := signature.MethodSignatureSpec{
		ParameterTypes: map[string]signature.Type{"a": signature.Named("java.lang.CharSequence")},
	}
	params := []java.Parameter{
		{Name: "a", Type: signature.Named("java.lang.String")},
		{Name: "b", Type: signature.Named("int"), Index: 1},
		{Type: signature.Named("long"), Index: 2},
	}

	got := NativeParameterFallback(spec, params)

	assert.Equal(t, map[string]signature.Type{
		"a": signature.Named("java.lang.CharSequence"),
		"b": signature.Named("int"),
	}, got)
	assert.Len(t, spec.ParameterTypes, 1, "input spec is not modified")
}

func TestKindOf(t *testing.T) {
	tests := map[string]InputKind{
		"Repo.class":   InputClass,
		"lib.JAR":      InputArchive,
		"src.zip":      InputArchive,
		"Repo.java":    InputSource,
		"README.md":    InputUnknown,
		"no-extension": InputUnknown,
	}
	for path, want := range tests {
		if got := KindOf(path); got != want {
			t.Errorf("KindOf(%q) = %s, want %s", path, got, want)
		}
	}
}
