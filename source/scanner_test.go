package source

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const repoSource = `package com.example;

import java.util.List;
import java.util.*;
import static java.util.Objects.requireNonNull;

/**
 * A repository.
 */
public final class Repo<E> {
    /**
     * Finds entries.
     *
     * @param {List<String>} names the names
     * @return {List<E>} matches
     */
    @Deprecated
    public List<E> find(List<String> names, int limit) throws java.io.IOException {
        return null;
    }

    // not a doc comment
    protected void plain(String... rest) {}

    /** Creates a repo. */
    public Repo() {}

    /** Maps values. */
    public static <K, V> java.util.Map<K, V> index(byte[] data, long[] offsets[]) {
        return null;
    }

    static class Entry {
        /** Key. */
        String key() { return null; }
    }

    interface Listener {
        /** Fired. */
        void fired(Entry e);
    }
}
`

func scan(t *testing.T, src string) *File {
	t.Helper()
	file, err := NewScanner().Scan(context.Background(), []byte(src), "src/com/example/Repo.java")
	require.NoError(t, err)
	return file
}

func TestScanPackageAndImports(t *testing.T) {
	file := scan(t, repoSource)

	assert.Equal(t, "src/com/example/Repo.java", file.Path)
	assert.Equal(t, "com.example", file.Package)
	assert.Len(t, file.Hash, 64)
	assert.False(t, file.HasErrors)
	assert.Equal(t, []Import{
		{Path: "java.util.List"},
		{Path: "java.util", Wildcard: true},
		{Path: "java.util.Objects.requireNonNull", Static: true},
	}, file.Imports)
}

func TestScanClasses(t *testing.T) {
	file := scan(t, repoSource)

	var names []string
	for _, c := range file.Classes {
		names = append(names, c.Kind+" "+c.Name)
	}
	assert.Equal(t, []string{
		"class com.example.Repo",
		"class com.example.Repo.Entry",
		"interface com.example.Repo.Listener",
	}, names)

	repo := file.Class("com.example.Repo")
	require.NotNil(t, repo)
	assert.True(t, repo.IsFinal())
	assert.Equal(t, "Repo", repo.SimpleName)
	assert.Equal(t, []string{"E"}, repo.TypeParameters)
	assert.Equal(t, 10, repo.Line)
	assert.Len(t, repo.Methods, 4)

	entry := file.Class("com.example.Repo.Entry")
	require.NotNil(t, entry)
	assert.False(t, entry.IsFinal())
	require.Len(t, entry.Methods, 1)
	assert.Equal(t, "/** Key. */", entry.Methods[0].DocComment)
}

func TestScanMethods(t *testing.T) {
	repo := scan(t, repoSource).Class("com.example.Repo")
	require.NotNil(t, repo)

	find := repo.MethodsNamed("find")
	require.Len(t, find, 1)
	m := find[0]
	assert.True(t, m.HasDocComment())
	assert.True(t, strings.Contains(m.DocComment, "@param {List<String>} names"))
	assert.Equal(t, []string{"public"}, m.Modifiers)
	assert.Equal(t, []string{"Deprecated"}, m.Annotations)
	assert.Equal(t, "List<E>", m.ReturnType)
	assert.Equal(t, []Parameter{{Name: "names", Type: "List<String>"}, {Name: "limit", Type: "int"}}, m.Parameters)
	assert.Equal(t, []string{"java.io.IOException"}, m.Throws)
	assert.True(t, m.Contains(m.StartLine))

	plain := repo.MethodsNamed("plain")[0]
	assert.Empty(t, plain.DocComment)
	assert.Equal(t, []Parameter{{Name: "rest", Type: "String..."}}, plain.Parameters)

	ctor := repo.MethodsNamed("Repo")[0]
	assert.True(t, ctor.IsConstructor)
	assert.Equal(t, "/** Creates a repo. */", ctor.DocComment)
	assert.Empty(t, ctor.ReturnType)

	index := repo.MethodsNamed("index")[0]
	assert.Equal(t, []string{"K", "V"}, index.TypeParameters)
	assert.Equal(t, []string{"public", "static"}, index.Modifiers)
	assert.Equal(t, []Parameter{{Name: "data", Type: "byte[]"}, {Name: "offsets", Type: "long[][]"}}, index.Parameters)
}

func TestScanToleratesSyntaxErrors(t *testing.T) {
	file := scan(t, "package p;\nclass A {\n  /** Doc. */\n  void ok() {}\n  void broken( {\n}\n")

	assert.True(t, file.HasErrors)
	assert.Equal(t, "p", file.Package)
}

func TestScanRejectsInvalidInput(t *testing.T) {
	s := NewScanner(WithMaxFileSize(16))

	_, err := s.Scan(context.Background(), []byte(strings.Repeat("x", 17)), "big.java")
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = s.Scan(context.Background(), []byte{0xff, 0xfe}, "bad.java")
	assert.ErrorIs(t, err, ErrInvalidContent)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Scan(ctx, []byte("class A {}"), "A.java")
	assert.ErrorIs(t, err, context.Canceled)
}
