package java

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/docsig/classfile"
	"github.com/dhamidi/docsig/classfile/classfiletest"
	"github.com/dhamidi/docsig/javadoc"
	"github.com/dhamidi/docsig/signature"
	"github.com/dhamidi/docsig/source"
)

const repoSource = `package com.example;

import java.util.List;

public class Repo<E> {
    /**
     * Finds by query.
     * @param {CharSequence} query the query
     * @return {List<E>} matches
     */
    public List<E> find(String query, int limit) { return null; }

    /**
     * Finds by several queries.
     * @param {List<String>} queries the queries
     */
    public List<E> find(List<String> queries) { return null; }

    /**
     * Adds one.
     * @final
     */
    public void add(E item) {}

    public final void close() {}
}
`

func repoClass(t *testing.T) *classfile.ClassFile {
	t.Helper()
	data := classfiletest.New("com/example/Repo").
		SourceFile("Repo.java").
		Method(classfiletest.Method{Access: classfile.AccPublic, Name: "<init>", Descriptor: "()V"}).
		Method(classfiletest.Method{Access: classfile.AccStatic, Name: "<clinit>", Descriptor: "()V"}).
		Method(classfiletest.Method{
			Access:         classfile.AccPublic,
			Name:           "find",
			Descriptor:     "(Ljava/lang/String;I)Ljava/util/List;",
			ParameterNames: []string{"query", "limit"},
		}).
		Method(classfiletest.Method{
			Access:         classfile.AccPublic,
			Name:           "find",
			Descriptor:     "(Ljava/util/List;)Ljava/util/List;",
			ParameterNames: []string{"queries"},
		}).
		Method(classfiletest.Method{
			Access:         classfile.AccPublic,
			Name:           "add",
			Descriptor:     "(Ljava/lang/Object;)V",
			ParameterNames: []string{"item"},
		}).
		Method(classfiletest.Method{Access: classfile.AccPublic | classfile.AccBridge | classfile.AccSynthetic, Name: "add", Descriptor: "(Ljava/lang/String;)V"}).
		Method(classfiletest.Method{Access: classfile.AccPublic | classfile.AccFinal, Name: "close", Descriptor: "()V"}).
		Method(classfiletest.Method{Access: classfile.AccPrivate | classfile.AccStatic, Name: "lambda$find$0", Descriptor: "(Ljava/lang/Object;)Z", Synthetic: true}).
		Bytes()

	cf, err := classfile.Parse(bytes.NewReader(data))
	require.NoError(t, err)
	return cf
}

func repoFile(t *testing.T) *source.File {
	t.Helper()
	file, err := source.NewScanner().Scan(context.Background(), []byte(repoSource), "src/com/example/Repo.java")
	require.NoError(t, err)
	return file
}

type locatorFunc func(string) (javadoc.Context, string, bool)

func (f locatorFunc) LocateClass(name string) (javadoc.Context, string, bool) { return f(name) }

func fileLocator(file *source.File) javadoc.Locator {
	return locatorFunc(func(name string) (javadoc.Context, string, bool) {
		class := file.Class(name)
		if class == nil {
			return javadoc.Context{}, "", false
		}
		return ContextFor(file, class), file.Path, true
	})
}

func classMethod(t *testing.T, methods []*ClassMethod, name, descriptor string) *ClassMethod {
	t.Helper()
	for _, m := range methods {
		if m.Name() == name && m.Descriptor() == descriptor {
			return m
		}
	}
	t.Fatalf("no method %s%s", name, descriptor)
	return nil
}

func TestMethodsFromClassFile(t *testing.T) {
	methods := MethodsFromClassFile(repoClass(t), DefaultInternalPolicy)

	var names []string
	for _, m := range methods {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{"Repo", "find", "find", "add", "close", "lambda$find$0"}, names)
}

func TestClassMethod(t *testing.T) {
	methods := MethodsFromClassFile(repoClass(t), DefaultInternalPolicy)
	find := classMethod(t, methods, "find", "(Ljava/lang/String;I)Ljava/util/List;")

	assert.Equal(t, "com.example.Repo", find.DeclaringClassName())
	assert.Equal(t, signature.Some("com/example/Repo.java"), find.FileName())
	assert.False(t, find.DocComment().IsPresent())
	assert.False(t, find.IsInternal())
	assert.False(t, find.IsFinal())
	assert.Equal(t, "public java.util.List find(java.lang.String query, int limit)", Signature(find))

	ctor := classMethod(t, methods, "Repo", "()V")
	assert.True(t, ctor.IsConstructor())
	assert.Equal(t, "public Repo()", Signature(ctor))

	assert.True(t, classMethod(t, methods, "close", "()V").IsFinal())
	assert.True(t, classMethod(t, methods, "lambda$find$0", "(Ljava/lang/Object;)Z").IsInternal())

	info := signature.InfoOf(find)
	assert.False(t, info.HasDocComment)
	assert.Equal(t, "find", info.MethodName)
}

func TestClassMethodGenericSignature(t *testing.T) {
	data := classfiletest.New("com/example/Cache$Loader").
		Method(classfiletest.Method{
			Access:         classfile.AccPublic,
			Name:           "load",
			Descriptor:     "(Ljava/lang/Object;Ljava/util/Map;)Ljava/util/List;",
			Signature:      "(TK;Ljava/util/Map<TK;+Ljava/lang/Number;>;)Ljava/util/List<TV;>;",
			ParameterNames: []string{"key", "weights"},
		}).
		Method(classfiletest.Method{
			Access:         classfile.AccPublic,
			Name:           "<init>",
			Descriptor:     "(Lcom/example/Cache;Ljava/util/List;)V",
			Signature:      "(Ljava/util/List<TK;>;)V",
			ParameterNames: []string{"this$0", "keys"},
		}).
		Bytes()
	cf, err := classfile.Parse(bytes.NewReader(data))
	require.NoError(t, err)
	methods := MethodsFromClassFile(cf, DefaultInternalPolicy)

	load := classMethod(t, methods, "load", "(Ljava/lang/Object;Ljava/util/Map;)Ljava/util/List;")
	assert.Equal(t, "java.util.List<V>", load.ReturnType().String())
	params := load.Parameters()
	require.Len(t, params, 2)
	assert.Equal(t, "K", params[0].Type.String())
	assert.Equal(t, "java.util.Map<K, ? extends java.lang.Number>", params[1].Type.String())

	// the outer instance is missing from the signature, so the descriptor wins
	ctor := classMethod(t, methods, "Loader", "(Lcom/example/Cache;Ljava/util/List;)V")
	params = ctor.Parameters()
	require.Len(t, params, 2)
	assert.Equal(t, "com.example.Cache", params[0].Type.String())
	assert.Equal(t, "java.util.List", params[1].Type.String())
}

func TestInternalPolicy(t *testing.T) {
	policy := InternalPolicy{Prefixes: []string{"com.example."}}
	methods := MethodsFromClassFile(repoClass(t), policy)

	for _, m := range methods {
		assert.True(t, m.IsInternal(), m.Name())
	}
	assert.True(t, DefaultInternalPolicy.IsInternalClass("jdk.internal.misc.Unsafe"))
	assert.False(t, DefaultInternalPolicy.IsInternalClass("java.util.List"))
}

func TestSourceMethod(t *testing.T) {
	file := repoFile(t)
	methods := MethodsFromSource(file, DefaultInternalPolicy)
	require.Len(t, methods, 4)

	find := methods[0]
	assert.Equal(t, "com.example.Repo", find.DeclaringClassName())
	assert.Equal(t, signature.Some("src/com/example/Repo.java"), find.FileName())
	assert.True(t, find.DocComment().IsPresent())
	assert.Equal(t, "public java.util.List<E> find(java.lang.String query, int limit)", Signature(find))
	assert.Equal(t, 11, find.Line())

	closeMethod := methods[3]
	assert.False(t, closeMethod.DocComment().IsPresent())
	assert.True(t, closeMethod.IsFinal())
}

func TestDeclaredThrowsAndDeprecation(t *testing.T) {
	const src = `package com.example;

import java.io.IOException;

public class Store {
    @Deprecated
    public void open() throws IOException, StoreException {}

    @java.lang.Deprecated(forRemoval = true)
    public void reset() {}

    @Override
    public String toString() { return ""; }
}
`
	file, err := source.NewScanner().Scan(context.Background(), []byte(src), "src/com/example/Store.java")
	require.NoError(t, err)
	methods := MethodsFromSource(file, DefaultInternalPolicy)
	require.Len(t, methods, 3)

	open, reset, str := methods[0], methods[1], methods[2]
	assert.Equal(t, []string{"java.io.IOException", "com.example.StoreException"}, open.Exceptions())
	assert.True(t, open.IsDeprecated())
	assert.True(t, reset.IsDeprecated())
	assert.Nil(t, reset.Exceptions())
	assert.False(t, str.IsDeprecated())

	data := classfiletest.New("com/example/Store").
		Method(classfiletest.Method{
			Access:     classfile.AccPublic,
			Name:       "open",
			Descriptor: "()V",
			Exceptions: []string{"java/io/IOException", "com/example/StoreException"},
			Deprecated: true,
		}).
		Bytes()
	cf, err := classfile.Parse(bytes.NewReader(data))
	require.NoError(t, err)
	compiled := MethodsFromClassFile(cf, DefaultInternalPolicy)[0]
	assert.Equal(t, open.Exceptions(), compiled.Exceptions())
	assert.True(t, compiled.IsDeprecated())
}

func TestVarargsSignature(t *testing.T) {
	const src = `package com.example;

public class Log {
    public static void printf(String format, Object... args) {}
}
`
	file, err := source.NewScanner().Scan(context.Background(), []byte(src), "src/com/example/Log.java")
	require.NoError(t, err)
	printf := MethodsFromSource(file, DefaultInternalPolicy)[0]
	assert.Equal(t, "public static void printf(java.lang.String format, java.lang.Object... args)", Signature(printf))
	assert.Equal(t, 1, printf.Parameters()[1].Type.ArrayDepth)

	data := classfiletest.New("com/example/Log").
		Method(classfiletest.Method{
			Access:         classfile.AccPublic | classfile.AccStatic | classfile.AccVarargs,
			Name:           "printf",
			Descriptor:     "(Ljava/lang/String;[Ljava/lang/Object;)V",
			ParameterNames: []string{"format", "args"},
		}).
		Method(classfiletest.Method{
			Access:         classfile.AccPublic | classfile.AccStatic,
			Name:           "join",
			Descriptor:     "([Ljava/lang/String;)V",
			ParameterNames: []string{"parts"},
		}).
		Bytes()
	cf, err := classfile.Parse(bytes.NewReader(data))
	require.NoError(t, err)
	methods := MethodsFromClassFile(cf, DefaultInternalPolicy)
	assert.Equal(t, Signature(printf), Signature(methods[0]))
	assert.Equal(t, "public static void join(java.lang.String[] parts)", Signature(methods[1]))
}

func TestModuleInfoHasNoMethods(t *testing.T) {
	data := classfiletest.New("module-info").Access(classfile.AccModule).Bytes()
	cf, err := classfile.Parse(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, MethodsFromClassFile(cf, DefaultInternalPolicy))
}

func TestContextFor(t *testing.T) {
	file := repoFile(t)
	ctx := ContextFor(file, file.Class("com.example.Repo"))

	assert.Equal(t, "com.example", ctx.Package)
	assert.Equal(t, map[string]string{"List": "java.util.List"}, ctx.Imports)
	assert.Equal(t, []string{"E"}, ctx.TypeParameters)
	assert.Equal(t, "java.util.List", ctx.Qualify("List"))
}

func TestDecorateMatchesOverloads(t *testing.T) {
	classMethods := MethodsFromClassFile(repoClass(t), DefaultInternalPolicy)
	sources := MethodsFromSource(repoFile(t), DefaultInternalPolicy)

	byQuery := Decorate(classMethod(t, classMethods, "find", "(Ljava/lang/String;I)Ljava/util/List;"), sources)
	documented, ok := byQuery.(*Documented)
	require.True(t, ok)
	assert.Contains(t, documented.Doc, "Finds by query.")
	assert.Equal(t, signature.Some("src/com/example/Repo.java"), documented.FileName())
	assert.Equal(t, "(Ljava/lang/String;I)Ljava/util/List;", documented.Descriptor())

	byList := Decorate(classMethod(t, classMethods, "find", "(Ljava/util/List;)Ljava/util/List;"), sources)
	require.IsType(t, &Documented{}, byList)
	assert.Contains(t, byList.(*Documented).Doc, "several queries")

	add := Decorate(classMethod(t, classMethods, "add", "(Ljava/lang/Object;)V"), sources)
	require.IsType(t, &Documented{}, add)

	closeMethod := classMethod(t, classMethods, "close", "()V")
	assert.Same(t, closeMethod, Decorate(closeMethod, sources))
}

func TestDecorateLeavesUndocumentedOverloadAlone(t *testing.T) {
	const src = `package com.example;

public class Keys {
    /**
     * Finds by number.
     * @param {long} key the key
     * @deprecated use lookup
     */
    public void find(int key) {}

    public void find(String key) {}

    /** Stale. */
    public void remove(String key) {}
}
`
	file, err := source.NewScanner().Scan(context.Background(), []byte(src), "src/com/example/Keys.java")
	require.NoError(t, err)
	sources := MethodsFromSource(file, DefaultInternalPolicy)

	data := classfiletest.New("com/example/Keys").
		Method(classfiletest.Method{Access: classfile.AccPublic, Name: "find", Descriptor: "(I)V", ParameterNames: []string{"key"}}).
		Method(classfiletest.Method{Access: classfile.AccPublic, Name: "find", Descriptor: "(Ljava/lang/String;)V", ParameterNames: []string{"key"}}).
		Method(classfiletest.Method{Access: classfile.AccPublic, Name: "remove", Descriptor: "(J)V", ParameterNames: []string{"key"}}).
		Bytes()
	cf, err := classfile.Parse(bytes.NewReader(data))
	require.NoError(t, err)
	classMethods := MethodsFromClassFile(cf, DefaultInternalPolicy)
	parser := javadoc.NewParser(fileLocator(file))

	byInt := Decorate(classMethod(t, classMethods, "find", "(I)V"), sources)
	require.IsType(t, &Documented{}, byInt)
	spec, err := signature.ResolveMethod(byInt, parser)
	require.NoError(t, err)
	assert.True(t, spec.IsDeprecated)
	assert.Equal(t, "long", spec.ParameterTypes["key"].String())

	byString := classMethod(t, classMethods, "find", "(Ljava/lang/String;)V")
	assert.Same(t, byString, Decorate(byString, sources))
	spec, err = signature.ResolveMethod(Decorate(byString, sources), parser)
	require.NoError(t, err)
	assert.False(t, spec.IsDeprecated)
	assert.Empty(t, spec.ParameterTypes)

	// a single candidate with other parameter types is a different declaration
	remove := classMethod(t, classMethods, "remove", "(J)V")
	assert.Same(t, remove, Decorate(remove, sources))
}

func TestResolveDecoratedClassMethod(t *testing.T) {
	file := repoFile(t)
	parser := javadoc.NewParser(fileLocator(file))
	classMethods := MethodsFromClassFile(repoClass(t), DefaultInternalPolicy)
	sources := MethodsFromSource(file, DefaultInternalPolicy)

	m := Decorate(classMethod(t, classMethods, "find", "(Ljava/lang/String;I)Ljava/util/List;"), sources)
	spec, err := signature.ResolveMethod(m, parser)
	require.NoError(t, err)

	assert.Equal(t, "java.lang.CharSequence", spec.ParameterTypes["query"].String())
	assert.NotContains(t, spec.ParameterTypes, "limit")
	assert.Equal(t, "java.util.List<E>", spec.ReturnType.MustGet().String())

	add := Decorate(classMethod(t, classMethods, "add", "(Ljava/lang/Object;)V"), sources)
	spec, err = signature.ResolveMethod(add, parser)
	require.NoError(t, err)
	assert.True(t, spec.IsFinal)
}
