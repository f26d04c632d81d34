package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/docsig/analysis"
	"github.com/dhamidi/docsig/java"
	"github.com/dhamidi/docsig/signature"
)

func sampleResults() []analysis.Result {
	str := signature.Named("java.lang.String")
	return []analysis.Result{
		{
			Class:      "com.example.Repo",
			Method:     "find",
			Descriptor: "(Ljava/lang/String;I)Ljava/util/List;",
			Signature:  "public java.util.List find(java.lang.String query, int limit)",
			File:       "src/com/example/Repo.java",
			Documented: true,
			Parameters: []java.Parameter{
				{Name: "query", Type: str},
				{Name: "limit", Type: signature.Named("int"), Index: 1},
			},
			Spec: signature.MethodSignatureSpec{
				ParameterTypes: map[string]signature.Type{
					"query": signature.Named("java.lang.CharSequence"),
					"extra": signature.Named("long"),
				},
				ReturnType: signature.Some(signature.Type{Name: "java.util.List", Arguments: []signature.Type{signature.Named("E")}}),
				ThrowType:  signature.Some(signature.Union(signature.Named("java.io.IOException"), signature.Named("java.lang.IllegalStateException"))),
			},
		},
		{
			Class:      "com.example.Repo",
			Method:     "lookup",
			Signature:  "public void lookup(java.lang.String key)",
			Line:       18,
			Documented: true,
			Spec: signature.MethodSignatureSpec{
				ParameterTypes:     map[string]signature.Type{},
				IsDeprecated:       true,
				DeprecationMessage: signature.Some(""),
				IsFinal:            true,
			},
		},
		{
			Class:      "com.example.Repo",
			Method:     "moved",
			Documented: true,
			Err: &signature.UnresolvableDocBlockError{
				ClassName:  "com.example.Repo",
				MethodName: "moved",
				Reason:     "declaring class not found",
			},
		},
	}
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument(sampleResults())
	require.Len(t, doc.Methods, 3)

	find := doc.Methods[0]
	assert.Equal(t, map[string]string{
		"query": "java.lang.CharSequence",
		"extra": "long",
	}, find.ParameterTypes)
	require.NotNil(t, find.ReturnType)
	assert.Equal(t, "java.util.List<E>", *find.ReturnType)
	require.NotNil(t, find.ThrowType)
	assert.Equal(t, "java.io.IOException|java.lang.IllegalStateException", *find.ThrowType)
	assert.Nil(t, find.DeprecationMessage)

	lookup := doc.Methods[1]
	assert.Nil(t, lookup.ParameterTypes)
	assert.Nil(t, lookup.ReturnType)
	require.NotNil(t, lookup.DeprecationMessage, "empty message is still present")
	assert.Equal(t, "", *lookup.DeprecationMessage)
	assert.True(t, lookup.Deprecated)
	assert.True(t, lookup.Final)

	moved := doc.Methods[2]
	assert.True(t, moved.Unresolvable)
	assert.Contains(t, moved.Error, "com.example.Repo")
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONEncoder(&buf).Encode(sampleResults()))

	var raw struct {
		Methods []map[string]any `json:"methods"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	require.Len(t, raw.Methods, 3)

	assert.NotContains(t, raw.Methods[0], "deprecationMessage")
	assert.Equal(t, "", raw.Methods[1]["deprecationMessage"])
	assert.NotContains(t, raw.Methods[1], "returnType")
	assert.Equal(t, true, raw.Methods[2]["unresolvable"])
}

func TestYAMLEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLEncoder(&buf).Encode(sampleResults()))

	var doc Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, NewDocument(sampleResults()), doc)
}

func TestCBOREncoderIsDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, NewCBOREncoder(&a).Encode(sampleResults()))
	require.NoError(t, NewCBOREncoder(&b).Encode(sampleResults()))
	assert.Equal(t, a.Bytes(), b.Bytes())

	var doc Document
	require.NoError(t, cbor.Unmarshal(a.Bytes(), &doc))
	assert.Equal(t, NewDocument(sampleResults()), doc)
}

func TestLineEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewLineEncoder(&buf, false).Encode(sampleResults()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, strings.Join([]string{
		"com.example.Repo#find",
		"public java.util.List find(java.lang.String query, int limit)",
		"query:java.lang.CharSequence,extra:long",
		"java.util.List<E>",
		"java.io.IOException|java.lang.IllegalStateException",
		"-",
		"-",
	}, "\t"), lines[0])
	assert.Equal(t, "com.example.Repo#lookup\tpublic void lookup(java.lang.String key)\t-\t-\t-\tdeprecated,final\t-", lines[1])

	fields := strings.Split(lines[2], "\t")
	require.Len(t, fields, 7)
	assert.Equal(t, "com.example.Repo#moved", fields[0])
	assert.Equal(t, "unresolvable", fields[5])
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestDeclaredInformation(t *testing.T) {
	results := []analysis.Result{
		{
			Class:      "com.example.Store",
			Method:     "open",
			Signature:  "public void open()",
			Throws:     []string{"java.io.IOException", "java.sql.SQLException"},
			Deprecated: true,
			Spec:       signature.MethodSignatureSpec{ParameterTypes: map[string]signature.Type{}},
		},
		{
			Class:      "com.example.Store",
			Method:     "close",
			Signature:  "public void close()",
			Throws:     []string{"java.io.IOException"},
			Doc:        "/**\n * Closes the {@code Store}.\n * @throws {IllegalStateException} twice\n */",
			Documented: true,
			Spec: signature.MethodSignatureSpec{
				ParameterTypes: map[string]signature.Type{},
				ThrowType:      signature.Some(signature.Named("java.lang.IllegalStateException")),
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewLineEncoder(&buf, false).Encode(results))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "com.example.Store#open\tpublic void open()\t-\t-\t(java.io.IOException|java.sql.SQLException)\tdeclared-deprecated\t-", lines[0])
	assert.Equal(t, "java.lang.IllegalStateException", strings.Split(lines[1], "\t")[4])

	doc := NewDocument(results)
	assert.Equal(t, []string{"java.io.IOException", "java.sql.SQLException"}, doc.Methods[0].DeclaredThrows)
	assert.True(t, doc.Methods[0].DeclaredDeprecated)
	assert.False(t, doc.Methods[0].Deprecated)
	assert.Empty(t, doc.Methods[0].Description)
	assert.Equal(t, "Closes the Store.", doc.Methods[1].Description)
}

func TestLineEncoderColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewLineEncoder(&buf, true).Encode(sampleResults()))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "deprecated")
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	for _, name := range Names {
		enc, err := New(name, &buf, ColorAuto)
		require.NoError(t, err, name)
		assert.NotNil(t, enc)
	}

	_, err := New("xml", &buf, ColorAuto)
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, UseColor(&buf, ColorAlways))
	assert.False(t, UseColor(&buf, ColorNever))
	assert.False(t, UseColor(&buf, ColorAuto), "buffers are not terminals")
}
