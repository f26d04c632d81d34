package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{dir}, cfg.SourcePaths())
	assert.Equal(t, "line", cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Empty(t, cfg.File)
	assert.Empty(t, cfg.IndexPath())
	assert.True(t, cfg.Policy().IsInternalClass("sun.misc.Unsafe"))
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	dir := writeConfig(t, "docsig.yaml", `
sources:
  - src/main/java
  - /opt/shared/src
internal_packages:
  - com.example.internal.
index:
  path: .docsig/index
output:
  format: json
  color: never
concurrency: 4
fail_fast: true
log:
  verbosity: 2
  file: docsig.log
metrics:
  addr: ":9464"
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "docsig.yaml"), cfg.File)
	assert.Equal(t, []string{filepath.Join(dir, "src/main/java"), "/opt/shared/src"}, cfg.SourcePaths())
	assert.Equal(t, filepath.Join(dir, ".docsig/index"), cfg.IndexPath())
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "never", cfg.Output.Color)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.True(t, cfg.FailFast)
	assert.Equal(t, 2, cfg.Log.Verbosity)
	assert.Equal(t, "docsig.log", cfg.Log.File)
	assert.Equal(t, ":9464", cfg.Metrics.Addr)

	policy := cfg.Policy()
	assert.True(t, policy.IsInternalClass("com.example.internal.Cache"))
	assert.False(t, policy.IsInternalClass("sun.misc.Unsafe"), "configured prefixes replace the defaults")
}

func TestLoadTOML(t *testing.T) {
	dir := writeConfig(t, "docsig.toml", `
sources = ["src"]
concurrency = 16

[output]
format = "cbor"
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "src")}, cfg.SourcePaths())
	assert.Equal(t, 16, cfg.Concurrency)
	assert.Equal(t, "cbor", cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Output.Color, "unset keys keep their defaults")
}

func TestLoadPrefersYAML(t *testing.T) {
	dir := writeConfig(t, "docsig.yaml", "concurrency: 2\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docsig.toml"), []byte("concurrency = 3\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		field   string
	}{
		{"format", "docsig.yaml", "output:\n  format: xml\n", "format"},
		{"color", "docsig.yaml", "output:\n  color: sometimes\n", "color"},
		{"concurrency", "docsig.toml", "concurrency = 0\n", "concurrency"},
		{"too many workers", "docsig.yaml", "concurrency: 1000\n", "concurrency"},
		{"verbosity", "docsig.yaml", "log:\n  verbosity: 9\n", "verbosity"},
		{"no sources", "docsig.yaml", "sources: []\n", "sources"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfig(t, tt.file, tt.content)

			_, err := Load(dir)
			require.Error(t, err)

			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}
}

func TestLoadSyntaxError(t *testing.T) {
	dir := writeConfig(t, "docsig.toml", "concurrency = [\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse error")
}
