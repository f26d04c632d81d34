// Package config loads docsig.yaml or docsig.toml project configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/docsig/java"
)

// FileNames are the configuration files Load looks for, in order.
var FileNames = []string{"docsig.yaml", "docsig.yml", "docsig.toml"}

type Config struct {
	Sources          []string `yaml:"sources" toml:"sources" validate:"min=1,dive,required"`
	InternalPackages []string `yaml:"internal_packages" toml:"internal_packages" validate:"dive,required"`
	Index            Index    `yaml:"index" toml:"index"`
	Output           Output   `yaml:"output" toml:"output"`
	Concurrency      int      `yaml:"concurrency" toml:"concurrency" validate:"min=1,max=256"`
	FailFast         bool     `yaml:"fail_fast" toml:"fail_fast"`
	Log              Log      `yaml:"log" toml:"log"`
	Metrics          Metrics  `yaml:"metrics" toml:"metrics"`

	// Dir is the directory relative paths are resolved against.
	Dir string `yaml:"-" toml:"-"`
	// File is the path the configuration was read from, empty for defaults.
	File string `yaml:"-" toml:"-"`
}

type Index struct {
	// Path is the badger directory; empty keeps the index in memory.
	Path string `yaml:"path" toml:"path"`
}

type Output struct {
	Format string `yaml:"format" toml:"format" validate:"oneof=line json yaml cbor"`
	Color  string `yaml:"color" toml:"color" validate:"oneof=auto always never"`
}

type Log struct {
	Verbosity int    `yaml:"verbosity" toml:"verbosity" validate:"min=0,max=5"`
	File      string `yaml:"file" toml:"file"`
}

type Metrics struct {
	Addr string `yaml:"addr" toml:"addr"`
}

func Default() Config {
	return Config{
		Sources:          []string{"."},
		InternalPackages: append([]string(nil), java.DefaultInternalPolicy.Prefixes...),
		Output: Output{
			Format: "line",
			Color:  "auto",
		},
		Concurrency: 8,
		Dir:         ".",
	}
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	// report yaml names so errors match what users write
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Load reads the first configuration file found in dir. A directory without
// one yields the defaults.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("cannot stat %s: %w", path, err)
		}
	}

	cfg := Default()
	cfg.Dir = dir
	return &cfg, nil
}

// LoadFile reads the configuration at path, choosing the syntax by
// extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("%s: unsupported configuration format", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	cfg.File = path
	cfg.Dir = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	return validate.Struct(c)
}

// SourcePaths returns the source roots resolved against Dir.
func (c *Config) SourcePaths() []string {
	paths := make([]string, len(c.Sources))
	for i, s := range c.Sources {
		paths[i] = c.resolve(s)
	}
	return paths
}

// IndexPath returns the badger directory resolved against Dir, or "" for an
// in-memory index.
func (c *Config) IndexPath() string {
	if c.Index.Path == "" {
		return ""
	}
	return c.resolve(c.Index.Path)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}

func (c *Config) Policy() java.InternalPolicy {
	return java.InternalPolicy{Prefixes: c.InternalPackages}
}
