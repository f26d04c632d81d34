package analysis

import (
	"archive/zip"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/docsig/classfile"
	"github.com/dhamidi/docsig/java"
	"github.com/dhamidi/docsig/source"
)

// InputKind classifies an analysis input by its file name.
type InputKind int

const (
	InputUnknown InputKind = iota
	InputClass
	InputArchive
	InputSource
)

func (k InputKind) String() string {
	switch k {
	case InputClass:
		return "class"
	case InputArchive:
		return "archive"
	case InputSource:
		return "source"
	}
	return "unknown"
}

func KindOf(path string) InputKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".class":
		return InputClass
	case ".jar", ".zip":
		return InputArchive
	case ".java":
		return InputSource
	}
	return InputUnknown
}

// Inputs expands paths into analysable files. Directories are walked for
// class and source files; hidden directories are skipped. Named files of an
// unknown kind are an error.
func Inputs(paths []string) ([]string, error) {
	var out []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("input: %w", err)
		}
		if !info.IsDir() {
			if KindOf(path) == InputUnknown {
				return nil, fmt.Errorf("input %s: %w", path, ErrUnsupportedInput)
			}
			out = append(out, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != path && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if k := KindOf(p); k == InputClass || k == InputSource {
				out = append(out, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}
	return out, nil
}

// methods enumerates the method variants found in one input.
func (a *Analyzer) methods(ctx context.Context, path string) ([]java.Method, error) {
	switch KindOf(path) {
	case InputClass:
		cf, err := classfile.ParseFile(path)
		if err != nil {
			return nil, err
		}
		return a.classMethods(cf), nil
	case InputArchive:
		return a.archiveMethods(path)
	case InputSource:
		return a.sourceMethods(ctx, path)
	}
	return nil, fmt.Errorf("input %s: %w", path, ErrUnsupportedInput)
}

func (a *Analyzer) classMethods(cf *classfile.ClassFile) []java.Method {
	var out []java.Method
	for _, m := range java.MethodsFromClassFile(cf, a.Policy) {
		out = append(out, a.decorate(m))
	}
	return out
}

// decorate attaches the Javadoc of the matching source declaration, if the
// index knows one.
func (a *Analyzer) decorate(m *java.ClassMethod) java.Method {
	if a.Index == nil {
		return m
	}
	return java.Decorate(m, a.Index.Lookup(m.DeclaringClassName(), m.Name()))
}

func (a *Analyzer) archiveMethods(path string) ([]java.Method, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer r.Close()

	var out []java.Method
	for _, entry := range r.File {
		if !isClassEntry(entry.Name) {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("%s!%s: %w", path, entry.Name, err)
		}
		cf, err := classfile.Parse(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%s!%s: %w", path, entry.Name, err)
		}
		out = append(out, a.classMethods(cf)...)
	}
	log.Debugf("%s: %d methods", path, len(out))
	return out, nil
}

func isClassEntry(name string) bool {
	if !strings.HasSuffix(name, ".class") {
		return false
	}
	base := filepath.Base(name)
	return base != "module-info.class" && base != "package-info.class" &&
		!strings.HasPrefix(name, "META-INF/")
}

func (a *Analyzer) sourceMethods(ctx context.Context, path string) ([]java.Method, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	scanner := a.Scanner
	if scanner == nil {
		scanner = source.NewScanner()
	}
	file, err := scanner.Scan(ctx, content, path)
	if err != nil {
		return nil, err
	}
	if a.Index != nil {
		a.Index.Add(file)
	}

	var out []java.Method
	for _, m := range java.MethodsFromSource(file, a.Policy) {
		out = append(out, m)
	}
	return out, nil
}
