package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/docsig/metrics"
	"github.com/dhamidi/docsig/source"
)

const DefaultConcurrency = 8

// Builder fills an Index from Java source roots. Store and Metrics are
// optional.
type Builder struct {
	Index       *Index
	Scanner     *source.Scanner
	Store       *Store
	Metrics     *metrics.Metrics
	Concurrency int
}

func NewBuilder(ix *Index) *Builder {
	return &Builder{
		Index:       ix,
		Scanner:     source.NewScanner(),
		Concurrency: DefaultConcurrency,
	}
}

// Build scans every .java file below roots. Files that fail to scan are
// logged and skipped; only walk errors and cancellation stop the build.
func (b *Builder) Build(ctx context.Context, roots ...string) error {
	var paths []string
	for _, root := range roots {
		found, err := JavaFiles(root)
		if err != nil {
			return err
		}
		paths = append(paths, found...)
	}

	g, ctx := errgroup.WithContext(ctx)
	limit := b.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g.SetLimit(limit)

	for _, path := range paths {
		g.Go(func() error {
			if err := b.AddFile(ctx, path); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Warningf("skipping %s: %s", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Infof("indexed %d classes from %d files", len(b.Index.Classes()), len(paths))
	return nil
}

// JavaFiles lists the .java files below root, skipping hidden directories.
func JavaFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("source root: %w", err)
	}
	if !info.IsDir() {
		if isJavaFile(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isJavaFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return paths, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "."
}

func isJavaFile(path string) bool {
	return strings.HasSuffix(path, ".java")
}

func (b *Builder) AddFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}
	_, err = b.AddContent(ctx, path, content)
	return err
}

// AddContent indexes content as the file at path, reusing a stored scan
// when the content hash matches.
func (b *Builder) AddContent(ctx context.Context, path string, content []byte) (*source.File, error) {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	if b.Store != nil {
		file, ok, err := b.Store.Get(path, hash)
		if err != nil {
			log.Warningf("%s", err)
		} else if ok {
			b.Metrics.FileScanned(metrics.SourceCache)
			b.Index.Add(file)
			return file, nil
		}
	}

	scanner := b.Scanner
	if scanner == nil {
		scanner = source.NewScanner()
	}
	file, err := scanner.Scan(ctx, content, path)
	if err != nil {
		return nil, err
	}
	b.Metrics.FileScanned(metrics.SourceScan)
	if file.HasErrors {
		log.Debugf("%s has syntax errors, indexing partial result", path)
	}
	if b.Store != nil {
		if err := b.Store.Put(file); err != nil {
			log.Warningf("%s", err)
		}
	}
	b.Index.Add(file)
	return file, nil
}

// RemoveFile drops path from the index and the store.
func (b *Builder) RemoveFile(path string) bool {
	removed := b.Index.Remove(path)
	if b.Store != nil {
		if err := b.Store.Delete(path); err != nil {
			log.Warningf("%s", err)
		}
	}
	return removed
}
