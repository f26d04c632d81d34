package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher keeps an Index current with the Java sources below its roots.
type Watcher struct {
	builder *Builder
	watcher *fsnotify.Watcher
	roots   []string

	// OnChange, if set, is called after a file has been re-indexed or
	// removed. It runs on the watcher goroutine.
	OnChange func(path string, removed bool)

	wg sync.WaitGroup
}

func NewWatcher(b *Builder, roots ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{builder: b, watcher: fw, roots: roots}
	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addTree registers root and its non-hidden subdirectories; fsnotify does
// not watch recursively.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// Start processes events until ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

func (w *Watcher) Close() error {
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("watcher: %s", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if isJavaFile(path) && w.builder.RemoveFile(path) {
			log.Debugf("removed %s", path)
			w.notify(path, true)
		}
		return
	}

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warningf("stat %s: %s", path, err)
		}
		return
	}
	if info.IsDir() {
		if isHidden(info.Name()) {
			return
		}
		if err := w.addTree(path); err != nil {
			log.Warningf("%s", err)
		}
		files, err := JavaFiles(path)
		if err != nil {
			log.Warningf("%s", err)
			return
		}
		for _, file := range files {
			w.rescan(ctx, file)
		}
		return
	}
	if isJavaFile(path) {
		w.rescan(ctx, path)
	}
}

func (w *Watcher) rescan(ctx context.Context, path string) {
	if err := w.builder.AddFile(ctx, path); err != nil {
		log.Warningf("rescanning %s: %s", path, err)
		return
	}
	log.Debugf("rescanned %s", path)
	w.notify(path, false)
}

func (w *Watcher) notify(path string, removed bool) {
	if w.OnChange != nil {
		w.OnChange(path, removed)
	}
}
