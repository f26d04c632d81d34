// Package index keeps the scanned Java sources of a project so that
// documentation can be located by class name.
package index

import (
	"slices"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/docsig/java"
	"github.com/dhamidi/docsig/javadoc"
	"github.com/dhamidi/docsig/source"
)

var log = commonlog.GetLogger("docsig.index")

type entry struct {
	file  *source.File
	class *source.Class
	ctx   javadoc.Context
}

// Index maps qualified class names to their declarations. It is safe for
// concurrent use; added files must not be modified afterwards.
type Index struct {
	mu      sync.RWMutex
	classes map[string]*entry
	files   map[string]*source.File
	policy  java.InternalPolicy
}

var _ javadoc.Locator = (*Index)(nil)

func New(policy java.InternalPolicy) *Index {
	return &Index{
		classes: map[string]*entry{},
		files:   map[string]*source.File{},
		policy:  policy,
	}
}

// Add indexes every class declared in file, replacing what an earlier
// version of the same path contributed.
func (ix *Index) Add(file *source.File) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeLocked(file.Path)
	ix.files[file.Path] = file
	for i := range file.Classes {
		class := &file.Classes[i]
		if prev, ok := ix.classes[class.Name]; ok && prev.file.Path != file.Path {
			log.Warningf("class %s declared in both %s and %s, using the latter", class.Name, prev.file.Path, file.Path)
		}
		ix.classes[class.Name] = &entry{
			file:  file,
			class: class,
			ctx:   java.ContextFor(file, class),
		}
	}
}

// Remove drops the classes declared in the file at path.
func (ix *Index) Remove(path string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.removeLocked(path)
}

func (ix *Index) removeLocked(path string) bool {
	file, ok := ix.files[path]
	if !ok {
		return false
	}
	delete(ix.files, path)
	for i := range file.Classes {
		name := file.Classes[i].Name
		if e, ok := ix.classes[name]; ok && e.file == file {
			delete(ix.classes, name)
		}
	}
	return true
}

// LocateClass returns the naming context of className and the file that
// declares it.
func (ix *Index) LocateClass(className string) (javadoc.Context, string, bool) {
	ix.mu.RLock()
	e, ok := ix.classes[className]
	ix.mu.RUnlock()
	if !ok {
		return javadoc.Context{}, "", false
	}
	ctx := e.ctx
	ctx.Known = ix.KnownClass
	return ctx, e.file.Path, true
}

func (ix *Index) KnownClass(className string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.classes[className]
	return ok
}

// Methods returns the source methods declared directly in className.
func (ix *Index) Methods(className string) []*java.SourceMethod {
	ix.mu.RLock()
	e, ok := ix.classes[className]
	ix.mu.RUnlock()
	if !ok {
		return nil
	}
	methods := make([]*java.SourceMethod, len(e.class.Methods))
	for i := range e.class.Methods {
		methods[i] = java.NewSourceMethod(e.file, e.class, &e.class.Methods[i], ix.policy)
	}
	return methods
}

// Lookup returns the overloads named methodName declared in className.
func (ix *Index) Lookup(className, methodName string) []*java.SourceMethod {
	var out []*java.SourceMethod
	for _, m := range ix.Methods(className) {
		if m.Name() == methodName {
			out = append(out, m)
		}
	}
	return out
}

func (ix *Index) File(path string) (*source.File, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	f, ok := ix.files[path]
	return f, ok
}

// Classes returns the indexed class names in sorted order.
func (ix *Index) Classes() []string {
	ix.mu.RLock()
	names := make([]string, 0, len(ix.classes))
	for name := range ix.classes {
		names = append(names, name)
	}
	ix.mu.RUnlock()
	slices.Sort(names)
	return names
}

func (ix *Index) Files() []string {
	ix.mu.RLock()
	paths := make([]string, 0, len(ix.files))
	for path := range ix.files {
		paths = append(paths, path)
	}
	ix.mu.RUnlock()
	slices.Sort(paths)
	return paths
}
