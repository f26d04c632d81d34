// Package project detects where the Java sources of a project live.
package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("docsig.project")

// Layout names how a project arranges its sources.
type Layout string

const (
	// LayoutModules is src/<project>/<module>/module-info.java.
	LayoutModules Layout = "modules"
	// LayoutMaven is src/main/java, optionally once per subproject.
	LayoutMaven Layout = "maven"
	// LayoutFlat treats the root itself as the only source root.
	LayoutFlat Layout = "flat"
)

// Project represents a Java project with one or more source modules.
type Project struct {
	ID      string
	RootDir string
	Layout  Layout
	Modules []*Module
}

// Module is one source root.
type Module struct {
	Name         string
	SrcDir       string
	ModuleInfo   string
	Project      *Project
	Dependencies []string // module names this module requires
}

// Detect inspects rootDir and returns the project found there. It never
// fails for an existing directory: without a recognised layout the root
// is the single source root.
func Detect(rootDir string) (*Project, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", rootDir)
	}

	if proj := detectModules(rootDir); proj != nil {
		return proj, nil
	}
	if proj := detectMaven(rootDir); proj != nil {
		return proj, nil
	}

	proj := &Project{ID: filepath.Base(rootDir), RootDir: rootDir, Layout: LayoutFlat}
	proj.Modules = []*Module{{Name: proj.ID, SrcDir: rootDir, Project: proj}}
	return proj, nil
}

func detectModules(rootDir string) *Project {
	srcDir := filepath.Join(rootDir, "src")
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		projectDir := filepath.Join(srcDir, entry.Name())
		modules := scanModules(projectDir)
		if len(modules) == 0 {
			continue
		}

		proj := &Project{
			ID:      entry.Name(),
			RootDir: rootDir,
			Layout:  LayoutModules,
			Modules: modules,
		}
		for _, m := range proj.Modules {
			m.Project = proj
			deps, err := parseModuleDependencies(m.ModuleInfo, proj.ID)
			if err != nil {
				log.Debugf("%s: %s", m.ModuleInfo, err)
				continue
			}
			m.Dependencies = deps
		}
		return proj
	}
	return nil
}

func scanModules(projectDir string) []*Module {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil
	}

	var modules []*Module
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		moduleDir := filepath.Join(projectDir, entry.Name())
		moduleInfo := filepath.Join(moduleDir, "module-info.java")
		if _, err := os.Stat(moduleInfo); err != nil {
			continue
		}

		modules = append(modules, &Module{
			Name:       entry.Name(),
			SrcDir:     moduleDir,
			ModuleInfo: moduleInfo,
		})
	}
	return modules
}

func detectMaven(rootDir string) *Project {
	proj := &Project{ID: filepath.Base(rootDir), RootDir: rootDir, Layout: LayoutMaven}

	if isDir(filepath.Join(rootDir, "src", "main", "java")) {
		proj.Modules = append(proj.Modules, &Module{
			Name:   proj.ID,
			SrcDir: filepath.Join(rootDir, "src", "main", "java"),
		})
	}

	entries, err := os.ReadDir(rootDir)
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			dir := filepath.Join(rootDir, entry.Name(), "src", "main", "java")
			if isDir(dir) {
				proj.Modules = append(proj.Modules, &Module{Name: entry.Name(), SrcDir: dir})
			}
		}
	}

	if len(proj.Modules) == 0 {
		return nil
	}
	for _, m := range proj.Modules {
		m.Project = proj
	}
	return proj
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// parseModuleDependencies extracts the names of required modules that belong
// to this project from a module-info.java file.
func parseModuleDependencies(moduleInfoPath string, projectID string) ([]string, error) {
	content, err := os.ReadFile(moduleInfoPath)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", moduleInfoPath, err)
	}
	defer tree.Close()

	var moduleDecl *sitter.Node
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if child := root.NamedChild(i); child.Type() == "module_declaration" {
			moduleDecl = child
			break
		}
	}
	if moduleDecl == nil {
		return nil, fmt.Errorf("no module declaration in %s", moduleInfoPath)
	}
	body := moduleDecl.ChildByFieldName("body")
	for i := 0; body == nil && i < int(moduleDecl.NamedChildCount()); i++ {
		if child := moduleDecl.NamedChild(i); child.Type() == "module_body" {
			body = child
		}
	}
	if body == nil {
		return nil, fmt.Errorf("no module body in %s", moduleInfoPath)
	}

	var deps []string
	prefix := projectID + "."
	for i := 0; i < int(body.NamedChildCount()); i++ {
		directive := body.NamedChild(i)
		text := directive.Content(content)
		if !strings.HasPrefix(text, "requires") {
			continue
		}
		name := requiredModule(directive, content)
		// only modules within this project, e.g. "myproject.core" -> "core"
		if strings.HasPrefix(name, prefix) {
			deps = append(deps, strings.TrimPrefix(name, prefix))
		}
	}
	return deps, nil
}

func requiredModule(directive *sitter.Node, content []byte) string {
	var name string
	for i := 0; i < int(directive.NamedChildCount()); i++ {
		child := directive.NamedChild(i)
		switch child.Type() {
		case "identifier", "scoped_identifier":
			name = child.Content(content)
		}
	}
	return name
}

// Module returns the module with the given name, or nil if not found.
func (p *Project) Module(name string) *Module {
	for _, m := range p.Modules {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// ModulesInOrder returns modules sorted in dependency order (dependencies
// first). Cycles leave the original order.
func (p *Project) ModulesInOrder() []*Module {
	moduleSet := make(map[string]bool)
	for _, m := range p.Modules {
		moduleSet[m.Name] = true
	}

	// Kahn's algorithm over project-internal dependencies
	inDegree := make(map[string]int)
	for _, m := range p.Modules {
		inDegree[m.Name] = 0
		for _, dep := range m.Dependencies {
			if moduleSet[dep] {
				inDegree[m.Name]++
			}
		}
	}

	var queue []string
	for _, m := range p.Modules {
		if inDegree[m.Name] == 0 {
			queue = append(queue, m.Name)
		}
	}

	var result []*Module
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if mod := p.Module(name); mod != nil {
			result = append(result, mod)
		}
		for _, m := range p.Modules {
			if slices.Contains(m.Dependencies, name) {
				inDegree[m.Name]--
				if inDegree[m.Name] == 0 {
					queue = append(queue, m.Name)
				}
			}
		}
	}

	if len(result) != len(p.Modules) {
		return p.Modules
	}
	return result
}

// SourceRoots returns the source directories of all modules, dependencies
// first, so that a module's own declarations win over what it requires.
func (p *Project) SourceRoots() []string {
	modules := p.ModulesInOrder()
	roots := make([]string, len(modules))
	for i, m := range modules {
		roots[i] = m.SrcDir
	}
	return roots
}

// FullName returns the qualified module name (e.g., "myproject.core").
func (m *Module) FullName() string {
	if m.Project == nil || m.Project.Layout != LayoutModules {
		return m.Name
	}
	return m.Project.ID + "." + m.Name
}
