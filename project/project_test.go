package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDetectModules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src/shop/core/module-info.java"), "module shop.core {\n}\n")
	writeFile(t, filepath.Join(root, "src/shop/api/module-info.java"), "module shop.api {\n    requires shop.core;\n    requires java.sql;\n}\n")
	writeFile(t, filepath.Join(root, "src/shop/web/module-info.java"), "module shop.web {\n    requires transitive shop.api;\n    exports shop.web;\n}\n")
	writeFile(t, filepath.Join(root, "src/shop/notes/README.md"), "not a module\n")

	proj, err := Detect(root)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if proj.Layout != LayoutModules {
		t.Fatalf("Layout = %s, want %s", proj.Layout, LayoutModules)
	}
	if proj.ID != "shop" {
		t.Errorf("ID = %q, want %q", proj.ID, "shop")
	}
	if len(proj.Modules) != 3 {
		t.Fatalf("got %d modules, want 3", len(proj.Modules))
	}

	api := proj.Module("api")
	if api == nil {
		t.Fatal("module api not found")
	}
	if got := api.FullName(); got != "shop.api" {
		t.Errorf("FullName() = %q, want %q", got, "shop.api")
	}
	if len(api.Dependencies) != 1 || api.Dependencies[0] != "core" {
		t.Errorf("api dependencies = %v, want [core]", api.Dependencies)
	}
	if web := proj.Module("web"); len(web.Dependencies) != 1 || web.Dependencies[0] != "api" {
		t.Errorf("web dependencies = %v, want [api]", web.Dependencies)
	}

	want := []string{
		filepath.Join(root, "src/shop/core"),
		filepath.Join(root, "src/shop/api"),
		filepath.Join(root, "src/shop/web"),
	}
	got := proj.SourceRoots()
	if len(got) != len(want) {
		t.Fatalf("SourceRoots() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SourceRoots()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDetectMaven(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src/main/java/com/example/App.java"), "package com.example;\nclass App {}\n")
	writeFile(t, filepath.Join(root, "lib/src/main/java/com/example/lib/Lib.java"), "package com.example.lib;\nclass Lib {}\n")
	writeFile(t, filepath.Join(root, ".cache/src/main/java/X.java"), "class X {}\n")

	proj, err := Detect(root)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if proj.Layout != LayoutMaven {
		t.Fatalf("Layout = %s, want %s", proj.Layout, LayoutMaven)
	}

	roots := proj.SourceRoots()
	want := []string{
		filepath.Join(root, "src/main/java"),
		filepath.Join(root, "lib/src/main/java"),
	}
	if len(roots) != len(want) {
		t.Fatalf("SourceRoots() = %v, want %v", roots, want)
	}
	for i := range want {
		if roots[i] != want[i] {
			t.Errorf("SourceRoots()[%d] = %q, want %q", i, roots[i], want[i])
		}
	}
}

func TestDetectFlat(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "com/example/App.java"), "package com.example;\nclass App {}\n")

	proj, err := Detect(root)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if proj.Layout != LayoutFlat {
		t.Errorf("Layout = %s, want %s", proj.Layout, LayoutFlat)
	}
	if roots := proj.SourceRoots(); len(roots) != 1 || roots[0] != root {
		t.Errorf("SourceRoots() = %v, want [%s]", roots, root)
	}
}

func TestDetectErrors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "App.java")
	writeFile(t, file, "class App {}\n")

	if _, err := Detect(filepath.Join(root, "missing")); err == nil {
		t.Error("expected error for missing root")
	}
	if _, err := Detect(file); err == nil {
		t.Error("expected error for file root")
	}
}

func TestModulesInOrderCycle(t *testing.T) {
	proj := &Project{Modules: []*Module{
		{Name: "a", Dependencies: []string{"b"}},
		{Name: "b", Dependencies: []string{"a"}},
	}}
	got := proj.ModulesInOrder()
	if got[0].Name != "a" || got[1].Name != "b" {
		t.Errorf("cycle should keep original order, got %s, %s", got[0].Name, got[1].Name)
	}
}
