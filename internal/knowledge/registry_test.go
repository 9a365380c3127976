package knowledge

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDoc(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("notes\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "btrfs.md")
	writeDoc(t, dir, "networking.txt")
	writeDoc(t, dir, "scheduler")
	if err := os.Mkdir(filepath.Join(dir, "archive"), 0o755); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistry(dir)
	if err != nil {
		t.Fatalf("LoadRegistry() error: %v", err)
	}
	if reg.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (subdirectories are skipped)", reg.Len())
	}

	doc, ok := reg.Lookup("btrfs")
	if !ok {
		t.Fatal("Lookup(btrfs) not found")
	}
	if doc.Path != filepath.Join(dir, "btrfs.md") {
		t.Errorf("Path = %q", doc.Path)
	}

	if _, ok := reg.Lookup("scheduler"); !ok {
		t.Error("extensionless document should be keyed by its full name")
	}
	if _, ok := reg.Lookup("vfs"); ok {
		t.Error("Lookup(vfs) should miss")
	}
}

func TestLoadRegistry_MissingDir(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("missing directory should not be an error, got %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
}

func TestLoadRegistry_EmptyDirConfig(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("unset directory should not be an error, got %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
}

func TestRegistry_For(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "btrfs.md")
	writeDoc(t, dir, "mm.md")

	reg, err := LoadRegistry(dir)
	if err != nil {
		t.Fatal(err)
	}

	docs := reg.For([]string{"mm", "vfs", "btrfs"})
	if len(docs) != 2 {
		t.Fatalf("For() returned %d docs, want 2", len(docs))
	}
	if docs[0].Subsystem != "mm" || docs[1].Subsystem != "btrfs" {
		t.Errorf("For() order = [%s %s], want tag order preserved", docs[0].Subsystem, docs[1].Subsystem)
	}
}
