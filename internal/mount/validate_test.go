package mount_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dropDatabas3/litegate/internal/mount"
	"github.com/dropDatabas3/litegate/internal/signal"
)

func TestValidate_OK(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, signal.LagMarker), []byte("0"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := mount.Validate(dir); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	// Sin side effects: el mount queda como estaba.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != signal.LagMarker {
		t.Fatalf("mount modified: %v", entries)
	}
}

func TestValidate_MissingPath(t *testing.T) {
	err := mount.Validate(filepath.Join(t.TempDir(), "nope"))
	if !mount.IsInvalidMount(err) {
		t.Fatalf("expected ErrInvalidMount, got %v", err)
	}
}

func TestValidate_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "file")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := mount.Validate(f); !mount.IsInvalidMount(err) {
		t.Fatalf("expected ErrInvalidMount, got %v", err)
	}
}

func TestValidate_MissingMarker(t *testing.T) {
	if err := mount.Validate(t.TempDir()); !mount.IsInvalidMount(err) {
		t.Fatalf("expected ErrInvalidMount, got %v", err)
	}
}
