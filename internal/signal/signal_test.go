package signal_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dropDatabas3/litegate/internal/signal"
)

func writeMarker(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRead_Primary(t *testing.T) {
	dir := t.TempDir()
	writeMarker(t, dir, signal.LagMarker, "0")

	primary, addr, err := signal.New(dir).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !primary {
		t.Fatal("expected primary")
	}
	if addr != "" {
		t.Fatalf("primary must not carry an address, got %q", addr)
	}
}

func TestRead_Replica(t *testing.T) {
	dir := t.TempDir()
	writeMarker(t, dir, signal.LagMarker, "12")
	writeMarker(t, dir, signal.PrimaryMarker, "node-a\n")

	primary, addr, err := signal.New(dir).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if primary {
		t.Fatal("expected replica")
	}
	if addr != "node-a" {
		t.Fatalf("addr = %q, want node-a (content leído verbatim, trimmed)", addr)
	}
}

func TestRead_ReplicaEmptyMarker(t *testing.T) {
	dir := t.TempDir()
	writeMarker(t, dir, signal.LagMarker, "0")
	writeMarker(t, dir, signal.PrimaryMarker, "")

	primary, addr, err := signal.New(dir).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if primary || addr != "" {
		t.Fatalf("empty marker => replica sin dirección, got primary=%v addr=%q", primary, addr)
	}
}

func TestRead_NotRunning(t *testing.T) {
	dir := t.TempDir() // sin markers

	_, _, err := signal.New(dir).Read()
	if err == nil {
		t.Fatal("expected error")
	}
	if !signal.IsNotRunning(err) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
}
