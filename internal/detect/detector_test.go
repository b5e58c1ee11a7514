package detect_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dropDatabas3/litegate/internal/detect"
	"github.com/dropDatabas3/litegate/internal/signal"
)

// fakeSource implementa detect.RoleSource para tests.
type fakeSource struct {
	primary bool
	addr    string
	err     error
	calls   int
}

func (f *fakeSource) CurrentRole(ctx context.Context) (bool, string, error) {
	f.calls++
	return f.primary, f.addr, f.err
}

func TestDetector_PrimarySnapshot(t *testing.T) {
	src := &fakeSource{primary: true, addr: "leftover"}
	d := detect.New(src)

	before := time.Now()
	snap, err := d.DetectRole(context.Background())
	if err != nil {
		t.Fatalf("DetectRole: %v", err)
	}
	if snap.Role != detect.RolePrimary {
		t.Fatalf("role = %v, want primary", snap.Role)
	}
	// Invariante: PrimaryAddr solo presente en snapshots de réplica.
	if snap.PrimaryAddr != "" {
		t.Fatalf("primary snapshot carries addr %q", snap.PrimaryAddr)
	}
	if snap.ObservedAt.Before(before) {
		t.Fatal("ObservedAt earlier than the call")
	}
}

func TestDetector_ReplicaSnapshot(t *testing.T) {
	src := &fakeSource{primary: false, addr: "node-b"}
	snap, err := detect.New(src).DetectRole(context.Background())
	if err != nil {
		t.Fatalf("DetectRole: %v", err)
	}
	if snap.Role != detect.RoleReplica || snap.PrimaryAddr != "node-b" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestDetector_OneReadPerCall(t *testing.T) {
	src := &fakeSource{primary: true}
	d := detect.New(src)
	for i := 0; i < 5; i++ {
		if _, err := d.DetectRole(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if src.calls != 5 {
		t.Fatalf("source calls = %d, want 5 (sin caching en esta capa)", src.calls)
	}
}

func TestDetector_PropagatesNotRunning(t *testing.T) {
	src := &fakeSource{err: signal.ErrNotRunning}
	_, err := detect.New(src).DetectRole(context.Background())
	if !errors.Is(err, signal.ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
}
