package election

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/litegate/internal/signal"
)

func TestVoting_LocalNodeIsPrimary(t *testing.T) {
	s, _ := newTestState(time.Minute)
	s.RecordHeartbeat("a", 7, true)
	s.RecordHeartbeat("b", 7, false)

	v := NewVoting(s, "a", nil)
	primary, addr, err := v.CurrentRole(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !primary || addr != "" {
		t.Fatalf("got (%v, %q), want (true, \"\")", primary, addr)
	}
}

func TestVoting_ReplicaWithAddress(t *testing.T) {
	s, _ := newTestState(time.Minute)
	s.RecordHeartbeat("a", 7, true)
	s.RecordHeartbeat("b", 7, false)

	v := NewVoting(s, "b", map[string]string{"a": "http://node-a:9090"})
	primary, addr, err := v.CurrentRole(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if primary || addr != "http://node-a:9090" {
		t.Fatalf("got (%v, %q)", primary, addr)
	}
}

func TestVoting_NoPrimaryFailsClosed(t *testing.T) {
	s, _ := newTestState(time.Minute)
	// Split-brain: dos claimants al mismo término. Rol: réplica sin addr,
	// el gate bloquea escrituras; el reporte va por SplitBrain().
	s.RecordHeartbeat("a", 7, true)
	s.RecordHeartbeat("b", 7, true)

	v := NewVoting(s, "a", nil)
	primary, addr, err := v.CurrentRole(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if primary || addr != "" {
		t.Fatalf("got (%v, %q), want fail-closed replica", primary, addr)
	}
}

func TestVoting_IdleElectionIsNotRunning(t *testing.T) {
	s, _ := newTestState(time.Minute)
	v := NewVoting(s, "a", nil)

	if _, _, err := v.CurrentRole(context.Background()); !signal.IsNotRunning(err) {
		t.Fatalf("expected ErrNotRunning on idle election, got %v", err)
	}
}

func TestVoting_AllHeartbeatsDeadIsNotRunning(t *testing.T) {
	s, now := newTestState(10 * time.Second)
	s.RecordHeartbeat("a", 7, true)
	*now = now.Add(time.Minute)

	v := NewVoting(s, "a", nil)
	if _, _, err := v.CurrentRole(context.Background()); !signal.IsNotRunning(err) {
		t.Fatalf("expected ErrNotRunning with dead heartbeats, got %v", err)
	}
}
