package detect

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// countingDetector cuenta las detecciones reales que llegan abajo.
type countingDetector struct {
	calls int64
	snap  Snapshot
	err   error
	delay time.Duration
}

func (c *countingDetector) DetectRole(ctx context.Context) (Snapshot, error) {
	atomic.AddInt64(&c.calls, 1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.err != nil {
		return Snapshot{}, c.err
	}
	snap := c.snap
	snap.ObservedAt = time.Now()
	return snap, nil
}

func TestCached_WithinTTLSingleUnderlyingCall(t *testing.T) {
	under := &countingDetector{snap: Snapshot{Role: RolePrimary}}
	c := NewCached(under, time.Minute)

	first, err := c.DetectRole(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.DetectRole(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("snapshots differ: %+v vs %+v", first, second)
	}
	if n := atomic.LoadInt64(&under.calls); n != 1 {
		t.Fatalf("underlying calls = %d, want 1", n)
	}
}

func TestCached_RefreshAfterExpiry(t *testing.T) {
	under := &countingDetector{snap: Snapshot{Role: RoleReplica, PrimaryAddr: "node-a"}}
	c := NewCached(under, 50*time.Millisecond)

	if _, err := c.DetectRole(context.Background()); err != nil {
		t.Fatal(err)
	}
	// Envejecer la entrada empujando el reloj del cache hacia adelante.
	c.now = func() time.Time { return time.Now().Add(time.Second) }

	if _, err := c.DetectRole(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt64(&under.calls); n != 2 {
		t.Fatalf("underlying calls = %d, want 2", n)
	}
}

func TestCached_SingleFlight(t *testing.T) {
	// N callers concurrentes sobre cache vacío: exactamente 1 lectura real
	// y todos reciben un snapshot observado después del inicio del test.
	under := &countingDetector{snap: Snapshot{Role: RolePrimary}, delay: 20 * time.Millisecond}
	c := NewCached(under, time.Minute)

	const n = 32
	start := time.Now()
	var wg sync.WaitGroup
	snaps := make([]Snapshot, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snaps[i], errs[i] = c.DetectRole(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if snaps[i].ObservedAt.Before(start) {
			t.Fatalf("caller %d: snapshot older than call start", i)
		}
	}
	if calls := atomic.LoadInt64(&under.calls); calls != 1 {
		t.Fatalf("underlying calls = %d, want 1 (single-flight)", calls)
	}
}

func TestCached_RecheckAfterConcurrentRefresh(t *testing.T) {
	// Un caller puede ver la entrada expirada y entrar al flight justo
	// después de que un refresh concurrente terminó (flight ya olvidado).
	// El closure tiene que re-chequear el cache y NO disparar una segunda
	// lectura real. Se simula el interleaving con un reloj que reporta la
	// entrada como expirada en el chequeo rápido y fresca adentro del
	// flight (como la dejaría el refresh del otro caller).
	under := &countingDetector{snap: Snapshot{Role: RolePrimary}}
	c := NewCached(under, time.Minute)

	if _, err := c.DetectRole(context.Background()); err != nil {
		t.Fatal(err)
	}

	var clockCalls int
	c.now = func() time.Time {
		clockCalls++
		if clockCalls == 1 {
			return time.Now().Add(time.Hour) // chequeo rápido: expirada
		}
		return time.Now() // adentro del flight: fresca
	}

	snap, err := c.DetectRole(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.Role != RolePrimary {
		t.Fatalf("role = %v, want primary", snap.Role)
	}
	if n := atomic.LoadInt64(&under.calls); n != 1 {
		t.Fatalf("underlying calls = %d, want 1 (redundant refresh)", n)
	}
}

func TestCached_ErrorsNotCached(t *testing.T) {
	under := &countingDetector{err: errors.New("agent restarting")}
	c := NewCached(under, time.Minute)

	if _, err := c.DetectRole(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	// El agente se recupera: la próxima llamada tiene que llegar abajo y
	// servir el rol real, no la falla anterior.
	under.err = nil
	under.snap = Snapshot{Role: RolePrimary}
	snap, err := c.DetectRole(context.Background())
	if err != nil {
		t.Fatalf("post-recovery: %v", err)
	}
	if snap.Role != RolePrimary {
		t.Fatalf("role = %v, want primary", snap.Role)
	}
	if n := atomic.LoadInt64(&under.calls); n != 2 {
		t.Fatalf("underlying calls = %d, want 2", n)
	}
}

func TestCached_Invalidate(t *testing.T) {
	under := &countingDetector{snap: Snapshot{Role: RolePrimary}}
	c := NewCached(under, time.Minute)

	if _, err := c.DetectRole(context.Background()); err != nil {
		t.Fatal(err)
	}
	c.Invalidate()
	if _, err := c.DetectRole(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt64(&under.calls); n != 2 {
		t.Fatalf("underlying calls = %d, want 2 tras Invalidate", n)
	}
}

func TestCached_DefaultTTL(t *testing.T) {
	c := NewCached(&countingDetector{}, 0)
	if c.TTL() != DefaultTTL {
		t.Fatalf("TTL = %v, want %v", c.TTL(), DefaultTTL)
	}
}
