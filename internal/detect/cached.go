package detect

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/litegate/internal/metrics"
)

// DefaultTTL acota la frecuencia de stats al filesystem en el hot path.
// Cientos de milisegundos: lo suficientemente fresco para failovers, lo
// suficientemente largo para colapsar miles de statements por segundo en
// una sola lectura.
const DefaultTTL = 500 * time.Millisecond

// CachedDetector envuelve un RoleDetector con una única entrada de cache
// con TTL. El refresh es single-flight: N callers concurrentes que ven el
// cache expirado disparan exactamente una lectura subyacente y todos
// reciben el snapshot resultante.
//
// Instancia explícita, construida una vez en el startup y pasada por
// referencia: nada de estado global de proceso (facilita tests con caches
// independientes).
type CachedDetector struct {
	next RoleDetector
	ttl  time.Duration
	now  func() time.Time

	mu   sync.Mutex
	snap Snapshot
	ok   bool

	sf singleflight.Group
}

// NewCached crea un CachedDetector con el TTL dado (<=0 => DefaultTTL).
func NewCached(next RoleDetector, ttl time.Duration) *CachedDetector {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedDetector{next: next, ttl: ttl, now: time.Now}
}

// TTL devuelve el TTL configurado.
func (c *CachedDetector) TTL() time.Duration { return c.ttl }

// DetectRole devuelve el snapshot cacheado si su edad está dentro del TTL;
// si no, refresca. Los errores del detector subyacente se propagan y NUNCA
// se cachean: una falla transitoria no envenena llamadas posteriores una
// vez que el agente se recupera.
func (c *CachedDetector) DetectRole(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if c.ok && c.now().Sub(c.snap.ObservedAt) < c.ttl {
		snap := c.snap
		c.mu.Unlock()
		metrics.RoleCacheHits.Inc()
		return snap, nil
	}
	c.mu.Unlock()

	// singleflight serializa el refresh: los callers que llegan durante un
	// refresh en vuelo esperan y comparten el resultado.
	v, err, _ := c.sf.Do("role", func() (any, error) {
		// Otro caller pudo completar un refresh entre el chequeo de arriba
		// y este punto (flight ya olvidado): re-chequear antes de pegarle
		// a la fuente, una expiración dispara exactamente una lectura.
		c.mu.Lock()
		if c.ok && c.now().Sub(c.snap.ObservedAt) < c.ttl {
			snap := c.snap
			c.mu.Unlock()
			metrics.RoleCacheHits.Inc()
			return snap, nil
		}
		c.mu.Unlock()

		snap, err := c.next.DetectRole(ctx)
		if err != nil {
			return Snapshot{}, err
		}
		c.mu.Lock()
		c.snap, c.ok = snap, true
		c.mu.Unlock()
		metrics.RoleCacheRefreshes.Inc()
		return snap, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

// Invalidate descarta la entrada cacheada. La próxima llamada refresca.
func (c *CachedDetector) Invalidate() {
	c.mu.Lock()
	c.ok = false
	c.mu.Unlock()
}
