package election

import (
	"sort"
	"sync"
	"time"

	"github.com/dropDatabas3/litegate/internal/metrics"
)

// DefaultLivenessWindow es la ventana dentro de la cual un heartbeat se
// considera vivo. Elegida explícitamente: varios intervalos de heartbeat
// (1s default) con margen para GC/pausas de scheduling.
const DefaultLivenessWindow = 10 * time.Second

// NodeState es el estado de liderazgo de un nodo tal como se percibe
// localmente. Lo muta solo el procesamiento de heartbeats.
type NodeState struct {
	NodeID          string    `json:"node_id"`
	Term            uint64    `json:"term"`
	BelievesPrimary bool      `json:"believes_primary"`
	LastHeartbeat   time.Time `json:"last_heartbeat"`
}

// nodeEntry serializa updates por nodo sin bloquear otros nodos.
type nodeEntry struct {
	mu    sync.Mutex
	state NodeState
}

// ClusterState es la vista agregada del cluster bajo elección por votos.
// Volátil: se resetea en cada restart del proceso; la durabilidad es del
// log de la estrategia de votación (internal/cluster), no de acá.
//
// Los lectores externos reciben copias read-only (Nodes): el ownership de
// los NodeState es exclusivo de esta estructura.
type ClusterState struct {
	window time.Duration
	now    func() time.Time

	mu    sync.RWMutex // protege el map, no los entries
	nodes map[string]*nodeEntry
}

// NewClusterState crea un ClusterState con la liveness window dada
// (<=0 => DefaultLivenessWindow).
func NewClusterState(window time.Duration) *ClusterState {
	if window <= 0 {
		window = DefaultLivenessWindow
	}
	return &ClusterState{
		window: window,
		now:    time.Now,
		nodes:  make(map[string]*nodeEntry),
	}
}

// RecordHeartbeat registra un heartbeat. Idempotente y monotónico: un
// heartbeat con term menor al ya registrado para ese nodo se ignora.
// Heartbeats de nodos distintos no se bloquean entre sí; updates al mismo
// nodo se serializan con el lock del entry.
func (c *ClusterState) RecordHeartbeat(nodeID string, term uint64, believesPrimary bool) {
	c.mu.RLock()
	e, ok := c.nodes[nodeID]
	c.mu.RUnlock()
	if !ok {
		c.mu.Lock()
		if e, ok = c.nodes[nodeID]; !ok {
			e = &nodeEntry{state: NodeState{NodeID: nodeID}}
			c.nodes[nodeID] = e
		}
		c.mu.Unlock()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if term < e.state.Term {
		return
	}
	e.state.Term = term
	e.state.BelievesPrimary = believesPrimary
	e.state.LastHeartbeat = c.now()
}

// CurrentPrimary devuelve el nodo con mayor term entre los que reclaman
// primary, siempre que exista exactamente uno a ese term y su heartbeat
// esté dentro de la liveness window. Con empate a igual term (split-brain)
// no hay primary: preferimos no elegir a elegir mal.
func (c *ClusterState) CurrentPrimary() (string, bool) {
	claimants := c.liveClaimants()
	if len(claimants) != 1 {
		return "", false
	}
	return claimants[0].NodeID, true
}

// SplitBrain devuelve los node IDs que reclaman primary simultáneamente al
// mismo term más alto dentro de la liveness window, ordenados por ID.
// Vacío cuando el cluster está sano. Solo reporta: la resolución es del
// operador o del protocolo de votos, nunca de este core.
func (c *ClusterState) SplitBrain() []string {
	claimants := c.liveClaimants()
	if len(claimants) < 2 {
		metrics.SplitBrainNodes.Set(0)
		return nil
	}
	ids := make([]string, len(claimants))
	for i, s := range claimants {
		ids[i] = s.NodeID
	}
	sort.Strings(ids)
	metrics.SplitBrainNodes.Set(float64(len(ids)))
	return ids
}

// liveClaimants devuelve los nodos que reclaman primary al term más alto
// observado, con heartbeat vivo. Un claimant a term menor está superado
// por definición de la votación y no cuenta.
func (c *ClusterState) liveClaimants() []NodeState {
	cutoff := c.now().Add(-c.window)

	c.mu.RLock()
	entries := make([]*nodeEntry, 0, len(c.nodes))
	for _, e := range c.nodes {
		entries = append(entries, e)
	}
	c.mu.RUnlock()

	var highest uint64
	var out []NodeState
	for _, e := range entries {
		e.mu.Lock()
		s := e.state
		e.mu.Unlock()
		if !s.BelievesPrimary || s.LastHeartbeat.Before(cutoff) {
			continue
		}
		switch {
		case s.Term > highest:
			highest = s.Term
			out = out[:0]
			out = append(out, s)
		case s.Term == highest:
			out = append(out, s)
		}
	}
	return out
}

// Nodes devuelve copias read-only del estado de todos los nodos, ordenadas
// por node ID. Para la superficie de status/monitoring.
func (c *ClusterState) Nodes() []NodeState {
	c.mu.RLock()
	entries := make([]*nodeEntry, 0, len(c.nodes))
	for _, e := range c.nodes {
		entries = append(entries, e)
	}
	c.mu.RUnlock()

	out := make([]NodeState, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.state)
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}
