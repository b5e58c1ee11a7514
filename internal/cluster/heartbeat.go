package cluster

import (
	"context"
	"time"

	"github.com/dropDatabas3/litegate/internal/election"
	"github.com/dropDatabas3/litegate/internal/observability/logger"
)

// Heartbeater alimenta el ClusterState con la creencia de liderazgo local
// en cada tick y, cuando somos leader, replica el claim por el log raft
// para que el resto del cluster lo registre.
type Heartbeater struct {
	node     *Node
	state    *election.ClusterState
	interval time.Duration
}

// NewHeartbeater crea el loop de heartbeats (interval <=0 => 1s).
func NewHeartbeater(node *Node, state *election.ClusterState, interval time.Duration) *Heartbeater {
	if interval <= 0 {
		interval = time.Second
	}
	return &Heartbeater{node: node, state: state, interval: interval}
}

// Run corre hasta que ctx se cancele. Un Apply fallido (pérdida de
// liderazgo a mitad de tick, timeout) se loguea y se sigue: el próximo
// tick refleja la realidad nueva, y los claims viejos los envejece la
// liveness window.
func (h *Heartbeater) Run(ctx context.Context) error {
	log := logger.Named("heartbeat")
	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			leader := h.node.IsLeader()
			term := h.node.Term()

			// La creencia propia se registra siempre localmente, sea cual
			// sea el rol: el status surface muestra todos los nodos.
			h.state.RecordHeartbeat(h.node.NodeID(), term, leader)

			if !leader {
				continue
			}
			hb := Heartbeat{
				NodeID:  h.node.NodeID(),
				Term:    term,
				Primary: true,
				TsUnix:  time.Now().Unix(),
			}
			if err := h.node.Apply(ctx, hb); err != nil && ctx.Err() == nil {
				log.Warn("heartbeat apply failed", logger.Err(err))
			}
		}
	}
}
