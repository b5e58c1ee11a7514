package election

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/litegate/internal/signal"
)

// Voting resuelve el rol desde el ClusterState alimentado por el mecanismo
// de votos externo (internal/cluster aplica los heartbeats replicados).
type Voting struct {
	state   *ClusterState
	localID string
	// addrs mapea node ID -> URL para redirects de escritura. Viene de la
	// lista de candidatos en settings; puede ser nil.
	addrs map[string]string
}

// NewVoting crea la estrategia de votación para el nodo local dado.
func NewVoting(state *ClusterState, localID string, addrs map[string]string) *Voting {
	return &Voting{state: state, localID: localID, addrs: addrs}
}

// State expone el ClusterState para el driver de votos y el status surface.
func (v *Voting) State() *ClusterState { return v.state }

// CurrentRole implementa detect.RoleSource.
//
// Sin ningún heartbeat vivo la elección no está operando (equivalente a
// agente caído): ErrNotRunning. Sin primary único (elección en curso o
// split-brain) devolvemos réplica sin dirección: el gate falla cerrado y
// el split-brain se reporta por la superficie de monitoring, no acá.
func (v *Voting) CurrentRole(ctx context.Context) (bool, string, error) {
	if len(v.state.Nodes()) == 0 || !v.anyLive() {
		return false, "", fmt.Errorf("voting election idle: %w", signal.ErrNotRunning)
	}
	id, ok := v.state.CurrentPrimary()
	if !ok {
		return false, "", nil
	}
	if id == v.localID {
		return true, "", nil
	}
	return false, v.addrs[id], nil
}

// anyLive indica si al menos un nodo tiene heartbeat dentro de la ventana.
func (v *Voting) anyLive() bool {
	cutoff := v.state.now().Add(-v.state.window)
	for _, n := range v.state.Nodes() {
		if !n.LastHeartbeat.Before(cutoff) {
			return true
		}
	}
	return false
}
