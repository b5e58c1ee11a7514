// Package election implementa las dos estrategias de elección de líder que
// puede consumir el detector de rol:
//
//   - Static: delega en los marker files del agente de replicación
//     (default, sin votación).
//   - Voting: delega en el estado de consenso alimentado por heartbeats
//     de un mecanismo de votos externo (internal/cluster).
//
// Cambiar de estrategia no cambia el contrato del detector.
package election

import (
	"context"

	"github.com/dropDatabas3/litegate/internal/signal"
)

// Static resuelve el rol directamente desde el marker del agente.
type Static struct {
	sig *signal.Signal
}

// NewStatic crea la estrategia estática sobre el signal dado.
func NewStatic(sig *signal.Signal) *Static {
	return &Static{sig: sig}
}

// CurrentRole hace una lectura del marker. Implementa detect.RoleSource.
func (s *Static) CurrentRole(ctx context.Context) (bool, string, error) {
	return s.sig.Read()
}
