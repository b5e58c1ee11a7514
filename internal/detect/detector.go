// Package detect resuelve el rol del nodo local (primary o réplica) contra
// una fuente de liderazgo intercambiable, y expone la capa de cache con
// single-flight que acota la frecuencia de lecturas bajo alto volumen.
package detect

import (
	"context"
	"errors"
	"time"
)

// Role es el rol derivado del nodo. Nunca se persiste: se recomputa desde
// la fuente en cada consulta (sujeto al cache).
type Role int8

const (
	RolePrimary Role = iota
	RoleReplica
)

func (r Role) String() string {
	if r == RolePrimary {
		return "primary"
	}
	return "replica"
}

// Snapshot es una vista inmutable del rol en un instante. PrimaryAddr solo
// está presente cuando Role == RoleReplica y la fuente proveyó la dirección.
type Snapshot struct {
	Role        Role      `json:"role"`
	PrimaryAddr string    `json:"primary_addr,omitempty"`
	ObservedAt  time.Time `json:"observed_at"`
}

// ErrPrimaryUnknown indica que somos réplica pero no hay forma de resolver
// la dirección del primary (ni marker ni override configurado).
var ErrPrimaryUnknown = errors.New("primary address unknown")

// IsPrimaryUnknown indica si err significa primary irresoluble.
func IsPrimaryUnknown(err error) bool { return errors.Is(err, ErrPrimaryUnknown) }

// RoleSource es la capability de elección de líder. Dos implementaciones
// en internal/election: Static (marker del agente, default) y Voting
// (estado de consenso). Se elige una en el startup y se mantiene por
// referencia el resto del proceso; nadie inspecciona el tipo en runtime.
type RoleSource interface {
	// CurrentRole hace exactamente una lectura de la fuente. addr es la
	// dirección del primary cuando primary == false y la fuente la conoce.
	CurrentRole(ctx context.Context) (primary bool, addr string, err error)
}

// RoleDetector es lo que consumen el gate de escrituras y la superficie de
// status: Detector y CachedDetector lo implementan con el mismo contrato.
type RoleDetector interface {
	DetectRole(ctx context.Context) (Snapshot, error)
}

// Detector consulta la fuente una vez por llamada. Stateless y seguro para
// llamadas concurrentes; el caching se apila arriba (CachedDetector).
type Detector struct {
	source RoleSource
	now    func() time.Time
}

// New crea un Detector sobre la fuente dada.
func New(source RoleSource) *Detector {
	return &Detector{source: source, now: time.Now}
}

// DetectRole lee el rol actual. Propaga signal.ErrNotRunning sin tocar
// cuando el agente no está activo.
func (d *Detector) DetectRole(ctx context.Context) (Snapshot, error) {
	primary, addr, err := d.source.CurrentRole(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Role: RoleReplica, PrimaryAddr: addr, ObservedAt: d.now()}
	if primary {
		snap.Role = RolePrimary
		snap.PrimaryAddr = ""
	}
	return snap, nil
}
