// Package signal lee los marker files que el agente de replicación expone
// en el mount FUSE. El layout es convención del agente (LiteFS) y se lee
// verbatim, sin reinterpretar:
//
//   - ".primary": presente solo en réplicas; el contenido es el hostname
//     del primary actual.
//   - ".lag": presente siempre que el agente está corriendo; lo consume
//     también el validador de mount como health check.
package signal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// PrimaryMarker es el archivo que indica rol réplica (y apunta al primary).
	PrimaryMarker = ".primary"
	// LagMarker es el archivo de lag/health, presente con el agente activo.
	LagMarker = ".lag"
)

// ErrNotRunning indica que el agente de replicación no está activo en este
// host: el mount no tiene marker de lag. Distinto de un snapshot réplica.
var ErrNotRunning = errors.New("replication agent not running on this host")

// IsNotRunning indica si err significa agente no activo.
func IsNotRunning(err error) bool { return errors.Is(err, ErrNotRunning) }

// Signal lee el estado de rol desde un mount del agente.
type Signal struct {
	mount string
}

// New crea un Signal sobre el mount dado. No valida el path acá: eso es
// responsabilidad del validador de mount en el startup.
func New(mountPath string) *Signal {
	return &Signal{mount: mountPath}
}

// MountPath devuelve el path del mount observado.
func (s *Signal) MountPath() string { return s.mount }

// Read hace exactamente una lectura del marker de rol.
//
// Devuelve:
//   - (primary=true, addr=""): el nodo local es primary.
//   - (primary=false, addr=<hostname>): réplica; addr puede ser "" si el
//     agente aún no escribió el contenido.
//   - ErrNotRunning si el marker de lag no existe (agente caído / mount
//     no inicializado).
func (s *Signal) Read() (primary bool, addr string, err error) {
	data, rerr := os.ReadFile(filepath.Join(s.mount, PrimaryMarker))
	if rerr == nil {
		return false, strings.TrimSpace(string(data)), nil
	}
	if !os.IsNotExist(rerr) {
		// Lectura transitoria fallida (ej: agente reiniciando). Se surfacea
		// al caller, que decide retry; acá no se reintenta.
		return false, "", fmt.Errorf("read %s marker: %w", PrimaryMarker, rerr)
	}

	// Sin .primary: somos primary... siempre que el agente esté vivo.
	if _, serr := os.Stat(filepath.Join(s.mount, LagMarker)); serr != nil {
		if os.IsNotExist(serr) {
			return false, "", fmt.Errorf("mount %s: %w", s.mount, ErrNotRunning)
		}
		return false, "", fmt.Errorf("stat %s marker: %w", LagMarker, serr)
	}
	return true, "", nil
}
