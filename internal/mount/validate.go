// Package mount valida que un path sea un mount activo del agente de
// replicación antes de confiar en cualquier detector. Gate de startup:
// nunca corre en el hot path.
package mount

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dropDatabas3/litegate/internal/signal"
)

// ErrInvalidMount indica que el path no es un mount de replicación usable.
var ErrInvalidMount = errors.New("invalid replication mount")

// IsInvalidMount indica si err corresponde a un mount inválido.
func IsInvalidMount(err error) bool { return errors.Is(err, ErrInvalidMount) }

// Validate verifica que path exista, sea un directorio, y contenga el
// marker de lag legible del que dependen los detectores. Sin side effects.
func Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s does not exist", ErrInvalidMount, path)
		}
		return fmt.Errorf("%w: stat %s: %v", ErrInvalidMount, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidMount, path)
	}

	// El marker de lag tiene que ser legible, no solo existir: un read
	// fallido acá significa que el agente está caído o el FUSE colgado.
	lag := filepath.Join(path, signal.LagMarker)
	if _, err := os.ReadFile(lag); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: missing %s marker (agent not running?)", ErrInvalidMount, signal.LagMarker)
		}
		return fmt.Errorf("%w: read %s: %v", ErrInvalidMount, lag, err)
	}
	return nil
}
