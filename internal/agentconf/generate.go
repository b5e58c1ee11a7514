// Package agentconf serializa los settings validados al formato de
// configuración declarativa del agente de replicación (litefs.yml).
// Transformación pura: cero acoplamiento runtime con el resto del gate.
package agentconf

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/litegate/internal/config"
	"github.com/dropDatabas3/litegate/internal/util/atomicwrite"
)

// ErrConfig indica settings individualmente válidos pero mutuamente
// inconsistentes para el agente.
var ErrConfig = errors.New("inconsistent agent configuration")

// IsConfig indica si err es un error de consistencia de configuración.
func IsConfig(err error) bool { return errors.Is(err, ErrConfig) }

// Shape del archivo del agente. El orden de los structs fija el orden de
// las secciones en el YAML emitido: generar dos veces desde los mismos
// settings produce bytes idénticos.
type agentFile struct {
	FUSE struct {
		Dir string `yaml:"dir"`
	} `yaml:"fuse"`
	Data struct {
		Dir       string `yaml:"dir"`
		Retention string `yaml:"retention,omitempty"`
	} `yaml:"data"`
	Lease struct {
		Type         string           `yaml:"type"`
		Hostname     string           `yaml:"hostname"`
		AdvertiseURL string           `yaml:"advertise-url,omitempty"`
		Candidates   []leaseCandidate `yaml:"candidates,omitempty"`
	} `yaml:"lease"`
	Proxy *struct {
		Addr string `yaml:"addr"`
		DB   string `yaml:"db"`
	} `yaml:"proxy,omitempty"`
}

type leaseCandidate struct {
	Hostname string `yaml:"hostname"`
	URL      string `yaml:"url"`
}

// Generate produce el litefs.yml para cfg. Determinística e idempotente;
// falla con ErrConfig ante combinaciones inconsistentes:
//   - election=voting sin lista de candidatos
//   - proxy habilitado sin database o sin addr
func Generate(cfg *config.Config) ([]byte, error) {
	var f agentFile
	f.FUSE.Dir = cfg.Mount.Path
	f.Data.Dir = cfg.Mount.DataPath
	if cfg.Mount.Retention > 0 {
		f.Data.Retention = formatDuration(cfg.Mount.Retention)
	}

	f.Lease.Hostname = cfg.Node.ID
	f.Lease.AdvertiseURL = cfg.Node.AdvertiseURL
	switch cfg.Replication.Election {
	case config.ElectionStatic:
		f.Lease.Type = "static"
	case config.ElectionVoting:
		f.Lease.Type = "raft"
		if len(cfg.Replication.Candidates) == 0 {
			return nil, fmt.Errorf("%w: voting election requires a candidate list", ErrConfig)
		}
		// Orden estable por hostname para salida byte-idéntica.
		ids := make([]string, 0, len(cfg.Replication.Candidates))
		for id := range cfg.Replication.Candidates {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			f.Lease.Candidates = append(f.Lease.Candidates, leaseCandidate{
				Hostname: id,
				URL:      cfg.Replication.Candidates[id],
			})
		}
	default:
		return nil, fmt.Errorf("%w: unknown election mode %q", ErrConfig, cfg.Replication.Election)
	}

	if cfg.Proxy.Enabled {
		if cfg.Mount.Database == "" {
			return nil, fmt.Errorf("%w: proxy enabled without a database name", ErrConfig)
		}
		if cfg.Proxy.Addr == "" {
			return nil, fmt.Errorf("%w: proxy enabled without an address", ErrConfig)
		}
		f.Proxy = &struct {
			Addr string `yaml:"addr"`
			DB   string `yaml:"db"`
		}{Addr: cfg.Proxy.Addr, DB: cfg.Mount.Database}
	}

	return yaml.Marshal(&f)
}

// WriteFile genera y persiste la config del agente con escritura atómica:
// el agente nunca ve un archivo a medio escribir.
func WriteFile(path string, cfg *config.Config) error {
	b, err := Generate(cfg)
	if err != nil {
		return err
	}
	return atomicwrite.AtomicWriteFile(path, b, 0o644)
}

// formatDuration emite duraciones en la forma compacta que espera el
// agente (ej: "24h0m0s" se normaliza a "24h").
func formatDuration(d time.Duration) string {
	s := d.String()
	for _, suffix := range []string{"m0s", "h0m"} {
		if len(s) > len(suffix) && s[len(s)-len(suffix):] == suffix {
			s = s[:len(s)-2]
		}
	}
	return s
}
