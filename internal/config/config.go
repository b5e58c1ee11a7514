// Package config carga y valida los settings del proceso. Inmutables: se
// construyen una vez en el startup (YAML + overrides de entorno) y se
// pasan por referencia a todos los componentes; nadie los muta después.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Modos de elección de líder.
const (
	ElectionStatic = "static" // marker files del agente (default)
	ElectionVoting = "voting" // votación raft (internal/cluster)
)

type Config struct {
	App struct {
		// dev | prod
		Env string `yaml:"env"`
		// debug | info | warn | error
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Node struct {
		// ID identifica este nodo en el cluster (default: hostname).
		ID string `yaml:"id"`
		// AdvertiseURL es la URL con la que otros nodos nos redirigen escrituras.
		AdvertiseURL string `yaml:"advertise_url"`
	} `yaml:"node"`

	Mount struct {
		// Path del mount FUSE del agente (donde viven los markers y la DB).
		Path string `yaml:"path"`
		// DataPath es el directorio interno de datos del agente.
		DataPath string `yaml:"data_path"`
		// Database es el nombre del archivo SQLite dentro del mount.
		Database string `yaml:"database"`
		// Retention es la ventana de retención de WAL/snapshots del agente.
		Retention time.Duration `yaml:"retention"`
	} `yaml:"mount"`

	Replication struct {
		// Election: static | voting
		Election string `yaml:"election"`
		// Candidates: nodeID -> advertise URL. Requerido con election=voting.
		Candidates map[string]string `yaml:"candidates"`
		// HeartbeatInterval del loop de heartbeats en modo voting.
		HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
		// LivenessWindow para considerar vivo un heartbeat.
		LivenessWindow time.Duration `yaml:"liveness_window"`
		Raft           struct {
			// Dir de datos raft (log BoltDB + snapshots).
			Dir string `yaml:"dir"`
			// Addr host:port del transporte raft.
			Addr string `yaml:"addr"`
			// Peers: nodeID -> host:port del transporte raft de cada
			// candidato. Espacio de direcciones distinto al de Candidates
			// (que son advertise URLs para redirects): el transporte marca
			// host:port crudos, no URLs.
			Peers map[string]string `yaml:"peers"`
			TLS   struct {
				Enable     bool   `yaml:"enable"`
				CertFile   string `yaml:"cert_file"`
				KeyFile    string `yaml:"key_file"`
				CAFile     string `yaml:"ca_file"`
				ServerName string `yaml:"server_name"`
			} `yaml:"tls"`
		} `yaml:"raft"`
	} `yaml:"replication"`

	Cache struct {
		// RoleTTL acota la frecuencia de lecturas de rol en el hot path.
		RoleTTL time.Duration `yaml:"role_ttl"`
	} `yaml:"cache"`

	Proxy struct {
		// Enabled habilita la sección proxy en la config generada del agente.
		Enabled bool `yaml:"enabled"`
		// Addr del proxy conocido (fallback de redirect cuando el marker
		// no trae dirección).
		Addr string `yaml:"addr"`
	} `yaml:"proxy"`

	Server struct {
		// Addr del HTTP de status/health/metrics.
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// Load lee el YAML (path opcional: "" => solo defaults+env), aplica
// defaults y overrides de entorno, y valida.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Node.ID == "" {
		if h, err := os.Hostname(); err == nil {
			c.Node.ID = h
		}
	}
	if c.Mount.Path == "" {
		c.Mount.Path = "/litefs"
	}
	if c.Mount.DataPath == "" {
		c.Mount.DataPath = "/var/lib/litefs"
	}
	if c.Replication.Election == "" {
		c.Replication.Election = ElectionStatic
	}
	if c.Replication.HeartbeatInterval == 0 {
		c.Replication.HeartbeatInterval = time.Second
	}
	if c.Replication.LivenessWindow == 0 {
		c.Replication.LivenessWindow = 10 * time.Second
	}
	if c.Replication.Raft.Dir == "" {
		c.Replication.Raft.Dir = "/var/lib/litegate/raft"
	}
	if c.Cache.RoleTTL == 0 {
		c.Cache.RoleTTL = 500 * time.Millisecond
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":9090"
	}

	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyEnvOverrides pisa el YAML con variables LITEGATE_*.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("LITEGATE_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LITEGATE_LOG_LEVEL"); ok {
		c.App.LogLevel = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LITEGATE_NODE_ID"); ok {
		c.Node.ID = v
	}
	if v, ok := getEnvStr("LITEGATE_ADVERTISE_URL"); ok {
		c.Node.AdvertiseURL = v
	}
	if v, ok := getEnvStr("LITEGATE_MOUNT"); ok {
		c.Mount.Path = v
	}
	if v, ok := getEnvStr("LITEGATE_DATA_PATH"); ok {
		c.Mount.DataPath = v
	}
	if v, ok := getEnvStr("LITEGATE_DATABASE"); ok {
		c.Mount.Database = v
	}
	if v, ok := getEnvDur("LITEGATE_RETENTION"); ok {
		c.Mount.Retention = v
	}
	if v, ok := getEnvStr("LITEGATE_ELECTION"); ok {
		c.Replication.Election = strings.ToLower(v)
	}
	if v, ok := getEnvKVList("LITEGATE_CANDIDATES", ","); ok {
		c.Replication.Candidates = v
	}
	if v, ok := getEnvDur("LITEGATE_HEARTBEAT_INTERVAL"); ok {
		c.Replication.HeartbeatInterval = v
	}
	if v, ok := getEnvDur("LITEGATE_LIVENESS_WINDOW"); ok {
		c.Replication.LivenessWindow = v
	}
	if v, ok := getEnvStr("LITEGATE_RAFT_DIR"); ok {
		c.Replication.Raft.Dir = v
	}
	if v, ok := getEnvStr("LITEGATE_RAFT_ADDR"); ok {
		c.Replication.Raft.Addr = v
	}
	if v, ok := getEnvKVList("LITEGATE_RAFT_PEERS", ","); ok {
		c.Replication.Raft.Peers = v
	}
	if v, ok := getEnvDur("LITEGATE_ROLE_TTL"); ok {
		c.Cache.RoleTTL = v
	}
	if v, ok := getEnvBool("LITEGATE_PROXY_ENABLED"); ok {
		c.Proxy.Enabled = v
	}
	if v, ok := getEnvStr("LITEGATE_PRIMARY_URL"); ok {
		// Override de la dirección del primary para redirects.
		c.Proxy.Addr = v
	}
	if v, ok := getEnvStr("LITEGATE_SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
}

// Validate chequea coherencia individual de los campos. La coherencia
// mutua (ej: voting sin candidates) la valida el generador de config del
// agente, que es quien conoce esos cruces.
func (c *Config) Validate() error {
	switch c.Replication.Election {
	case ElectionStatic, ElectionVoting:
	default:
		return fmt.Errorf("config: unknown election mode %q", c.Replication.Election)
	}
	if c.Node.ID == "" {
		return errors.New("config: node id is empty and hostname lookup failed")
	}
	if c.Mount.Retention < 0 {
		return errors.New("config: negative retention")
	}
	for id, addr := range c.Replication.Raft.Peers {
		// Un peer con scheme es casi seguro un advertise URL pegado en el
		// campo equivocado; el transporte raft no puede marcarlo.
		if strings.Contains(addr, "://") {
			return fmt.Errorf("config: raft peer %s: %q is a URL, expected host:port", id, addr)
		}
	}
	return nil
}

// ─── env helpers ───

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

// parseKVList parsea "k1=v1,k2=v2" en un map.
func parseKVList(s, sep string) map[string]string {
	s = strings.TrimSpace(s)
	if s == "" {
		return map[string]string{}
	}
	items := strings.Split(s, sep)
	out := make(map[string]string, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if i := strings.IndexRune(it, '='); i > 0 {
			k := strings.TrimSpace(it[:i])
			v := strings.TrimSpace(it[i+1:])
			if k != "" && v != "" {
				out[k] = v
			}
		}
	}
	return out
}

func getEnvKVList(key, sep string) (map[string]string, bool) {
	if s, ok := getEnvStr(key); ok {
		return parseKVList(s, sep), true
	}
	return nil, false
}
