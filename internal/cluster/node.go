package cluster

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"

	"github.com/dropDatabas3/litegate/internal/metrics"
	"github.com/dropDatabas3/litegate/internal/observability/logger"
)

// Node es un wrapper liviano alrededor de *raft.Raft: inicializa stores
// (BoltDB), snapshots y transporte TCP/mTLS, y expone los helpers que
// necesita el heartbeater (Apply/IsLeader/Term).
type Node struct {
	r            *raft.Raft
	applyTimeout time.Duration
	id           raft.ServerID
	addr         raft.ServerAddress
	peers        map[string]string // nodeID -> raftAddr
}

type NodeOptions struct {
	NodeID   string   // identidad de este nodo
	RaftAddr string   // host:port del transporte raft
	RaftDir  string   // directorio de datos (raft.db + snapshots)
	FSM      raft.FSM // FSM de heartbeats
	// Peers: conjunto estático de candidatos (nodeID -> raftAddr). Con >1
	// el bootstrap estático lo hace un solo nodo determinístico.
	Peers map[string]string

	// TLS opcional: stream layer con mTLS para el transporte.
	TLSEnable     bool
	TLSCertFile   string
	TLSKeyFile    string
	TLSCAFile     string
	TLSServerName string
}

func NewNode(opts NodeOptions) (*Node, error) {
	if opts.NodeID == "" || opts.RaftAddr == "" || opts.RaftDir == "" || opts.FSM == nil {
		return nil, errors.New("invalid NodeOptions")
	}
	if err := os.MkdirAll(opts.RaftDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir raft dir: %w", err)
	}
	log := logger.Named("cluster")

	// Stores: log + stable en la misma Bolt DB.
	boltPath := filepath.Join(opts.RaftDir, "raft.db")
	boltStore, err := raftboltdb.NewBoltStore(boltPath)
	if err != nil {
		return nil, fmt.Errorf("bolt store: %w", err)
	}

	// Snapshots en disco (retenemos 2). Son triviales acá (FSM volátil),
	// pero raft los exige para truncar el log.
	snapStore, err := raft.NewFileSnapshotStore(opts.RaftDir, 2, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}

	var trans *raft.NetworkTransport
	if opts.TLSEnable {
		bundle, err := loadTLSBundle(opts.TLSCertFile, opts.TLSKeyFile, opts.TLSCAFile, opts.TLSServerName)
		if err != nil {
			return nil, fmt.Errorf("raft tls: %w", err)
		}
		ln, err := tls.Listen("tcp", opts.RaftAddr, bundle.server)
		if err != nil {
			return nil, fmt.Errorf("tls listen: %w", err)
		}
		trans = raft.NewNetworkTransport(&tlsStream{ln: ln, cfg: bundle.client}, 3, 10*time.Second, os.Stderr)
	} else {
		plain, err := raft.NewTCPTransport(opts.RaftAddr, nil, 3, 10*time.Second, os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("tcp transport: %w", err)
		}
		trans = plain
	}

	cfg := raft.DefaultConfig()
	cfg.LocalID = raft.ServerID(opts.NodeID)

	r, err := raft.NewRaft(cfg, opts.FSM, boltStore, boltStore, snapStore, trans)
	if err != nil {
		return nil, fmt.Errorf("new raft: %w", err)
	}

	// Contador de cambios de liderazgo.
	go func(ch <-chan bool) {
		for v := range ch {
			if v {
				metrics.LeadershipChanges.Inc()
				log.Info("became voting leader", logger.ID(opts.NodeID))
			}
		}
	}(r.LeaderCh())

	// Bootstrap si no hay estado previo. Con peers estáticos bootstrapea
	// solo el de menor NodeID; el resto espera a ser contactado.
	hasState, err := raft.HasExistingState(boltStore, boltStore, snapStore)
	if err != nil {
		return nil, fmt.Errorf("check state: %w", err)
	}
	if !hasState {
		if len(opts.Peers) <= 1 {
			conf := raft.Configuration{Servers: []raft.Server{{ID: cfg.LocalID, Address: trans.LocalAddr()}}}
			if err := r.BootstrapCluster(conf).Error(); err != nil {
				return nil, fmt.Errorf("bootstrap: %w", err)
			}
			log.Info("bootstrapped single-node voting cluster", logger.ID(opts.NodeID))
		} else {
			smallest := opts.NodeID
			for k := range opts.Peers {
				if k < smallest {
					smallest = k
				}
			}
			if opts.NodeID == smallest {
				var servers []raft.Server
				for id, addr := range opts.Peers {
					servers = append(servers, raft.Server{ID: raft.ServerID(id), Address: raft.ServerAddress(addr)})
				}
				if err := r.BootstrapCluster(raft.Configuration{Servers: servers}).Error(); err != nil {
					return nil, fmt.Errorf("bootstrap(static): %w", err)
				}
				log.Info("bootstrapped static voting cluster", logger.Count(len(servers)))
			} else {
				log.Info("waiting to join static voting cluster",
					logger.ID(opts.NodeID), logger.String("bootstrap_node", smallest))
			}
		}
	}

	return &Node{
		r:            r,
		applyTimeout: 5 * time.Second,
		id:           cfg.LocalID,
		addr:         trans.LocalAddr(),
		peers:        opts.Peers,
	}, nil
}

// Apply serializa el heartbeat y espera commit o timeout, respetando la
// cancelación del ctx mientras espera el future.
func (n *Node) Apply(ctx context.Context, hb Heartbeat) error {
	if n == nil || n.r == nil {
		return errors.New("raft not initialized")
	}
	buf, err := json.Marshal(hb)
	if err != nil {
		return err
	}
	start := time.Now()
	fut := n.r.Apply(buf, n.applyTimeout)

	done := make(chan struct{})
	var applyErr error
	go func() {
		applyErr = fut.Error()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		metrics.HeartbeatApplyLatency.Observe(float64(time.Since(start).Milliseconds()))
		return applyErr
	}
}

func (n *Node) IsLeader() bool {
	if n == nil || n.r == nil {
		return false
	}
	return n.r.State() == raft.Leader
}

func (n *Node) LeaderID() string {
	if n == nil || n.r == nil {
		return ""
	}
	addr, id := n.r.LeaderWithID()
	if id != "" {
		return string(id)
	}
	return string(addr)
}

// Term devuelve el término actual según raft. Stats lo expone como string.
func (n *Node) Term() uint64 {
	if n == nil || n.r == nil {
		return 0
	}
	if t, err := strconv.ParseUint(n.r.Stats()["term"], 10, 64); err == nil {
		return t
	}
	return 0
}

func (n *Node) NodeID() string {
	if n == nil {
		return ""
	}
	return string(n.id)
}

func (n *Node) RaftAddr() string {
	if n == nil {
		return ""
	}
	return string(n.addr)
}

// Stats expone las métricas crudas del raft embebido (status surface).
func (n *Node) Stats() map[string]string {
	if n == nil || n.r == nil {
		return map[string]string{}
	}
	return n.r.Stats()
}

func (n *Node) Close() error {
	if n == nil || n.r == nil {
		return nil
	}
	return n.r.Shutdown().Error()
}

// ─── TLS helpers ───

type tlsBundle struct {
	server *tls.Config
	client *tls.Config
}

func loadTLSBundle(certFile, keyFile, caFile, serverName string) (*tlsBundle, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, err
	}
	caPEM, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("invalid CA file")
	}
	server := &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.RequireAndVerifyClientCert,
		ClientCAs:    pool,
		MinVersion:   tls.VersionTLS12,
	}
	client := &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		MinVersion:   tls.VersionTLS12,
		ServerName:   serverName,
	}
	return &tlsBundle{server: server, client: client}, nil
}

type tlsStream struct {
	ln  net.Listener
	cfg *tls.Config
}

func (t *tlsStream) Dial(address raft.ServerAddress, timeout time.Duration) (net.Conn, error) {
	d := &net.Dialer{Timeout: timeout}
	return tls.DialWithDialer(d, "tcp", string(address), t.cfg)
}
func (t *tlsStream) Accept() (net.Conn, error) { return t.ln.Accept() }
func (t *tlsStream) Close() error              { return t.ln.Close() }
func (t *tlsStream) Addr() net.Addr            { return t.ln.Addr() }
