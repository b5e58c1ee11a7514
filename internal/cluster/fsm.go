package cluster

import (
	"encoding/json"
	"io"

	"github.com/hashicorp/raft"

	"github.com/dropDatabas3/litegate/internal/election"
)

// FSM aplica heartbeats replicados al ClusterState local. El estado de
// consenso es volátil por diseño: snapshot/restore son no-op porque un
// heartbeat viejo no aporta nada después de un restart (la liveness
// window lo descartaría igual).
type FSM struct {
	state *election.ClusterState
}

func NewFSM(state *election.ClusterState) *FSM {
	return &FSM{state: state}
}

// Apply decodifica el heartbeat y lo registra. La monotonía de términos la
// garantiza RecordHeartbeat, no el orden del log.
func (f *FSM) Apply(l *raft.Log) interface{} {
	if l == nil || len(l.Data) == 0 {
		return nil
	}
	var hb Heartbeat
	if err := json.Unmarshal(l.Data, &hb); err != nil {
		return err
	}
	if hb.NodeID == "" {
		return nil
	}
	f.state.RecordHeartbeat(hb.NodeID, hb.Term, hb.Primary)
	return nil
}

// Snapshot devuelve un snapshot vacío: no hay estado durable que retener.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	return emptySnapshot{}, nil
}

// Restore descarta el snapshot: el estado se reconstruye con heartbeats
// frescos en segundos.
func (f *FSM) Restore(rc io.ReadCloser) error {
	return rc.Close()
}

type emptySnapshot struct{}

func (emptySnapshot) Persist(sink raft.SnapshotSink) error { return sink.Close() }
func (emptySnapshot) Release()                             {}
