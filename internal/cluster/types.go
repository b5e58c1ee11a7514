// Package cluster es el mecanismo de conteo de votos que respalda la
// elección "voting": un nodo raft embebido (hashicorp/raft) cuyo log
// replica heartbeats de liderazgo hacia el ClusterState de cada nodo.
package cluster

// Heartbeat es la entrada replicada por el log raft. JSON crudo, igual
// que el resto de los payloads del proyecto.
type Heartbeat struct {
	NodeID  string `json:"nodeId"`
	Term    uint64 `json:"term"`
	Primary bool   `json:"primary"`
	TsUnix  int64  `json:"tsUnix"`
}
