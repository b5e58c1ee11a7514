package httpapi

import (
	"net/http"

	"github.com/dropDatabas3/litegate/internal/detect"
	"github.com/dropDatabas3/litegate/internal/election"
	"github.com/dropDatabas3/litegate/internal/mount"
	"github.com/dropDatabas3/litegate/internal/signal"
)

// statusResponse es la vista operacional del nodo: snapshot de rol actual
// y, con elección por votos, la vista del cluster y el chequeo split-brain.
type statusResponse struct {
	NodeID     string               `json:"node_id"`
	Election   string               `json:"election"`
	Role       string               `json:"role"`
	PrimaryURL string               `json:"primary_url,omitempty"`
	Snapshot   detect.Snapshot      `json:"snapshot"`
	SplitBrain []string             `json:"split_brain,omitempty"`
	Nodes      []election.NodeState `json:"nodes,omitempty"`
}

// handleHealthz: liveness. 200 si el proceso puede leer la fuente de rol;
// 503 con agente caído.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Detector.DetectRole(r.Context()); err != nil {
		if signal.IsNotRunning(err) {
			WriteError(w, http.StatusServiceUnavailable, "agent_not_running", err.Error())
			return
		}
		WriteError(w, http.StatusServiceUnavailable, "role_unreadable", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz: readiness. Además del rol, exige que el mount siga siendo
// válido (con elección estática; con voting no hay mount que validar).
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.MountPath != "" {
		if err := mount.Validate(s.MountPath); err != nil {
			WriteError(w, http.StatusServiceUnavailable, "invalid_mount", err.Error())
			return
		}
	}
	if _, err := s.Detector.DetectRole(r.Context()); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "role_unreadable", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleStatus: snapshot completo para tooling.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Detector.DetectRole(r.Context())
	if err != nil {
		WriteError(w, http.StatusServiceUnavailable, "role_unreadable", err.Error())
		return
	}

	resp := statusResponse{
		NodeID:   s.NodeID,
		Election: s.Election,
		Role:     snap.Role.String(),
		Snapshot: snap,
	}
	if s.URLs != nil && snap.Role == detect.RoleReplica {
		if u, uerr := s.URLs.PrimaryURL(r.Context()); uerr == nil {
			resp.PrimaryURL = u
		}
	}
	if s.Voting != nil {
		resp.SplitBrain = s.Voting.State().SplitBrain()
		resp.Nodes = s.Voting.State().Nodes()
	}
	WriteJSON(w, http.StatusOK, resp)
}
