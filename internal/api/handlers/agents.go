// Package handlers holds the HTTP endpoint implementations.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hadoku/trader/internal/agents"
	"github.com/hadoku/trader/pkg/logger"
)

// AgentHandler serves the agent configuration registry.
type AgentHandler struct {
	logger *logger.Logger
}

// NewAgentHandler creates an agent handler.
func NewAgentHandler(log *logger.Logger) *AgentHandler {
	return &AgentHandler{logger: log}
}

// List returns every configured agent.
// GET /api/agents
func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	configs := agents.Registry()
	hash, err := agents.Hash(configs)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash agent registry")
		writeError(w, http.StatusInternalServerError, "failed to hash registry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"config_hash": hash,
		"agents":      configs,
	})
}

// Get returns one agent config by id.
// GET /api/agents/{id}
func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	cfg, ok := agents.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown agent "+id)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
