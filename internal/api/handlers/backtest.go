package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/hadoku/trader/internal/agents"
	"github.com/hadoku/trader/internal/backtest"
	"github.com/hadoku/trader/internal/contracts"
	"github.com/hadoku/trader/internal/dataset"
	"github.com/hadoku/trader/pkg/config"
	"github.com/hadoku/trader/pkg/logger"
)

// RunStatus is the lifecycle state of an API-triggered backtest.
type RunStatus string

const (
	RunRunning  RunStatus = "running"
	RunComplete RunStatus = "complete"
	RunFailed   RunStatus = "failed"
)

// Run is one backtest started through the API.
type Run struct {
	ID         string           `json:"id"`
	Status     RunStatus        `json:"status"`
	Dataset    string           `json:"dataset"`
	AgentIDs   []string         `json:"agent_ids"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	Report     *backtest.Report `json:"report,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// StartRequest is the POST /api/backtest body.
type StartRequest struct {
	// Dataset is a file name under the configured data directory.
	Dataset string `json:"dataset"`
	// Agents selects built-in agent ids; empty means all of them.
	Agents []string `json:"agents,omitempty"`
	// Start and End override the dataset's natural span (YYYY-MM-DD).
	Start     string `json:"start,omitempty"`
	End       string `json:"end,omitempty"`
	Benchmark string `json:"benchmark,omitempty"`
}

// BacktestHandler runs backtests in the background and serves their
// reports and live event streams.
type BacktestHandler struct {
	logger *logger.Logger
	cfg    *config.Config
	hub    *Hub

	mu      sync.RWMutex
	runs    map[string]*Run
	counter int
}

// NewBacktestHandler creates a backtest handler.
func NewBacktestHandler(cfg *config.Config, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{
		logger: log,
		cfg:    cfg,
		hub:    NewHub(),
		runs:   make(map[string]*Run),
	}
}

// Start launches a backtest from a stored dataset.
// POST /api/backtest
func (h *BacktestHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Dataset == "" {
		writeError(w, http.StatusBadRequest, "dataset is required")
		return
	}

	// dataset name only; no directory escapes
	path := filepath.Join(h.cfg.DataDir, filepath.Base(req.Dataset))
	ds, err := dataset.Load(path)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("load dataset: %v", err))
		return
	}

	configs, err := resolveAgents(req.Agents)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start, end := ds.Span()
	if req.Start != "" {
		if start, err = time.Parse("2006-01-02", req.Start); err != nil {
			writeError(w, http.StatusBadRequest, "invalid start date")
			return
		}
	}
	if req.End != "" {
		if end, err = time.Parse("2006-01-02", req.End); err != nil {
			writeError(w, http.StatusBadRequest, "invalid end date")
			return
		}
	}

	run := h.newRun(req.Dataset, configs)

	var stats contracts.StatsProvider
	if book := ds.StatsBook(); book != nil {
		stats = book
	}
	engine, err := backtest.NewEngine(configs, ds.Signals, ds.PriceBook(), stats, h.logger, backtest.Options{
		Start:           start,
		End:             end,
		BenchmarkTicker: req.Benchmark,
		EventSink: func(ev contracts.Event) {
			h.hub.Broadcast(run.ID, ev)
		},
	})
	if err != nil {
		h.finishRun(run.ID, nil, err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	go func() {
		report, runErr := engine.Run(context.Background())
		h.finishRun(run.ID, report, runErr)
	}()

	writeJSON(w, http.StatusAccepted, run)
}

// List returns all runs, newest first.
// GET /api/backtest
func (h *BacktestHandler) List(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	runs := make([]*Run, 0, len(h.runs))
	for _, run := range h.runs {
		runs = append(runs, run)
	}
	h.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// Get returns one run with its report when finished.
// GET /api/backtest/{id}
func (h *BacktestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	h.mu.RLock()
	run, ok := h.runs[id]
	h.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown run "+id)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// the API serves a local dashboard; cross-origin reads are fine
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Stream sends a run's events over a websocket as they happen, then
// closes when the run finishes.
// GET /ws/backtest/{id}
func (h *BacktestHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	h.mu.RLock()
	_, ok := h.runs[id]
	h.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown run "+id)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	events, cancel := h.hub.Subscribe(id)
	defer cancel()

	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
}

func (h *BacktestHandler) newRun(datasetName string, configs []*contracts.AgentConfig) *Run {
	ids := make([]string, len(configs))
	for i, cfg := range configs {
		ids[i] = cfg.ID
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.counter++
	run := &Run{
		ID:        fmt.Sprintf("run-%d", h.counter),
		Status:    RunRunning,
		Dataset:   datasetName,
		AgentIDs:  ids,
		StartedAt: time.Now().UTC(),
	}
	h.runs[run.ID] = run
	return run
}

func (h *BacktestHandler) finishRun(id string, report *backtest.Report, err error) {
	h.mu.Lock()
	if run, ok := h.runs[id]; ok {
		now := time.Now().UTC()
		run.FinishedAt = &now
		if err != nil {
			run.Status = RunFailed
			run.Error = err.Error()
		} else {
			run.Status = RunComplete
			run.Report = report
		}
	}
	h.mu.Unlock()

	h.hub.Finish(id)
	if err != nil {
		h.logger.WithError(err).WithField("run", id).Error("backtest failed")
	}
}

func resolveAgents(ids []string) ([]*contracts.AgentConfig, error) {
	if len(ids) == 0 {
		return agents.Registry(), nil
	}
	configs := make([]*contracts.AgentConfig, 0, len(ids))
	for _, id := range ids {
		cfg, ok := agents.Get(id)
		if !ok {
			return nil, fmt.Errorf("unknown agent %q", id)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
