package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/hadoku/trader/internal/contracts"
	"github.com/hadoku/trader/internal/dataset"
	"github.com/hadoku/trader/pkg/config"
	"github.com/hadoku/trader/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{LogLevel: "error", LogFormat: "json"})
}

func testConfig(dataDir string) *config.Config {
	return &config.Config{
		Port:      "0",
		LogLevel:  "error",
		LogFormat: "json",
		DataDir:   dataDir,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func writeTestDataset(t *testing.T, dir string) string {
	t.Helper()

	ds := &dataset.Dataset{
		Name: "test",
		Signals: []contracts.Signal{{
			Ticker:         "AAPL",
			Action:         contracts.ActionBuy,
			AssetType:      contracts.AssetStock,
			TradePrice:     100,
			TradeDate:      day(2024, time.January, 3),
			DisclosureDate: day(2024, time.January, 8),
			SizeEstimate:   32500,
			Source:         "senate_efd",
			Politician:     "Jane Doe",
		}},
	}
	for d := day(2024, time.January, 8); !d.After(day(2024, time.January, 31)); d = d.AddDate(0, 0, 1) {
		ds.Prices = append(ds.Prices, dataset.PricePoint{Ticker: "AAPL", Date: d, Close: 100})
	}

	path := filepath.Join(dir, "test.json")
	if err := ds.Save(path); err != nil {
		t.Fatalf("save dataset: %v", err)
	}
	return "test.json"
}

func TestAgentListAndGet(t *testing.T) {
	h := NewAgentHandler(testLogger())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/agents", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	var listResp struct {
		ConfigHash string                   `json:"config_hash"`
		Agents     []*contracts.AgentConfig `json:"agents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listResp.Agents) == 0 {
		t.Fatal("expected agents in list")
	}
	if len(listResp.ConfigHash) != 64 {
		t.Errorf("config_hash = %q, want 64 hex chars", listResp.ConfigHash)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/agents/nobody", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "nobody"})
	rec = httptest.NewRecorder()
	h.Get(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get unknown agent status = %d, want 404", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/agents/grok", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "grok"})
	rec = httptest.NewRecorder()
	h.Get(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get grok status = %d", rec.Code)
	}
	var cfg contracts.AgentConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode agent: %v", err)
	}
	if cfg.ID != "grok" {
		t.Errorf("agent id = %q, want grok", cfg.ID)
	}
}

func TestBacktestStartAndGet(t *testing.T) {
	dir := t.TempDir()
	name := writeTestDataset(t, dir)
	h := NewBacktestHandler(testConfig(dir), testLogger())

	body, _ := json.Marshal(StartRequest{Dataset: name, Agents: []string{"grok"}})
	rec := httptest.NewRecorder()
	h.Start(rec, httptest.NewRequest(http.MethodPost, "/api/backtest", bytes.NewReader(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body.String())
	}

	var started Run
	if err := json.Unmarshal(rec.Body.Bytes(), &started); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	if started.ID == "" {
		t.Fatal("expected a run id")
	}

	deadline := time.Now().Add(5 * time.Second)
	var run Run
	for {
		req := httptest.NewRequest(http.MethodGet, "/api/backtest/"+started.ID, nil)
		req = mux.SetURLVars(req, map[string]string{"id": started.ID})
		rec = httptest.NewRecorder()
		h.Get(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("get status = %d", rec.Code)
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
			t.Fatalf("decode run: %v", err)
		}
		if run.Status != RunRunning {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("run did not finish in time")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if run.Status != RunComplete {
		t.Fatalf("run status = %q, error %q", run.Status, run.Error)
	}
	if run.Report == nil {
		t.Fatal("expected a report on the completed run")
	}
	if len(run.Report.Agents) != 1 || run.Report.Agents[0].AgentID != "grok" {
		t.Errorf("unexpected report agents: %+v", run.Report.Agents)
	}
}

func TestBacktestStartRejectsBadInput(t *testing.T) {
	h := NewBacktestHandler(testConfig(t.TempDir()), testLogger())

	cases := []struct {
		name string
		body string
	}{
		{"empty dataset", `{}`},
		{"missing file", `{"dataset":"nope.json"}`},
		{"bad json", `{`},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.Start(rec, httptest.NewRequest(http.MethodPost, "/api/backtest", bytes.NewReader([]byte(tc.body))))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, rec.Code)
		}
	}
}

func TestBacktestStartRejectsUnknownAgent(t *testing.T) {
	dir := t.TempDir()
	name := writeTestDataset(t, dir)
	h := NewBacktestHandler(testConfig(dir), testLogger())

	body, _ := json.Marshal(StartRequest{Dataset: name, Agents: []string{"nobody"}})
	rec := httptest.NewRecorder()
	h.Start(rec, httptest.NewRequest(http.MethodPost, "/api/backtest", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHubBroadcastAndFinish(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe("run-1")
	defer cancel()

	hub.Broadcast("run-1", contracts.Event{Seq: 1, Type: contracts.EventTradeExecuted})
	hub.Broadcast("run-2", contracts.Event{Seq: 2, Type: contracts.EventTradeExecuted})

	select {
	case ev := <-ch:
		if ev.Seq != 1 {
			t.Errorf("seq = %d, want 1", ev.Seq)
		}
	default:
		t.Fatal("expected a buffered event")
	}
	select {
	case ev := <-ch:
		t.Fatalf("got event %d from another run", ev.Seq)
	default:
	}

	hub.Finish("run-1")
	if _, open := <-ch; open {
		t.Error("expected channel closed after finish")
	}

	late, lateCancel := hub.Subscribe("run-1")
	defer lateCancel()
	if _, open := <-late; open {
		t.Error("expected closed channel for finished run")
	}
}

func TestHubCancelRemovesSubscriber(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe("run-1")
	cancel()

	hub.Broadcast("run-1", contracts.Event{Seq: 1})
	select {
	case ev, open := <-ch:
		if open {
			t.Errorf("got event %d after cancel", ev.Seq)
		}
	default:
	}
}
