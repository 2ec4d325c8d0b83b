package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T) (*httptest.Server, *ConfigStore) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.TurnBudgetMs = 200
	cfg.MaxDepth = 4
	cfg.EnableEvalCache = false
	store := &ConfigStore{config: cfg}
	srv := NewServer(zerolog.Nop(), store, NewHub(8))
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, store
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

const apiBoard = "6 3\n#### 2\n#1    \n# ####\n"

func TestPingEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/ping")
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ping status %d", resp.StatusCode)
	}
}

func TestDecideEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/decide", decideRequest{Board: apiBoard, Player: 1})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("decide status %d", resp.StatusCode)
	}
	var out decisionDTO
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Move != East.String() || out.Code != East.ProtocolCode() {
		t.Fatalf("expected East, got %+v", out)
	}
	if out.Depth == 0 {
		t.Fatalf("expected a completed depth")
	}
}

func TestDecideEndpointRejectsBadInput(t *testing.T) {
	ts, _ := newTestServer(t)
	cases := []decideRequest{
		{Board: "3 1\n1x2\n", Player: 1},
		{Board: apiBoard, Player: 3},
	}
	for _, req := range cases {
		resp := postJSON(t, ts.URL+"/api/decide", req)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for %+v, got %d", req, resp.StatusCode)
		}
	}
	resp, err := http.Post(ts.URL+"/api/decide", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid JSON, got %d", resp.StatusCode)
	}
}

func TestEvaluateEndpointSwapsForPlayerTwo(t *testing.T) {
	ts, _ := newTestServer(t)
	board := "5 1\n1  #2\n"
	var first, second evaluationDTO
	for player, out := range map[int]*evaluationDTO{1: &first, 2: &second} {
		resp := postJSON(t, ts.URL+"/api/evaluate", evaluateRequest{Board: board, Player: player})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("evaluate status %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		resp.Body.Close()
	}
	if !first.Isolated || first.Territory != 2 || first.ReachableSelf != 2 || first.ReachableOpponent != 0 {
		t.Fatalf("unexpected evaluation %+v", first)
	}
	if second.Territory != -2 || second.ReachableSelf != 0 {
		t.Fatalf("player 2 view should be mirrored, got %+v", second)
	}
}

func TestConfigEndpoints(t *testing.T) {
	ts, store := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/config", map[string]any{"max_depth": 2})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("config update status %d", resp.StatusCode)
	}
	if got := store.Get(); got.MaxDepth != 2 || got.TurnBudgetMs != 200 {
		t.Fatalf("partial update should keep other fields, got %+v", got)
	}
	resp = postJSON(t, ts.URL+"/api/config", map[string]any{"move_ordering": "random"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid config, got %d", resp.StatusCode)
	}
	if store.Get().MoveOrdering != orderingSwap {
		t.Fatalf("invalid config must not be stored")
	}
}

func TestEvalCacheEndpoints(t *testing.T) {
	ts, store := newTestServer(t)
	cfg := store.Get()
	cfg.EnableEvalCache = true
	cfg.EvalCacheSize = 64
	store.Update(cfg)

	resp, err := http.Get(ts.URL + "/api/cache/eval")
	if err != nil {
		t.Fatalf("get cache: %v", err)
	}
	var status struct {
		Enabled bool            `json:"enabled"`
		Status  EvalCacheStatus `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if !status.Enabled || status.Status.Slots != 64 {
		t.Fatalf("unexpected cache status %+v", status)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/cache/eval", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete cache: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
}
