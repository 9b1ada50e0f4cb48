package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/voltcluster/voltcluster/pkg/graph"
	"github.com/voltcluster/voltcluster/pkg/pipeline"
	"github.com/voltcluster/voltcluster/pkg/store"
)

func testServer(t *testing.T) (*Server, store.RunStore) {
	t.Helper()
	st := store.NewMemoryStore()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, st, logger)
	return New(runner, st, logger), st
}

func testGraphJSON() json.RawMessage {
	return json.RawMessage(`{
		"nodes": [{"id": 0}, {"id": 1}, {"id": 2}, {"id": 3}, {"id": 4}, {"id": 5}],
		"edges": [
			{"from": 0, "to": 1}, {"from": 1, "to": 2}, {"from": 0, "to": 2},
			{"from": 3, "to": 4}, {"from": 4, "to": 5}, {"from": 3, "to": 5},
			{"from": 2, "to": 3}
		]
	}`)
}

func postCluster(t *testing.T, s *Server, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cluster", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestClusterEndpoint(t *testing.T) {
	s, st := testServer(t)

	body := fmt.Sprintf(`{"graph": %s, "options": {"clusters": 2, "candidates": 10, "seed": 42, "seeded": true}}`,
		testGraphJSON())
	rec := postCluster(t, s, []byte(body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var resp clusterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RunID == "" {
		t.Error("run_id should be set")
	}
	if resp.Nodes != 6 || resp.Edges != 7 {
		t.Errorf("nodes/edges = %d/%d, want 6/7", resp.Nodes, resp.Edges)
	}

	seen := make(map[int64]int)
	for _, cl := range resp.Clusters {
		for _, id := range cl {
			seen[id]++
		}
	}
	for id := int64(0); id < 6; id++ {
		if seen[id] != 1 {
			t.Errorf("node %d assigned %d times, want exactly once", id, seen[id])
		}
	}

	// The run is retrievable from the store.
	if _, err := st.Get(context.Background(), resp.RunID); err != nil {
		t.Errorf("stored run lookup: %v", err)
	}
}

func TestClusterEndpointRejectsBadJSON(t *testing.T) {
	s, _ := testServer(t)

	rec := postCluster(t, s, []byte("{not json"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Code == "" {
		t.Error("error response should carry a code")
	}
}

func TestClusterEndpointRejectsInvalidGraph(t *testing.T) {
	s, _ := testServer(t)

	rec := postCluster(t, s, []byte(`{"graph": {"nodes": [], "edges": []}, "options": {}}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestGetRun(t *testing.T) {
	s, st := testServer(t)

	run := &store.Run{
		ID:        "r1",
		CreatedAt: time.Now().UTC(),
		Graph:     graph.Graph{Nodes: []graph.Node{{ID: 1}, {ID: 2}}},
		Clusters:  [][]int64{{1, 2}},
	}
	if err := st.Save(context.Background(), run); err != nil {
		t.Fatalf("Save: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/r1", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got store.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if got.ID != "r1" || len(got.Clusters) != 1 {
		t.Errorf("run = %+v, want the stored run", got)
	}
}

func TestGetRunNotFound(t *testing.T) {
	s, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/missing", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListRuns(t *testing.T) {
	s, st := testServer(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := &store.Run{ID: fmt.Sprintf("r%d", i), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := st.Save(context.Background(), run); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=2", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var runs []store.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "r2" {
		t.Errorf("first run = %s, want newest (r2)", runs[0].ID)
	}
}

func TestListRunsRejectsBadLimit(t *testing.T) {
	s, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=zero", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
