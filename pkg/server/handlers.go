package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/voltcluster/voltcluster/pkg/cluster"
	apperrors "github.com/voltcluster/voltcluster/pkg/errors"
	"github.com/voltcluster/voltcluster/pkg/graph"
	"github.com/voltcluster/voltcluster/pkg/pipeline"
	"github.com/voltcluster/voltcluster/pkg/store"
)

// maxRequestBody caps cluster request bodies at 8 MiB.
const maxRequestBody = 8 << 20

type clusterRequest struct {
	Graph   graph.Graph      `json:"graph"`
	Options pipeline.Options `json:"options"`
}

type clusterResponse struct {
	RunID     string            `json:"run_id"`
	GraphHash string            `json:"graph_hash"`
	Clusters  [][]int64         `json:"clusters"`
	Cached    bool              `json:"cached"`
	Nodes     int               `json:"nodes"`
	Edges     int               `json:"edges"`
	ElapsedMS int64             `json:"elapsed_ms"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	var req clusterRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decoding request body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	result, err := s.runner.Execute(ctx, req.Graph, req.Options)
	if err != nil {
		writeError(w, classifyPipelineError(ctx, err))
		return
	}

	resp := clusterResponse{
		RunID:     result.RunID,
		GraphHash: result.GraphHash,
		Clusters:  result.Clusters,
		Cached:    result.CacheInfo.ClusterHit,
		Nodes:     result.Stats.NodeCount,
		Edges:     result.Stats.EdgeCount,
		ElapsedMS: result.Stats.ClusterTime.Milliseconds(),
	}
	// The cluster list is already in the response body, so only non-JSON
	// artifacts are echoed back.
	for format, data := range result.Artifacts {
		if format == pipeline.FormatJSON {
			continue
		}
		if resp.Artifacts == nil {
			resp.Artifacts = make(map[string]string)
		}
		resp.Artifacts[format] = string(data)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, apperrors.New(apperrors.ErrCodeRunNotFound, "run %s not found", id))
		return
	}
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "loading run %s", id))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, apperrors.New(apperrors.ErrCodeInvalidParams, "invalid limit %q", raw))
			return
		}
		limit = n
	}
	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "listing runs"))
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// classifyPipelineError maps pipeline failures onto API error codes.
func classifyPipelineError(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		return apperrors.Wrap(apperrors.ErrCodeTimeout, err, "clustering timed out")
	case errors.Is(err, cluster.ErrTooFewNodes),
		errors.Is(err, cluster.ErrTooFewCandidates),
		errors.Is(err, cluster.ErrTooFewClusters),
		errors.Is(err, cluster.ErrUnknownNode):
		return apperrors.Wrap(apperrors.ErrCodeInvalidParams, err, "invalid clustering parameters")
	case errors.Is(err, graph.ErrEmptyGraph),
		errors.Is(err, graph.ErrDuplicateNodeID),
		errors.Is(err, graph.ErrUnknownEdgeEndpoint),
		errors.Is(err, graph.ErrSelfLoop),
		errors.Is(err, graph.ErrNegativeWeight):
		return apperrors.Wrap(apperrors.ErrCodeInvalidGraph, err, "invalid graph")
	default:
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "clustering failed")
	}
}
