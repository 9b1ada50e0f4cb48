// Package store persists completed clustering runs.
//
// Two backends implement [RunStore]: [MemoryStore] for the CLI and tests,
// and [MongoStore] for server deployments where runs must survive restarts
// and be shared between instances.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/voltcluster/voltcluster/pkg/graph"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Params records the inputs of a clustering run.
type Params struct {
	Candidates int    `json:"candidates" bson:"candidates"`
	Clusters   int    `json:"clusters" bson:"clusters"`
	Seed       uint64 `json:"seed,omitempty" bson:"seed,omitempty"`
	Seeded     bool   `json:"seeded,omitempty" bson:"seeded,omitempty"`
	Origin     *int64 `json:"origin,omitempty" bson:"origin,omitempty"`
}

// Run is one completed clustering run.
type Run struct {
	ID        string      `json:"id" bson:"id"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
	GraphHash string      `json:"graph_hash" bson:"graph_hash"`
	Graph     graph.Graph `json:"graph" bson:"graph"`
	Params    Params      `json:"params" bson:"params"`
	Clusters  [][]int64   `json:"clusters" bson:"clusters"`
	Elapsed   int64       `json:"elapsed_ms" bson:"elapsed_ms"` // wall time in milliseconds
}

// RunStore is the interface for run storage backends.
type RunStore interface {
	// Save stores a run.
	Save(ctx context.Context, run *Run) error

	// Get retrieves a run by ID. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
