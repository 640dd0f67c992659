package canvas

import (
	"context"
	"errors"
)

var (
	ErrNodeNotFound       = errors.New("canvas: node not found")
	ErrEdgeNotFound       = errors.New("canvas: edge not found")
	ErrDuplicateNode      = errors.New("canvas: duplicate node id")
	ErrDuplicateEdge      = errors.New("canvas: connection already exists")
	ErrDanglingEdge       = errors.New("canvas: connection references a missing node")
	ErrSelfLoop           = errors.New("canvas: connection must join two different nodes")
	ErrCycleDetected      = errors.New("canvas: cycle detected, graph is not acyclic")
	ErrInvalidAnchor      = errors.New("canvas: anchor must be top, right, bottom or left")
	ErrUnknownTool        = errors.New("canvas: tool not found in catalog")
	ErrHopLimit           = errors.New("canvas: execution exceeded the hop limit")
	ErrWorkflowNotFound   = errors.New("canvas: workflow not found")
	ErrMalformedWorkflow  = errors.New("canvas: invalid workflow file")
	ErrUnsupportedVersion = errors.New("canvas: unsupported workflow version")
)

// Store defines the contract for persisting saved workflows. Every save is
// written under a freshly generated key so earlier saves are never overwritten.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Workflows
	SaveWorkflow(ctx context.Context, wf *Workflow) (*Record, error)
	GetWorkflow(ctx context.Context, id string) (*Record, error)
	ListWorkflows(ctx context.Context) ([]Summary, error)
	DeleteWorkflow(ctx context.Context, id string) error
}
