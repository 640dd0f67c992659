// Package memstore is an in-process canvas.Store, the equivalent of the
// browser key-value storage the editor saves into.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/meikuraledutech/canvas"
)

// MemStore implements canvas.Store in memory.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]*canvas.Record
	now     func() time.Time
}

// New creates an empty MemStore.
func New() *MemStore {
	return &MemStore{records: make(map[string]*canvas.Record), now: time.Now}
}

// CreateSchema is a no-op.
func (s *MemStore) CreateSchema(ctx context.Context) error { return nil }

// DropSchema removes every saved workflow.
func (s *MemStore) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*canvas.Record)
	return nil
}

// SaveWorkflow stores a copy of wf under a fresh key.
func (s *MemStore) SaveWorkflow(ctx context.Context, wf *canvas.Workflow) (*canvas.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := canvas.NewRecord(wf, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	return copyRecord(rec), nil
}

// GetWorkflow returns a copy of the record, or nil, nil if absent.
func (s *MemStore) GetWorkflow(ctx context.Context, id string) (*canvas.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return copyRecord(rec), nil
}

// ListWorkflows returns summaries, newest first.
func (s *MemStore) ListWorkflows(ctx context.Context) ([]canvas.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]canvas.Summary, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Summary())
	}
	SortSummaries(out)
	return out, nil
}

// DeleteWorkflow removes a record. No error if it doesn't exist.
func (s *MemStore) DeleteWorkflow(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// SortSummaries orders summaries newest first, ties broken by id.
func SortSummaries(list []canvas.Summary) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

func copyRecord(rec *canvas.Record) *canvas.Record {
	cp := *rec
	cp.Workflow.Tools = append([]canvas.Tool{}, rec.Workflow.Tools...)
	cp.Workflow.SocialIntegrations = append([]canvas.Tool{}, rec.Workflow.SocialIntegrations...)
	cp.Workflow.CanvasItems = canvas.CloneNodes(rec.Workflow.CanvasItems)
	cp.Workflow.Connections = canvas.CloneEdges(rec.Workflow.Connections)
	return &cp
}
