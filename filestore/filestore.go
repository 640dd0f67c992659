// Package filestore keeps saved workflows as one JSON document per key in a
// directory.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/memstore"
)

const ext = ".json"

// FileStore implements canvas.Store on the local filesystem.
type FileStore struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// New returns a FileStore rooted at dir. The directory is created by
// CreateSchema, or lazily on the first save.
func New(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

// Dir returns the directory the store writes into.
func (s *FileStore) Dir() string { return s.dir }

// CreateSchema creates the store directory.
func (s *FileStore) CreateSchema(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("filestore: create dir: %w", err)
	}
	return nil
}

// DropSchema removes every saved workflow file. Other files are left alone.
func (s *FileStore) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("filestore: drop: %w", err)
	}
	for _, e := range entries {
		if !isRecordFile(e) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return fmt.Errorf("filestore: drop %s: %w", e.Name(), err)
		}
	}
	return nil
}

// SaveWorkflow writes wf under a fresh key.
func (s *FileStore) SaveWorkflow(ctx context.Context, wf *canvas.Workflow) (*canvas.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := canvas.NewRecord(wf, s.now())

	data, err := json.MarshalIndent(rec.Workflow, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("filestore: encode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("filestore: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("filestore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("filestore: write: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(rec.ID)); err != nil {
		return nil, fmt.Errorf("filestore: commit %s: %w", rec.ID, err)
	}
	return rec, nil
}

// GetWorkflow reads one record. It returns nil, nil when the key is unknown.
func (s *FileStore) GetWorkflow(ctx context.Context, id string) (*canvas.Record, error) {
	if !validKey(id) {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

// ListWorkflows returns summaries of every record, newest first. Files that
// cannot be decoded are skipped.
func (s *FileStore) ListWorkflows(ctx context.Context) ([]canvas.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []canvas.Summary{}
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: list: %w", err)
	}

	for _, e := range entries {
		if !isRecordFile(e) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := s.read(strings.TrimSuffix(e.Name(), ext))
		if err != nil || rec == nil {
			continue
		}
		out = append(out, rec.Summary())
	}
	memstore.SortSummaries(out)
	return out, nil
}

// DeleteWorkflow removes a record. Unknown keys are not an error.
func (s *FileStore) DeleteWorkflow(ctx context.Context, id string) error {
	if !validKey(id) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("filestore: delete %s: %w", id, err)
	}
	return nil
}

func (s *FileStore) read(id string) (*canvas.Record, error) {
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: read %s: %w", id, err)
	}

	var wf canvas.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("filestore: decode %s: %w: %v", id, canvas.ErrMalformedWorkflow, err)
	}
	wf.ID = id
	wf.CanvasItems = canvas.CloneNodes(wf.CanvasItems)
	wf.Connections = canvas.CloneEdges(wf.Connections)
	rec := &canvas.Record{ID: id, Workflow: wf}
	if wf.CreatedAt != nil {
		rec.CreatedAt = *wf.CreatedAt
	}
	return rec, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+ext)
}

// validKey rejects ids that would escape the store directory.
func validKey(id string) bool {
	return strings.HasPrefix(id, canvas.RecordPrefix) &&
		!strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}

func isRecordFile(e fs.DirEntry) bool {
	return !e.IsDir() && strings.HasPrefix(e.Name(), canvas.RecordPrefix) && strings.HasSuffix(e.Name(), ext)
}
