package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/meikuraledutech/canvas"
)

// SaveWorkflow saves a full workflow (header, nodes and edges) in one
// transaction under a freshly generated key.
func (s *PGStore) SaveWorkflow(ctx context.Context, wf *canvas.Workflow) (*canvas.Record, error) {
	if err := canvas.CheckIntegrity(wf.CanvasItems, wf.Connections); err != nil {
		return nil, err
	}
	rec := s.newRecord(wf)
	doc := rec.Workflow

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO workflows (id, name, version, tools, social_integrations, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, doc.Name, doc.Version, doc.Tools, doc.SocialIntegrations, rec.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("postgres: insert workflow: %w", err)
	}
	if err := insertNodes(ctx, tx, rec.ID, doc.CanvasItems); err != nil {
		return nil, err
	}
	if err := insertEdges(ctx, tx, rec.ID, doc.Connections); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("postgres: commit: %w", err)
	}
	return rec, nil
}

// newRecord stamps wf at microsecond precision, the resolution of TIMESTAMPTZ,
// so the returned record matches what GetWorkflow later reads back.
func (s *PGStore) newRecord(wf *canvas.Workflow) *canvas.Record {
	return canvas.NewRecord(wf, s.now().Truncate(time.Microsecond))
}

// GetWorkflow retrieves a saved workflow by key.
// Returns nil, nil if it does not exist.
func (s *PGStore) GetWorkflow(ctx context.Context, id string) (*canvas.Record, error) {
	rec := &canvas.Record{ID: id}
	wf := &rec.Workflow
	err := s.db.QueryRow(ctx,
		`SELECT name, version, tools, social_integrations, created_at FROM workflows WHERE id = $1`, id,
	).Scan(&wf.Name, &wf.Version, &wf.Tools, &wf.SocialIntegrations, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: get workflow: %w", err)
	}

	if wf.CanvasItems, err = s.listNodes(ctx, id); err != nil {
		return nil, err
	}
	if wf.Connections, err = s.listEdges(ctx, id); err != nil {
		return nil, err
	}

	rec.CreatedAt = rec.CreatedAt.UTC()
	created := rec.CreatedAt
	wf.ID = id
	wf.CreatedAt = &created
	if wf.Tools == nil {
		wf.Tools = []canvas.Tool{}
	}
	if wf.SocialIntegrations == nil {
		wf.SocialIntegrations = []canvas.Tool{}
	}
	return rec, nil
}

// ListWorkflows returns a summary of every saved workflow, newest first.
func (s *PGStore) ListWorkflows(ctx context.Context) ([]canvas.Summary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT w.id, w.name, w.created_at,
		       (SELECT COUNT(*) FROM workflow_nodes n WHERE n.workflow_id = w.id),
		       (SELECT COUNT(*) FROM workflow_edges e WHERE e.workflow_id = w.id)
		FROM workflows w
		ORDER BY w.created_at DESC, w.id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list workflows: %w", err)
	}
	defer rows.Close()

	out := []canvas.Summary{}
	for rows.Next() {
		var (
			sum          canvas.Summary
			nodes, edges int64
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.CreatedAt, &nodes, &edges); err != nil {
			return nil, fmt.Errorf("postgres: scan workflow: %w", err)
		}
		sum.Nodes, sum.Edges = int(nodes), int(edges)
		sum.CreatedAt = sum.CreatedAt.UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows workflows: %w", err)
	}
	return out, nil
}

// DeleteWorkflow removes a saved workflow. Nodes and edges are
// cascade-deleted by the DB. No error if the key doesn't exist.
func (s *PGStore) DeleteWorkflow(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id); err != nil {
		return fmt.Errorf("postgres: delete workflow: %w", err)
	}
	return nil
}
