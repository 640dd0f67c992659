package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/meikuraledutech/canvas"
)

// insertEdges writes the connections of a workflow, keeping their order.
// Nodes must already be inserted.
func insertEdges(ctx context.Context, tx pgx.Tx, workflowID string, edges []canvas.Edge) error {
	for i, e := range edges {
		if _, err := tx.Exec(ctx,
			`INSERT INTO workflow_edges (workflow_id, id, position, from_node, from_point, to_node, to_point, config)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			workflowID, e.ID, i, e.From, string(e.FromPoint), e.To, string(e.ToPoint), e.Config.Clone(),
		); err != nil {
			return fmt.Errorf("postgres: insert edge %s: %w", e.ID, err)
		}
	}
	return nil
}

// listEdges returns the connections of a workflow in insertion order.
func (s *PGStore) listEdges(ctx context.Context, workflowID string) ([]canvas.Edge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, from_node, from_point, to_node, to_point, config
		 FROM workflow_edges WHERE workflow_id = $1 ORDER BY position`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list edges: %w", err)
	}
	defer rows.Close()

	edges := []canvas.Edge{}
	for rows.Next() {
		var (
			e        canvas.Edge
			from, to string
		)
		if err := rows.Scan(&e.ID, &e.From, &from, &e.To, &to, &e.Config); err != nil {
			return nil, fmt.Errorf("postgres: scan edge: %w", err)
		}
		e.FromPoint, e.ToPoint = canvas.Anchor(from), canvas.Anchor(to)
		edges = append(edges, e.Clone())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows edges: %w", err)
	}
	return edges, nil
}
