package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/meikuraledutech/canvas"
)

// insertNodes writes the canvas items of a workflow, keeping their order.
func insertNodes(ctx context.Context, tx pgx.Tx, workflowID string, nodes []canvas.Node) error {
	for i, n := range nodes {
		if _, err := tx.Exec(ctx,
			`INSERT INTO workflow_nodes (workflow_id, id, position, tool_id, x, y, width, height, label, config)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			workflowID, n.ID, i, n.ToolID, n.X, n.Y, n.Width, n.Height, n.Label, canvas.CloneConfig(n.Config),
		); err != nil {
			return fmt.Errorf("postgres: insert node %s: %w", n.ID, err)
		}
	}
	return nil
}

// listNodes returns the nodes of a workflow in insertion order.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) listNodes(ctx context.Context, workflowID string) ([]canvas.Node, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, tool_id, x, y, width, height, label, config
		 FROM workflow_nodes WHERE workflow_id = $1 ORDER BY position`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list nodes: %w", err)
	}
	defer rows.Close()

	nodes := []canvas.Node{}
	for rows.Next() {
		var n canvas.Node
		if err := rows.Scan(&n.ID, &n.ToolID, &n.X, &n.Y, &n.Width, &n.Height, &n.Label, &n.Config); err != nil {
			return nil, fmt.Errorf("postgres: scan node: %w", err)
		}
		nodes = append(nodes, n.Clone())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows nodes: %w", err)
	}
	return nodes, nil
}
