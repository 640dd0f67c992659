package postgres

import (
	"context"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS workflows (
    id                  TEXT PRIMARY KEY,
    name                TEXT NOT NULL,
    version             INTEGER NOT NULL,
    tools               JSONB NOT NULL DEFAULT '[]',
    social_integrations JSONB NOT NULL DEFAULT '[]',
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS workflow_nodes (
    workflow_id TEXT NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
    id          TEXT NOT NULL,
    position    INTEGER NOT NULL,
    tool_id     TEXT NOT NULL,
    x           DOUBLE PRECISION NOT NULL,
    y           DOUBLE PRECISION NOT NULL,
    width       DOUBLE PRECISION NOT NULL DEFAULT 0,
    height      DOUBLE PRECISION NOT NULL DEFAULT 0,
    label       TEXT NOT NULL DEFAULT '',
    config      JSONB NOT NULL DEFAULT '{}',
    PRIMARY KEY (workflow_id, id)
);

CREATE TABLE IF NOT EXISTS workflow_edges (
    workflow_id TEXT NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
    id          TEXT NOT NULL,
    position    INTEGER NOT NULL,
    from_node   TEXT NOT NULL,
    from_point  TEXT NOT NULL,
    to_node     TEXT NOT NULL,
    to_point    TEXT NOT NULL,
    config      JSONB NOT NULL DEFAULT '{}',
    PRIMARY KEY (workflow_id, id),
    FOREIGN KEY (workflow_id, from_node) REFERENCES workflow_nodes(workflow_id, id) ON DELETE CASCADE,
    FOREIGN KEY (workflow_id, to_node)   REFERENCES workflow_nodes(workflow_id, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_workflows_created_at ON workflows(created_at DESC);
`

// CreateSchema creates the workflows, workflow_nodes and workflow_edges
// tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: create schema: %w", err)
	}
	return nil
}

// DropSchema drops all workflow tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS workflow_edges, workflow_nodes, workflows CASCADE;`); err != nil {
		return fmt.Errorf("postgres: drop schema: %w", err)
	}
	return nil
}
