package memstore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/canvas"
)

func sample(name string) *canvas.Workflow {
	return &canvas.Workflow{
		Name:  name,
		Tools: []canvas.Tool{{ID: "tool-1", Name: "Agent"}},
		CanvasItems: []canvas.Node{
			{ID: "a", ToolID: "tool-1", Config: map[string]any{}},
			{ID: "b", ToolID: "tool-1", Config: map[string]any{}},
		},
		Connections: []canvas.Edge{{ID: "e", From: "a", FromPoint: canvas.AnchorRight, To: "b", ToPoint: canvas.AnchorLeft}},
	}
}

func TestSaveNeverReusesKeys(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.SaveWorkflow(ctx, sample("Launch"))
	require.NoError(t, err)
	second, err := s.SaveWorkflow(ctx, sample("Launch"))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, strings.HasPrefix(first.ID, canvas.RecordPrefix))
	assert.Equal(t, first.ID, first.Workflow.ID)
	assert.Equal(t, canvas.SchemaVersion, first.Workflow.Version)
	require.NotNil(t, first.Workflow.CreatedAt)

	list, err := s.ListWorkflows(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestGetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	rec, err := s.SaveWorkflow(ctx, sample("Launch"))
	require.NoError(t, err)

	got, err := s.GetWorkflow(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	got.Workflow.CanvasItems[0].Label = "mutated"

	again, _ := s.GetWorkflow(ctx, rec.ID)
	assert.Empty(t, again.Workflow.CanvasItems[0].Label)
}

func TestGetMissing(t *testing.T) {
	rec, err := New().GetWorkflow(context.Background(), "workflow-nope")
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestListNewestFirstAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	old, _ := s.SaveWorkflow(ctx, sample("old"))
	recent, _ := s.SaveWorkflow(ctx, sample("recent"))

	list, err := s.ListWorkflows(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, recent.ID, list[0].ID)
	assert.Equal(t, "recent", list[0].Name)
	assert.Equal(t, 2, list[0].Nodes)
	assert.Equal(t, 1, list[0].Edges)

	require.NoError(t, s.DeleteWorkflow(ctx, old.ID))
	require.NoError(t, s.DeleteWorkflow(ctx, old.ID))
	list, _ = s.ListWorkflows(ctx)
	assert.Len(t, list, 1)

	require.NoError(t, s.DropSchema(ctx))
	list, _ = s.ListWorkflows(ctx)
	assert.Empty(t, list)
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().SaveWorkflow(ctx, sample("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveFillsMissingConnectionIDs(t *testing.T) {
	wf := sample("Launch")
	wf.CanvasItems = append(wf.CanvasItems, canvas.Node{ID: "c", ToolID: "tool-1"})
	wf.Connections = []canvas.Edge{
		{From: "a", FromPoint: canvas.AnchorRight, To: "b", ToPoint: canvas.AnchorLeft},
		{From: "b", FromPoint: canvas.AnchorRight, To: "c", ToPoint: canvas.AnchorLeft},
	}

	rec, err := New().SaveWorkflow(context.Background(), wf)
	require.NoError(t, err)
	require.Len(t, rec.Workflow.Connections, 2)
	assert.NotEmpty(t, rec.Workflow.Connections[0].ID)
	assert.NotEmpty(t, rec.Workflow.Connections[1].ID)
	assert.NotEqual(t, rec.Workflow.Connections[0].ID, rec.Workflow.Connections[1].ID)
	assert.Empty(t, wf.Connections[0].ID, "the caller's workflow is not modified")
}
