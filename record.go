package canvas

import (
	"time"

	"github.com/google/uuid"
)

// RecordPrefix starts every saved-workflow key.
const RecordPrefix = "workflow-"

// NewRecordID returns a fresh saved-workflow key. Keys are never reused.
func NewRecordID() string {
	return RecordPrefix + uuid.NewString()
}

// EdgePrefix starts generated connection ids.
const EdgePrefix = "conn-"

// NewEdgeID returns a fresh connection id.
func NewEdgeID() string {
	return EdgePrefix + uuid.NewString()
}

// AssignEdgeIDs gives every connection without an id a fresh one, in place.
func AssignEdgeIDs(edges []Edge) {
	for i := range edges {
		if edges[i].ID == "" {
			edges[i].ID = NewEdgeID()
		}
	}
}

// NewRecord stamps a copy of wf with a fresh key and creation time.
func NewRecord(wf *Workflow, now time.Time) *Record {
	now = now.UTC()
	doc := *wf
	doc.ID = NewRecordID()
	doc.CreatedAt = &now
	if doc.Version == 0 {
		doc.Version = SchemaVersion
	}
	if doc.Name == "" {
		doc.Name = "Untitled Workflow"
	}
	doc.Tools = append([]Tool{}, wf.Tools...)
	doc.SocialIntegrations = append([]Tool{}, wf.SocialIntegrations...)
	doc.CanvasItems = CloneNodes(wf.CanvasItems)
	doc.Connections = CloneEdges(wf.Connections)
	AssignEdgeIDs(doc.Connections)
	return &Record{ID: doc.ID, CreatedAt: now, Workflow: doc}
}

// Summary returns the listing view of the record.
func (r *Record) Summary() Summary {
	return Summary{
		ID:        r.ID,
		Name:      r.Workflow.Name,
		Nodes:     len(r.Workflow.CanvasItems),
		Edges:     len(r.Workflow.Connections),
		CreatedAt: r.CreatedAt,
	}
}
