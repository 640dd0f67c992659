// Package persist converts editor graphs to and from the workflow document
// format used for file export, import and saved workflows.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/editor"
)

// Defaults fill optional document fields that an imported file leaves out.
type Defaults struct {
	Name    string
	Catalog canvas.Catalog
}

// Export builds the document for g. It carries no id or timestamp; those are
// added when the workflow is saved.
func Export(g *editor.Graph) canvas.Workflow {
	c := g.Catalog()
	return canvas.Workflow{
		Version:            canvas.SchemaVersion,
		Name:               g.Name(),
		Tools:              nonNilTools(c.Tools),
		SocialIntegrations: nonNilTools(c.SocialIntegrations),
		CanvasItems:        g.Nodes(),
		Connections:        g.Edges(),
	}
}

// Encode writes wf as indented JSON.
func Encode(w io.Writer, wf canvas.Workflow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wf); err != nil {
		return fmt.Errorf("persist: encode: %w", err)
	}
	return nil
}

// Marshal is Encode into a byte slice.
func Marshal(wf canvas.Workflow) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, wf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName returns the download name for an exported workflow.
func FileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "workflow"
	}
	name = strings.NewReplacer("/", "-", "\\", "-").Replace(name)
	return name + ".json"
}

// Decode parses an imported document. canvasItems and connections are
// required; tools, socialIntegrations and name fall back to def. Connections
// without an id get a fresh one. Every
// failure wraps canvas.ErrMalformedWorkflow, except documents from a newer
// format which yield canvas.ErrUnsupportedVersion.
func Decode(data []byte, def Defaults) (*canvas.Workflow, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", canvas.ErrMalformedWorkflow, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: document is null", canvas.ErrMalformedWorkflow)
	}
	for _, key := range []string{"canvasItems", "connections"} {
		raw, ok := fields[key]
		if !ok || isNull(raw) {
			return nil, fmt.Errorf("%w: missing %q", canvas.ErrMalformedWorkflow, key)
		}
	}

	var wf canvas.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("%w: %v", canvas.ErrMalformedWorkflow, err)
	}
	if wf.Version > canvas.SchemaVersion {
		return nil, fmt.Errorf("%w: %d (newest supported is %d)",
			canvas.ErrUnsupportedVersion, wf.Version, canvas.SchemaVersion)
	}
	if wf.Version < 0 {
		return nil, fmt.Errorf("%w: negative version", canvas.ErrMalformedWorkflow)
	}

	if raw, ok := fields["tools"]; !ok || isNull(raw) {
		wf.Tools = def.Catalog.Clone().Tools
	}
	if raw, ok := fields["socialIntegrations"]; !ok || isNull(raw) {
		wf.SocialIntegrations = def.Catalog.Clone().SocialIntegrations
	}
	if raw, ok := fields["name"]; !ok || isNull(raw) {
		wf.Name = def.Name
	}
	wf.Tools = nonNilTools(wf.Tools)
	wf.SocialIntegrations = nonNilTools(wf.SocialIntegrations)

	for i, n := range wf.CanvasItems {
		if n.ToolID == "" {
			return nil, fmt.Errorf("%w: canvas item %d has no toolId", canvas.ErrMalformedWorkflow, i)
		}
	}
	if err := canvas.CheckIntegrity(wf.CanvasItems, wf.Connections); err != nil {
		if errors.Is(err, canvas.ErrMalformedWorkflow) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", canvas.ErrMalformedWorkflow, err)
	}

	wf.CanvasItems = canvas.CloneNodes(wf.CanvasItems)
	wf.Connections = canvas.CloneEdges(wf.Connections)
	canvas.AssignEdgeIDs(wf.Connections)
	return &wf, nil
}

// Apply replaces the contents of g with wf in one step.
func Apply(g *editor.Graph, wf *canvas.Workflow) error {
	return g.Load(wf.Name, wf.Catalog(), wf.CanvasItems, wf.Connections)
}

// Import decodes data and loads it into g. On any error g is left untouched.
func Import(g *editor.Graph, data []byte) error {
	wf, err := Decode(data, Defaults{Name: g.Name(), Catalog: g.Catalog()})
	if err != nil {
		return err
	}
	return Apply(g, wf)
}

// ImportReader is Import over a reader.
func ImportReader(g *editor.Graph, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("persist: read: %w", err)
	}
	return Import(g, data)
}

// Save writes the current graph to the store under a fresh key.
func Save(ctx context.Context, store canvas.Store, g *editor.Graph) (*canvas.Record, error) {
	wf := Export(g)
	return store.SaveWorkflow(ctx, &wf)
}

// Open loads a saved workflow into g.
func Open(ctx context.Context, store canvas.Store, g *editor.Graph, id string) error {
	rec, err := store.GetWorkflow(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return canvas.ErrWorkflowNotFound
	}
	return Apply(g, &rec.Workflow)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func nonNilTools(t []canvas.Tool) []canvas.Tool {
	if t == nil {
		return []canvas.Tool{}
	}
	return t
}
