package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/catalog"
	"github.com/meikuraledutech/canvas/config"
	"github.com/meikuraledutech/canvas/editor"
	"github.com/meikuraledutech/canvas/geometry"
	"github.com/meikuraledutech/canvas/interaction"
	"github.com/meikuraledutech/canvas/memstore"
	"github.com/meikuraledutech/canvas/persist"
	"github.com/meikuraledutech/canvas/simulate"
)

func main() {
	ctx := context.Background()

	// In-memory store behind the Store interface.
	var store canvas.Store = memstore.New()

	// Optional YAML config; zoom limits and node size come from its editor section.
	cfg, err := config.LoadConfig(os.Getenv("CANVAS_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	g := editor.New(catalog.Default(),
		editor.WithName("Lead outreach"),
		editor.WithNodeSize(cfg.Editor.NodeWidth, cfg.Editor.NodeHeight))
	ctl := interaction.New(g, interaction.WithViewport(cfg.Editor.Viewport()))

	// Ctrl+wheel zooms in one step.
	if scale, ok := ctl.Wheel(-100, true); ok {
		fmt.Printf("zoom %.2f\n", scale)
	}

	// ── Drag two tools from the palette ───────────────────────────────
	agent := drop(ctl, "tool-1", geometry.Point{X: 120, Y: 140})
	email := drop(ctl, "tool-3", geometry.Point{X: 460, Y: 160})
	linkedin, err := g.AddNode("social-2", canvas.Position{X: 460, Y: 320})
	if err != nil {
		log.Fatalf("add node: %v", err)
	}
	fmt.Printf("placed %s, %s, %s\n", agent.ID, email.ID, linkedin.ID)

	// ── Connect anchors ───────────────────────────────────────────────
	connect(ctl, agent.ID, canvas.AnchorRight, email.ID, canvas.AnchorLeft)
	connect(ctl, agent.ID, canvas.AnchorBottom, linkedin.ID, canvas.AnchorLeft)

	// Same pair again: ignored, the controller records a notice.
	connect(ctl, agent.ID, canvas.AnchorRight, email.ID, canvas.AnchorLeft)
	if n := ctl.Notice(); n != "" {
		fmt.Println("notice:", n)
	}

	edge := g.Edges()[0]
	if err := g.AddTransformation(edge.ID, canvas.Transformation{
		Type:   "template",
		Params: map[string]any{"subject": "Hello {{name}}"},
	}); err != nil {
		log.Fatalf("transformation: %v", err)
	}
	curve := geometry.EdgeCurve(agent, email, edge)
	fmt.Println("edge path:", curve.Path())

	// ── Drag a node, then undo it ─────────────────────────────────────
	if err := ctl.NodeDown(email.ID, geometry.Point{X: 470, Y: 170}); err != nil {
		log.Fatalf("node down: %v", err)
	}
	if err := ctl.PointerMove(geometry.Point{X: 600, Y: 260}); err != nil {
		log.Fatalf("move: %v", err)
	}
	ctl.PointerUp()
	moved, _ := g.Node(email.ID)
	fmt.Printf("\nmoved %s to (%g, %g)\n", moved.ID, moved.X, moved.Y)

	ctl.Undo()
	back, _ := g.Node(email.ID)
	fmt.Printf("undo  %s to (%g, %g)\n", back.ID, back.X, back.Y)

	// ── Export and re-import ──────────────────────────────────────────
	var buf bytes.Buffer
	if err := persist.Encode(&buf, persist.Export(g)); err != nil {
		log.Fatalf("export: %v", err)
	}
	fmt.Printf("\nexported %s (%d bytes)\n", persist.FileName(g.Name()), buf.Len())

	copyGraph := editor.New(catalog.Default())
	if err := persist.Import(copyGraph, buf.Bytes()); err != nil {
		log.Fatalf("import: %v", err)
	}
	if err := persist.Import(copyGraph, []byte(`{"canvasItems": []}`)); err != nil {
		fmt.Println("rejected:", err)
	}

	// ── Save ──────────────────────────────────────────────────────────
	rec, err := persist.Save(ctx, store, copyGraph)
	if err != nil {
		log.Fatalf("save: %v", err)
	}
	list, err := store.ListWorkflows(ctx)
	if err != nil {
		log.Fatalf("list: %v", err)
	}
	fmt.Printf("\nsaved %s\n", rec.ID)
	printJSON(list)

	// ── Simulate ──────────────────────────────────────────────────────
	sim := simulate.New(simulate.WithDelay(0))
	res, err := sim.Run(ctx, copyGraph.Nodes(), copyGraph.Edges(), func(e simulate.Event) {
		if e.Kind == simulate.EventVisit {
			fmt.Printf("visit %-10s from %q\n", e.Current, e.Previous)
		}
	})
	if err != nil {
		log.Fatalf("run: %v", err)
	}
	fmt.Printf("\ntrace: %v\n", res.Nodes())

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteWorkflow(ctx, rec.ID); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("\nworkflow deleted")
}

func drop(ctl *interaction.Controller, toolID string, at geometry.Point) canvas.Node {
	if err := ctl.PaletteDown(toolID); err != nil {
		log.Fatalf("palette: %v", err)
	}
	n, err := ctl.Drop(at)
	if err != nil {
		log.Fatalf("drop: %v", err)
	}
	return n
}

func connect(ctl *interaction.Controller, from string, fromPt canvas.Anchor, to string, toPt canvas.Anchor) {
	if _, _, err := ctl.AnchorClick(from, fromPt); err != nil {
		log.Fatalf("anchor: %v", err)
	}
	if _, _, err := ctl.AnchorClick(to, toPt); err != nil {
		log.Fatalf("anchor: %v", err)
	}
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
