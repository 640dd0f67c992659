package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/editor"
	"github.com/meikuraledutech/canvas/geometry"
	"github.com/meikuraledutech/canvas/internal/ui"
	"github.com/meikuraledutech/canvas/persist"
)

// Size of the minimap the fit scale is reported for.
const (
	minimapWidth  = 240
	minimapHeight = 160
)

// readWorkflow decodes an exported workflow file and loads it into a fresh
// editor graph, so the editor settings apply.
func (e *env) readWorkflow(path string) (*editor.Graph, *canvas.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	wf, err := persist.Decode(data, persist.Defaults{Name: editor.DefaultName, Catalog: e.catalog})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	g := e.graph()
	if err := persist.Apply(g, wf); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, wf, nil
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check an exported workflow file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			g, wf, err := e.readWorkflow(args[0])
			if err != nil {
				return err
			}

			nodes, edges := g.Nodes(), g.Edges()
			fmt.Printf("  %s %s\n", ui.StatusIcon(true), ui.Brand.Sprint(g.Name()))
			fmt.Printf("  version  %d\n", wf.Version)
			fmt.Printf("  nodes    %d\n", len(nodes))
			fmt.Printf("  edges    %d\n", len(edges))
			fmt.Printf("  sources  %v\n", g.Sources())

			var unknown []string
			for _, n := range nodes {
				if _, ok := g.Catalog().Lookup(n.ToolID); !ok {
					unknown = append(unknown, n.ID)
				}
			}
			if len(unknown) > 0 {
				ui.Warn.Printf("  nodes with tools missing from the catalog: %v\n", unknown)
			}

			if err := canvas.ValidateAcyclic(nodes, edges); err != nil {
				if !errors.Is(err, canvas.ErrCycleDetected) {
					return err
				}
				ui.Warn.Printf("  %v; simulation will refuse to run it\n", err)
			}

			if len(nodes) > 0 {
				box := geometry.Bounds(nodes, 0)
				view := e.cfg.Editor.Viewport()
				fit := geometry.FitScale(box, minimapWidth, minimapHeight)
				fmt.Printf("  bounds   %gx%g at (%g, %g)\n", box.Width(), box.Height(), box.Min.X, box.Min.Y)
				fmt.Printf("  zoom     %g to fit a %dx%d view\n",
					view.SetScale(geometry.FitScale(box, 1280, 800)), 1280, 800)
				fmt.Printf("  minimap  %.3f\n", fit)
			}
			return nil
		},
	}
}
