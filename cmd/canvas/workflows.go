package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/config"
	"github.com/meikuraledutech/canvas/internal/ui"
	"github.com/meikuraledutech/canvas/persist"
)

// withStore loads the environment, opens the store and calls fn.
func withStore(ctx context.Context, fn func(e *env, store canvas.Store) error) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	if e.cfg.Store.Backend == config.BackendMemory {
		ui.Warn.Println("  store.backend is memory; nothing outlives this command")
	}
	store, closeStore, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(e, store)
}

func (e *env) record(ctx context.Context, store canvas.Store, id string) (*canvas.Record, error) {
	rec, err := store.GetWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", canvas.ErrWorkflowNotFound, id)
	}
	return rec, nil
}

func saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <file>",
		Short: "Save a workflow file under a new key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(e *env, store canvas.Store) error {
				if err := store.CreateSchema(cmd.Context()); err != nil {
					return err
				}
				g, _, err := e.readWorkflow(args[0])
				if err != nil {
					return err
				}
				rec, err := persist.Save(cmd.Context(), store, g)
				if err != nil {
					return err
				}
				fmt.Printf("  %s saved %s as %s\n", ui.StatusIcon(true), ui.Brand.Sprint(rec.Workflow.Name), rec.ID)
				return nil
			})
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved workflows, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(e *env, store canvas.Store) error {
				list, err := store.ListWorkflows(cmd.Context())
				if err != nil {
					return err
				}
				if len(list) == 0 {
					ui.Subtle.Println("  no saved workflows")
					return nil
				}
				rows := make([][]string, 0, len(list))
				for _, s := range list {
					rows = append(rows, []string{
						s.ID, s.Name,
						fmt.Sprint(s.Nodes), fmt.Sprint(s.Edges),
						s.CreatedAt.Local().Format(time.DateTime),
					})
				}
				ui.Table([]string{"ID", "NAME", "NODES", "EDGES", "SAVED"}, rows)
				return nil
			})
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the nodes and connections of a saved workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(e *env, store canvas.Store) error {
				rec, err := e.record(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				wf := rec.Workflow
				fmt.Printf("  %s  %s\n\n", ui.Brand.Sprint(wf.Name), ui.Subtle.Sprint(rec.ID))

				nodes := make([][]string, 0, len(wf.CanvasItems))
				for _, n := range wf.CanvasItems {
					nodes = append(nodes, []string{n.ID, n.ToolID, n.Label, fmt.Sprintf("%g,%g", n.X, n.Y)})
				}
				ui.Table([]string{"NODE", "TOOL", "LABEL", "AT"}, nodes)
				fmt.Println()

				edges := make([][]string, 0, len(wf.Connections))
				for _, c := range wf.Connections {
					edges = append(edges, []string{
						c.ID,
						c.From + "." + string(c.FromPoint),
						c.To + "." + string(c.ToPoint),
						fmt.Sprint(len(c.Config.Transformations)),
					})
				}
				ui.Table([]string{"EDGE", "FROM", "TO", "TRANSFORMS"}, edges)
				return nil
			})
		},
	}
}

func exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a saved workflow as an importable JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(e *env, store canvas.Store) error {
				rec, err := e.record(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				wf := rec.Workflow
				wf.ID, wf.CreatedAt = "", nil

				if output == "-" {
					return persist.Encode(cmd.OutOrStdout(), wf)
				}
				if output == "" {
					output = persist.FileName(wf.Name)
				}
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := persist.Encode(f, wf); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Printf("  %s wrote %s\n", ui.StatusIcon(true), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or - for stdout (defaults to <name>.json)")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved workflow",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(e *env, store canvas.Store) error {
				if err := store.DeleteWorkflow(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Printf("  %s deleted %s\n", ui.StatusIcon(true), args[0])
				return nil
			})
		},
	}
}
