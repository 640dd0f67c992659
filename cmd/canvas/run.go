package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/canvas/internal/ui"
	"github.com/meikuraledutech/canvas/simulate"
)

func runCmd() *cobra.Command {
	var (
		delay   time.Duration
		maxHops int
	)

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Trace a simulated execution of a workflow file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			if cmd.Flags().Changed("delay") {
				e.cfg.Simulation.Delay = delay
			}
			if cmd.Flags().Changed("max-hops") {
				e.cfg.Simulation.MaxHops = maxHops
			}

			g, _, err := e.readWorkflow(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			labels := map[string]string{}
			for _, n := range g.Nodes() {
				labels[n.ID] = n.Label
			}

			tracker := &simulate.Tracker{}
			show := func(ev simulate.Event) {
				switch ev.Kind {
				case simulate.EventStarted:
					ui.Info.Printf("  ▶ %s\n", g.Name())
				case simulate.EventVisit:
					from := ui.Subtle.Sprint("start")
					if ev.Previous != "" {
						from = ev.Previous
					}
					fmt.Printf("  %3d  %s → %s %s\n", ev.Hop, from, ui.Brand.Sprint(ev.Current), ui.Subtle.Sprint(labels[ev.Current]))
				}
			}

			_, err = e.simulator().Run(ctx, g.Nodes(), g.Edges(), simulate.Multi(tracker.Handle, show))
			if err != nil {
				return err
			}
			fmt.Printf("  %s %d visits\n", ui.StatusIcon(true), tracker.Visits())
			return nil
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", simulate.DefaultDelay, "Pause between node visits")
	cmd.Flags().IntVar(&maxHops, "max-hops", simulate.DefaultMaxHops, "Abort after this many visits")
	return cmd
}
