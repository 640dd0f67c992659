package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/internal/ui"
)

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the tools and social integrations in the palette",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			printTools := func(title string, tools []canvas.Tool) {
				ui.Info.Printf("  %s (%d)\n", title, len(tools))
				rows := make([][]string, 0, len(tools))
				for _, t := range tools {
					rows = append(rows, []string{t.ID, t.Name, t.Icon, t.Color, t.Route})
				}
				ui.Table([]string{"ID", "NAME", "ICON", "COLOR", "ROUTE"}, rows)
				fmt.Println()
			}
			printTools("Tools", e.catalog.Tools)
			printTools("Social integrations", e.catalog.SocialIntegrations)
			return nil
		},
	}
}
