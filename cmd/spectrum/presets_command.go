package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newPresetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List available conversion presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := ctx.client().Presets(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([]table.Row, 0, len(payload.Presets))
			for _, p := range payload.Presets {
				name := p.Name
				if name == payload.Default {
					name += " (default)"
				}
				rows = append(rows, table.Row{name, p.Quality, p.Description})
			}
			fmt.Println(renderTable(table.Row{"Preset", "Quality", "Description"}, rows))
			return nil
		},
	}
}
