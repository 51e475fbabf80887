package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently completed conversion batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			batches, err := ctx.client().History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(batches) == 0 {
				fmt.Println("No batches recorded.")
				return nil
			}

			rows := make([]table.Row, 0, len(batches))
			for _, batch := range batches {
				rows = append(rows, table.Row{
					batch.FinishedAt.Local().Format("2006-01-02 15:04"),
					batch.Preset,
					batch.SourcePath,
					batch.Total,
					batch.Successful,
					batch.Failed,
					batch.Skipped,
				})
			}
			fmt.Println(renderTable(
				table.Row{"Finished", "Preset", "Source", "Total", "OK", "Failed", "Skipped"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of batches to list")
	return cmd
}
