package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"spectrum/internal/api"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var recursive bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Scan a directory for convertible RAW files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			report, err := ctx.client().Scan(cmd.Context(), api.ScanRequest{
				Path:      path,
				Recursive: recursive,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(report)
			}

			fmt.Printf("Scanned %s\n", path)
			fmt.Println(renderTable(
				table.Row{"Total", "Converted", "Pending", "Pending MB"},
				[]table.Row{{report.TotalFiles, report.AlreadyConverted, report.PendingConversion, fmt.Sprintf("%.2f", report.TotalSizeMB)}},
			))

			if report.PendingConversion == 0 {
				fmt.Println("Nothing to convert.")
				return nil
			}
			rows := make([]table.Row, 0, len(report.Entries))
			for _, entry := range report.Entries {
				if entry.AlreadyConverted {
					continue
				}
				rows = append(rows, table.Row{entry.Path, fmt.Sprintf("%.2f MB", float64(entry.SizeBytes)/(1024*1024))})
			}
			fmt.Println(renderTable(table.Row{"Pending file", "Size"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Recurse into subdirectories")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the raw scan report as JSON")
	return cmd
}
