package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"spectrum/internal/deps"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon reachability and external tool availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if err := ctx.client().Health(cmd.Context()); err != nil {
				fmt.Printf("Daemon: unreachable at %s (%v)\n", ctx.apiBase(), err)
			} else {
				fmt.Printf("Daemon: healthy at %s\n", ctx.apiBase())
			}

			rows := []table.Row{}
			missingRequired := false
			for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
				state := "ok"
				if !status.Available {
					state = "missing"
					if !status.Optional {
						missingRequired = true
					}
				}
				kind := "required"
				if status.Optional {
					kind = "optional"
				}
				rows = append(rows, table.Row{status.Name, status.Command, kind, state})
			}
			fmt.Println(renderTable(table.Row{"Tool", "Command", "Kind", "Status"}, rows))

			if missingRequired {
				return fmt.Errorf("required external tools are missing")
			}
			return nil
		},
	}
}
