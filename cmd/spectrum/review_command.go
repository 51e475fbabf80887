package main

import (
	"fmt"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"spectrum/internal/api"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Inspect the most recently completed batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showReview(cmd, ctx)
		},
	}
	cmd.AddCommand(newReviewShowCommand(ctx))
	cmd.AddCommand(newReviewClearCommand(ctx))
	cmd.AddCommand(newReviewRestoreCommand(ctx))
	return cmd
}

func newReviewShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the persisted review record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showReview(cmd, ctx)
		},
	}
}

func showReview(cmd *cobra.Command, ctx *commandContext) error {
	record, err := ctx.client().Review(cmd.Context())
	if err != nil {
		return err
	}
	if record == nil {
		fmt.Println("No completed batch on record.")
		return nil
	}

	fmt.Printf("Batch %s (%s preset), finished %s\n",
		record.ID, record.Preset, record.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Source: %s\nOutput: %s\n", record.SourcePath, record.OutputDir)
	fmt.Println(renderTable(
		table.Row{"Total", "Successful", "Failed", "Skipped", "Pairs"},
		[]table.Row{{record.Summary.Total, record.Summary.Successful, record.Summary.Failed, record.Summary.Skipped, record.PairCount}},
	))
	return nil
}

func newReviewClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the persisted review record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.client().ClearReview(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Review cleared.")
			return nil
		},
	}
}

func newReviewRestoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restore [source] [output]",
		Short: "Rebuild converted pairs for a past batch without reconverting",
		Long: "Rebuild the original/converted pair list by matching output JPEGs back " +
			"to their sources. With no arguments the persisted review record supplies " +
			"the directories.",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := ctx.client()

			var req api.RestoreRequest
			switch len(args) {
			case 2:
				source, err := filepath.Abs(args[0])
				if err != nil {
					return err
				}
				output, err := filepath.Abs(args[1])
				if err != nil {
					return err
				}
				req = api.RestoreRequest{SourcePath: source, OutputDir: output}
			case 0:
				record, err := c.Review(cmd.Context())
				if err != nil {
					return err
				}
				if record == nil {
					return fmt.Errorf("no review record to restore from; pass source and output directories")
				}
				req = api.RestoreRequest{SourcePath: record.SourcePath, OutputDir: record.OutputDir}
			default:
				return fmt.Errorf("pass both source and output directories, or neither")
			}

			restored, err := c.Restore(cmd.Context(), req)
			if err != nil {
				return err
			}
			if restored.PairCount == 0 {
				fmt.Println("No converted pairs found.")
				return nil
			}
			rows := make([]table.Row, 0, len(restored.Pairs))
			for _, pair := range restored.Pairs {
				rows = append(rows, table.Row{filepath.Base(pair.SourcePath), pair.OutputPath})
			}
			fmt.Printf("Restored %d pair(s), no files reprocessed.\n", restored.PairCount)
			fmt.Println(renderTable(table.Row{"Source", "Converted output"}, rows))
			return nil
		},
	}
}
