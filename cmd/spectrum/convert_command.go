package main

import (
	"fmt"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"spectrum/internal/api"
	"spectrum/internal/progress"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		recursive  bool
		presetFlag string
		quality    int
		noMetadata bool
		local      bool
	)

	cmd := &cobra.Command{
		Use:   "convert <path>",
		Short: "Convert pending RAW files in a directory to JPEG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			outputDir := filepath.Join(path, cfg.Scan.OutputSubdir)

			req := api.ConvertRequest{
				OutputDir:  outputDir,
				Preset:     presetFlag,
				Quality:    quality,
				SourcePath: path,
			}
			if noMetadata {
				preserve := false
				req.PreserveMetadata = &preserve
			}

			if local {
				return runLocalBatch(cmd, ctx, path, recursive, req)
			}

			report, err := ctx.client().Scan(cmd.Context(), api.ScanRequest{Path: path, Recursive: recursive})
			if err != nil {
				return err
			}
			for _, entry := range report.Entries {
				if !entry.AlreadyConverted {
					req.Files = append(req.Files, entry.Path)
				}
			}
			if len(req.Files) == 0 {
				fmt.Println("Nothing to convert.")
				return nil
			}

			renderer := newProgressRenderer()
			if err := ctx.client().ConvertStream(cmd.Context(), req, renderer.handle); err != nil {
				return err
			}
			return renderer.finish()
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Recurse into subdirectories")
	cmd.Flags().StringVarP(&presetFlag, "preset", "p", "", "Preset name (default: from config)")
	cmd.Flags().IntVarP(&quality, "quality", "q", 0, "JPEG quality override (1-100)")
	cmd.Flags().BoolVar(&noMetadata, "no-metadata", false, "Skip copying EXIF metadata to outputs")
	cmd.Flags().BoolVar(&local, "local", false, "Run the conversion in-process instead of via the daemon")
	return cmd
}

// progressRenderer turns stream events into terminal output and remembers
// the terminal event for the exit summary.
type progressRenderer struct {
	total    int
	terminal *progress.Event
}

func newProgressRenderer() *progressRenderer {
	return &progressRenderer{}
}

func (r *progressRenderer) handle(event progress.Event) error {
	switch event.Kind {
	case progress.KindStart:
		r.total = event.Total
		fmt.Printf("Converting %d file(s)...\n", event.Total)
	case progress.KindProgress:
		if event.Result == nil {
			return nil
		}
		result := event.Result
		switch {
		case result.Skipped:
			fmt.Printf("[%d/%d] skip %s (already converted)\n", event.Processed, r.total, filepath.Base(result.SourcePath))
		case result.Success:
			fmt.Printf("[%d/%d] ok   %s (%.2f MB)\n", event.Processed, r.total, filepath.Base(result.OutputPath), float64(result.SizeBytes)/(1024*1024))
			if result.MetadataError != "" {
				fmt.Printf("          metadata not copied: %s\n", result.MetadataError)
			}
		default:
			fmt.Printf("[%d/%d] FAIL %s: %s\n", event.Processed, r.total, filepath.Base(result.SourcePath), result.ErrorMessage)
		}
	case progress.KindComplete, progress.KindError:
		copied := event
		r.terminal = &copied
	}
	return nil
}

func (r *progressRenderer) finish() error {
	if r.terminal == nil {
		return fmt.Errorf("stream ended without a terminal event")
	}
	if r.terminal.Kind == progress.KindError {
		return fmt.Errorf("batch failed: %s", r.terminal.Message)
	}
	fmt.Println(renderTable(
		table.Row{"Total", "Successful", "Failed", "Skipped"},
		[]table.Row{{r.terminal.Total, r.terminal.Successful, r.terminal.Failed, r.terminal.Skipped}},
	))
	if r.terminal.Failed > 0 {
		return fmt.Errorf("%d file(s) failed to convert", r.terminal.Failed)
	}
	return nil
}
