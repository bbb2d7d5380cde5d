package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/slipstream/mediascraper/internal/library/scanner"
	"github.com/slipstream/mediascraper/internal/metadata"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var workers int
	var downloadArtwork bool

	cmd := &cobra.Command{
		Use:   "scan <folder>",
		Short: "Identify every video file below a folder",
		Long: `Walk a folder, parse every video file name and identify the files
concurrently. Sample files and hidden directories are skipped.

Examples:
  mediascraper scan /media/movies --kind movie
  mediascraper scan /media/tv --workers 8 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := scanner.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			root := args[0]
			if info, err := os.Stat(root); err != nil {
				return err
			} else if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", root)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			svc, err := ctx.ensureService(cmd)
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = cfg.Scan.Workers
			}

			scan, err := scanner.NewService(ctx.log.Logger).ScanFolder(cmd.Context(), root, kind, nil)
			if err != nil {
				return err
			}
			for _, e := range scan.Errors {
				ctx.log.Warn().Str("path", e.Path).Str("error", e.Error).Msg("Scan error")
			}

			progress := func(done, total int, item metadata.FileIdentification) {
				ctx.log.Debug().Int("done", done).Int("total", total).Str("path", item.Path).Msg("Identified")
			}
			results, err := svc.IdentifyFiles(cmd.Context(), scan.Files(), ctx.language(), workers, progress)
			if err != nil {
				return err
			}
			if downloadArtwork {
				downloadAll(cmd, ctx, results)
			}

			return writeOutput(cmd, ctx.output(), results, func(w io.Writer) error {
				if _, err := fmt.Fprintf(w, "Scanned %s (%s): %d video files, %d skipped\n", scan.RootPath, scan.Kind, scan.TotalFiles, scan.Skipped); err != nil {
					return err
				}
				return printIdentifications(w, results)
			})
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", string(scanner.KindAuto), "Treat files as auto, movie or tv")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent lookups (default scan.workers)")
	cmd.Flags().BoolVar(&downloadArtwork, "artwork", false, "Download poster and backdrop for matched files")

	return cmd
}
