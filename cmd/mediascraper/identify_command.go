package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/slipstream/mediascraper/internal/library/scanner"
	"github.com/slipstream/mediascraper/internal/metadata"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var downloadArtwork bool
	var workers int

	cmd := &cobra.Command{
		Use:   "identify <file>...",
		Short: "Match media files against the providers by file name",
		Long: `Parse each file name into a title, year and episode numbers, search the
providers and resolve details for the best hit. Files do not need to exist.

Examples:
  mediascraper identify "The.Matrix.1999.1080p.BluRay.mkv"
  mediascraper identify Dark.S01E01.mkv Dark.S01E02.mkv --lang de
  mediascraper identify Heat.1995.mkv --artwork -o yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			files := make([]scanner.ParsedMedia, 0, len(args))
			for _, path := range args {
				files = append(files, *scanner.ParsePath(path))
			}

			results, err := svc.IdentifyFiles(cmd.Context(), files, ctx.language(), workers, nil)
			if err != nil {
				return err
			}
			if downloadArtwork {
				downloadAll(cmd, ctx, results)
			}

			return writeOutput(cmd, ctx.output(), results, func(w io.Writer) error {
				return printIdentifications(w, results)
			})
		},
	}

	cmd.Flags().BoolVar(&downloadArtwork, "artwork", false, "Download poster and backdrop for matched files")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent lookups (default scan.workers)")

	return cmd
}

// downloadAll fetches artwork for every matched result. Failures are logged
// and do not fail the command.
func downloadAll(cmd *cobra.Command, ctx *commandContext, results []metadata.FileIdentification) {
	cfg, _ := ctx.ensureConfig()
	downloader := metadata.NewArtworkDownloader(cfg.Metadata.Artwork, ctx.log.Logger)
	for _, r := range results {
		if r.Identification == nil || !r.Identification.Matched() {
			continue
		}
		paths, err := downloader.DownloadArtwork(cmd.Context(), r.Identification)
		if err != nil {
			ctx.log.Warn().Err(err).Str("path", r.Path).Msg("Artwork download failed")
			continue
		}
		for kind, p := range paths {
			ctx.log.Info().Str("path", r.Path).Str("type", string(kind)).Str("file", p).Msg("Artwork saved")
		}
	}
}

func printIdentifications(w io.Writer, results []metadata.FileIdentification) error {
	rows := make([][]string, 0, len(results))
	matched := 0
	for _, r := range results {
		row := []string{truncate(r.Path, 48), "-", "-", "-", "-", "-", "-"}
		if id := r.Identification; id != nil {
			if id.Parsed != nil {
				row[1] = kindLabel(id.Parsed)
			}
			row[2] = truncate(id.Title(), 40)
			row[6] = id.Search.Status.String()
			switch {
			case id.Movie != nil:
				matched++
				row[3] = yearString(id.Movie.Year)
				row[4] = id.Movie.Provider
				row[5] = strconv.Itoa(id.Movie.ID)
			case id.Series != nil:
				matched++
				row[3] = yearString(id.Series.Year)
				row[4] = id.Series.Provider
				row[5] = strconv.Itoa(id.Series.ID)
				if id.Episode != nil {
					row[2] = truncate(fmt.Sprintf("%s - %s", id.Series.Title, id.Episode.Title), 40)
				}
			}
		}
		if r.Error != "" {
			row[6] = truncate(r.Error, 40)
		}
		rows = append(rows, row)
	}

	table := renderTable(
		[]string{"File", "Kind", "Match", "Year", "Provider", "ID", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight},
	)
	if _, err := fmt.Fprintln(w, table); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d files matched\n", matched, len(results))
	return err
}

func kindLabel(p *scanner.ParsedMedia) string {
	if !p.IsTV {
		return "movie"
	}
	if p.IsSeasonPack {
		return fmt.Sprintf("S%02d", p.Season)
	}
	return fmt.Sprintf("S%02dE%02d", p.Season, p.Episode)
}
