package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slipstream/mediascraper/internal/metadata"
	"github.com/slipstream/mediascraper/internal/metadata/ranking"
	"github.com/slipstream/mediascraper/internal/metadata/search"
)

type searchFunc func(svc *metadata.Service, cmd *cobra.Command, q ranking.Query, maxItems int) (search.Result, error)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search providers by title",
	}

	cmd.AddCommand(newSearchKindCommand(ctx, "movie", "Search TMDB for a movie",
		func(svc *metadata.Service, cmd *cobra.Command, q ranking.Query, maxItems int) (search.Result, error) {
			return svc.SearchMovie(cmd.Context(), q, maxItems)
		}))
	cmd.AddCommand(newSearchKindCommand(ctx, "show", "Search the series providers for a show",
		func(svc *metadata.Service, cmd *cobra.Command, q ranking.Query, maxItems int) (search.Result, error) {
			return svc.SearchShow(cmd.Context(), q, maxItems)
		}))

	return cmd
}

func newSearchKindCommand(ctx *commandContext, use, short string, run searchFunc) *cobra.Command {
	var year int
	var maxItems int

	cmd := &cobra.Command{
		Use:   use + " <title>",
		Short: short,
		Long: short + `.

The title is searched in the requested language and, when that differs,
in English too. Hits are ranked by edit distance to the title.

Examples:
  mediascraper search ` + use + ` "The Matrix" --year 1999
  mediascraper search ` + use + ` Dark --lang de -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService(cmd)
			if err != nil {
				return err
			}

			title := strings.TrimSpace(strings.Join(args, " "))
			q := ranking.Query{Title: title, RawTitle: title, Year: year, Language: ctx.language()}

			result, err := run(svc, cmd, q, maxItems)
			if err != nil {
				return err
			}

			resp := newSearchOutput(result)
			if err := writeOutput(cmd, ctx.output(), resp, func(w io.Writer) error {
				return printSearchResult(w, result)
			}); err != nil {
				return err
			}
			return searchError(result)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Release or first-air year")
	cmd.Flags().IntVar(&maxItems, "max", -1, "Maximum number of hits (0 for all, default search.max_items)")

	return cmd
}

// searchOutput is a search result with its failure reason spelled out.
type searchOutput struct {
	search.Result `yaml:",inline"`
	Error         string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newSearchOutput(r search.Result) searchOutput {
	out := searchOutput{Result: r}
	if r.Reason != nil {
		out.Error = r.Reason.Error()
	}
	if out.Hits == nil {
		out.Hits = []ranking.RawHit{}
	}
	return out
}

// searchError turns provider failures into a non-zero exit. A clean miss
// is not an error.
func searchError(r search.Result) error {
	switch r.Status {
	case search.StatusOK, search.StatusNotFound:
		return nil
	}
	if r.Reason != nil {
		return fmt.Errorf("%s search failed (%s): %w", r.Provider, r.Status, r.Reason)
	}
	return fmt.Errorf("%s search failed (%s)", r.Provider, r.Status)
}

func printSearchResult(w io.Writer, r search.Result) error {
	summary := fmt.Sprintf("Provider: %s  Status: %s  Language: %s", r.Provider, r.Status, r.Language)
	if r.Reordered {
		summary += "  (English ordering)"
	}
	if _, err := fmt.Fprintln(w, summary); err != nil {
		return err
	}
	if len(r.Hits) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}

	rows := make([][]string, 0, len(r.Hits))
	for i, h := range r.Hits {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(h.ExternalID),
			truncate(h.Title, 48),
			yearString(h.Year),
			h.Language,
			yesNo(h.PosterPath != ""),
			yesNo(h.BackdropPath != ""),
		})
	}
	table := renderTable(
		[]string{"#", "ID", "Title", "Year", "Lang", "Poster", "Backdrop"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignRight},
	)
	_, err := fmt.Fprintln(w, table)
	return err
}
