package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slipstream/mediascraper/internal/metadata"
)

func newDetailsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "details",
		Short: "Fetch full details for a movie, show or episode",
	}
	cmd.AddCommand(newDetailsMovieCommand(ctx))
	cmd.AddCommand(newDetailsShowCommand(ctx))
	cmd.AddCommand(newDetailsEpisodeCommand(ctx))
	return cmd
}

func newDetailsMovieCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "movie <tmdb-id>",
		Short: "Show TMDB movie details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("tmdb-id", args[0])
			if err != nil {
				return err
			}
			svc, err := ctx.ensureService(cmd)
			if err != nil {
				return err
			}
			movie, err := svc.GetMovie(cmd.Context(), id, ctx.language())
			if err != nil {
				return err
			}
			return writeOutput(cmd, ctx.output(), movie, func(w io.Writer) error {
				return printFields(w, [][2]string{
					{"Title", movie.Title},
					{"Original title", movie.OriginalTitle},
					{"Year", yearString(movie.Year)},
					{"Release date", movie.ReleaseDate},
					{"Runtime", minutes(movie.Runtime)},
					{"Genres", strings.Join(movie.Genres, ", ")},
					{"Directors", people(movie.Directors)},
					{"IMDb", movie.ImdbID},
					{"Poster", movie.PosterURL},
					{"Overview", movie.Overview},
				})
			})
		},
	}
}

func newDetailsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <provider> <id>",
		Short: "Show series details from tmdb or tvdb",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("id", args[1])
			if err != nil {
				return err
			}
			svc, err := ctx.ensureService(cmd)
			if err != nil {
				return err
			}
			series, err := svc.GetShow(cmd.Context(), args[0], id, ctx.language())
			if err != nil {
				return err
			}
			return writeOutput(cmd, ctx.output(), series, func(w io.Writer) error {
				return printFields(w, [][2]string{
					{"Title", series.Title},
					{"Original title", series.OriginalTitle},
					{"Year", yearString(series.Year)},
					{"Status", series.Status},
					{"Network", series.Network},
					{"Genres", strings.Join(series.Genres, ", ")},
					{"Creators", people(series.Creators)},
					{"IMDb", series.ImdbID},
					{"Poster", series.PosterURL},
					{"Overview", series.Overview},
				})
			})
		},
	}
}

func newDetailsEpisodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "episode <provider> <series-id> <season> <episode>",
		Short: "Show a single episode",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums := make([]int, 3)
			for i, name := range []string{"series-id", "season", "episode"} {
				n, err := strconv.Atoi(args[i+1])
				if err != nil || n < 0 {
					return fmt.Errorf("invalid %s %q", name, args[i+1])
				}
				nums[i] = n
			}
			svc, err := ctx.ensureService(cmd)
			if err != nil {
				return err
			}
			ep, err := svc.GetEpisode(cmd.Context(), args[0], nums[0], nums[1], nums[2], ctx.language())
			if err != nil {
				return err
			}
			return writeOutput(cmd, ctx.output(), ep, func(w io.Writer) error {
				return printFields(w, [][2]string{
					{"Episode", fmt.Sprintf("S%02dE%02d", ep.SeasonNumber, ep.EpisodeNumber)},
					{"Title", ep.Title},
					{"Air date", ep.AirDate},
					{"Runtime", minutes(ep.Runtime)},
					{"Overview", ep.Overview},
				})
			})
		},
	}
}

func parseIDArg(name, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return id, nil
}

// printFields writes a two-column key/value table, skipping empty values.
func printFields(w io.Writer, fields [][2]string) error {
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		if f[1] == "" || f[1] == "-" {
			continue
		}
		rows = append(rows, []string{f[0], truncate(f[1], 100)})
	}
	_, err := fmt.Fprintln(w, renderTable([]string{"Field", "Value"}, rows, nil))
	return err
}

func people(ps []metadata.Person) string {
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

func minutes(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%d min", n)
}
