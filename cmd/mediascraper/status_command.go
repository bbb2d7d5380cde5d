package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/slipstream/mediascraper/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the configured providers answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService(cmd)
			if err != nil {
				return err
			}
			statuses := svc.Status(cmd.Context())
			return writeOutput(cmd, ctx.output(), statuses, func(w io.Writer) error {
				rows := make([][]string, 0, len(statuses))
				for _, s := range statuses {
					rows = append(rows, []string{s.Name, yesNo(s.Configured), yesNo(s.Reachable), truncate(s.Error, 60)})
				}
				_, err := fmt.Fprintln(w, renderTable([]string{"Provider", "Configured", "Reachable", "Error"}, rows, nil))
				return err
			})
		},
	}
}

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the provider response cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop cached provider responses, including the shared Redis cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService(cmd)
			if err != nil {
				return err
			}
			if err := svc.ClearCache(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return err
		},
	})
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "mediascraper %s\n", api.Version)
			return err
		},
	}
}
