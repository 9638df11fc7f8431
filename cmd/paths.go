package main

import (
	"context"
	"fmt"

	"github.com/meghashyamc/wordindex/app"
	"github.com/spf13/cobra"
)

func newPathsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Manage watched paths",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <path>",
		Short: "Watch a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(_ context.Context, application *app.App) error {
				saved, err := application.Paths.Save(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), saved)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List watched paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(_ context.Context, application *app.App) error {
				watched, err := application.Paths.List()
				if err != nil {
					return err
				}
				for _, path := range watched {
					fmt.Fprintln(cmd.OutOrStdout(), path)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <path>",
		Short: "Stop watching a path. Its documents stay in the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(_ context.Context, application *app.App) error {
				return application.Paths.Remove(args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reindex",
		Short: "Index every watched path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, application *app.App) error {
				results, err := application.Paths.ReindexAll(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), results)
			})
		},
	})

	return cmd
}
