package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/meghashyamc/wordindex/api"
	"github.com/meghashyamc/wordindex/app"
	"github.com/meghashyamc/wordindex/config"
	"github.com/meghashyamc/wordindex/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	env string
	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "wordindex",
		Short:         "Index local documents and search them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.env)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			opts.cfg = cfg
			opts.log = logger.NewWithLevel(cfg.GetLogLevel())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.env, "env", "", "Config environment (reads config/config.<env>.yaml, defaults to $ENV or local)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newIndexCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newPathsCmd(opts))

	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.Run(cmd.Context(), opts.cfg, opts.log)
		},
	}
}

func newIndexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "index <path>",
		Short: "Index a directory or a single file and wait for the run to finish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, application *app.App) error {
				summary, err := application.Index.Index(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), summary)
			})
		},
	}
}

type searchOptions struct {
	offset  int
	limit   int
	classes []string
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var searchOpts searchOptions

	cmd := &cobra.Command{
		Use:   "search [keyword]",
		Short: "Search indexed documents. Without a keyword every document is listed, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyword := ""
			if len(args) == 1 {
				keyword = args[0]
			}
			return withApp(cmd.Context(), opts, func(ctx context.Context, application *app.App) error {
				envelope, err := application.Search.Search(ctx, keyword, searchOpts.offset, searchOpts.limit, searchOpts.classes)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), envelope)
			})
		},
	}

	cmd.Flags().IntVar(&searchOpts.offset, "offset", 0, "Number of results to skip")
	cmd.Flags().IntVarP(&searchOpts.limit, "limit", "n", 0, "Maximum number of results (0 means the default of 20)")
	cmd.Flags().StringSliceVarP(&searchOpts.classes, "class", "c", nil, "Only return documents of these classes (repeatable)")

	return cmd
}

// withApp opens the stores for the duration of one command.
func withApp(ctx context.Context, opts *rootOptions, run func(ctx context.Context, application *app.App) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	application, err := app.New(ctx, opts.cfg, opts.log)
	if err != nil {
		return err
	}
	defer application.Close()

	return run(ctx, application)
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}
