// Package cli implements the sqlloader command line interface.
package cli

import (
	"bufio"
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"go.nownabe.dev/sqlloader"
	"go.nownabe.dev/sqlloader/contrib/handlers"
)

// Dataset names accepted by the loader.
const (
	datasetMovies  = "movies"
	datasetRatings = "ratings"
)

// NewRootCommand builds the sqlloader command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sqlloader",
		Short: "Convert Netflix Prize files into SQL statements",
		Long: `sqlloader reads the Netflix Prize dataset files and prints the SQL
statements that load them, wrapped in a single transaction. Pipe the output
into a database client:

  sqlloader movies  | psql netflix
  sqlloader ratings | psql netflix

Logs go to stderr; stdout carries SQL only.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("dir", ".", "Directory holding the dataset files")
	root.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	root.PersistentFlags().Bool("pretty", false, "Print human friendly logs")

	root.AddCommand(newMoviesCommand(), newRatingsCommand(), newVersionCommand())

	return root
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func newMoviesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "movies",
		Short: "Print INSERT statements for " + handlers.MovieTitlesSource,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDataset(cmd, datasetMovies)
		},
	}
}

func newRatingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ratings",
		Short: "Print INSERT statements for the combined_data files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDataset(cmd, datasetRatings)
		},
	}
}

func runDataset(cmd *cobra.Command, dataset string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}

	opts, err := loggingOptions(cmd)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	opts = append(opts, sqlloader.WithOutput(out))

	loader, err := sqlloader.New(opts...)
	if err != nil {
		return xerrors.Errorf("failed to build loader: %w", err)
	}
	loader.MustAddHandler(ctx, handlers.MovieTitles(datasetMovies, "^"+datasetMovies+"$"))
	loader.MustAddHandler(ctx, handlers.CombinedData(datasetRatings, "^"+datasetRatings+"$"))

	err = loader.Handle(ctx, sqlloader.Event{Name: dataset, Dir: dir})

	// Whatever was generated before a failure is still written, without
	// COMMIT, so the client rolls it back.
	if ferr := out.Flush(); ferr != nil && err == nil {
		err = xerrors.Errorf("failed to flush output: %w", ferr)
	}

	return err
}

func loggingOptions(cmd *cobra.Command) ([]sqlloader.Option, error) {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}

	pretty, err := cmd.Flags().GetBool("pretty")
	if err != nil {
		return nil, err
	}

	opts := []sqlloader.Option{
		sqlloader.WithLogLevel(level),
		sqlloader.WithLogWriter(cmd.ErrOrStderr()),
	}
	if pretty {
		opts = append(opts, sqlloader.WithPrettyLogging())
	}

	return opts, nil
}
