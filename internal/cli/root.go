// Package cli wires the pipeline components behind the despesas command.
package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"despesas/internal/config"
	"despesas/internal/logger"
)

type rootOptions struct {
	logLevel     string
	municipality string
	batchSize    int
	current      string

	cfg *config.AppConfig
	log zerolog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "despesas",
		Short: "Municipal expenditure ingestion pipeline",
		Long: `despesas pulls monthly expenditure records from the state audit court
transparency API, normalizes and classifies them, and keeps them in Postgres.

Configuration comes from the environment (a .env file is loaded when present);
flags override individual values.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.municipality, "municipality", "", "municipality id, e.g. sao-jose-do-rio-preto")
	cmd.PersistentFlags().IntVar(&opts.batchSize, "batch-size", 0, "records per upsert batch")
	cmd.PersistentFlags().StringVar(&opts.current, "current-period", "", "logical current period YYYY-MM; later periods are skipped")

	cmd.AddCommand(
		newIngestCmd(opts),
		newReconcileCmd(opts),
		newRecategorizeCmd(opts),
		newCategoriesCmd(),
		newMigrateCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg := config.Load()
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.municipality != "" {
		cfg.Upstream.MunicipalityID = o.municipality
	}
	if o.batchSize != 0 {
		cfg.Pipeline.BatchSize = o.batchSize
	}
	if o.current != "" {
		cfg.Pipeline.CurrentPeriod = o.current
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.cfg = cfg
	o.log = logger.New(cfg.LogLevel).With().Str("command", cmd.Name()).Logger()
	cmd.SetContext(logger.WithContext(cmd.Context(), o.log))
	return nil
}
