package cli

import (
	"github.com/spf13/cobra"

	"despesas/internal/logger"
)

func newIngestCmd(root *rootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch, normalize, classify and store every period in a range",
		Example: `  despesas ingest
  despesas ingest --from 2025-01 --to 2025-06`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := root.cfg

			a, err := newApp(ctx, cfg, root.log)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			y, m := a.ingestor.Current()
			periods, err := periodRange(cfg.Upstream.MunicipalityID, from, to, cfg.Pipeline.StartYear, y, m)
			if err != nil {
				return err
			}

			log := logger.FromContext(ctx)
			log.Info().
				Int("periods", len(periods)).
				Str("municipality", cfg.Upstream.MunicipalityID).
				Msg("ingestion started")

			sum := a.ingestor.Run(ctx, periods)
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first period YYYY-MM (default START_YEAR-01)")
	cmd.Flags().StringVar(&to, "to", "", "last period YYYY-MM (default current period)")
	return cmd
}
