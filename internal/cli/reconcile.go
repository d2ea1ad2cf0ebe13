package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReconcileCmd(root *rootOptions) *cobra.Command {
	var periods []string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare stored counts with upstream and backfill divergent periods",
		Long: `reconcile re-fetches each period, compares the upstream record count with
the stored count, and re-ingests the period when they differ. Critical months
are also flagged when nothing is stored for them.

Without --period it checks the critical months of every year in the configured range.`,
		Example: `  despesas reconcile
  despesas reconcile --period 2026-01 --period 2026-02`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := root.cfg
			mun := cfg.Upstream.MunicipalityID

			targets, err := explicitPeriods(mun, periods)
			if err != nil {
				return err
			}

			a, err := newApp(ctx, cfg, root.log)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if len(targets) == 0 {
				y, m := a.ingestor.Current()
				targets = criticalPeriods(mun, cfg.Pipeline.CriticalMonths, cfg.Pipeline.StartYear, y, m)
			}

			sum, results := a.reconciler.Run(ctx, targets)
			w := cmd.OutOrStdout()
			for _, r := range results {
				upstream := "unknown"
				if r.Upstream >= 0 {
					upstream = fmt.Sprint(r.Upstream)
				}
				line := fmt.Sprintf("%-32s upstream=%-8s stored=%-8d", r.Period, upstream, r.Stored)
				if r.Flagged() {
					line += fmt.Sprintf(" flags=%v stored_after=%d converged=%t", r.Flags, r.StoredAfter, r.Converged())
				}
				fmt.Fprintln(w, line)
			}
			printSummary(w, sum)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&periods, "period", nil, "period YYYY-MM to check; repeatable")
	return cmd
}
