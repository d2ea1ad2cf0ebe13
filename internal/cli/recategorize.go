package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newRecategorizeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recategorize",
		Short: "Re-run the classifier over rows stored as Geral",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, root.cfg, root.log)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			rep, err := a.recategorizer.Run(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			names := make([]string, 0, len(rep.ByCategory))
			for c := range rep.ByCategory {
				names = append(names, c)
			}
			sort.Strings(names)
			for _, c := range names {
				fmt.Fprintf(w, "%-28s %d\n", c, rep.ByCategory[c])
			}
			printSummary(w, rep.Summary())
			return nil
		},
	}
}
