package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"despesas/internal/classifier"
)

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Print the closed category set in classifier priority order",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range classifier.Categories() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}
