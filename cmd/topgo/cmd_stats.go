package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show venue index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("stats: connecting to store: %w", err)
			}
			defer func() { _ = st.Close() }()

			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}

			fmt.Printf("Total venues: %d\n", stats.TotalVenues)

			fmt.Println("\nBy category:")
			for category, n := range stats.ByCategory {
				fmt.Printf("  %-12s %d\n", category, n)
			}

			fmt.Println("\nBy price tier:")
			for tier, n := range stats.ByPriceTier {
				fmt.Printf("  %-12s %d\n", tier, n)
			}
			return nil
		},
	}
}
