package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manhsontran/topgo-rag-chatbot/internal/gazetteer"
	"github.com/manhsontran/topgo-rag-chatbot/internal/generator"
	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
)

func searchCmd() *cobra.Command {
	var district, category, priceTier string
	var topK int

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Semantic venue search without answer generation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			var filters models.Filters
			if district != "" {
				canonical, ok := gazetteer.Canonical(district)
				if !ok {
					return fmt.Errorf("search: %q is not a Hanoi district", district)
				}
				filters.District = canonical
			}
			if category != "" {
				c, ok := models.ParseCategory(category)
				if !ok {
					return fmt.Errorf("search: invalid category %q", category)
				}
				filters.Category = c
			}
			if priceTier != "" {
				p, ok := models.ParsePriceTier(priceTier)
				if !ok {
					return fmt.Errorf("search: invalid price tier %q", priceTier)
				}
				filters.PriceTier = p
			}

			p, st, err := newPipeline(logger)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			defer func() { _ = st.Close() }()

			results, err := p.Search(cmd.Context(), strings.Join(args, " "), filters, topK)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			if len(results) == 0 {
				fmt.Println("No venues found.")
				return nil
			}

			for _, sv := range results {
				v := sv.Venue
				fmt.Printf("%d. %s (%.0f%%)\n", sv.Rank, v.Name, sv.Similarity*100)
				fmt.Printf("   %s | %s | %s\n", generator.CategoryLabel(v.Category), v.District, generator.PriceTierLabel(v.PriceTier))
				if v.Address != "" {
					fmt.Printf("   %s\n", v.Address)
				}
				if v.Phone != "" {
					fmt.Printf("   %s\n", v.Phone)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&district, "district", "d", "", "restrict to a Hanoi district")
	cmd.Flags().StringVarP(&category, "category", "c", "", "restrict to a category (restaurant, bar, karaoke, cafe, buffet)")
	cmd.Flags().StringVarP(&priceTier, "price", "p", "", "restrict to a price tier (cheap, moderate, expensive)")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of results (default from config)")
	return cmd
}
