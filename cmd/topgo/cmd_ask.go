package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manhsontran/topgo-rag-chatbot/internal/pipeline"
)

func askCmd() *cobra.Command {
	var topK int
	var showSources bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			p, st, err := newPipeline(logger)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer func() { _ = st.Close() }()

			answer := p.Answer(cmd.Context(), pipeline.Request{
				Query: strings.Join(args, " "),
				TopK:  topK,
			})

			fmt.Println(answer.Text)

			if showSources && answer.SourceCount > 0 {
				fmt.Printf("\nNguồn (%d):\n", answer.SourceCount)
				for _, sv := range answer.Sources {
					fmt.Printf("  %d. %s — %s (%.0f%%)\n", sv.Rank, sv.Venue.Name, sv.Venue.District, sv.Similarity*100)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of venues to retrieve (default from config)")
	cmd.Flags().BoolVar(&showSources, "sources", false, "print the retrieved venues under the answer")
	return cmd
}
