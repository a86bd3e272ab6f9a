package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manhsontran/topgo-rag-chatbot/internal/indexer"
)

func indexCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Embed crawled venue data and load it into the vector index",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			if file == "" {
				file = cfg.Data.VenuesFile
			}

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("index: connecting to store: %w", err)
			}
			defer func() { _ = st.Close() }()

			ix := indexer.New(newEmbedder(logger), st, logger)

			res, err := ix.IndexFile(cmd.Context(), file)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			fmt.Printf("Loaded %d venues, indexed %d, skipped %d\n", res.Loaded, res.Indexed, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "venues JSON file (default from config)")
	return cmd
}
