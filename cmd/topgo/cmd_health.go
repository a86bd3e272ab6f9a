package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check connectivity to required services",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()
			allOK := true

			// Check Qdrant
			st, err := newStore(logger)
			if err != nil {
				fmt.Printf("Qdrant: FAIL (%v)\n", err)
				allOK = false
			} else {
				defer func() { _ = st.Close() }()
				if err := st.EnsureCollection(ctx); err != nil {
					fmt.Printf("Qdrant: FAIL (%v)\n", err)
					allOK = false
				} else {
					count, _ := st.Count(ctx)
					fmt.Printf("Qdrant: OK (%d venues)\n", count)
				}
			}

			// Check embedding service
			emb := newEmbedder(logger)
			if _, err := emb.Embed(ctx, "health check"); err != nil {
				fmt.Printf("Embeddings: FAIL (%v)\n", err)
				allOK = false
			} else {
				fmt.Println("Embeddings: OK")
			}

			// Check generation model
			client := newLLM(logger)
			if client.CheckConnection(ctx) {
				fmt.Printf("LLM (%s): OK\n", cfg.LLM.Provider)
			} else {
				// Not fatal: the pipeline degrades to template answers.
				fmt.Printf("LLM (%s): UNAVAILABLE (answers degrade to templates)\n", cfg.LLM.Provider)
			}

			if !allOK {
				return fmt.Errorf("one or more health checks failed")
			}
			return nil
		},
	}
}
