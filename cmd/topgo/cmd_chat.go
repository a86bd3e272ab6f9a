package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manhsontran/topgo-rag-chatbot/internal/models"
	"github.com/manhsontran/topgo-rag-chatbot/internal/pipeline"
)

func chatCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat session on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			p, st, err := newPipeline(logger)
			if err != nil {
				return fmt.Errorf("chat: %w", err)
			}
			defer func() { _ = st.Close() }()

			fmt.Println("TopGo — trợ lý tư vấn nhà hàng Hà Nội. Gõ 'exit' để thoát.")

			var history []models.Turn
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("\nBạn: ")
				if !scanner.Scan() {
					break
				}
				query := strings.TrimSpace(scanner.Text())
				if query == "" {
					continue
				}
				if query == "exit" || query == "quit" {
					break
				}

				answer := p.Answer(cmd.Context(), pipeline.Request{
					Query:   query,
					TopK:    topK,
					History: history,
				})

				fmt.Printf("\nTopGo: %s\n", answer.Text)
				if answer.SourceCount > 0 {
					fmt.Printf("(%d nguồn)\n", answer.SourceCount)
				}

				history = append(history,
					models.Turn{Role: models.RoleUser, Content: query},
					models.Turn{Role: models.RoleAssistant, Content: answer.Text},
				)
				if len(history) > models.HistoryWindow {
					history = history[len(history)-models.HistoryWindow:]
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of venues to retrieve (default from config)")
	return cmd
}
