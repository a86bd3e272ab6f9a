package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manhsontran/topgo-rag-chatbot/internal/gazetteer"
)

func districtsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "districts",
		Short: "List the Hanoi districts accepted as search filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, d := range gazetteer.Districts() {
				fmt.Println(d)
			}
			return nil
		},
	}
}
