package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run deep summarization on catalog entries that need it",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		updated, err := a.analyzer.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("%d chats updated", updated)))
		return nil
	},
}
