package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"chatlens/internal/transcript"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan logs once and refresh the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		projects, err := a.reader.Projects()
		if err != nil {
			return err
		}

		var all []transcript.Conversation
		for _, project := range projects {
			convs, err := a.reader.Conversations(ctx, project)
			if err != nil {
				fmt.Println(dimStyle.Render(fmt.Sprintf("skipping %s: %v", project.Name, err)))
				continue
			}
			fmt.Printf("%s %s\n",
				countStyle.Render(fmt.Sprintf("%4d", len(convs))),
				project.Name)
			all = append(all, convs...)
		}

		entries, err := a.store.Sync(ctx, all)
		if err != nil {
			return err
		}

		pending := 0
		for _, e := range entries {
			if e.NeedsAnalysis {
				pending++
			}
		}
		fmt.Println(successStyle.Render(fmt.Sprintf(
			"catalog: %d entries (%d pending analysis) at %s",
			len(entries), pending, a.store.Path())))
		return nil
	},
}
