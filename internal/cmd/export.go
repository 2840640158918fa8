package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"chatlens/internal/export"
)

var (
	flagExportQuery   string
	flagExportPreview bool
)

var exportCmd = &cobra.Command{
	Use:   "export <project> <id>",
	Short: "Export one conversation as Markdown",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		conv, err := a.reader.Find(args[0], args[1])
		if err != nil {
			return err
		}

		if flagExportPreview {
			md := export.Build(conv, flagExportQuery, time.Now().UTC())
			r, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(100),
			)
			if err != nil {
				return fmt.Errorf("init renderer: %w", err)
			}
			out, err := r.Render(md)
			if err != nil {
				return fmt.Errorf("render preview: %w", err)
			}
			fmt.Print(out)
			return nil
		}

		path, err := export.New(a.cfg.Export.Dir).Write(conv, flagExportQuery)
		if err != nil {
			return err
		}
		fmt.Println(titleStyle.Render("exported ") + path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&flagExportQuery, "query", "", "bold occurrences of this search term")
	exportCmd.Flags().BoolVar(&flagExportPreview, "preview", false, "render to the terminal instead of writing a file")
}
