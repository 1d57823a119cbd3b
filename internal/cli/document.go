package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/render/document"
)

// documentCommand creates the document command: a markdown export of the CV
// as a traditional top-to-bottom résumé.
func (c *CLI) documentCommand() *cobra.Command {
	var (
		output string
		file   string
		apiURL string
		drafts bool
	)

	cmd := &cobra.Command{
		Use:   "document",
		Short: "Export the CV as a markdown document",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var data cv.Data
			var err error
			if file != "" {
				data, err = cv.ReadFile(file)
			} else {
				api, cerr := c.apiClient(apiURL)
				if cerr != nil {
					return cerr
				}
				data, err = api.GetData(ctx, false)
			}
			if err != nil {
				return err
			}

			doc := document.Render(data, document.Options{IncludeDrafts: drafts})
			if output == "" || output == "-" {
				fmt.Print(doc)
				return nil
			}
			if err := os.WriteFile(output, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Exported document")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&file, "file", "", "export a local JSON file instead of the API")
	cmd.Flags().StringVar(&apiURL, "api", "", "API endpoint (default "+defaultAPIURL+")")
	cmd.Flags().BoolVar(&drafts, "drafts", false, "include draft nodes")

	return cmd
}
