package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/layout"
)

// layoutCommand creates the layout debug command: it prints the computed
// position of every visible node without rendering anything.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		file      string
		apiURL    string
		selected  string
		inspector bool
		drafts    bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print computed node positions (debug)",
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

			visible := data.Visible(drafts)
			loggerFromContext(ctx).Debug("computing layout", "nodes", len(visible), "inspector", inspector)
			positions := layout.Compute(visible, selected, inspector)

			byID := make(map[string]cv.Node, len(visible))
			for _, n := range visible {
				byID[n.ID] = n
			}

			printInfo("%d nodes, selected=%q", len(positions), selected)
			for _, p := range positions {
				n := byID[p.NodeID]
				fmt.Printf("  %-24s %-12s x=%8.1f y=%8.1f\n", p.NodeID, n.Type, p.X, p.Y)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "use a local JSON file instead of the API")
	cmd.Flags().StringVar(&apiURL, "api", "", "API endpoint (default "+defaultAPIURL+")")
	cmd.Flags().StringVar(&selected, "selected", "", "node id to treat as selected")
	cmd.Flags().BoolVar(&inspector, "inspector", false, "use inspector-mode sizing")
	cmd.Flags().BoolVar(&drafts, "drafts", false, "include draft nodes")

	return cmd
}
