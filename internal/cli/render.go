package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fschmidt/virtualcv/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple formats)
	formats  []string // output formats: svg, png, pdf, dot, json, markdown
	file     string   // local JSON file instead of the API
	apiURL   string   // API endpoint
	selected string   // node id to render as selected
	detailed bool     // multi-line node labels
	edit     bool     // include draft nodes
	scale    float64  // PNG resolution multiplier
	refresh  bool     // bypass the API response cache
	noCache  bool     // disable the artifact cache
}

// renderCommand creates the render command for generating graph artifacts.
//
// The CV comes from the API by default; --file renders a local JSON export
// instead. Multiple formats share one pipeline run, so the layout and the
// DOT emission happen once.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the CV graph to SVG, PNG, or other formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "cv", "output file or base path (extension added per format)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json, markdown (comma-separated)")
	cmd.Flags().StringVar(&opts.file, "file", "", "render a local JSON file instead of the API")
	cmd.Flags().StringVar(&opts.apiURL, "api", "", "API endpoint (default "+defaultAPIURL+")")
	cmd.Flags().StringVar(&opts.selected, "selected", "", "node id to render as selected")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show company and date lines in node labels")
	cmd.Flags().BoolVar(&opts.edit, "drafts", false, "include draft nodes")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the API response cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts *renderOpts) error {
	source, err := c.pipelineSource(opts.file, opts.apiURL)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	p := newProgress(loggerFromContext(ctx))
	result, err := runner.Execute(ctx, pipeline.Options{
		Source:     source,
		Refresh:    opts.refresh,
		SelectedID: opts.selected,
		EditMode:   opts.edit,
		Formats:    opts.formats,
		Detailed:   opts.detailed,
		Scale:      opts.scale,
		Logger:     c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	p.done(fmt.Sprintf("Rendered %d nodes", len(result.Nodes)))

	printSuccess("Rendered %s", strings.Join(opts.formats, ", "))
	printStats(len(result.Nodes), len(result.Edges), result.CacheInfo.RenderHit)

	for _, format := range opts.formats {
		path := outputPath(opts.output, format, len(opts.formats) > 1)
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// outputPath derives the artifact path for a format. With a single format,
// an explicit extension on the output flag is respected.
func outputPath(base, format string, multi bool) string {
	ext := format
	if format == pipeline.FormatMarkdown {
		ext = "md"
	}
	if !multi && filepath.Ext(base) != "" {
		return base
	}
	return base + "." + ext
}
