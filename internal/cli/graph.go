package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spookydecs/circuitry/pkg/pipeline"
	"github.com/spookydecs/circuitry/pkg/render/nodelink"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	vizType    string // network or tree; empty means the configured default
	zone       string // restrict to one zone
	format     string // json, dot, svg or summary
	output     string // output file; stdout when empty
	detailed   bool   // class type, zone and degrees in node labels
	groupZones bool   // cluster nodes by zone (dot, svg)
	noCache    bool   // always run Graphviz for svg
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: pipeline.FormatSummary}

	cmd := &cobra.Command{
		Use:   "graph <deployment>",
		Short: "Build the connection graph of a deployment",
		Long: `Build the connection graph of a deployment.

The network view contains every connected item and every connection. The
tree view keeps only power connections that stay inside one zone and lays
the items out as a hierarchy from receptacles down to decorations.

Data-quality findings (ports used twice, unknown items, items with two power
parents) are reported as warnings; the graph is still produced.`,
		Example: `  circuitry graph halloween-2026
  circuitry graph halloween-2026 --type tree --zone "Front Yard" -f svg -o front.svg
  circuitry graph halloween-2026 -f dot --group-zones | dot -Tpng > yard.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			return explain(c.runGraph(cmd.Context(), args[0], opts))
		},
	}

	cmd.Flags().StringVarP(&opts.vizType, "type", "t", "", "view: network, tree (default from config)")
	cmd.Flags().StringVarP(&opts.zone, "zone", "z", "", "only include items in this zone")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: summary, json, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show class type, zone and degrees on nodes")
	cmd.Flags().BoolVar(&opts.groupZones, "group-zones", false, "cluster nodes by zone")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the svg render cache")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, deployment string, opts graphOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	gopts := cfg.GraphOptions(opts.vizType, opts.zone)
	prog := newProgress(logger)
	spin := newSpinner(ctx, "Loading "+deployment+"...").Start()
	result, err := runner.Visualize(ctx, pipeline.Options{
		Deployment:     deployment,
		VizType:        gopts.VizType,
		Zone:           gopts.Zone,
		RootClassTypes: gopts.RootClassTypes,
	})
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %s view", result.Graph.VizType))

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	data, err := c.renderer(opts.noCache || opts.format != pipeline.FormatSVG).Render(ctx, result.Graph, opts.format, nodelink.Options{
		Detailed:   opts.detailed,
		GroupZones: opts.groupZones,
		Registry:   reg,
	})
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}

	printSuccess("Wrote %s graph of %s", result.Graph.VizType, deployment)
	printFile(opts.output)
	printStats(result.Graph.Statistics, len(result.Graph.Warnings))
	printWarnings(result.Graph.Warnings)
	return nil
}
