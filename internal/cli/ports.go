package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spookydecs/circuitry/pkg/inventory"
	"github.com/spookydecs/circuitry/pkg/pipeline"
	"github.com/spookydecs/circuitry/pkg/ports"
)

// portsCommand creates the ports command.
func (c *CLI) portsCommand() *cobra.Command {
	var portType string

	cmd := &cobra.Command{
		Use:   "ports <deployment> <item>",
		Short: "Show an item's ports and what each is plugged into",
		Long: `Show an item's ports and what each is plugged into.

Female ports are outlets, male ports are plugs. Without --type both sides
are listed.`,
		Example: `  circuitry ports halloween-2026 A1
  circuitry ports halloween-2026 A1 --type female`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeItems(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var types []inventory.PortType
			if portType == "" {
				types = []inventory.PortType{inventory.Female, inventory.Male}
			} else {
				pt, err := pipeline.ParsePortType(portType)
				if err != nil {
					return err
				}
				types = []inventory.PortType{pt}
			}
			return explain(c.runPorts(cmd.Context(), args[0], args[1], types))
		},
	}

	cmd.Flags().StringVarP(&portType, "type", "t", "", "port side: female, male")

	return cmd
}

func (c *CLI) runPorts(ctx context.Context, deployment, itemID string, types []inventory.PortType) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	for i, pt := range types {
		ps, err := runner.Ports(ctx, deployment, itemID, pt)
		if err != nil {
			return err
		}
		if i > 0 {
			printNewline()
		}
		free := countFree(ps)
		fmt.Println(StyleTitle.Render(fmt.Sprintf("%s %s ports", itemID, pt)) + " " +
			StyleDim.Render(fmt.Sprintf("(%d of %d free)", free, len(ps))))
		if len(ps) == 0 {
			printDetail("none")
			continue
		}
		fmt.Println(portsTable(ps))
	}
	return nil
}

func countFree(ps []ports.Port) int {
	n := 0
	for _, p := range ps {
		if p.Available {
			n++
		}
	}
	return n
}

// openCommand creates the open command.
func (c *CLI) openCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <deployment>",
		Short: "List connected items that still have free ports",
		Long: `List connected items that still have free ports.

Only items that already take part in a connection are listed, most recently
connected first. Use it to find where the next decoration can plug in.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return explain(c.runOpen(cmd.Context(), args[0]))
		},
	}
	return cmd
}

func (c *CLI) runOpen(ctx context.Context, deployment string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	open, err := runner.OpenPorts(ctx, deployment)
	if err != nil {
		return err
	}
	if len(open) == 0 {
		printInfo("No connected item in %s has a free port", deployment)
		return nil
	}

	fmt.Println(openTable(open))
	printDetail("%d items with free ports", len(open))
	return nil
}
