package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	pkgerrors "github.com/spookydecs/circuitry/pkg/errors"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		asJSON bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "check <deployment>",
		Short: "Report data-quality problems in a deployment",
		Long: `Report data-quality problems in a deployment.

Findings:
  UNKNOWN_ITEM           a connection names an item missing from the inventory
  PORT_ALREADY_USED      two connections share one port
  MULTI_PARENT_NODE      an item draws power from more than one source
  ZONE_SPLIT_CONNECTION  a power connection crosses zones (zone views only)

With --strict the command fails when anything is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return explain(c.runCheck(cmd.Context(), args[0], asJSON, strict))
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when findings exist")

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, deployment string, asJSON, strict bool) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	report, err := runner.Check(ctx, deployment)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printKeyValue("Deployment", deployment)
		printKeyValue("Items", fmt.Sprintf("%d", report.Items))
		printKeyValue("Connections", fmt.Sprintf("%d", report.Connections))
		printNewline()
		if report.OK() {
			printSuccess("No problems found")
		} else {
			printWarnings(report.Warnings)
		}
	}

	if strict && !report.OK() {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "%d problems in %s", len(report.Warnings), deployment)
	}
	return nil
}
