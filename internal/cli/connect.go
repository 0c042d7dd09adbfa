package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	pkgerrors "github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/inventory"
	"github.com/spookydecs/circuitry/pkg/pipeline"
	"github.com/spookydecs/circuitry/pkg/ports"
)

// errPickCancelled is returned when the port picker is closed without a choice.
var errPickCancelled = fmt.Errorf("port selection: %w", context.Canceled)

// connectCommand creates the connect command.
func (c *CLI) connectCommand() *cobra.Command {
	var (
		req      pipeline.ConnectRequest
		connType string
	)

	cmd := &cobra.Command{
		Use:   "connect <deployment> <from-item> <to-item>",
		Short: "Record that one item plugs into another",
		Long: `Record that one item plugs into another.

The source item provides the female port (outlet); the target item provides
the male port (plug). When a port is not given it is chosen interactively,
or automatically when only one is free.

Both ports must be free. If another writer takes either port first, the
connection is rejected and nothing is written.`,
		Example: `  circuitry connect halloween-2026 A1 D1 --from-port Female_2 --to-port Male_1
  circuitry connect halloween-2026 A1 D1
  circuitry connect halloween-2026 A1 S4 --illuminates D1,D2 --notes "behind the hedge"`,
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: c.completeItems(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Deployment, req.FromItemID, req.ToItemID = args[0], args[1], args[2]
			req.Type = inventory.ConnectionType(connType)
			return explain(c.runConnect(cmd.Context(), req))
		},
	}

	cmd.Flags().StringVar(&req.FromPort, "from-port", "", "female port on the source item (e.g. Female_1)")
	cmd.Flags().StringVar(&req.ToPort, "to-port", "", "male port on the target item (e.g. Male_1)")
	cmd.Flags().StringVar(&connType, "type", "", "connection type: power (default), illuminates")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "free-form notes")
	cmd.Flags().StringSliceVar(&req.Illuminates, "illuminates", nil, "items lit by this connection (comma-separated)")

	return cmd
}

func (c *CLI) runConnect(ctx context.Context, req pipeline.ConnectRequest) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	if req.FromPort == "" || req.ToPort == "" {
		snap, err := runner.Load(ctx, req.Deployment)
		if err != nil {
			return err
		}
		if req.FromPort == "" {
			if req.FromPort, err = pickPort(snap, req.FromItemID, inventory.Female); err != nil {
				return err
			}
		}
		if req.ToPort == "" {
			if req.ToPort, err = pickPort(snap, req.ToItemID, inventory.Male); err != nil {
				return err
			}
		}
	}

	conn, err := runner.Connect(ctx, req)
	if err != nil {
		return err
	}

	printSuccess("Connected %s", conn.Label())
	printKeyValue("ID", conn.ID)
	printKeyValue("Type", string(conn.EffectiveType()))
	if len(conn.Illuminates) > 0 {
		printKeyValue("Illuminates", fmt.Sprint(conn.Illuminates))
	}
	printNewline()
	printNextStep("Undo with", fmt.Sprintf("%s disconnect %s %s", appName, req.Deployment, conn.ID))
	return nil
}

// pickPort chooses a port of type pt on itemID. A single free port is taken
// without asking; otherwise the interactive picker runs.
func pickPort(snap *pipeline.Snapshot, itemID string, pt inventory.PortType) (string, error) {
	item, ok := snap.Item(itemID)
	if !ok {
		return "", pkgerrors.New(pkgerrors.ErrCodeNotFound, "item %s not found", itemID)
	}

	var chosen string
	sel := ports.NewSelector()
	if sel.OpenOrAuto(item, snap.Connections, itemID, pt, func(p string) { chosen = p }) {
		printInfo("Using %s, the only free %s port on %s", chosen, pt, item.DisplayName())
		return chosen, nil
	}
	switch ps := sel.Ports(); {
	case len(ps) == 0:
		sel.Close()
		return "", pkgerrors.New(pkgerrors.ErrCodeInvalidPort, "%s has no %s ports", item.DisplayName(), pt)
	case countFree(ps) == 0:
		sel.Close()
		return "", pkgerrors.New(pkgerrors.ErrCodePortAlreadyUsed, "%s has no free %s port", item.DisplayName(), pt)
	}

	final, err := tea.NewProgram(NewPortPickerModel(sel)).Run()
	if err != nil {
		return "", fmt.Errorf("port picker: %w", err)
	}
	if m, ok := final.(PortPickerModel); !ok || !m.Done {
		return "", errPickCancelled
	}
	return chosen, nil
}

// disconnectCommand creates the disconnect command.
func (c *CLI) disconnectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disconnect <deployment> <connection-id>",
		Short: "Remove a recorded connection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return explain(c.runDisconnect(cmd.Context(), args[0], args[1]))
		},
	}
	return cmd
}

func (c *CLI) runDisconnect(ctx context.Context, deployment, id string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	if err := runner.Disconnect(ctx, deployment, id); err != nil {
		return err
	}
	printSuccess("Removed connection %s from %s", id, deployment)
	return nil
}
