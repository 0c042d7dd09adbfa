package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	pkgerrors "github.com/spookydecs/circuitry/pkg/errors"
	"github.com/spookydecs/circuitry/pkg/inventory"
	"github.com/spookydecs/circuitry/pkg/store"
)

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var skipConnections bool

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Load inventory items (and connections) into the store",
		Long: `Load inventory items into the configured store.

The file is either a JSON array of items or a snapshot as written by the
file backend ({"items": [...], "deployments": {...}}). Items replace stored
items with the same ID. Connections from a snapshot are recreated in their
deployments; ones whose ports are already taken are skipped.

Use "-" to read from stdin.`,
		Example: `  circuitry import inventory.json
  circuitry --config mongo.toml import ~/.local/share/circuitry/inventory.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return explain(c.runImport(cmd.Context(), args[0], skipConnections))
		},
	}

	cmd.Flags().BoolVar(&skipConnections, "items-only", false, "ignore connections in a snapshot")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, path string, itemsOnly bool) error {
	logger := loggerFromContext(ctx)

	snap, err := readImportFile(path)
	if err != nil {
		return err
	}
	items, problems := inventory.ValidItems(snap.Items)
	for _, p := range problems {
		logger.Warn("skipping item", "err", p)
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	w, ok := runner.Store.(store.ItemWriter)
	if !ok {
		return store.ErrReadOnly
	}
	spin := newSpinner(ctx, fmt.Sprintf("Importing %d items...", len(items))).Start()
	if err := w.PutItems(ctx, items); err != nil {
		spin.StopWithError("Import failed")
		if errors.Is(err, store.ErrReadOnly) {
			return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "backend does not accept items")
		}
		return fmt.Errorf("put items: %w", err)
	}
	spin.StopWithSuccess(fmt.Sprintf("Imported %d items", len(items)))
	if len(problems) > 0 {
		printWarning("Skipped %d invalid items", len(problems))
	}

	if itemsOnly || len(snap.Deployments) == 0 {
		return nil
	}

	deployments := make([]string, 0, len(snap.Deployments))
	for d := range snap.Deployments {
		deployments = append(deployments, d)
	}
	slices.Sort(deployments)

	for _, d := range deployments {
		created, skipped := 0, 0
		for _, conn := range snap.Deployments[d] {
			_, err := runner.Store.CreateConnection(ctx, d, conn)
			switch {
			case err == nil:
				created++
			case errors.Is(err, store.ErrConflict), pkgerrors.IsWarning(pkgerrors.GetCode(err)):
				logger.Warn("skipping connection", "deployment", d, "id", conn.ID, "err", err)
				skipped++
			default:
				return fmt.Errorf("import %s: %w", d, err)
			}
		}
		printInfo("%s: %d connections", d, created)
		if skipped > 0 {
			printDetail("%d skipped", skipped)
		}
	}
	return nil
}

// readImportFile reads a JSON items array or a store snapshot. "-" reads
// stdin.
func readImportFile(path string) (*store.Snapshot, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseImport(data)
}

func parseImport(data []byte) (*store.Snapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "empty import file")
	}

	snap := &store.Snapshot{}
	if data[0] == '[' {
		if err := json.Unmarshal(data, &snap.Items); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidInput, err, "parse items")
		}
		return snap, nil
	}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidInput, err, "parse snapshot")
	}
	return snap, nil
}
