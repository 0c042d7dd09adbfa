package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/spookydecs/circuitry/pkg/registry"
)

// registryCommand creates the registry command.
func (c *CLI) registryCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Show the class-type, connection and zone styles",
		Long: `Show the effective style registry: the built-in palette with any
overrides from the config file applied.

With --check, only validate the registry and report problems.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return explain(c.runRegistry(check))
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "validate the registry and exit")

	return cmd
}

func (c *CLI) runRegistry(check bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	if check {
		printSuccess("Registry is valid (%d class types)", len(reg.ClassTypes()))
		return nil
	}

	fmt.Println(StyleTitle.Render("Class types"))
	fmt.Println(classTable(reg))
	printNewline()
	fmt.Println(StyleTitle.Render("Connections"))
	fmt.Println(edgeTable(reg))
	if zones := reg.Zones(); len(zones) > 0 {
		printNewline()
		fmt.Println(StyleTitle.Render("Zones"))
		fmt.Println(zoneTable(reg))
	}
	return nil
}

// swatch renders a block in the given hex colour.
func swatch(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██") + " " + hex
}

func classTable(reg *registry.Registry) string {
	types := reg.ClassTypes()
	rows := make([][]string, len(types))
	for i, t := range types {
		s := reg.Class(t)
		rows[i] = []string{t, s.Acronym, swatch(s.Color), s.Shape, strconv.Itoa(s.Size)}
	}
	return newTable("Class Type", "Acronym", "Color", "Shape", "Size").
		Rows(rows...).
		StyleFunc(headerOnly).
		Render()
}

func edgeTable(reg *registry.Registry) string {
	types := reg.ConnectionTypes()
	rows := make([][]string, len(types))
	for i, t := range types {
		s := reg.Edge(t)
		dash := s.Dasharray
		if dash == "" {
			dash = "solid"
		}
		rows[i] = []string{string(t), swatch(s.Color), strconv.FormatFloat(s.StrokeWidth, 'f', -1, 64), dash}
	}
	return newTable("Type", "Color", "Width", "Stroke").
		Rows(rows...).
		StyleFunc(headerOnly).
		Render()
}

func zoneTable(reg *registry.Registry) string {
	zones := reg.Zones()
	rows := make([][]string, len(zones))
	for i, z := range zones {
		s := reg.Zone(z)
		rows[i] = []string{z, swatch(s.Fill), swatch(s.Border)}
	}
	return newTable("Zone", "Fill", "Border").
		Rows(rows...).
		StyleFunc(headerOnly).
		Render()
}

func headerOnly(row, col int) lipgloss.Style {
	if row == -1 {
		return tableHeaderStyle
	}
	return lipgloss.NewStyle()
}
