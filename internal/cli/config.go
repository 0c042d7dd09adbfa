package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spookydecs/circuitry/pkg/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	var pathOnly bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration as TOML: defaults, then the config
file, then environment overrides (` + config.EnvStorePath + `, ` + config.EnvMongoURI + `, ` + config.EnvRedisAddr + `).

The output is a valid config file and can be used as a starting point.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return explain(err)
			}
			if pathOnly {
				path := cfg.Path()
				if path == "" {
					if path, err = config.DefaultPath(); err != nil {
						return err
					}
					path += " (not present)"
				}
				fmt.Println(path)
				return nil
			}
			return cfg.Encode(os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&pathOnly, "path", false, "print the config file location only")

	return cmd
}
