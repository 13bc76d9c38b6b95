package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/towersets/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// The config file is loaded before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Towersets counts sets of block towers",
		Long: `Towersets counts the distinct sets of towers that can be built from N
identical blocks, where each tower level holds one or two blocks (or any
other allowed level sizes) and the towers in a set are unordered.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/towersets/config.toml)")

	// Register all subcommands
	root.AddCommand(c.sequenceCommand())
	root.AddCommand(c.tableCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
