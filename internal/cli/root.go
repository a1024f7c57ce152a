// Package cli holds the cobra commands of the netlify-mcp binary.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/golovatskygroup/mcp-netlify/internal/config"
)

// NewRootCmd builds the command tree. Running the root without a
// subcommand starts the stdio server, which is how MCP hosts launch it.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "netlify-mcp",
		Short:         "MCP server for managing Netlify sites",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.PersistentFlags().String("config", "", "Path to YAML config file")
	root.PersistentFlags().String("log-level", "", "Log level override (trace, debug, info, warn, error)")

	root.Version = version
	root.SetVersionTemplate(fmt.Sprintf("netlify-mcp version %s\n", version))

	root.AddCommand(NewServeCmd())
	root.AddCommand(NewToolsCmd())
	root.AddCommand(NewHistoryCmd())
	return root
}

// loadConfig reads the config named by --config and applies --log-level.
func loadConfig(cmd *cobra.Command, requireToken bool) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if requireToken {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadWithoutToken(path)
	}
	if err != nil {
		return nil, exitError(2, "%v", err)
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}
