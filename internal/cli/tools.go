package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/golovatskygroup/mcp-netlify/internal/tools"
)

type toolEntry struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	InputSchema any    `json:"inputSchema" yaml:"inputSchema"`
}

// NewToolsCmd creates the "tools" subcommand. It needs no credential.
func NewToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalogue",
		Args:  cobra.NoArgs,
		RunE:  runTools,
	}
	cmd.Flags().String("format", "yaml", "Output format: yaml or json")
	return cmd
}

func runTools(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")

	reg, err := tools.NewRegistry()
	if err != nil {
		return err
	}

	entries := make([]toolEntry, 0, len(reg.List()))
	for _, t := range reg.Tools() {
		var schema any
		if err := json.Unmarshal(t.InputSchema, &schema); err != nil {
			return fmt.Errorf("decode schema of %s: %w", t.Name, err)
		}
		entries = append(entries, toolEntry{Name: t.Name, Description: t.Description, InputSchema: schema})
	}

	out := cmd.OutOrStdout()
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	default:
		return exitError(2, "unsupported format %q (use yaml or json)", format)
	}
}
