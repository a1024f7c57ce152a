package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/golovatskygroup/mcp-netlify/internal/audit"
)

// NewHistoryCmd creates the "history" subcommand, which prints the most
// recent entries of the audit log.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent tool calls from the audit log",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	cmd.Flags().Int("limit", 20, "Number of entries to show")
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	if cfg.Audit.Path == "" {
		return exitError(2, "audit log is disabled; set audit.path or NETLIFY_AUDIT_PATH")
	}
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := audit.Open(cfg.Audit.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.Recent(cmdContext(cmd), limit)
	if err != nil {
		return fmt.Errorf("read audit log: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTOOL\tSTATUS\tHTTP\tDURATION\tMESSAGE")
	for _, r := range recs {
		status := r.Status
		if r.ErrorKind != "" {
			status = r.ErrorKind
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ExecutedAt.Local().Format(time.RFC3339), r.Tool, status, r.StatusCode,
			time.Duration(r.DurationMS)*time.Millisecond, r.Message)
	}
	return w.Flush()
}
