package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/stmtlens/stmtlens/internal/runlog"
)

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent entries of the import log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			return runHistory(cmd.OutOrStdout(), p.Dir, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show, 0 for all")

	return cmd
}

func runHistory(out io.Writer, dir string, limit int) error {
	entries, err := runlog.Read(dir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No imports recorded.")
		return nil
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	for _, e := range entries {
		detail := fmt.Sprintf("%d rows, %d rejected, %s", e.Rows, e.Rejected, e.Source)
		if e.Template != "" {
			detail += " " + e.Template
		}
		if e.Status == runlog.StatusFailed {
			detail = e.Error
		}
		fmt.Fprintf(out, "%s  %s  %-6s  %s  %s\n", e.Timestamp.Local().Format(time.DateTime), e.RunID[:8], e.Status, e.File, detail)
	}
	return nil
}
