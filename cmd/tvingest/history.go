package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/tvingest/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past import outcomes",
	Long: `Show past import outcomes.

Examples:
  tvingest history
  tvingest history --show "Foo" --status failed
  tvingest history --limit 5`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("show", "", "Only entries for this show")
	historyCmd.Flags().String("status", "", "Only entries with this status (finish, failed)")
	historyCmd.Flags().Int("limit", 20, "Maximum entries to print")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	show, _ := cmd.Flags().GetString("show")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")

	entries, err := store.List(history.Filter{Show: show, Status: status, Limit: limit})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No history entries")
		return nil
	}

	fmt.Printf("%-16s %-8s %-30s %s\n", "WHEN", "STATUS", "SOURCE", "EPISODE")
	fmt.Println(strings.Repeat("-", 76))
	for _, e := range entries {
		source := filepath.Base(e.SourcePath)
		if len(source) > 30 {
			source = source[:27] + "..."
		}
		ep := "-"
		if e.Title != "" {
			ep = fmt.Sprintf("%s S%dE%d %s", e.Show, e.Season, e.Episode, e.Title)
		}
		fmt.Printf("%-16s %-8s %-30s %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Status, source, ep)
		if e.Error != "" {
			fmt.Printf("  ! %s\n", e.Error)
		}
	}
	return nil
}
