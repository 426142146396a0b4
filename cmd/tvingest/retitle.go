package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"
)

// ripPattern matches freshly ripped title files: "title_t03.mkv".
var ripPattern = regexp.MustCompile(`^title_(t\d+\.mkv)$`)

var retitleCmd = &cobra.Command{
	Use:   "retitle <dir> <prefix>",
	Short: "Prefix ripped title files to avoid collisions",
	Long: `Prefix ripped title files to avoid collisions.

Rips from a second disc reuse the same title_t00.mkv numbering as the
first. Before merging them into one import directory, tag one batch:
"title_t00.mkv" becomes "title_<prefix>t00.mkv".

Examples:
  tvingest retitle /rips/disc2 d2     # title_t00.mkv -> title_d2t00.mkv`,
	Args: cobra.ExactArgs(2),
	RunE: runRetitle,
}

func init() {
	rootCmd.AddCommand(retitleCmd)
	retitleCmd.Flags().Bool("dry-run", false, "Print planned renames without touching anything")
}

func runRetitle(cmd *cobra.Command, args []string) error {
	dir, prefix := args[0], args[1]
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var renamed int
	for _, entry := range entries {
		m := ripPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		newName := fmt.Sprintf("title_%s%s", prefix, m[1])
		fmt.Printf("  %s -> %s\n", entry.Name(), newName)
		if !dryRun {
			if err := os.Rename(filepath.Join(dir, entry.Name()), filepath.Join(dir, newName)); err != nil {
				return err
			}
		}
		renamed++
	}

	if renamed == 0 {
		fmt.Println("no title_t*.mkv files found")
	}
	return nil
}
