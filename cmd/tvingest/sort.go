package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vmunix/tvingest/pkg/episode"
)

// flatPattern matches the flat export naming some rippers produce:
// "Show (S1, E2) - Title.m4v".
var flatPattern = regexp.MustCompile(`^(.+) \(S(\d+), E(\d+)\) - (.+)\.(mp4|m4v)$`)

var sortCmd = &cobra.Command{
	Use:   "sort <src_dir>",
	Short: "File loose episode files into the library layout",
	Long: `File loose episode files into the library layout.

Moves episode files from src_dir into "<show>/Season <n>/" directories
under the library root, renaming them canonically. Both canonical names
and the flat "Show (S1, E2) - Title.m4v" form are recognized; anything
else is reported and left alone.

Examples:
  tvingest sort /downloads/sorted --output /media/tv
  tvingest sort /downloads/sorted --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runSort,
}

func init() {
	rootCmd.AddCommand(sortCmd)
	sortCmd.Flags().String("output", "", "Library root (default: library.root from config)")
	sortCmd.Flags().Bool("dry-run", false, "Print planned moves without renaming anything")
}

func runSort(cmd *cobra.Command, args []string) error {
	srcDir := args[0]
	root, err := outputRoot(cmd)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return err
	}

	var moved, skipped int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(srcDir, entry.Name())
		epi, ok := parseSortable(path)
		if !ok {
			fmt.Printf("  skip %s\n", entry.Name())
			skipped++
			continue
		}

		dest := filepath.Join(root, epi.CanonicalPath())
		fmt.Printf("  %s -> %s\n", entry.Name(), dest)
		if dryRun {
			moved++
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("refusing to overwrite %s", dest)
		}
		if err := os.Rename(path, dest); err != nil {
			return fmt.Errorf("move %s: %w", entry.Name(), err)
		}
		moved++
	}

	fmt.Printf("\n%d file(s) filed, %d skipped\n", moved, skipped)
	return nil
}

// parseSortable accepts canonical and flat episode filenames.
func parseSortable(path string) (episode.EpInfo, bool) {
	if epi, err := episode.ParseCanonical(path); err == nil {
		return epi, true
	}
	m := flatPattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return episode.EpInfo{}, false
	}
	season, _ := strconv.Atoi(m[2])
	epNum, _ := strconv.Atoi(m[3])
	return episode.EpInfo{
		Show:    m[1],
		Season:  season,
		Episode: epNum,
		Title:   m[4],
		Ext:     m[5],
	}.WithPath(path), true
}
