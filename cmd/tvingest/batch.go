package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/tvingest/internal/encode"
)

var batchCmd = &cobra.Command{
	Use:   "batch <show> <import_dir>",
	Short: "Write a transcode script for already-identified rips",
	Long: `Write a transcode script for already-identified rips.

Scans import_dir for informal "s1e2 title.mkv" files (the output of
'import --title-only' or hand renaming), cleans up their titles, and
writes one HandBrakeCLI command per episode to a batch script. Nothing
is transcoded; run the script when convenient.

Title cleanup title-cases each name and numbers multi-part groups
("Part 1", "Part 2"). Individual titles can be overridden with
--retitle "on-disk title=Desired Title".

Examples:
  tvingest batch "Foo" /rips/foo_s1
  tvingest batch "Foo" /rips/foo_s1 --retitle "the pilot=Pilot" --no-parts`,
	Args: cobra.ExactArgs(2),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().String("output", "", "Library root (default: library.root from config)")
	batchCmd.Flags().String("script", "", "Batch script path (default: <import_dir>/transcode.sh)")
	batchCmd.Flags().StringArray("retitle", nil, `Override a title: "current=desired" (repeatable)`)
	batchCmd.Flags().Bool("no-parts", false, "Don't add Part numbers to multi-part groups")
	addPresetFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	show, importDir := args[0], args[1]

	root, err := outputRoot(cmd)
	if err != nil {
		return err
	}
	policy, err := buildPolicy(cmd)
	if err != nil {
		return err
	}

	retitleFlags, _ := cmd.Flags().GetStringArray("retitle")
	retitle := make(map[string]string, len(retitleFlags))
	for _, pair := range retitleFlags {
		current, desired, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("--retitle %q not in current=desired form", pair)
		}
		retitle[current] = desired
	}

	noParts, _ := cmd.Flags().GetBool("no-parts")
	eps, err := encode.LoadInformal(importDir, show, retitle, !noParts, log)
	if err != nil {
		return err
	}
	if len(eps) == 0 {
		return fmt.Errorf("no informal episode files in %s", importDir)
	}

	jobs := policy.BuildJobs(eps, root)
	script, _ := cmd.Flags().GetString("script")
	if script == "" {
		script = filepath.Join(importDir, "transcode.sh")
	}
	if err := encode.WriteScript(script, cfg.Tools.HandBrake, jobs); err != nil {
		return err
	}

	fmt.Printf("Wrote %s (%d jobs):\n\n", script, len(jobs))
	for _, job := range jobs {
		marker := " "
		if job.HighQuality {
			marker = "*"
		}
		fmt.Printf("  %s %s\n", marker, filepath.Base(job.Output))
	}
	if policy.HQ != nil {
		fmt.Println("\n  * = high-quality preset")
	}
	return nil
}
