package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/tvingest/internal/cloud"
	"github.com/vmunix/tvingest/internal/detect"
	"github.com/vmunix/tvingest/internal/encode"
	"github.com/vmunix/tvingest/internal/gate"
	"github.com/vmunix/tvingest/internal/history"
	"github.com/vmunix/tvingest/internal/importer"
	"github.com/vmunix/tvingest/internal/manifest"
	"github.com/vmunix/tvingest/internal/runner"
	"github.com/vmunix/tvingest/internal/taskmaster"
)

var importCmd = &cobra.Command{
	Use:   "import <show> <import_dir>",
	Short: "Detect, transcode, and file ripped episodes",
	Long: `Detect, transcode, and file ripped episodes.

Every title*.mkv file in import_dir is processed concurrently: a few
short clips are cut and OCR'd to identify the episode, the file is
transcoded with HandBrake, and the result lands under its canonical
name in the library. Files whose title can't be detected automatically
pause on a request file in the import directory until a human fills in
the answer.

With --title-only, files are renamed to "s1e2 Title.mkv" in place and a
transcode batch script is written instead of transcoding now.

Examples:
  tvingest import "Foo" /rips/foo_s1 --manifest foo.tsv
  tvingest import "Foo" /rips/foo_s1 --manifest foo.tsv --title-only
  tvingest import "Foo" /rips/foo_s1 --manifest foo.tsv --hq-episodes "1:5,9"`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("manifest", "", "TSV manifest of expected episodes (required)")
	_ = importCmd.MarkFlagRequired("manifest")
	importCmd.Flags().String("output", "", "Library root (default: library.root from config)")
	importCmd.Flags().String("bucket", "", "gs:// staging prefix for OCR clips (default: cloud.bucket)")
	importCmd.Flags().String("project", "", "Billing project for requester-pays buckets")
	importCmd.Flags().Float64("confidence", 0, "Minimum OCR confidence (default: detect.confidence)")
	importCmd.Flags().Bool("title-only", false, "Stop after detection; rename in place and write a batch script")
	importCmd.Flags().String("script", "", "Batch script path for --title-only (default: <import_dir>/transcode.sh)")
	importCmd.Flags().Bool("no-history", false, "Don't record outcomes in the history database")
	importCmd.Flags().String("ffmpeg", "", "ffmpeg binary path (default: tools.ffmpeg)")
	importCmd.Flags().String("handbrake", "", "HandBrakeCLI binary path (default: tools.handbrake)")
	importCmd.Flags().Int64("ffmpeg-limit", 0, "Max concurrent ffmpeg cuts (default: limits.ffmpeg)")
	importCmd.Flags().Int64("gcloud-limit", 0, "Max concurrent cloud operations (default: limits.gcloud)")
	importCmd.Flags().Int64("handbrake-limit", 0, "Max concurrent transcodes (default: limits.handbrake)")
	importCmd.Flags().String("db", "", "History database path (default: history.path)")
	addPresetFlags(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	show, importDir := args[0], args[1]
	ctx := cmd.Context()

	root, err := outputRoot(cmd)
	if err != nil {
		return err
	}
	policy, err := buildPolicy(cmd)
	if err != nil {
		return err
	}

	manifestPath, _ := cmd.Flags().GetString("manifest")
	episodes, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}

	bucket, _ := cmd.Flags().GetString("bucket")
	if bucket == "" {
		bucket = cfg.Cloud.Bucket
	}
	if bucket == "" {
		return fmt.Errorf("no staging bucket: pass --bucket or set cloud.bucket in the config")
	}
	project, _ := cmd.Flags().GetString("project")
	if project == "" {
		project = cfg.Cloud.Project
	}
	confidence := floatFlagOr(cmd, "confidence", cfg.Detect.Confidence)

	ffmpegPath := stringFlagOr(cmd, "ffmpeg", cfg.Tools.FFmpeg)
	handbrakePath := stringFlagOr(cmd, "handbrake", cfg.Tools.HandBrake)
	dbPath := stringFlagOr(cmd, "db", cfg.History.Path)

	files, err := filepath.Glob(filepath.Join(importDir, "title*.mkv"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no title*.mkv files in %s", importDir)
	}
	sort.Strings(files)
	log.Info("starting import", "show", show, "files", len(files))

	tm := taskmaster.New(log, time.Duration(cfg.Limits.Jitter), taskmaster.Limits{
		taskmaster.ResourceCut:       limitFlagOr(cmd, "ffmpeg-limit", cfg.Limits.FFmpeg),
		taskmaster.ResourceCloud:     limitFlagOr(cmd, "gcloud-limit", cfg.Limits.GCloud),
		taskmaster.ResourceTranscode: limitFlagOr(cmd, "handbrake-limit", cfg.Limits.HandBrake),
	})

	store, err := cloud.NewGCS(ctx, project, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	textDet, err := cloud.NewVideoDetector(ctx, log)
	if err != nil {
		return err
	}
	defer func() { _ = textDet.Close() }()

	gateDir := cfg.Detect.GateDir
	if gateDir == "" {
		gateDir = importDir
	}
	run := runner.NewExec(log)
	eng := detect.New(tm, run, store, textDet, gate.NewFile(gateDir, 0, log), detect.Config{
		FFmpegPath:    ffmpegPath,
		StagingPrefix: bucket,
		Confidence:    confidence,
	})

	var hist *history.Store
	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		hist = openHistoryStore(dbPath, log)
	}
	if hist != nil {
		defer func() { _ = hist.Close() }()
	}

	titleOnly, _ := cmd.Flags().GetBool("title-only")
	imp := importer.New(tm, eng, run, policy, hist, importer.Config{
		Show:          show,
		OutputRoot:    root,
		HandbrakePath: handbrakePath,
		TitleOnly:     titleOnly,
		Episodes:      episodes,
	}, log)

	results, runErr := imp.Run(ctx, files)

	if titleOnly {
		if jobs := importer.Jobs(results); len(jobs) > 0 {
			script, _ := cmd.Flags().GetString("script")
			if script == "" {
				script = filepath.Join(importDir, "transcode.sh")
			}
			if err := encode.WriteScript(script, handbrakePath, jobs); err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%d jobs)\n\n", script, len(jobs))
		}
	}

	printResults(results)
	return runErr
}

// openHistoryStore opens the history database, creating its directory
// first. Import still works without history, so failures only warn.
func openHistoryStore(dbPath string, log *slog.Logger) *history.Store {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		log.Warn("history database unavailable", "path", dbPath, "error", err)
		return nil
	}
	hist, err := history.Open(dbPath)
	if err != nil {
		log.Warn("history database unavailable", "path", dbPath, "error", err)
		return nil
	}
	return hist
}

func stringFlagOr(cmd *cobra.Command, name, fallback string) string {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return fallback
	}
	return v
}

// floatFlagOr returns the flag's value when set on the command line,
// even an explicit zero, and the fallback otherwise.
func floatFlagOr(cmd *cobra.Command, name string, fallback float64) float64 {
	if !cmd.Flags().Changed(name) {
		return fallback
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return v
}

func limitFlagOr(cmd *cobra.Command, name string, fallback int64) int64 {
	if !cmd.Flags().Changed(name) {
		return fallback
	}
	v, _ := cmd.Flags().GetInt64(name)
	return v
}

func printResults(results []importer.Result) {
	fmt.Printf("Imported %d file(s):\n\n", len(results))
	for _, r := range results {
		name := filepath.Base(r.Source)
		if r.Err != nil {
			fmt.Printf("  FAIL %-30s %v\n", name, r.Err)
			continue
		}
		fmt.Printf("  ok   %-30s -> %s\n", name, r.Job.Output)
	}
}
