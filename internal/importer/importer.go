// Package importer runs the per-file import pipeline: stage the rip,
// detect which episode it is, transcode it into the library, and record
// the outcome.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vmunix/tvingest/internal/encode"
	"github.com/vmunix/tvingest/internal/history"
	"github.com/vmunix/tvingest/internal/runner"
	"github.com/vmunix/tvingest/internal/taskmaster"
	"github.com/vmunix/tvingest/pkg/episode"
)

// stagingTimestamp is the timestamp layout embedded in staging renames.
const stagingTimestamp = "2006-01-02-15-04-05"

// TitleDetector resolves the episode identity of a staged file.
// Implemented by detect.Engine.
type TitleDetector interface {
	Detect(ctx context.Context, taskID int64, allowed []episode.Entry, tempDir, stagedPath string) (episode.Entry, error)
}

// Config holds the static inputs of an import run.
type Config struct {
	Show          string
	OutputRoot    string
	HandbrakePath string
	// TitleOnly stops after detection: the file is renamed to its
	// informal episode name in place and no transcode runs.
	TitleOnly bool
	// Episodes is the set of allowed (season, episode, title) tuples.
	Episodes []episode.Entry
}

// Result is the outcome of importing one file.
type Result struct {
	Source  string
	TaskID  int64
	Episode episode.EpInfo
	Job     encode.Job
	Err     error
}

// Importer imports ripped episode files.
type Importer struct {
	tm       *taskmaster.Taskmaster
	detector TitleDetector
	run      runner.Runner
	policy   encode.Policy
	hist     *history.Store // optional
	cfg      Config
	log      *slog.Logger
}

// New creates an importer. hist may be nil to skip history recording.
func New(tm *taskmaster.Taskmaster, detector TitleDetector, run runner.Runner, policy encode.Policy, hist *history.Store, cfg Config, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{tm: tm, detector: detector, run: run, policy: policy, hist: hist, cfg: cfg, log: log}
}

// ImportFile runs the full pipeline for one file. The file is renamed
// into a staging name for the duration of the run; on failure the
// original name is restored so the file is picked up again next run.
// Errors are reported in the result, never panicked or fatal to
// sibling files.
func (i *Importer) ImportFile(ctx context.Context, path string) Result {
	res := Result{Source: path}

	taskID, err := i.tm.Register(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	res.TaskID = taskID
	i.tm.Log(taskID, "import started", "file", filepath.Base(path))

	stagingPath := stagingName(path, "import_inprogress")
	if err := os.Rename(path, stagingPath); err != nil {
		res.Err = fmt.Errorf("stage %s: %w", filepath.Base(path), err)
		i.fail(taskID, res)
		return res
	}

	epi, job, err := i.process(ctx, taskID, path, stagingPath)
	res.Episode = epi
	res.Job = job
	if err != nil {
		res.Err = err
		// Restore the original name so the file isn't orphaned under
		// a staging name nothing will ever select.
		if rerr := os.Rename(stagingPath, path); rerr != nil && !os.IsNotExist(rerr) {
			i.tm.Log(taskID, "failed to restore original filename", "error", rerr.Error())
		}
		i.fail(taskID, res)
		return res
	}

	i.tm.SetStatus(taskID, taskmaster.StatusFinish)
	i.record(taskID, res, taskmaster.StatusFinish, nil)
	return res
}

// process runs detection and, unless TitleOnly, the transcode. It
// returns with the staged file renamed to its terminal name.
func (i *Importer) process(ctx context.Context, taskID int64, originalPath, stagingPath string) (episode.EpInfo, encode.Job, error) {
	i.tm.SetStatus(taskID, taskmaster.StatusTitleDetection)

	tempDir, err := os.MkdirTemp("", "tvingest-detect-")
	if err != nil {
		return episode.EpInfo{}, encode.Job{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	entry, err := i.detector.Detect(ctx, taskID, i.cfg.Episodes, tempDir, stagingPath)
	if err != nil {
		return episode.EpInfo{}, encode.Job{}, err
	}
	i.tm.Log(taskID, "episode identified",
		"season", entry.Season, "episode", entry.Episode, "title", entry.Title)

	epi := episode.EpInfo{
		Show:    i.cfg.Show,
		Season:  entry.Season,
		Episode: entry.Episode,
		Title:   entry.Title,
		Ext:     "mkv",
	}.WithPath(stagingPath)

	if i.cfg.TitleOnly {
		informal := filepath.Join(filepath.Dir(originalPath), epi.InformalFilename())
		if err := os.Rename(stagingPath, informal); err != nil {
			return epi, encode.Job{}, fmt.Errorf("rename to informal name: %w", err)
		}
		epi = epi.WithPath(informal)
		return epi, i.policy.JobFor(epi, i.cfg.OutputRoot), nil
	}

	epi, job, err := i.transcode(ctx, taskID, epi)
	if err != nil {
		return epi, job, err
	}

	if err := os.Rename(stagingPath, stagingName(originalPath, "import_complete")); err != nil {
		return epi, job, fmt.Errorf("mark complete: %w", err)
	}
	return epi, job, nil
}

// transcode runs the HandBrake job for the episode under the transcode
// throttle. If the planned output already exists it writes to a
// "_tmp_." sibling instead of clobbering it.
func (i *Importer) transcode(ctx context.Context, taskID int64, epi episode.EpInfo) (episode.EpInfo, encode.Job, error) {
	job := i.policy.JobFor(epi, i.cfg.OutputRoot)

	i.tm.Log(taskID, "waiting to begin transcoding")
	release, err := i.tm.Acquire(ctx, taskmaster.ResourceTranscode)
	if err != nil {
		return epi, job, err
	}
	defer release()
	i.tm.SetStatus(taskID, taskmaster.StatusTranscoding)

	outDir := filepath.Dir(job.Output)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return epi, job, fmt.Errorf("create output dir: %w", err)
	}
	if _, err := os.Stat(job.Output); err == nil {
		i.tm.Log(taskID, "output file already exists, using alternate name", "output", job.Output)
		job.Output = filepath.Join(outDir, "_tmp_."+filepath.Base(job.Output))
	}

	i.tm.Log(taskID, "starting transcode", "output", job.Output, "preset", job.Preset.Name, "hq", job.HighQuality)
	if _, err := i.run.Run(ctx, i.cfg.HandbrakePath, runner.TranscodeArgs(job.Preset.File, job.Preset.Name, job.Input, job.Output)...); err != nil {
		return epi, job, fmt.Errorf("transcode: %w", err)
	}
	i.tm.Log(taskID, "finished transcode")

	out, err := episode.ParseCanonical(job.Output)
	if err != nil {
		return epi, job, err
	}
	return out, job, nil
}

// fail marks the task failed and records the outcome.
func (i *Importer) fail(taskID int64, res Result) {
	i.tm.SetStatus(taskID, taskmaster.StatusFailed)
	i.tm.Log(taskID, "import failed", "file", filepath.Base(res.Source), "error", res.Err.Error())
	i.record(taskID, res, taskmaster.StatusFailed, res.Err)
}

func (i *Importer) record(taskID int64, res Result, status taskmaster.Status, cause error) {
	if i.hist == nil {
		return
	}
	e := &history.Entry{
		TaskID:     taskID,
		SourcePath: res.Source,
		DestPath:   res.Job.Output,
		Show:       res.Episode.Show,
		Season:     res.Episode.Season,
		Episode:    res.Episode.Episode,
		Title:      res.Episode.Title,
		Status:     string(status),
	}
	if cause != nil {
		e.Error = cause.Error()
	}
	if err := i.hist.Add(e); err != nil {
		i.log.Warn("failed to record history entry", "source", res.Source, "error", err)
	}
}

// stagingName derives the dated staging rename for path:
// "import_inprogress.2006-01-02-15-04-05.<basename>".
func stagingName(path, prefix string) string {
	return filepath.Join(filepath.Dir(path),
		fmt.Sprintf("%s.%s.%s", prefix, time.Now().Format(stagingTimestamp), filepath.Base(path)))
}
