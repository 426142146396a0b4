// Package detect identifies which episode a staged rip contains by
// running OCR over cropped clips sampled at several time offsets, with a
// manual-input fallback when no offset yields a confident match.
package detect

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vmunix/tvingest/internal/cloud"
	"github.com/vmunix/tvingest/internal/gate"
	"github.com/vmunix/tvingest/internal/runner"
	"github.com/vmunix/tvingest/internal/taskmaster"
	"github.com/vmunix/tvingest/pkg/episode"
)

// offsetMinutes lists the candidate clip start offsets, ordered by how
// often the title card shows up in that window so the likeliest segment
// is tried first.
var offsetMinutes = []int{4, 2, 6, 0, 8}

// clipDuration is the length of each cropped detection clip.
const clipDuration = 120 * time.Second

// maxSuggestions caps the nearest-title hints attached to a manual
// request.
const maxSuggestions = 5

// Config holds the static inputs of the engine.
type Config struct {
	FFmpegPath    string
	StagingPrefix string // gs://bucket/path used for OCR staging
	Confidence    float64
}

// Engine drives title detection for staged files.
type Engine struct {
	tm       *taskmaster.Taskmaster
	run      runner.Runner
	store    cloud.ObjectStore
	detector cloud.TextDetector
	gate     gate.Gate
	cfg      Config
}

// New creates a detection engine.
func New(tm *taskmaster.Taskmaster, run runner.Runner, store cloud.ObjectStore, detector cloud.TextDetector, g gate.Gate, cfg Config) *Engine {
	return &Engine{tm: tm, run: run, store: store, detector: detector, gate: g, cfg: cfg}
}

// Detect determines (season, episode, title) for the staged file. Each
// candidate offset is cut, staged remotely, and OCR'd; the first offset
// whose detected text matches exactly one allowed title wins. If every
// offset comes up empty the engine falls back to manual input. Tool and
// service errors propagate; "nothing matched" does not.
func (e *Engine) Detect(ctx context.Context, taskID int64, allowed []episode.Entry, tempDir, stagedPath string) (episode.Entry, error) {
	var lastTexts []string
	for _, offset := range offsetMinutes {
		e.tm.Log(taskID, "attempting title detection", "window_minutes", fmt.Sprintf("%d-%d", offset, offset+2))
		entry, texts, ok, err := e.detectAt(ctx, taskID, allowed, tempDir, stagedPath, time.Duration(offset)*time.Minute)
		if err != nil {
			return episode.Entry{}, err
		}
		if ok {
			e.tm.Log(taskID, "title detected", "window_minute", offset, "title", entry.Title)
			return entry, nil
		}
		if len(texts) > 0 {
			lastTexts = texts
		}
		e.tm.Log(taskID, "no title detected, checking next segment")
	}

	e.tm.Log(taskID, "title detection failed, awaiting manual input")
	return e.manual(ctx, taskID, allowed, stagedPath, lastTexts)
}

// detectAt runs one cut+stage+OCR+match cycle at the given offset.
func (e *Engine) detectAt(ctx context.Context, taskID int64, allowed []episode.Entry, tempDir, stagedPath string, offset time.Duration) (episode.Entry, []string, bool, error) {
	clipPath := filepath.Join(tempDir, fmt.Sprintf("title.%d.%d.m4v", int(offset.Seconds()), int(clipDuration.Seconds())))
	if err := e.cutClip(ctx, taskID, stagedPath, clipPath, offset); err != nil {
		return episode.Entry{}, nil, false, err
	}

	remoteURI := cloud.JoinURI(e.cfg.StagingPrefix, "ocr_"+randomHex(4), filepath.Base(clipPath))
	if err := e.stageClip(ctx, taskID, clipPath, remoteURI); err != nil {
		return episode.Entry{}, nil, false, err
	}

	e.tm.Log(taskID, "starting OCR text recognition", "uri", remoteURI)
	texts, err := e.detector.DetectText(ctx, remoteURI, e.cfg.Confidence)
	// The staged object is removed whether or not annotation succeeded.
	if rmErr := e.store.Remove(context.WithoutCancel(ctx), remoteURI); rmErr != nil {
		e.tm.Log(taskID, "failed to remove staged clip", "uri", remoteURI, "error", rmErr.Error())
	}
	if err != nil {
		return episode.Entry{}, nil, false, fmt.Errorf("detect text: %w", err)
	}

	e.tm.Log(taskID, "matching detected text against episode titles", "candidates", len(texts))
	entry, ok := episode.MatchTitle(allowed, texts)
	return entry, texts, ok, nil
}

func (e *Engine) cutClip(ctx context.Context, taskID int64, input, output string, offset time.Duration) error {
	release, err := e.tm.Acquire(ctx, taskmaster.ResourceCut)
	if err != nil {
		return err
	}
	defer release()

	e.tm.Log(taskID, "starting ffmpeg copy", "clip", filepath.Base(output))
	if _, err := e.run.Run(ctx, e.cfg.FFmpegPath, runner.CutArgs(input, output, offset, clipDuration)...); err != nil {
		return fmt.Errorf("cut clip: %w", err)
	}
	return nil
}

func (e *Engine) stageClip(ctx context.Context, taskID int64, clipPath, remoteURI string) error {
	release, err := e.tm.Acquire(ctx, taskmaster.ResourceCloud)
	if err != nil {
		return err
	}
	defer release()

	e.tm.Log(taskID, "starting upload", "local", clipPath, "remote", remoteURI)
	if err := e.store.MoveIn(ctx, clipPath, remoteURI); err != nil {
		return fmt.Errorf("stage clip: %w", err)
	}
	return nil
}

// manual asks a human for the episode identity through the approval gate.
// Nearest-title suggestions computed from the last OCR output ride along
// as context; they are hints only and never auto-resolve the match.
func (e *Engine) manual(ctx context.Context, taskID int64, allowed []episode.Entry, stagedPath string, lastTexts []string) (episode.Entry, error) {
	reqContext := map[string]any{"file": stagedPath}
	if suggestions := episode.Suggest(allowed, lastTexts, maxSuggestions); len(suggestions) > 0 {
		titles := make([]string, 0, len(suggestions))
		for _, s := range suggestions {
			titles = append(titles, s.Title)
		}
		reqContext["suggestions"] = titles
	}

	values, err := e.gate.Await(ctx, gate.Request{
		TaskID:  taskID,
		Fields:  []string{"SEASON", "EPISODE", "TITLE"},
		Context: reqContext,
	})
	if err != nil {
		return episode.Entry{}, fmt.Errorf("manual input: %w", err)
	}

	season, err := strconv.Atoi(values["SEASON"])
	if err != nil {
		return episode.Entry{}, fmt.Errorf("manual input: bad SEASON %q", values["SEASON"])
	}
	epNum, err := strconv.Atoi(values["EPISODE"])
	if err != nil {
		return episode.Entry{}, fmt.Errorf("manual input: bad EPISODE %q", values["EPISODE"])
	}
	return episode.Entry{Season: season, Episode: epNum, Title: values["TITLE"]}, nil
}

func randomHex(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
