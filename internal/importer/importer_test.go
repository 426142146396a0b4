package importer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/tvingest/internal/encode"
	"github.com/vmunix/tvingest/internal/history"
	"github.com/vmunix/tvingest/internal/importer"
	"github.com/vmunix/tvingest/internal/runner"
	"github.com/vmunix/tvingest/internal/taskmaster"
	"github.com/vmunix/tvingest/pkg/episode"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var manifest = []episode.Entry{
	{Season: 1, Episode: 1, Title: "Pilot"},
	{Season: 1, Episode: 2, Title: "The Long Goodbye"},
	{Season: 2, Episode: 3, Title: "Homecoming"},
}

// fakeDetector resolves staged files by substring of their original
// basename, and verifies the staging rename happened before detection.
type fakeDetector struct {
	t       *testing.T
	entries map[string]episode.Entry
	errs    map[string]error
}

func (f *fakeDetector) Detect(_ context.Context, _ int64, _ []episode.Entry, _, stagedPath string) (episode.Entry, error) {
	base := filepath.Base(stagedPath)
	assert.True(f.t, strings.HasPrefix(base, "import_inprogress."),
		"detection sees the staged name, got %q", base)
	_, err := os.Stat(stagedPath)
	assert.NoError(f.t, err, "staged file exists during detection")

	for key, err := range f.errs {
		if strings.Contains(base, key) {
			return episode.Entry{}, err
		}
	}
	for key, entry := range f.entries {
		if strings.Contains(base, key) {
			return entry, nil
		}
	}
	return episode.Entry{}, errors.New("no scripted entry for " + base)
}

// fakeHandBrake records invocations and writes each job's output file,
// failing any input whose path contains failFor.
type fakeHandBrake struct {
	calls   [][]string
	failFor string
}

func (f *fakeHandBrake) Run(_ context.Context, name string, args ...string) (runner.Result, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	var input, output string
	for i := 0; i < len(args)-1; i++ {
		switch args[i] {
		case "-i":
			input = args[i+1]
		case "-o":
			output = args[i+1]
		}
	}
	if f.failFor != "" && strings.Contains(input, f.failFor) {
		return runner.Result{ExitCode: 1}, &runner.CommandError{Cmd: name, ExitCode: 1, Stderr: "encode failed"}
	}
	if err := os.WriteFile(output, []byte("m4v"), 0o644); err != nil {
		return runner.Result{}, err
	}
	return runner.Result{}, nil
}

func newImporter(t *testing.T, det importer.TitleDetector, run runner.Runner, cfg importer.Config, hist *history.Store) *importer.Importer {
	t.Helper()
	tm := taskmaster.New(testLogger(), 0, taskmaster.Limits{taskmaster.ResourceTranscode: 1})
	policy := encode.Policy{Standard: encode.Preset{File: "/presets/std.json", Name: "Standard"}}
	return importer.New(tm, det, run, policy, hist, cfg, testLogger())
}

func writeSource(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("mkv"), 0o644))
	return path
}

func openHistory(t *testing.T) *history.Store {
	t.Helper()
	s, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestImportFileTranscodes(t *testing.T) {
	importDir, library := t.TempDir(), t.TempDir()
	src := writeSource(t, importDir, "title_t00.mkv")
	hist := openHistory(t)

	det := &fakeDetector{t: t, entries: map[string]episode.Entry{"title_t00": {Season: 1, Episode: 1, Title: "Pilot"}}}
	hb := &fakeHandBrake{}
	imp := newImporter(t, det, hb, importer.Config{
		Show: "Foo", OutputRoot: library, HandbrakePath: "HandBrakeCLI", Episodes: manifest,
	}, hist)

	res := imp.ImportFile(context.Background(), src)
	require.NoError(t, res.Err)

	want := filepath.Join(library, "Foo", "Season 1", "Foo - S1E1 - Pilot.m4v")
	assert.Equal(t, want, res.Job.Output)
	assert.FileExists(t, want)
	assert.Equal(t, "Foo", res.Episode.Show)
	assert.Equal(t, "Pilot", res.Episode.Title)

	require.Len(t, hb.calls, 1)
	assert.Equal(t, "HandBrakeCLI", hb.calls[0][0])
	assert.Contains(t, hb.calls[0], "--preset-import-file")

	// Source was parked under a dated completion name.
	assert.NoFileExists(t, src)
	matches, err := filepath.Glob(filepath.Join(importDir, "import_complete.*.title_t00.mkv"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	entries, err := hist.List(history.Filter{Status: "finish"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, src, entries[0].SourcePath)
	assert.Equal(t, want, entries[0].DestPath)
}

func TestImportFileTitleOnly(t *testing.T) {
	importDir, library := t.TempDir(), t.TempDir()
	src := writeSource(t, importDir, "title_t01.mkv")

	det := &fakeDetector{t: t, entries: map[string]episode.Entry{"title_t01": {Season: 1, Episode: 2, Title: "The Long Goodbye"}}}
	hb := &fakeHandBrake{}
	imp := newImporter(t, det, hb, importer.Config{
		Show: "Foo", OutputRoot: library, HandbrakePath: "HandBrakeCLI",
		TitleOnly: true, Episodes: manifest,
	}, nil)

	res := imp.ImportFile(context.Background(), src)
	require.NoError(t, res.Err)

	informal := filepath.Join(importDir, "s1e2 The Long Goodbye.mkv")
	assert.FileExists(t, informal)
	assert.NoFileExists(t, src)
	assert.Empty(t, hb.calls, "title-only runs never transcode")

	assert.Equal(t, informal, res.Job.Input)
	assert.Equal(t, filepath.Join(library, "Foo", "Season 1", "Foo - S1E2 - The Long Goodbye.m4v"), res.Job.Output)
}

func TestImportFileFailureRestoresOriginal(t *testing.T) {
	importDir, library := t.TempDir(), t.TempDir()
	src := writeSource(t, importDir, "title_t02.mkv")
	hist := openHistory(t)

	det := &fakeDetector{t: t, entries: map[string]episode.Entry{"title_t02": {Season: 2, Episode: 3, Title: "Homecoming"}}}
	hb := &fakeHandBrake{failFor: "title_t02"}
	imp := newImporter(t, det, hb, importer.Config{
		Show: "Foo", OutputRoot: library, HandbrakePath: "HandBrakeCLI", Episodes: manifest,
	}, hist)

	res := imp.ImportFile(context.Background(), src)
	require.Error(t, res.Err)

	var cmdErr *runner.CommandError
	assert.True(t, errors.As(res.Err, &cmdErr))

	// The original name comes back so the next run retries the file.
	assert.FileExists(t, src)
	leftovers, err := filepath.Glob(filepath.Join(importDir, "import_*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	entries, err := hist.List(history.Filter{Status: "failed"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Error, "transcode")
}

func TestImportFileExistingOutputGetsAlternateName(t *testing.T) {
	importDir, library := t.TempDir(), t.TempDir()
	src := writeSource(t, importDir, "title_t03.mkv")

	existing := filepath.Join(library, "Foo", "Season 1", "Foo - S1E1 - Pilot.m4v")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	det := &fakeDetector{t: t, entries: map[string]episode.Entry{"title_t03": {Season: 1, Episode: 1, Title: "Pilot"}}}
	imp := newImporter(t, det, &fakeHandBrake{}, importer.Config{
		Show: "Foo", OutputRoot: library, HandbrakePath: "HandBrakeCLI", Episodes: manifest,
	}, nil)

	res := imp.ImportFile(context.Background(), src)
	require.NoError(t, res.Err)

	assert.Equal(t, filepath.Join(library, "Foo", "Season 1", "_tmp_.Foo - S1E1 - Pilot.m4v"), res.Job.Output)
	assert.FileExists(t, res.Job.Output)

	old, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "old", string(old), "existing output never clobbered")
}

func TestRunCollectsAllResults(t *testing.T) {
	importDir, library := t.TempDir(), t.TempDir()
	srcs := []string{
		writeSource(t, importDir, "title_t00.mkv"),
		writeSource(t, importDir, "title_t01.mkv"),
		writeSource(t, importDir, "title_t02.mkv"),
	}

	det := &fakeDetector{
		t: t,
		entries: map[string]episode.Entry{
			"title_t00": {Season: 1, Episode: 2, Title: "The Long Goodbye"},
			"title_t01": {Season: 1, Episode: 1, Title: "Pilot"},
		},
		errs: map[string]error{"title_t02": errors.New("annotation service unavailable")},
	}
	imp := newImporter(t, det, &fakeHandBrake{}, importer.Config{
		Show: "Foo", OutputRoot: library, HandbrakePath: "HandBrakeCLI", Episodes: manifest,
	}, nil)

	results, err := imp.Run(context.Background(), srcs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 imports failed")
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	require.Error(t, results[2].Err)

	// Failing sibling never stops the others.
	assert.FileExists(t, filepath.Join(library, "Foo", "Season 1", "Foo - S1E1 - Pilot.m4v"))
	assert.FileExists(t, filepath.Join(library, "Foo", "Season 1", "Foo - S1E2 - The Long Goodbye.m4v"))
	assert.FileExists(t, srcs[2], "failed file restored to its original name")

	jobs := importer.Jobs(results)
	require.Len(t, jobs, 2)
	assert.Contains(t, jobs[0].Output, "S1E1", "jobs sorted by episode")
	assert.Contains(t, jobs[1].Output, "S1E2")
}
