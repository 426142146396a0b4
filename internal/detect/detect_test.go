package detect_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/tvingest/internal/cloud/mocks"
	"github.com/vmunix/tvingest/internal/detect"
	"github.com/vmunix/tvingest/internal/gate"
	gatemocks "github.com/vmunix/tvingest/internal/gate/mocks"
	"github.com/vmunix/tvingest/internal/runner"
	"github.com/vmunix/tvingest/internal/taskmaster"
	"github.com/vmunix/tvingest/pkg/episode"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRunner records invocations and optionally fails them.
type fakeRunner struct {
	calls [][]string
	err   error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (runner.Result, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return runner.Result{ExitCode: 1}, f.err
	}
	return runner.Result{}, nil
}

var allowed = []episode.Entry{
	{Season: 1, Episode: 1, Title: "Pilot"},
	{Season: 1, Episode: 2, Title: "The Long Goodbye"},
	{Season: 2, Episode: 3, Title: "Homecoming"},
}

func newEngine(t *testing.T, run runner.Runner, store *mocks.MockObjectStore, detector *mocks.MockTextDetector, g gate.Gate) (*detect.Engine, *taskmaster.Taskmaster) {
	t.Helper()
	tm := taskmaster.New(testLogger(), 0, taskmaster.Limits{
		taskmaster.ResourceCut:   2,
		taskmaster.ResourceCloud: 2,
	})
	cfg := detect.Config{
		FFmpegPath:    "ffmpeg",
		StagingPrefix: "gs://bucket/staging",
		Confidence:    0.9,
	}
	return detect.New(tm, run, store, detector, g, cfg), tm
}

func TestDetectFirstOffsetMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockObjectStore(ctrl)
	detector := mocks.NewMockTextDetector(ctrl)
	run := &fakeRunner{}

	store.EXPECT().MoveIn(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().Remove(gomock.Any(), gomock.Any()).Return(nil)
	detector.EXPECT().DetectText(gomock.Any(), gomock.Any(), 0.9).
		Return([]string{"some noise", "Pilot"}, nil)

	eng, tm := newEngine(t, run, store, detector, nil)
	id, err := tm.Register(context.Background())
	require.NoError(t, err)

	got, err := eng.Detect(context.Background(), id, allowed, t.TempDir(), "/staging/import_inprogress.x.mkv")
	require.NoError(t, err)
	assert.Equal(t, episode.Entry{Season: 1, Episode: 1, Title: "Pilot"}, got)

	require.Len(t, run.calls, 1)
	assert.Equal(t, "ffmpeg", run.calls[0][0])
	assert.Contains(t, run.calls[0], "-ss")
	assert.Contains(t, run.calls[0], "240", "first candidate window starts at minute 4")
}

func TestDetectFallsBackToManual(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockObjectStore(ctrl)
	detector := mocks.NewMockTextDetector(ctrl)
	g := gatemocks.NewMockGate(ctrl)
	run := &fakeRunner{}

	// All five offsets cut, stage, detect, and clean up.
	store.EXPECT().MoveIn(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(5)
	store.EXPECT().Remove(gomock.Any(), gomock.Any()).Return(nil).Times(5)
	detector.EXPECT().DetectText(gomock.Any(), gomock.Any(), 0.9).
		Return([]string{"PIL0T", "16:9"}, nil).Times(5)

	g.EXPECT().Await(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req gate.Request) (map[string]string, error) {
			assert.Equal(t, []string{"SEASON", "EPISODE", "TITLE"}, req.Fields)
			ctx, ok := req.Context.(map[string]any)
			require.True(t, ok)
			assert.Contains(t, ctx, "suggestions", "OCR near-misses ride along as hints")
			return map[string]string{"SEASON": "2", "EPISODE": "3", "TITLE": "Homecoming"}, nil
		})

	eng, tm := newEngine(t, run, store, detector, g)
	id, err := tm.Register(context.Background())
	require.NoError(t, err)

	got, err := eng.Detect(context.Background(), id, allowed, t.TempDir(), "/staging/x.mkv")
	require.NoError(t, err)
	assert.Equal(t, episode.Entry{Season: 2, Episode: 3, Title: "Homecoming"}, got)
	assert.Len(t, run.calls, 5)
}

func TestDetectAmbiguousIsNotAMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockObjectStore(ctrl)
	detector := mocks.NewMockTextDetector(ctrl)
	g := gatemocks.NewMockGate(ctrl)
	run := &fakeRunner{}

	store.EXPECT().MoveIn(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(5)
	store.EXPECT().Remove(gomock.Any(), gomock.Any()).Return(nil).Times(5)
	// Two allowed titles in the detected set: ambiguous, never auto-resolved.
	detector.EXPECT().DetectText(gomock.Any(), gomock.Any(), 0.9).
		Return([]string{"Pilot", "Homecoming"}, nil).Times(5)
	g.EXPECT().Await(gomock.Any(), gomock.Any()).
		Return(map[string]string{"SEASON": "1", "EPISODE": "1", "TITLE": "Pilot"}, nil)

	eng, tm := newEngine(t, run, store, detector, g)
	id, err := tm.Register(context.Background())
	require.NoError(t, err)

	got, err := eng.Detect(context.Background(), id, allowed, t.TempDir(), "/staging/x.mkv")
	require.NoError(t, err)
	assert.Equal(t, "Pilot", got.Title)
}

func TestDetectCutFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockObjectStore(ctrl)
	detector := mocks.NewMockTextDetector(ctrl)
	cmdErr := &runner.CommandError{Cmd: "ffmpeg", ExitCode: 1, Stderr: "boom"}
	run := &fakeRunner{err: cmdErr}

	eng, tm := newEngine(t, run, store, detector, nil)
	id, err := tm.Register(context.Background())
	require.NoError(t, err)

	_, err = eng.Detect(context.Background(), id, allowed, t.TempDir(), "/staging/x.mkv")
	require.Error(t, err)

	var got *runner.CommandError
	assert.True(t, errors.As(err, &got))
	assert.Len(t, run.calls, 1, "tool failure aborts the offset loop")
}

func TestDetectAnnotationFailureStillCleansUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockObjectStore(ctrl)
	detector := mocks.NewMockTextDetector(ctrl)
	run := &fakeRunner{}

	var staged, removed string
	store.EXPECT().MoveIn(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _, uri string) error {
			staged = uri
			return nil
		})
	store.EXPECT().Remove(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, uri string) error {
			removed = uri
			return nil
		})
	detector.EXPECT().DetectText(gomock.Any(), gomock.Any(), 0.9).
		Return(nil, errors.New("annotation failed"))

	eng, tm := newEngine(t, run, store, detector, nil)
	id, err := tm.Register(context.Background())
	require.NoError(t, err)

	_, err = eng.Detect(context.Background(), id, allowed, t.TempDir(), "/staging/x.mkv")
	require.Error(t, err)
	assert.Equal(t, staged, removed, "staged object removed even when annotation fails")
	assert.True(t, strings.HasPrefix(staged, "gs://bucket/staging/ocr_"))
}

func TestDetectBadManualInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockObjectStore(ctrl)
	detector := mocks.NewMockTextDetector(ctrl)
	g := gatemocks.NewMockGate(ctrl)
	run := &fakeRunner{}

	store.EXPECT().MoveIn(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(5)
	store.EXPECT().Remove(gomock.Any(), gomock.Any()).Return(nil).Times(5)
	detector.EXPECT().DetectText(gomock.Any(), gomock.Any(), 0.9).Return(nil, nil).Times(5)
	g.EXPECT().Await(gomock.Any(), gomock.Any()).
		Return(map[string]string{"SEASON": "one", "EPISODE": "1", "TITLE": "Pilot"}, nil)

	eng, tm := newEngine(t, run, store, detector, g)
	id, err := tm.Register(context.Background())
	require.NoError(t, err)

	_, err = eng.Detect(context.Background(), id, allowed, t.TempDir(), "/staging/x.mkv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad SEASON")
}
