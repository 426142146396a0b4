package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddAndList(t *testing.T) {
	s := openStore(t)

	first := &Entry{
		TaskID: 0, SourcePath: "/import/title_t00.mkv",
		DestPath: "/library/Foo/Season 1/Foo - S1E1 - Pilot.m4v",
		Show:     "Foo", Season: 1, Episode: 1, Title: "Pilot", Status: "finish",
	}
	require.NoError(t, s.Add(first))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := &Entry{
		TaskID: 1, SourcePath: "/import/title_t01.mkv",
		Show: "Foo", Status: "failed", Error: "command \"ffmpeg\" failed with status 1",
	}
	require.NoError(t, s.Add(second))

	entries, err := s.List(Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID, "most recent first")

	failed, err := s.List(Filter{Status: "failed"})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "/import/title_t01.mkv", failed[0].SourcePath)

	limited, err := s.List(Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestListByShow(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Add(&Entry{SourcePath: "a", Show: "Foo", Status: "finish"}))
	require.NoError(t, s.Add(&Entry{SourcePath: "b", Show: "Bar", Status: "finish"}))

	entries, err := s.List(Filter{Show: "Foo"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].SourcePath)
}
