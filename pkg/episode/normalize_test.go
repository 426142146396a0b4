package episode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Pilot", "pilot"},
		{"  pilot \n", "pilot"},
		{"Léon", "leon"},
		{"THE END", "the end"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), "Fold(%q)", tt.in)
	}
}

func TestMatchTitle(t *testing.T) {
	allowed := []Entry{
		{Season: 1, Episode: 1, Title: "Pilot"},
		{Season: 1, Episode: 2, Title: "PILOT2"},
		{Season: 2, Episode: 3, Title: "The End"},
	}

	t.Run("unique match with case and whitespace noise", func(t *testing.T) {
		got, ok := MatchTitle([]Entry{{Season: 1, Episode: 1, Title: "Pilot"}}, []string{"Pilot", "pilot "})
		require.True(t, ok)
		assert.Equal(t, 1, got.Season)
		assert.Equal(t, 1, got.Episode)
		assert.Equal(t, "Pilot", got.Title)
	})

	t.Run("ambiguous intersection is no match", func(t *testing.T) {
		_, ok := MatchTitle(allowed, []string{"pilot", "pilot2", "random noise"})
		assert.False(t, ok)
	})

	t.Run("empty intersection is no match", func(t *testing.T) {
		_, ok := MatchTitle(allowed, []string{"nothing here", "16:9"})
		assert.False(t, ok)
	})

	t.Run("duplicate detections still count once", func(t *testing.T) {
		got, ok := MatchTitle(allowed, []string{"The End", "the end", " THE END "})
		require.True(t, ok)
		assert.Equal(t, "The End", got.Title)
	})

	t.Run("no detections", func(t *testing.T) {
		_, ok := MatchTitle(allowed, nil)
		assert.False(t, ok)
	})
}
