package episode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		wantLen  int
		wantErr  bool
	}{
		{name: "empty", selector: "", wantLen: 0},
		{name: "single", selector: "1:2", wantLen: 1},
		{name: "implicit season", selector: "1:2,5,7", wantLen: 3},
		{name: "wildcard", selector: "2:*", wantLen: 1},
		{name: "mixed", selector: "1:2,1:5,2:*", wantLen: 3},
		{name: "no season", selector: "5", wantErr: true},
		{name: "trailing comma", selector: "1:2,", wantErr: true},
		{name: "garbage", selector: "pilot", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := ParseSelector(tt.selector)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, sel.Len())
		})
	}
}

func TestSelectorContains(t *testing.T) {
	sel, err := ParseSelector("1:2,1:5,2:*")
	require.NoError(t, err)

	assert.True(t, sel.Contains(1, 5))
	assert.True(t, sel.Contains(1, 2))
	assert.True(t, sel.Contains(2, 999), "wildcard covers all of season 2")
	assert.False(t, sel.Contains(3, 1))
	assert.False(t, sel.Contains(1, 3))

	assert.True(t, sel.ContainsEpisode(EpInfo{Season: 2, Episode: 14}))
	assert.False(t, sel.ContainsEpisode(EpInfo{Season: 4, Episode: 1}))
}

func TestSelectorIntersect(t *testing.T) {
	a, err := ParseSelector("1:1,1:2,2:*")
	require.NoError(t, err)
	b, err := ParseSelector("1:2,2:*,3:4")
	require.NoError(t, err)

	both := a.Intersect(b)
	assert.Equal(t, 2, both.Len())
	assert.True(t, both.Contains(1, 2))
	assert.True(t, both.Contains(2, 7))
	assert.False(t, both.Contains(1, 1))
	assert.False(t, both.Contains(3, 4))
}
