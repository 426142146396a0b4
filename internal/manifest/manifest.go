// Package manifest loads episode manifests: tab-separated files listing
// the expected (season, episode, title) tuples for a show.
package manifest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vmunix/tvingest/pkg/episode"
)

// ErrMissingColumn indicates the manifest header lacks a required column.
var ErrMissingColumn = errors.New("manifest missing required column")

// Load reads a TSV manifest. The header row must contain Season, Episode,
// and Title columns; rows where any required field is empty are dropped.
func Load(path string) ([]episode.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("manifest %s is empty", path)
	}

	cols := map[string]int{}
	for i, name := range rows[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"Season", "Episode", "Title"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s (%s)", ErrMissingColumn, required, path)
		}
	}

	var entries []episode.Entry
	for lineNum, row := range rows[1:] {
		season := field(row, cols["Season"])
		epNum := field(row, cols["Episode"])
		title := field(row, cols["Title"])
		if season == "" || epNum == "" || title == "" {
			continue
		}
		s, err := strconv.Atoi(season)
		if err != nil {
			return nil, fmt.Errorf("manifest %s line %d: bad season %q", path, lineNum+2, season)
		}
		e, err := strconv.Atoi(epNum)
		if err != nil {
			return nil, fmt.Errorf("manifest %s line %d: bad episode %q", path, lineNum+2, epNum)
		}
		entries = append(entries, episode.Entry{Season: s, Episode: e, Title: title})
	}
	return entries, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
