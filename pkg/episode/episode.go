// Package episode provides episode metadata, canonical naming, and
// selector matching for TV library files.
package episode

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
)

// ErrBadFilename indicates a filename that doesn't match the expected pattern.
var ErrBadFilename = errors.New("filename does not match expected pattern")

// canonicalPattern matches library filenames: "Show - S1E2 - Title.m4v".
var canonicalPattern = regexp.MustCompile(`^(.+) - S(\d+)E(\d+) - (.+)\.(mp4|m4v)$`)

// informalPattern matches freshly retitled rips: "s1e2 Title.mkv".
// The show name is not part of the filename and must be supplied separately.
var informalPattern = regexp.MustCompile(`[sS](\d+)[eE](\d+) (.+)\.mkv$`)

// multipartPattern matches titles that end in a part number ("Foo Part 2").
var multipartPattern = regexp.MustCompile(`Part \d+$`)

// EpInfo describes one episode file. It is a value type: derive a changed
// copy with the With* helpers rather than mutating in place.
type EpInfo struct {
	Show     string
	Season   int
	Episode  int
	Title    string
	Path     string
	Filename string
	Ext      string
}

// Entry is a (season, episode, title) tuple from an episode manifest.
type Entry struct {
	Season  int
	Episode int
	Title   string
}

// ParseCanonical extracts episode info from a canonical library filename.
func ParseCanonical(path string) (EpInfo, error) {
	base := filepath.Base(path)
	m := canonicalPattern.FindStringSubmatch(base)
	if m == nil {
		return EpInfo{}, fmt.Errorf("%w: %q", ErrBadFilename, base)
	}
	season, _ := strconv.Atoi(m[2])
	episode, _ := strconv.Atoi(m[3])
	return EpInfo{
		Show:     m[1],
		Season:   season,
		Episode:  episode,
		Title:    m[4],
		Path:     path,
		Filename: base,
		Ext:      m[5],
	}, nil
}

// ParseInformal extracts episode info from an informal "s1e2 Title.mkv"
// filename. The show name is taken from the argument.
func ParseInformal(show, path string) (EpInfo, error) {
	m := informalPattern.FindStringSubmatch(path)
	if m == nil {
		return EpInfo{}, fmt.Errorf("%w: %q", ErrBadFilename, filepath.Base(path))
	}
	season, _ := strconv.Atoi(m[1])
	episode, _ := strconv.Atoi(m[2])
	return EpInfo{
		Show:     show,
		Season:   season,
		Episode:  episode,
		Title:    m[3],
		Path:     path,
		Filename: filepath.Base(path),
		Ext:      "mkv",
	}, nil
}

// IsInformal reports whether path looks like an informal episode filename.
func IsInformal(path string) bool {
	return informalPattern.MatchString(path)
}

// CanonicalFilename returns "{show} - S{season}E{episode} - {title}.{ext}".
func (e EpInfo) CanonicalFilename() string {
	return fmt.Sprintf("%s - S%dE%d - %s.%s", e.Show, e.Season, e.Episode, e.Title, e.Ext)
}

// CanonicalPath returns the relative library path for the episode:
// "{show}/Season {season}/{canonical filename}".
func (e EpInfo) CanonicalPath() string {
	return filepath.Join(e.Show, fmt.Sprintf("Season %d", e.Season), e.CanonicalFilename())
}

// InformalFilename returns "s{season}e{episode} {title}.mkv".
func (e EpInfo) InformalFilename() string {
	return fmt.Sprintf("s%de%d %s.mkv", e.Season, e.Episode, e.Title)
}

// Multipart reports whether the title names one part of a multi-part
// episode (ends in "Part N").
func (e EpInfo) Multipart() bool {
	return multipartPattern.MatchString(e.Title)
}

// WithTitle returns a copy with a different title.
func (e EpInfo) WithTitle(title string) EpInfo {
	e.Title = title
	return e
}

// WithExt returns a copy with a different extension.
func (e EpInfo) WithExt(ext string) EpInfo {
	e.Ext = ext
	return e
}

// WithPath returns a copy with a different path, updating the filename too.
func (e EpInfo) WithPath(path string) EpInfo {
	e.Path = path
	e.Filename = filepath.Base(path)
	return e
}

// WithNumber returns a copy with season and episode assigned.
func (e EpInfo) WithNumber(season, episode int) EpInfo {
	e.Season = season
	e.Episode = episode
	return e
}
