package encode

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vmunix/tvingest/pkg/episode"
)

// WriteScript writes one HandBrakeCLI command line per job to a plain
// text batch script, creating missing output directories ahead of time so
// the script can run unattended.
func WriteScript(path, handbrakePath string, jobs []Job) error {
	for _, job := range jobs {
		if err := os.MkdirAll(filepath.Dir(job.Output), 0755); err != nil {
			return fmt.Errorf("create output directory for %s: %w", job.Output, err)
		}
	}

	lines := make([]string, 0, len(jobs))
	for _, job := range jobs {
		lines = append(lines, fmt.Sprintf(
			"%q --preset-import-file %q -Z %q -i %q -o %q",
			handbrakePath, job.Preset.File, job.Preset.Name, job.Input, job.Output))
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0755); err != nil {
		return fmt.Errorf("write batch script: %w", err)
	}
	return nil
}

// LoadInformal scans dir for informal "s1e2 title.mkv" rips and prepares
// them for encoding: titles are title-cased, multi-part groups get
// "Part n" suffixes when addParts is set, and manual retitles (keyed by
// the on-disk title) override everything. Files that don't match the
// informal pattern are logged and skipped.
func LoadInformal(dir, show string, retitle map[string]string, addParts bool, log *slog.Logger) ([]episode.EpInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read import directory: %w", err)
	}

	var eps []episode.EpInfo
	rawIndex := make(map[string]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !episode.IsInformal(path) {
			log.Warn("file does not match informal episode pattern, skipping", "file", entry.Name())
			continue
		}
		e, err := episode.ParseInformal(show, path)
		if err != nil {
			return nil, err
		}
		rawIndex[e.Title] = len(eps)
		eps = append(eps, e)
	}

	for i := range eps {
		eps[i] = eps[i].WithTitle(episode.Titleize(eps[i].Title))
	}
	if addParts {
		eps = episode.ApplyParts(eps)
	}
	for current, desired := range retitle {
		idx, ok := rawIndex[current]
		if !ok {
			log.Warn("retitle target not found", "current", current, "desired", desired)
			continue
		}
		eps[idx] = eps[idx].WithTitle(desired)
	}

	sort.Slice(eps, func(i, j int) bool {
		if eps[i].Season != eps[j].Season {
			return eps[i].Season < eps[j].Season
		}
		return eps[i].Episode < eps[j].Episode
	})
	return eps, nil
}
