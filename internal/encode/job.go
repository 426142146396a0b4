package encode

import (
	"path/filepath"

	"github.com/vmunix/tvingest/pkg/episode"
)

// Job is one transcode invocation: input file, canonical output path, and
// the preset to apply. Immutable once constructed.
type Job struct {
	Input       string
	Output      string
	Preset      Preset
	HighQuality bool
}

// Policy selects the preset for each episode. The high-quality preset is
// used only when configured, and then only for multi-part titles (when
// HQMultipart is set) or episodes named by the manual selector.
type Policy struct {
	Standard    Preset
	HQ          *Preset
	HQMultipart bool
	ManualHQ    *episode.Selector
}

// JobFor derives the encode job for one episode. Output is the canonical
// m4v path under outputRoot.
func (p Policy) JobFor(e episode.EpInfo, outputRoot string) Job {
	hq := p.HQ != nil &&
		((p.HQMultipart && e.Multipart()) ||
			(p.ManualHQ != nil && p.ManualHQ.ContainsEpisode(e)))

	preset := p.Standard
	if hq {
		preset = *p.HQ
	}
	return Job{
		Input:       e.Path,
		Output:      filepath.Join(outputRoot, e.WithExt("m4v").CanonicalPath()),
		Preset:      preset,
		HighQuality: hq,
	}
}

// BuildJobs derives encode jobs for a batch of episodes.
func (p Policy) BuildJobs(episodes []episode.EpInfo, outputRoot string) []Job {
	jobs := make([]Job, 0, len(episodes))
	for _, e := range episodes {
		jobs = append(jobs, p.JobFor(e, outputRoot))
	}
	return jobs
}
