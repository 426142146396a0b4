package runner

import (
	"strconv"
	"time"
)

// bottomHalfCrop keeps only the bottom half of each frame, where episode
// title cards are rendered.
const bottomHalfCrop = "crop=in_w:in_h/2:0:in_h/2"

// CutArgs builds ffmpeg arguments for a quick bottom-half-frame copy of a
// time window. A zero duration means "to end of file". Audio is copied
// verbatim so the cut stays fast.
func CutArgs(input, output string, offset, duration time.Duration) []string {
	args := []string{
		"-i", input,
		"-ss", strconv.Itoa(int(offset.Seconds())),
	}
	if duration > 0 {
		args = append(args, "-t", strconv.Itoa(int(duration.Seconds())))
	}
	return append(args,
		"-filter:v", bottomHalfCrop,
		"-c:a", "copy",
		output,
	)
}

// TranscodeArgs builds HandBrakeCLI arguments for a preset-driven
// transcode. The preset reference is two-part: the preset definition file
// and the preset name within it.
func TranscodeArgs(presetFile, presetName, input, output string) []string {
	return []string{
		"--preset-import-file", presetFile,
		"-Z", presetName,
		"-i", input,
		"-o", output,
	}
}
