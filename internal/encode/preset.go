// Package encode builds HandBrake encode jobs from detected episodes and
// emits batch scripts for deferred transcoding.
package encode

import (
	"encoding/json"
	"fmt"
	"os"
)

// Preset is a two-part HandBrake preset reference: the preset definition
// file and the preset name inside it.
type Preset struct {
	File string
	Name string
}

// presetFile mirrors the HandBrake preset export format.
type presetFile struct {
	PresetList []struct {
		PresetName string `json:"PresetName"`
	} `json:"PresetList"`
}

// ParsePreset reads a HandBrake preset definition file. Exactly one
// preset entry is expected; anything else is a configuration error.
func ParsePreset(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("read preset file: %w", err)
	}
	var pf presetFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return Preset{}, fmt.Errorf("preset file %s: %w", path, err)
	}
	if len(pf.PresetList) != 1 {
		return Preset{}, fmt.Errorf("preset file %s in unexpected format: want exactly one preset, got %d", path, len(pf.PresetList))
	}
	return Preset{File: path, Name: pf.PresetList[0].PresetName}, nil
}
