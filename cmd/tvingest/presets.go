package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/tvingest/internal/config"
	"github.com/vmunix/tvingest/internal/encode"
	"github.com/vmunix/tvingest/pkg/episode"
)

// addPresetFlags registers the preset selection flags shared by the
// import and batch commands.
func addPresetFlags(cmd *cobra.Command) {
	cmd.Flags().String("preset", "", "Standard HandBrake preset definition file")
	cmd.Flags().String("hq-preset", "", "High-quality HandBrake preset definition file")
	cmd.Flags().String("hq-episodes", "", `Episodes that always get the HQ preset ("1:2,5,2:*")`)
	cmd.Flags().Bool("no-hq-multipart", false, "Don't apply the HQ preset to multi-part titles")
}

// resolvePreset turns a --preset style flag or a config preset reference
// into a concrete preset, reading the definition file when the preset
// name isn't configured.
func resolvePreset(flagPath string, ref config.PresetRef) (*encode.Preset, error) {
	path := flagPath
	if path == "" {
		path = ref.File
	}
	if path == "" {
		return nil, nil
	}
	if flagPath == "" && ref.Name != "" {
		return &encode.Preset{File: ref.File, Name: ref.Name}, nil
	}
	p, err := encode.ParsePreset(path)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// buildPolicy assembles the encode policy from flags and config.
func buildPolicy(cmd *cobra.Command) (encode.Policy, error) {
	flagStd, _ := cmd.Flags().GetString("preset")
	flagHQ, _ := cmd.Flags().GetString("hq-preset")
	flagSel, _ := cmd.Flags().GetString("hq-episodes")
	noMultipart, _ := cmd.Flags().GetBool("no-hq-multipart")

	std, err := resolvePreset(flagStd, cfg.Presets.Standard)
	if err != nil {
		return encode.Policy{}, err
	}
	if std == nil {
		return encode.Policy{}, errors.New("no standard preset: pass --preset or set presets.standard in the config")
	}

	var hqRef config.PresetRef
	if cfg.Presets.HQ != nil {
		hqRef = *cfg.Presets.HQ
	}
	hq, err := resolvePreset(flagHQ, hqRef)
	if err != nil {
		return encode.Policy{}, err
	}

	selText := flagSel
	if selText == "" {
		selText = cfg.Presets.HQEpisodes
	}
	sel, err := episode.ParseSelector(selText)
	if err != nil {
		return encode.Policy{}, err
	}
	if sel.Len() > 0 && hq == nil {
		return encode.Policy{}, errors.New("--hq-episodes given but no HQ preset configured")
	}

	return encode.Policy{
		Standard:    *std,
		HQ:          hq,
		HQMultipart: cfg.Presets.ShouldHQMultipart() && !noMultipart,
		ManualHQ:    sel,
	}, nil
}

// outputRoot resolves the library root from the --output flag or config.
func outputRoot(cmd *cobra.Command) (string, error) {
	root, _ := cmd.Flags().GetString("output")
	if root == "" {
		root = cfg.Library.Root
	}
	if root == "" {
		return "", fmt.Errorf("no output root: pass --output or set library.root in the config")
	}
	return root, nil
}
