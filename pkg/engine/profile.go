package engine

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Profile is a set of engine tuning options applied to every video-capable
// player at creation time. The built-in defaults match what the platform
// needs for embedded playback; deployments can override or extend them via
// an optional mediakit.yaml file.
type Profile struct {
	Options map[string]string `yaml:"options"`
}

// DefaultProfile returns the fixed tuning set: the hardware decode codec
// allow-list, subtitle scaling and margin behavior, and GL context hints
// for embedded surfaces.
func DefaultProfile() Profile {
	return Profile{
		Options: map[string]string{
			"hwdec-codecs":          "h264,hevc,mpeg4,mpeg2video,vp8,vp9,av1",
			"sub-scale-with-window": "yes",
			"sub-use-margins":       "no",
			"sub-font-provider":     "none",
			"gpu-context":           "android",
			"opengl-es":             "yes",
		},
	}
}

// LoadProfile reads tuning overrides from the given YAML file and merges
// them over the defaults. A missing file yields the default profile.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return profile, nil
		}
		return profile, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var overrides Profile
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return profile, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for name, value := range overrides.Options {
		profile.Options[name] = value
	}
	return profile, nil
}

// ApplyProfile sets every profile option on the given player handle.
// Options are applied in sorted order so behavior is deterministic.
func (e *Engine) ApplyProfile(handle int64, profile Profile) error {
	names := make([]string, 0, len(profile.Options))
	for name := range profile.Options {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := e.SetOption(handle, name, profile.Options[name]); err != nil {
			return err
		}
	}
	return nil
}
