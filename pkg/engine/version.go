package engine

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// MinimumVersion is the oldest engine release the plugin supports. Older
// builds lack the surface-size options the video controller depends on.
const MinimumVersion = "v0.32.0"

// Version returns the engine's release version for the given player handle,
// normalized to semver form ("v0.36.0"). The raw mpv-version property looks
// like "mpv 0.36.0" or "mpv v0.36.0-dirty".
func (e *Engine) Version(handle int64) (string, error) {
	raw, err := e.GetPropertyString(handle, "mpv-version")
	if err != nil {
		return "", err
	}
	v := normalizeVersion(raw)
	if !semver.IsValid(v) {
		return "", fmt.Errorf("engine: unparseable version %q", raw)
	}
	return v, nil
}

// VerifyVersion fails when the engine is older than MinimumVersion.
func (e *Engine) VerifyVersion(handle int64) error {
	v, err := e.Version(handle)
	if err != nil {
		return err
	}
	if semver.Compare(v, MinimumVersion) < 0 {
		return fmt.Errorf("engine: version %s is older than minimum supported %s", v, MinimumVersion)
	}
	return nil
}

func normalizeVersion(raw string) string {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(v, "mpv")
	v = strings.TrimSpace(v)
	if i := strings.IndexAny(v, " -+"); i >= 0 {
		v = v[:i]
	}
	if v != "" && v[0] != 'v' {
		v = "v" + v
	}
	return v
}
