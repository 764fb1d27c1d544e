package engine

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestDefaultProfile(t *testing.T) {
	profile := DefaultProfile()
	if profile.Options["hwdec-codecs"] == "" {
		t.Error("default profile should carry a hardware decode codec allow-list")
	}
	if profile.Options["sub-scale-with-window"] != "yes" {
		t.Error("default profile should scale subtitles with the window")
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	profile, err := LoadProfile(filepath.Join(t.TempDir(), "mediakit.yaml"))
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	want := DefaultProfile()
	if len(profile.Options) != len(want.Options) {
		t.Errorf("missing file should yield defaults, got %v", profile.Options)
	}
}

func TestLoadProfileMergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediakit.yaml")
	content := "options:\n  hwdec-codecs: h264\n  demuxer-max-bytes: \"33554432\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if profile.Options["hwdec-codecs"] != "h264" {
		t.Errorf("override not applied: %q", profile.Options["hwdec-codecs"])
	}
	if profile.Options["demuxer-max-bytes"] != "33554432" {
		t.Errorf("new option not merged: %q", profile.Options["demuxer-max-bytes"])
	}
	if profile.Options["sub-use-margins"] != "no" {
		t.Error("defaults lost during merge")
	}
}

func TestLoadProfileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediakit.yaml")
	if err := os.WriteFile(path, []byte("options: [not, a, map]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyProfileSortedOrder(t *testing.T) {
	bridge := &fakeBridge{}
	e := setupEngine(t, bridge)

	profile := Profile{Options: map[string]string{
		"zeta":  "1",
		"alpha": "2",
		"mid":   "3",
	}}
	if err := e.ApplyProfile(7, profile); err != nil {
		t.Fatalf("ApplyProfile: %v", err)
	}

	calls := bridge.methodCalls("setOption")
	var names []string
	for _, call := range calls {
		names = append(names, call.args["name"].(string))
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("options applied out of order: %v", names)
	}
	if len(names) != 3 {
		t.Errorf("expected 3 options applied, got %d", len(names))
	}
}
