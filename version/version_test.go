package version

import (
	"strings"
	"testing"
	"time"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetVersionInfoDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "dev", "", ""

	info := GetVersionInfo()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
}

func TestGetVersionInfoLdflags(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.2.0"
	GitCommit = "3f2a9c1d8e7b"
	BuildTime = "2026-01-02T03:04:05Z"

	info := GetVersionInfo()
	if info.GitCommit != "3f2a9c1" {
		t.Errorf("expected commit truncated to 7 chars, got %q", info.GitCommit)
	}
	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if !info.BuildDate.Equal(want) {
		t.Errorf("expected build date %v, got %v", want, info.BuildDate)
	}
	if !strings.HasPrefix(GetVersion(), "1.2.0-3f2a9c1") {
		t.Errorf("unexpected short version %q", GetVersion())
	}
}

func TestGetVersionInfoBadBuildTime(t *testing.T) {
	defer saveAndRestore()()
	BuildTime = "yesterday"
	GitCommit = "abc"

	info := GetVersionInfo()
	if info.GitCommit != "abc" {
		t.Errorf("short commit should be kept as is, got %q", info.GitCommit)
	}
}

func TestInfoString(t *testing.T) {
	info := &Info{
		Version:   "1.0.0",
		GitCommit: "abc1234",
		GoVersion: "go1.26.0",
		BuildDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		IsDirty:   true,
	}
	want := "sawmill 1.0.0 (abc1234, dirty) go1.26.0 built 2026-05-01T00:00:00Z"
	if got := info.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := (&Info{Version: "dev"}).String(); got != "sawmill dev" {
		t.Errorf("expected 'sawmill dev', got %q", got)
	}
}
