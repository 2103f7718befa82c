package version

import "testing"

func TestGet(t *testing.T) {
	info := Get()
	if info.Version != Version {
		t.Errorf("Version = %q, want %q", info.Version, Version)
	}
	if info.GoVersion == "" || info.Platform == "" {
		t.Errorf("missing runtime info: %+v", info)
	}
}

func TestInfoString(t *testing.T) {
	s := Info{Version: "1.2.3", GitCommit: "0123456789abcdef", GoVersion: "go1.24", Platform: "linux/amd64"}.String()
	want := "progressbridge 1.2.3 (0123456789ab, go1.24, linux/amd64)"
	if s != want {
		t.Errorf("String() = %q, want %q", s, want)
	}
}
