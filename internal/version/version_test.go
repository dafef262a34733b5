package version

import (
	"strings"
	"testing"
)

func TestCurrentTrimsAndDefaults(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = origVersion, origCommit })

	Version = "  "
	GitCommit = " abc123\n"
	info := Current()
	if info.Version != "dev" {
		t.Errorf("Version = %q, want dev", info.Version)
	}
	if info.GitCommit != "abc123" {
		t.Errorf("GitCommit = %q, want abc123", info.GitCommit)
	}
}

func TestColored(t *testing.T) {
	if got := Colored("1.2.3-rc.1", false); got != "1.2.3-rc.1" {
		t.Errorf("Colored without color = %q", got)
	}
	got := Colored("1.2.3-rc.1", true)
	if !strings.Contains(got, "\x1b[") || !strings.HasSuffix(got, "-rc.1") {
		t.Errorf("Colored = %q", got)
	}
	if got := Colored("nightly", true); got != "nightly" {
		t.Errorf("Colored(nightly) = %q", got)
	}
}
