package dataproviders

import (
	"regexp"

	"golang.org/x/mod/semver"
)

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)(-[0-9A-Za-z][0-9A-Za-z.-]*)?`)

// ToolVersion is the version of the build tool that produced the profile.
// Unknown versions are a valid outcome, not a failure.
type ToolVersion struct {
	Raw string
	// Semver is the canonical "vMAJOR.MINOR.PATCH[-pre]" form; empty when unknown.
	Semver string
}

// ParseToolVersion extracts the version from strings like "release 6.4.0".
func ParseToolVersion(raw string) ToolVersion {
	v := ToolVersion{Raw: raw}
	m := versionPattern.FindString(raw)
	if m == "" {
		return v
	}
	if sv := semver.Canonical("v" + m); sv != "" {
		v.Semver = sv
	}
	return v
}

// Known reports whether the version could be parsed.
func (v ToolVersion) Known() bool { return v.Semver != "" }

// AtLeast reports whether the version is known and not older than minVersion
// (e.g. "v7.0.0").
func (v ToolVersion) AtLeast(minVersion string) bool {
	return v.Known() && semver.Compare(v.Semver, minVersion) >= 0
}

// String returns the version without its "v" prefix, or "unknown".
func (v ToolVersion) String() string {
	if !v.Known() {
		return "unknown"
	}
	return v.Semver[1:]
}

func (ToolVersion) Description() string { return "Version of the build tool." }

func (v ToolVersion) Summary() (string, bool) {
	if !v.Known() {
		if v.Raw == "" {
			return "", false
		}
		return "unrecognized version " + v.Raw, true
	}
	return v.String(), true
}
