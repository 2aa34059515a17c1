package version

import (
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
)

func TestPlainIsSemver(t *testing.T) {
	if _, err := semver.StrictNewVersion(Plain); err != nil {
		t.Errorf("Plain = %q: %v", Plain, err)
	}
}

func TestLongIncludesCommit(t *testing.T) {
	origNoColor := color.NoColor
	origPlain, origCommit, origDate := Plain, GitCommit, BuildDate
	t.Cleanup(func() {
		color.NoColor = origNoColor
		Plain, GitCommit, BuildDate = origPlain, origCommit, origDate
	})
	color.NoColor = true

	Plain = "1.2.3-rc.1"
	GitCommit, BuildDate = "abc123", "2026-01-15"
	if got := Long(); got != "1.2.3-rc.1 (abc123, 2026-01-15)" {
		t.Errorf("Long() = %q", got)
	}
	GitCommit = ""
	if got := Long(); got != Colored() || !strings.HasPrefix(got, "1.2.3") {
		t.Errorf("Long() without commit = %q", got)
	}
	Plain = "dev"
	if Colored() != "dev" {
		t.Errorf("non-semver Plain must pass through")
	}
}
