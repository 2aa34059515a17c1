// Package version holds the build identity of netxlate. Plain, GitCommit
// and BuildDate are meant to be set with -ldflags "-X".
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
)

var (
	// Plain is the semantic version; it also keys the translation cache.
	Plain = "0.3.0"

	GitCommit = ""
	// BuildDate is ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Plain with one color per component. A Plain that is not
// a semantic version is shown as is.
func Colored() string {
	v, err := semver.NewVersion(Plain)
	if err != nil {
		return Plain
	}
	s := majorColor.Sprint(v.Major()) + "." + minorColor.Sprint(v.Minor()) + "." + patchColor.Sprint(v.Patch())
	if pre := v.Prerelease(); pre != "" {
		s += "-" + pre
	}
	return s
}

// Long is Colored followed by the commit and build date when known.
func Long() string {
	switch {
	case GitCommit != "" && BuildDate != "":
		return fmt.Sprintf("%s (%s, %s)", Colored(), GitCommit, BuildDate)
	case GitCommit != "":
		return fmt.Sprintf("%s (%s)", Colored(), GitCommit)
	}
	return Colored()
}
