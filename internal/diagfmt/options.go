package diagfmt

// PathMode selects how file paths are printed.
type PathMode uint8

const (
	PathModeAuto     PathMode = iota // as given, long absolute paths shortened
	PathModeAbsolute                 // --fullpath
	PathModeRelative                 // against the FileSet base directory
	PathModeBasename
)

var pathModeNames = [...]string{"auto", "absolute", "relative", "basename"}

func (m PathMode) String() string {
	if int(m) < len(pathModeNames) {
		return pathModeNames[m]
	}
	return "auto"
}

// PrettyOpts configures Pretty.
type PrettyOpts struct {
	Color    bool
	PathMode PathMode
	// Width cuts context lines, 0 leaves them whole.
	Width     uint8
	ShowNotes bool
	// Context prints the netlist line under each diagnostic.
	Context bool
}

// JSONOpts configures JSON and BuildDiagnosticsOutput.
type JSONOpts struct {
	// IncludePositions adds line and column to every location.
	IncludePositions bool
	PathMode         PathMode
	// Max limits the printed diagnostics; the Bag keeps all of them.
	Max          int
	IncludeNotes bool
}
