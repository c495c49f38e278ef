package logger

// Output controls what categories of information are shown at each verbosity level.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
//
// Verbosity Levels:
//
//	0 (default) - results (eval literal, dry-run source), errors with hints
//	1 (-v)      - + run summary
//	3 (-vvv)    - + entropy accounting, each template selected by discovery

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 1 (-v) - Informational
	OutputSummary OutputCategory = iota // Run totals

	// Level 3 (-vvv) - Trace
	OutputEntropy   // Draw counts and byte totals
	OutputDiscovery // Templates selected from paths
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputSummary: VerbosityInfo,

	OutputEntropy:   VerbosityTrace,
	OutputDiscovery: VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}
