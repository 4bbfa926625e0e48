package dist

// Distribution represents an installed third-party library unit discovered
// in a site-packages directory.
type Distribution struct {
	Name      string   // e.g., "requests"
	Location  string   // absolute path of the site-packages dir that holds it
	EntryFile string   // absolute path of the distribution's entry module file
	TopLevel  []string // importable top-level names it provides
	Requires  []string // declared runtime dependency distribution names
}

// Outcome classifies the result of resolving one import.
type Outcome int

const (
	// Unresolved means the module was not found anywhere.
	Unresolved Outcome = iota
	// AlreadyIncluded means the resolved file or distribution was seen before.
	AlreadyIncluded
	// NewLocalFile means a standalone local file was added.
	NewLocalFile
	// NewDistribution means an installed distribution was folded in.
	NewDistribution
	// SkippedNoPlatformMatch means the target-OS compiled artifact is absent.
	SkippedNoPlatformMatch
	// StdlibExcluded means the module lives under the standard library root
	// and is never bundled.
	StdlibExcluded
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case Unresolved:
		return "unresolved"
	case AlreadyIncluded:
		return "already included"
	case NewLocalFile:
		return "new local file"
	case NewDistribution:
		return "new distribution"
	case SkippedNoPlatformMatch:
		return "skipped, no platform match"
	case StdlibExcluded:
		return "stdlib excluded"
	default:
		return "unknown"
	}
}
