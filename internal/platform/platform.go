// Package platform maps build-host and target operating systems to
// compiled-artifact suffix substitution rules.
package platform

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// OS identifies a supported packaging target operating system.
type OS string

const (
	Windows OS = "windows"
	Linux   OS = "linux"
)

// ErrUnsupportedOS is returned when a target OS string is not one of the
// supported identifiers.
var ErrUnsupportedOS = fmt.Errorf("target OS not supported (supported: %s, %s)", Windows, Linux)

// compiledExts maps an OS to the suffix of its pre-built binary modules.
var compiledExts = map[OS]string{
	Windows: ".pyd",
	Linux:   ".so",
}

// Parse validates a target OS string.
func Parse(s string) (OS, error) {
	switch OS(strings.ToLower(s)) {
	case Windows:
		return Windows, nil
	case Linux:
		return Linux, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnsupportedOS)
	}
}

// Host returns the build host's OS. Non-windows hosts use linux suffix
// semantics, since windows and linux are the only supported targets.
func Host() OS {
	if runtime.GOOS == "windows" {
		return Windows
	}
	return Linux
}

// CompiledExt returns the compiled-binary suffix for an OS, dot included.
func CompiledExt(o OS) string {
	return compiledExts[o]
}

// AdaptForTarget rewrites a compiled-artifact path for the target OS.
//
// When host and target differ and path carries the host's compiled suffix,
// the suffix is rewritten to the target's and the rewritten file must exist
// on disk. Returns the path to bundle and whether a usable file exists; a
// false return means the import contributes nothing for this target.
func AdaptForTarget(path string, host, target OS) (string, bool) {
	if host == target {
		return path, true
	}
	hostExt := compiledExts[host]
	if !strings.HasSuffix(path, hostExt) {
		return path, true
	}
	adapted := strings.TrimSuffix(path, hostExt) + compiledExts[target]
	if _, err := os.Stat(adapted); err != nil {
		return adapted, false
	}
	return adapted, true
}
