// Package modpath converts between file-system paths and dotted module
// identifiers. All functions are pure.
package modpath

import (
	"path/filepath"
	"strings"
)

// sitePackagesDir is the conventional installed-third-party-libraries
// marker segment.
const sitePackagesDir = "site-packages"

// StripJunk splits a path into segments, dropping leading "." and ".."
// segments.
func StripJunk(path string) []string {
	parts := split(path)
	for len(parts) > 0 && (parts[0] == "." || parts[0] == "..") {
		parts = parts[1:]
	}
	return parts
}

// ToModulePath reduces a dotted module name to the part not already implied
// by where the importing file lives inside its own package.
//
// The first base-path segment is the package root; each following base-path
// segment that still matches the module name by position is considered
// consumed. On the first mismatch (including a package-root mismatch) the
// module name is returned unchanged.
func ToModulePath(basePath, moduleName string) string {
	base := StripJunk(basePath)
	mods := strings.Split(moduleName, ".")
	if len(base) == 0 || len(mods) == 0 || base[0] != mods[0] {
		return moduleName
	}

	consumed := 1
	for i := 1; i < len(base) && consumed < len(mods); i++ {
		if base[i] != mods[consumed] {
			break
		}
		consumed++
	}
	return strings.Join(mods[consumed:], ".")
}

// DistributionName scans a file path's parent segments for the
// site-packages marker and returns the on-disk distribution folder name
// immediately after it. The final segment (the file itself) never counts:
// a single-file module sitting directly in site-packages is standalone.
// A false return means the file is local.
func DistributionName(filePath string) (string, bool) {
	parts := split(filePath)
	if len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		if p == sitePackagesDir && i+1 < len(parts) {
			return parts[i+1], true
		}
	}
	return "", false
}

// SitePackagesRoot returns the path prefix up to and including the
// site-packages marker segment, when the path contains one.
func SitePackagesRoot(filePath string) (string, bool) {
	cleaned := filepath.ToSlash(filePath)
	idx := strings.Index(cleaned, "/"+sitePackagesDir+"/")
	if idx < 0 {
		if strings.HasPrefix(cleaned, sitePackagesDir+"/") {
			return filepath.FromSlash(sitePackagesDir), true
		}
		return "", false
	}
	return filepath.FromSlash(cleaned[:idx+1+len(sitePackagesDir)]), true
}

// FileModulePath derives the dotted module path of file relative to root.
// The source extension is dropped and a trailing __init__ segment denotes
// the package itself.
func FileModulePath(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = file
	}
	parts := split(rel)
	if len(parts) == 0 {
		return ""
	}
	last := parts[len(parts)-1]
	last = strings.TrimSuffix(last, filepath.Ext(last))
	if last == "__init__" {
		parts = parts[:len(parts)-1]
	} else {
		parts[len(parts)-1] = last
	}
	return strings.Join(parts, ".")
}

// ResolveRelative applies the leading-dot count of a relative import to the
// importing file's module path. One dot means the current package, each
// additional dot climbs one package. Returns the absolute dotted name.
func ResolveRelative(currentModule string, level int, name string) string {
	if level <= 0 {
		return name
	}
	parts := strings.Split(currentModule, ".")
	// The importing module's own segment never counts as a package level.
	drop := level
	if drop > len(parts) {
		drop = len(parts)
	}
	base := parts[:len(parts)-drop]
	switch {
	case len(base) == 0:
		return name
	case name == "":
		return strings.Join(base, ".")
	default:
		return strings.Join(base, ".") + "." + name
	}
}

func split(path string) []string {
	cleaned := filepath.ToSlash(path)
	var parts []string
	for _, p := range strings.Split(cleaned, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
