package index

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/serverlesspack/slspack/internal/dist"
)

// readDistribution builds a Distribution record from a *.dist-info or
// *.egg-info directory.
func readDistribution(root, infoDir string) (*dist.Distribution, error) {
	name, requires, err := readCoreMetadata(infoDir)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = nameFromInfoDir(infoDir)
	}
	if name == "" {
		return nil, fmt.Errorf("no distribution name in %s", infoDir)
	}

	topLevel := readTopLevel(infoDir)
	if len(topLevel) == 0 {
		topLevel = topLevelFromRecord(infoDir)
	}
	if len(topLevel) == 0 {
		// Conventional fallback: the import name is the normalized
		// distribution name.
		topLevel = []string{strings.ReplaceAll(name, "-", "_")}
	}

	d := &dist.Distribution{
		Name:     name,
		Location: root,
		TopLevel: topLevel,
		Requires: requires,
	}
	for _, top := range topLevel {
		if p, ok := ProbeModuleFile(root, []string{top}, ""); ok {
			d.EntryFile = p
			break
		}
	}
	return d, nil
}

// readCoreMetadata parses METADATA (dist-info) or PKG-INFO (egg-info) for
// the distribution name and its declared runtime requirements.
func readCoreMetadata(infoDir string) (name string, requires []string, err error) {
	var f *os.File
	for _, candidate := range []string{"METADATA", "PKG-INFO"} {
		f, err = os.Open(filepath.Join(infoDir, candidate))
		if err == nil {
			break
		}
	}
	if err != nil {
		return "", nil, fmt.Errorf("opening metadata in %s: %w", infoDir, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		// Headers end at the first blank line; the long description follows.
		if line == "" {
			break
		}
		switch {
		case strings.HasPrefix(line, "Name:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
		case strings.HasPrefix(line, "Requires-Dist:"):
			if req, ok := parseRequiresDist(strings.TrimPrefix(line, "Requires-Dist:")); ok {
				requires = append(requires, req)
			}
		}
	}
	if requires == nil {
		requires = readEggRequires(infoDir)
	}
	return name, requires, scanner.Err()
}

// parseRequiresDist extracts the bare distribution name from a
// Requires-Dist value like `urllib3 (>=1.21.1,<3) ; extra == "socks"`.
// Extras-gated requirements are not runtime dependencies and are skipped.
func parseRequiresDist(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if marker := strings.SplitN(value, ";", 2); len(marker) == 2 {
		if strings.Contains(marker[1], "extra") {
			return "", false
		}
		value = strings.TrimSpace(marker[0])
	}
	end := strings.IndexAny(value, " ([<>=!~")
	if end > 0 {
		value = value[:end]
	}
	if value == "" {
		return "", false
	}
	return value, true
}

// readEggRequires parses egg-info requires.txt; bracketed sections declare
// extras and everything under them is skipped.
func readEggRequires(infoDir string) []string {
	f, err := os.Open(filepath.Join(infoDir, "requires.txt"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var requires []string
	inExtra := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inExtra = true
			continue
		}
		if inExtra {
			continue
		}
		if req, ok := parseRequiresDist(line); ok {
			requires = append(requires, req)
		}
	}
	return requires
}

func readTopLevel(infoDir string) []string {
	data, err := os.ReadFile(filepath.Join(infoDir, "top_level.txt"))
	if err != nil {
		return nil
	}
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names
}

// topLevelFromRecord derives top-level names from the first path segment of
// each RECORD entry, ignoring the metadata directory itself.
func topLevelFromRecord(infoDir string) []string {
	f, err := os.Open(filepath.Join(infoDir, "RECORD"))
	if err != nil {
		return nil
	}
	defer f.Close()

	seen := make(map[string]bool)
	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		entry := scanner.Text()
		if i := strings.Index(entry, ","); i >= 0 {
			entry = entry[:i]
		}
		entry = filepath.ToSlash(strings.TrimSpace(entry))
		if entry == "" || strings.HasPrefix(entry, "..") {
			continue
		}
		first := entry
		if i := strings.Index(entry, "/"); i >= 0 {
			first = entry[:i]
		} else {
			first = strings.TrimSuffix(first, filepath.Ext(first))
		}
		if first == "" || strings.HasSuffix(first, ".dist-info") || strings.HasSuffix(first, ".egg-info") {
			continue
		}
		if !seen[first] {
			seen[first] = true
			names = append(names, first)
		}
	}
	return names
}

func nameFromInfoDir(infoDir string) string {
	base := filepath.Base(infoDir)
	base = strings.TrimSuffix(base, ".dist-info")
	base = strings.TrimSuffix(base, ".egg-info")
	// requests-2.31.0.dist-info -> requests
	if i := strings.Index(base, "-"); i > 0 {
		base = base[:i]
	}
	return base
}
