// Package index builds a read-only view of the distributions installed in
// the build host's site-packages directories: which distribution provides
// each importable top-level name, where each distribution lives, and what
// it declares as runtime dependencies.
package index

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/serverlesspack/slspack/internal/dist"
)

// Index is built once at startup; all lookups afterwards are pure reads.
type Index struct {
	roots    []string
	topLevel map[string][]string
	dists    map[string]*dist.Distribution
}

// Build scans the given library roots (site-packages directories) for
// *.dist-info and *.egg-info entries and indexes them. Roots that do not
// exist are skipped; scanning never follows the import graph.
func Build(libraryRoots []string) (*Index, error) {
	idx := &Index{
		topLevel: make(map[string][]string),
		dists:    make(map[string]*dist.Distribution),
	}

	for _, root := range libraryRoots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolving library root %s: %w", root, err)
		}
		entries, err := os.ReadDir(abs)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading library root %s: %w", abs, err)
		}
		idx.roots = append(idx.roots, abs)

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			name := entry.Name()
			if !strings.HasSuffix(name, ".dist-info") && !strings.HasSuffix(name, ".egg-info") {
				continue
			}
			d, err := readDistribution(abs, filepath.Join(abs, name))
			if err != nil {
				// A malformed metadata dir never aborts index construction.
				continue
			}
			idx.add(d)
		}
	}

	return idx, nil
}

func (idx *Index) add(d *dist.Distribution) {
	if _, exists := idx.dists[d.Name]; exists {
		return
	}
	idx.dists[d.Name] = d
	for _, top := range d.TopLevel {
		idx.topLevel[top] = append(idx.topLevel[top], d.Name)
	}
}

// Roots returns the library roots that were actually scanned.
func (idx *Index) Roots() []string {
	return idx.roots
}

// DistributionsProviding returns the distribution names that provide the
// given importable top-level name, possibly none.
func (idx *Index) DistributionsProviding(topLevel string) []string {
	return idx.topLevel[topLevel]
}

// Lookup returns the record for a distribution name.
func (idx *Index) Lookup(name string) (*dist.Distribution, bool) {
	d, ok := idx.dists[name]
	return d, ok
}

// Names returns all indexed distribution names, sorted.
func (idx *Index) Names() []string {
	names := make([]string, 0, len(idx.dists))
	for n := range idx.dists {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LocateModule resolves a dotted module name against the scanned library
// roots by name alone. Only names whose first segment is a known top-level
// importable name are probed. compiledExt is the build host's compiled
// binary suffix (dot included).
func (idx *Index) LocateModule(module, compiledExt string) (string, bool) {
	segs := strings.Split(module, ".")
	if len(segs) == 0 || segs[0] == "" {
		return "", false
	}
	if len(idx.topLevel[segs[0]]) == 0 {
		return "", false
	}
	for _, root := range idx.roots {
		if p, ok := ProbeModuleFile(root, segs, compiledExt); ok {
			return p, true
		}
	}
	return "", false
}

// ProbeModuleFile checks the conventional on-disk shapes of a module under
// a directory: a plain source file, a package initializer, or a compiled
// binary module.
func ProbeModuleFile(root string, segs []string, compiledExt string) (string, bool) {
	base := filepath.Join(append([]string{root}, segs...)...)
	candidates := []string{
		base + ".py",
		filepath.Join(base, "__init__.py"),
	}
	if compiledExt != "" {
		candidates = append(candidates, base+compiledExt)
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}
