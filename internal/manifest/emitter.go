// Package manifest reads and writes the resolver's output artifact: the
// set of included files and the set of bundled distributions.
package manifest

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/serverlesspack/slspack/internal/dist"
)

const header = "# slspack manifest format: version 1.0\n"

// Manifest is the hand-off between resolution and archiving.
type Manifest struct {
	// RootDir anchors archive-relative names for local files.
	RootDir       string
	Files         []string
	Distributions []*dist.Distribution
}

// Emitter writes manifests in a stable, sorted text format.
type Emitter struct {
	w io.Writer
}

// NewEmitter creates a manifest emitter.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes the manifest. Files and distributions are sorted so output
// is deterministic for identical inputs.
func (e *Emitter) Emit(m *Manifest) error {
	if _, err := fmt.Fprint(e.w, header); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(e.w, "ROOT %s\n", m.RootDir); err != nil {
		return err
	}

	if _, err := fmt.Fprint(e.w, "DISTRIBUTIONS\n"); err != nil {
		return err
	}
	sorted := make([]*dist.Distribution, len(m.Distributions))
	copy(sorted, m.Distributions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	for _, d := range sorted {
		if err := e.emitDistribution(d); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(e.w, "FILES\n"); err != nil {
		return err
	}
	files := make([]string, len(m.Files))
	copy(files, m.Files)
	sort.Strings(files)
	for _, f := range files {
		if _, err := fmt.Fprintf(e.w, "  %s\n", f); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitDistribution(d *dist.Distribution) error {
	if _, err := fmt.Fprintf(e.w, "  %s\n", d.Name); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(e.w, "    location: %s\n", d.Location); err != nil {
		return err
	}
	if len(d.Requires) > 0 {
		sorted := make([]string, len(d.Requires))
		copy(sorted, d.Requires)
		sort.Strings(sorted)
		if _, err := fmt.Fprintf(e.w, "    requires: %s\n", strings.Join(sorted, ", ")); err != nil {
			return err
		}
	}
	return nil
}
