package manifest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/serverlesspack/slspack/internal/dist"
)

var (
	rootRe     = regexp.MustCompile(`^ROOT (.+)$`)
	entryRe    = regexp.MustCompile(`^  (\S.*)$`)
	locationRe = regexp.MustCompile(`^    location: (.+)$`)
	requiresRe = regexp.MustCompile(`^    requires: (.+)$`)
)

// Parser reads manifests written by Emitter.
type Parser struct {
	r io.Reader
}

// NewParser creates a manifest parser.
func NewParser(r io.Reader) *Parser {
	return &Parser{r: r}
}

// Parse reads a manifest back. Used by the archive stage so packaging can
// run from a previously emitted manifest.
func (p *Parser) Parse() (*Manifest, error) {
	m := &Manifest{}
	var current *dist.Distribution
	inFiles := false

	scanner := bufio.NewScanner(p.r)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}
		if matches := rootRe.FindStringSubmatch(line); matches != nil {
			m.RootDir = matches[1]
			continue
		}
		switch line {
		case "DISTRIBUTIONS":
			inFiles = false
			continue
		case "FILES":
			inFiles = true
			continue
		}

		if matches := locationRe.FindStringSubmatch(line); matches != nil && current != nil {
			current.Location = matches[1]
			continue
		}
		if matches := requiresRe.FindStringSubmatch(line); matches != nil && current != nil {
			for _, req := range strings.Split(matches[1], ",") {
				if req = strings.TrimSpace(req); req != "" {
					current.Requires = append(current.Requires, req)
				}
			}
			continue
		}
		if matches := entryRe.FindStringSubmatch(line); matches != nil {
			if inFiles {
				m.Files = append(m.Files, matches[1])
			} else {
				current = &dist.Distribution{Name: matches[1]}
				m.Distributions = append(m.Distributions, current)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return m, nil
}
