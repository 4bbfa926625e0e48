// Package resolver computes the minimal set of source files a root program
// and its transitive imports need at runtime, classifying every discovered
// module as either part of an installed distribution or a standalone local
// file.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/serverlesspack/slspack/internal/dist"
	"github.com/serverlesspack/slspack/internal/index"
	"github.com/serverlesspack/slspack/internal/modpath"
	"github.com/serverlesspack/slspack/internal/platform"
	"github.com/serverlesspack/slspack/internal/pysrc"
)

// packageInitFile is the adjacent package-initializer always bundled next
// to any included source file.
const packageInitFile = "__init__.py"

// Config is the immutable resolver configuration.
type Config struct {
	// RootFile is the entry source file; it seeds the included set.
	RootFile string
	// TargetOS is the OS the package must run on. Empty defaults to the
	// build host with a warning.
	TargetOS string
	// StdlibRoot is the standard-library install location; resolved files
	// under it are never bundled.
	StdlibRoot string
	// Verbose enables per-import diagnostics.
	Verbose bool
}

// MissingFileError reports a file the walker was explicitly asked to
// process but which does not exist.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("filepath does not exist: %s", e.Path)
}

// Resolver owns the mutable resolution state. It is not safe for
// concurrent use; the walk is single-threaded by design.
type Resolver struct {
	rootFile   string
	rootDir    string
	hostOS     platform.OS
	targetOS   platform.OS
	stdlibRoot string
	verbose    bool

	idx *index.Index
	log *log.Logger

	includedFiles map[string]bool
	includedDists map[string]bool

	// walked marks files already queued for the syntax walk, so a
	// distribution's entry file is walked at most once per run.
	walked   map[string]bool
	worklist []string

	handlers map[pysrc.Kind]handlerFunc
}

// New validates the configuration and seeds the resolver state. An
// unsupported target OS is a fatal configuration error.
func New(cfg Config, idx *index.Index, logger *log.Logger) (*Resolver, error) {
	rootFile, err := filepath.Abs(cfg.RootFile)
	if err != nil {
		return nil, fmt.Errorf("resolving root file path: %w", err)
	}

	hostOS := platform.Host()
	targetOS := hostOS
	if cfg.TargetOS != "" {
		targetOS, err = platform.Parse(cfg.TargetOS)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Warn("defaulting build target to active OS; the package might not work on other OS", "os", hostOS)
	}
	logger.Info("building package", "target_os", targetOS)

	stdlibRoot := cfg.StdlibRoot
	if stdlibRoot != "" {
		if stdlibRoot, err = filepath.Abs(stdlibRoot); err != nil {
			return nil, fmt.Errorf("resolving stdlib root: %w", err)
		}
	}

	r := &Resolver{
		rootFile:      rootFile,
		rootDir:       filepath.Dir(rootFile),
		hostOS:        hostOS,
		targetOS:      targetOS,
		stdlibRoot:    stdlibRoot,
		verbose:       cfg.Verbose,
		idx:           idx,
		log:           logger,
		includedFiles: map[string]bool{rootFile: true},
		includedDists: make(map[string]bool),
		walked:        make(map[string]bool),
	}
	r.handlers = statementHandlers()
	return r, nil
}

// RootFile returns the absolute root file path.
func (r *Resolver) RootFile() string {
	return r.rootFile
}

// Files returns the included absolute file paths, sorted.
func (r *Resolver) Files() []string {
	files := make([]string, 0, len(r.includedFiles))
	for f := range r.includedFiles {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Distributions returns the included distribution names, sorted.
func (r *Resolver) Distributions() []string {
	names := make([]string, 0, len(r.includedDists))
	for n := range r.includedDists {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ProcessFile walks a file and the entire import closure reachable from
// it. Only a missing explicitly-processed file is fatal; per-import
// failures are diagnostics and the walk continues.
func (r *Resolver) ProcessFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path %s: %w", path, err)
	}
	r.enqueue(abs)
	for len(r.worklist) > 0 {
		next := r.worklist[len(r.worklist)-1]
		r.worklist = r.worklist[:len(r.worklist)-1]
		if err := r.walkFile(next); err != nil {
			return err
		}
	}
	return nil
}

// enqueue schedules a file for the syntax walk at most once per run.
func (r *Resolver) enqueue(path string) {
	if r.walked[path] {
		return
	}
	r.walked[path] = true
	r.worklist = append(r.worklist, path)
}

// walkFile parses a source file and dispatches each statement to its
// handler. Non-source files are added to the manifest without analysis.
func (r *Resolver) walkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return &MissingFileError{Path: path}
	}

	if filepath.Ext(path) != pysrc.SourceExt {
		r.addFile(path)
		return nil
	}

	stmts, err := pysrc.ParseFile(path)
	if err != nil {
		return err
	}
	currentModule := modpath.FileModulePath(r.moduleRoot(path), path)
	for _, st := range stmts {
		r.processStatement(st, currentModule, path)
	}
	return nil
}

// processStatement routes one statement node through the handler table.
// Kinds without a handler are logged under verbosity and never fail.
func (r *Resolver) processStatement(st pysrc.Statement, currentModule, currentFile string) {
	handler, ok := r.handlers[st.Kind]
	if !ok {
		r.debugf("statement kind %s not supported", st.Kind)
		return
	}
	handler(r, st, currentModule, currentFile)
}

// resolveImport attempts to locate the file backing a module name, classify
// it, and fold it into the resolver state.
func (r *Resolver) resolveImport(moduleName, importingFile string) dist.Outcome {
	path, ok := r.locate(moduleName, importingFile)
	if !ok {
		r.debugf("importing of module %s failed as both a library import and file import (from %s)", moduleName, importingFile)
		return dist.Unresolved
	}
	return r.classify(path)
}

// locate resolves a module name to a backing file. The probe order is
// explicit: stdlib root, indexed library roots, the root file's directory,
// and finally a path derived relative to the importing file.
func (r *Resolver) locate(moduleName, importingFile string) (string, bool) {
	segs := strings.Split(moduleName, ".")
	hostExt := platform.CompiledExt(r.hostOS)

	if r.stdlibRoot != "" {
		if p, ok := index.ProbeModuleFile(r.stdlibRoot, segs, hostExt); ok {
			return p, true
		}
	}
	if p, ok := r.idx.LocateModule(moduleName, hostExt); ok {
		return p, true
	}
	if p, ok := index.ProbeModuleFile(r.rootDir, segs, hostExt); ok {
		return p, true
	}

	// File-relative fallback: reduce the module name by how much of it the
	// importing file's own location already implies, then probe next to it.
	rel, err := filepath.Rel(r.rootDir, importingFile)
	if err != nil {
		return "", false
	}
	derived := modpath.ToModulePath(rel, moduleName)
	if derived == "" {
		return "", false
	}
	return index.ProbeModuleFile(filepath.Dir(importingFile), strings.Split(derived, "."), hostExt)
}

// classify folds a resolved file into the included sets: discarded when it
// is standard library, substituted and possibly skipped when it is a
// compiled artifact and host and target OS differ, folded as a whole
// distribution when it lives under site-packages, added as a standalone
// local file otherwise.
func (r *Resolver) classify(path string) dist.Outcome {
	abs := path
	if !filepath.IsAbs(abs) {
		joined := filepath.Join(modpath.StripJunk(abs)...)
		if a, err := filepath.Abs(joined); err == nil {
			abs = a
		}
	}

	if r.stdlibRoot != "" && strings.HasPrefix(abs, r.stdlibRoot+string(filepath.Separator)) {
		return dist.StdlibExcluded
	}

	adapted, usable := platform.AdaptForTarget(abs, r.hostOS, r.targetOS)
	if !usable {
		r.log.Warn(fmt.Sprintf(
			"no matching %s file found to replace a %s file; compile the module for %s or colocate both artifacts",
			platform.CompiledExt(r.targetOS), platform.CompiledExt(r.hostOS), r.targetOS),
			"path", adapted)
		return dist.SkippedNoPlatformMatch
	}
	abs = adapted

	if folderName, ok := modpath.DistributionName(abs); ok {
		return r.foldDistribution(folderName, abs)
	}

	if r.includedFiles[abs] {
		return dist.AlreadyIncluded
	}
	r.addFile(abs)
	if filepath.Ext(abs) == pysrc.SourceExt {
		r.enqueue(abs)
	}
	return dist.NewLocalFile
}

// foldDistribution records a distribution and walks its resolved entry
// file. A distribution is folded at most once per run; files inside
// site-packages that belong to no known distribution are silently ignored.
func (r *Resolver) foldDistribution(folderName, entryFile string) dist.Outcome {
	providers := r.idx.DistributionsProviding(folderName)
	if len(providers) == 0 {
		r.debugf("file %s is inside a libraries folder but not tied to any installed distribution", entryFile)
		return dist.Unresolved
	}
	name := providers[0]
	if r.includedDists[name] {
		return dist.AlreadyIncluded
	}

	if d, ok := r.idx.Lookup(name); ok && len(d.Requires) > 0 {
		// Declared dependencies are recorded in the manifest but never
		// expanded into the included sets; see DESIGN.md.
		r.debugf("distribution %s declares requirements: %s", name, strings.Join(d.Requires, ", "))
	}

	r.includedDists[name] = true
	r.addFile(entryFile)
	if filepath.Ext(entryFile) == pysrc.SourceExt {
		r.enqueue(entryFile)
	}
	return dist.NewDistribution
}

// addFile includes a file plus its adjacent package initializer, if one
// exists alongside it.
func (r *Resolver) addFile(path string) {
	initFile := filepath.Join(filepath.Dir(path), packageInitFile)
	if !r.includedFiles[initFile] {
		if info, err := os.Stat(initFile); err == nil && !info.IsDir() {
			r.includedFiles[initFile] = true
		}
	}
	r.includedFiles[path] = true
}

// moduleRoot returns the directory the file's dotted module path is
// relative to: its site-packages root for distribution files, the root
// file's directory otherwise.
func (r *Resolver) moduleRoot(path string) string {
	if root, ok := modpath.SitePackagesRoot(path); ok {
		return root
	}
	return r.rootDir
}

func (r *Resolver) debugf(format string, args ...interface{}) {
	if r.verbose {
		r.log.Debug(fmt.Sprintf(format, args...))
	}
}
