package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/serverlesspack/slspack/internal/archive"
	"github.com/serverlesspack/slspack/internal/config"
	"github.com/serverlesspack/slspack/internal/dist"
	"github.com/serverlesspack/slspack/internal/index"
	"github.com/serverlesspack/slspack/internal/manifest"
	"github.com/serverlesspack/slspack/internal/resolver"
)

var (
	configPath   string
	targetOS     string
	manifestPath string
	zipPath      string
	verbose      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "slspack",
		Short: "Resolves a program's import graph into a self-contained deployment package",
		Long:  "slspack walks a root source file's import graph, classifies every module as an installed distribution or a local file, and bundles the minimal file set needed to run on the target OS.",
	}

	packageCmd := &cobra.Command{
		Use:   "package",
		Short: "Resolve the import graph and build the manifest and archive",
		RunE:  runPackage,
	}
	packageCmd.Flags().StringVarP(&configPath, "config", "c", "./slspack.yaml", "Config file path")
	packageCmd.Flags().StringVar(&targetOS, "target-os", "", "Target OS (windows or linux; defaults to the build host)")
	packageCmd.Flags().StringVar(&manifestPath, "manifest", "", "Manifest output path (overrides config)")
	packageCmd.Flags().StringVar(&zipPath, "zip", "", "Zip output path (overrides config)")
	packageCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Build the zip archive from an existing manifest",
		RunE:  runArchive,
	}
	archiveCmd.Flags().StringVar(&manifestPath, "manifest", "./slspack.manifest", "Manifest input path")
	archiveCmd.Flags().StringVar(&zipPath, "zip", "./build.zip", "Zip output path")
	archiveCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(packageCmd)
	rootCmd.AddCommand(archiveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *log.Logger {
	logger := log.New(os.Stderr)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func runPackage(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if targetOS != "" {
		cfg.TargetOS = targetOS
	}
	if manifestPath != "" {
		cfg.Output.Manifest = manifestPath
	}
	if zipPath != "" {
		cfg.Output.Zip = zipPath
	}
	if cfg.Output.Manifest == "" {
		cfg.Output.Manifest = "./slspack.manifest"
	}

	logger.Debug("indexing installed distributions", "roots", cfg.LibraryRoots)
	idx, err := index.Build(cfg.LibraryRoots)
	if err != nil {
		return fmt.Errorf("building distribution index: %w", err)
	}

	res, err := resolver.New(resolver.Config{
		RootFile:   cfg.RootFile,
		TargetOS:   cfg.TargetOS,
		StdlibRoot: cfg.StdlibRoot,
		Verbose:    verbose,
	}, idx, logger)
	if err != nil {
		return err
	}

	if err := res.ProcessFile(cfg.RootFile); err != nil {
		return err
	}
	for folder, include := range cfg.Folders {
		logger.Debug("importing folder", "path", folder)
		if err := res.ImportFolder(folder, include.ExcludedFolders, include.ExcludedExtensions); err != nil {
			return fmt.Errorf("importing folder %s: %w", folder, err)
		}
	}

	var dists []*dist.Distribution
	for _, name := range res.Distributions() {
		if d, ok := idx.Lookup(name); ok {
			dists = append(dists, d)
		}
	}
	m := &manifest.Manifest{
		RootDir:       filepath.Dir(res.RootFile()),
		Files:         res.Files(),
		Distributions: dists,
	}

	out, err := os.Create(cfg.Output.Manifest)
	if err != nil {
		return fmt.Errorf("creating manifest file: %w", err)
	}
	defer out.Close()
	if err := manifest.NewEmitter(out).Emit(m); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	logger.Info("manifest written", "path", cfg.Output.Manifest,
		"files", len(m.Files), "distributions", len(m.Distributions))

	if cfg.Output.Zip != "" {
		if err := archive.Build(cfg.Output.Zip, m); err != nil {
			return err
		}
		logger.Info("packaged zipped file available", "path", cfg.Output.Zip)
	}
	return nil
}

func runArchive(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	f, err := os.Open(manifestPath)
	if err != nil {
		return fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	m, err := manifest.NewParser(f).Parse()
	if err != nil {
		return err
	}
	if err := archive.Build(zipPath, m); err != nil {
		return err
	}
	logger.Info("packaged zipped file available", "path", zipPath, "files", len(m.Files))
	return nil
}
