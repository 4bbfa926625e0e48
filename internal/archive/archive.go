// Package archive assembles the final zip from a resolved manifest.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/serverlesspack/slspack/internal/manifest"
	"github.com/serverlesspack/slspack/internal/modpath"
)

// ArchiveName computes the in-archive name of an included file: relative to
// its site-packages directory for distribution files, relative to the root
// file's directory for local files.
func ArchiveName(rootDir, path string) string {
	if spRoot, ok := modpath.SitePackagesRoot(path); ok {
		if rel, err := filepath.Rel(spRoot, path); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	if rootDir != "" {
		if rel, err := filepath.Rel(rootDir, path); err == nil && !isOutside(rel) {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.Base(path)
}

func isOutside(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}

// Build writes every manifest file into a zip at zipPath, replacing any
// existing archive. The zip is written to a temp file first and renamed so
// a failed run never leaves a truncated archive behind.
func Build(zipPath string, m *manifest.Manifest) error {
	if err := os.MkdirAll(filepath.Dir(zipPath), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(zipPath), ".slspack-*.zip")
	if err != nil {
		return fmt.Errorf("creating archive temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	zw := zip.NewWriter(tmp)
	for _, file := range m.Files {
		if err := addFile(zw, file, ArchiveName(m.RootDir, file)); err != nil {
			zw.Close()
			tmp.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("finalizing archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing archive temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), zipPath); err != nil {
		return fmt.Errorf("replacing archive %s: %w", zipPath, err)
	}
	return nil
}

func addFile(zw *zip.Writer, path, arcName string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	w, err := zw.Create(arcName)
	if err != nil {
		return fmt.Errorf("adding %s to archive: %w", arcName, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("writing %s to archive: %w", arcName, err)
	}
	return nil
}
