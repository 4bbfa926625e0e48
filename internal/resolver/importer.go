package resolver

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// ImportFolder bulk-adds every file under root whose directory is not
// excluded and whose extension is not excluded, without import-graph
// analysis. Excluded directories are pruned before descent; their contents
// are never visited. Folder exclusions are doublestar glob patterns matched
// against the directory name.
func (r *Resolver) ImportFolder(root string, excludedFolders, excludedExtensions []string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving folder path %s: %w", root, err)
	}

	return filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != absRoot && matchesAny(excludedFolders, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		for _, ext := range excludedExtensions {
			if filepath.Ext(path) == ext {
				return nil
			}
		}
		r.addFile(path)
		return nil
	})
}

func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
