package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/serverlesspack/slspack/internal/manifest"
)

func TestArchiveName(t *testing.T) {
	tests := []struct {
		name    string
		rootDir string
		path    string
		want    string
	}{
		{"distribution file", "/app", "/venv/site-packages/requests/api.py", "requests/api.py"},
		{"local file", "/app", "/app/pkg/mod.py", "pkg/mod.py"},
		{"root file", "/app", "/app/root.py", "root.py"},
		{"outside root falls back to base", "/app", "/elsewhere/thing.py", "thing.py"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ArchiveName(filepath.FromSlash(tt.rootDir), filepath.FromSlash(tt.path))
			if got != tt.want {
				t.Errorf("ArchiveName(%q, %q) = %q, want %q", tt.rootDir, tt.path, got, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) string {
		t.Helper()
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	rootFile := write("app/root.py", "import helpers\n")
	helperFile := write("app/helpers.py", "import requests\n")
	distFile := write("venv/site-packages/requests/__init__.py", "")

	zipPath := filepath.Join(root, "dist", "build.zip")
	m := &manifest.Manifest{
		RootDir: filepath.Join(root, "app"),
		Files:   []string{rootFile, helperFile, distFile},
	}
	require.NoError(t, Build(zipPath, m))

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	contents := make(map[string]string)
	for _, f := range zr.File {
		names = append(names, f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		contents[f.Name] = string(data)
	}
	sort.Strings(names)

	require.Equal(t, []string{"helpers.py", "requests/__init__.py", "root.py"}, names)
	require.Equal(t, "import helpers\n", contents["root.py"])
}

func TestBuildReplacesExistingArchive(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "root.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0644))

	zipPath := filepath.Join(root, "build.zip")
	require.NoError(t, os.WriteFile(zipPath, []byte("not a zip"), 0644))

	m := &manifest.Manifest{RootDir: root, Files: []string{file}}
	require.NoError(t, Build(zipPath, m))

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 1)
	require.Equal(t, "root.py", zr.File[0].Name)
}

func TestBuildMissingFileFails(t *testing.T) {
	root := t.TempDir()
	m := &manifest.Manifest{
		RootDir: root,
		Files:   []string{filepath.Join(root, "gone.py")},
	}
	err := Build(filepath.Join(root, "build.zip"), m)
	require.Error(t, err)
	require.NoFileExists(t, filepath.Join(root, "build.zip"))
}
