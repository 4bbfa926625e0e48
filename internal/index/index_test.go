package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeSitePackages builds a synthetic site-packages directory with a
// wheel-style dist-info and an egg-info distribution.
func writeSitePackages(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "site-packages")

	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	write("requests/__init__.py", "")
	write("requests/api.py", "")
	write("requests-2.31.0.dist-info/METADATA",
		"Metadata-Version: 2.1\n"+
			"Name: requests\n"+
			"Version: 2.31.0\n"+
			"Requires-Dist: urllib3 (>=1.21.1,<3)\n"+
			"Requires-Dist: certifi (>=2017.4.17)\n"+
			"Requires-Dist: PySocks (!=1.5.7) ; extra == 'socks'\n"+
			"\n"+
			"Requests is an HTTP library.\n")
	write("requests-2.31.0.dist-info/top_level.txt", "requests\n")

	write("six.py", "")
	write("six-1.16.0.egg-info/PKG-INFO",
		"Metadata-Version: 1.1\nName: six\nVersion: 1.16.0\n\nSix description.\n")
	write("six-1.16.0.egg-info/top_level.txt", "six\n")

	// A dist-info without top_level.txt, falling back to RECORD.
	write("idna/__init__.py", "")
	write("idna-3.6.dist-info/METADATA", "Metadata-Version: 2.1\nName: idna\nVersion: 3.6\n\n")
	write("idna-3.6.dist-info/RECORD",
		"idna/__init__.py,sha256=abc,100\n"+
			"idna/core.py,sha256=def,200\n"+
			"idna-3.6.dist-info/METADATA,sha256=ghi,300\n")

	return root
}

func TestBuild(t *testing.T) {
	root := writeSitePackages(t)
	idx, err := Build([]string{root})
	require.NoError(t, err)

	t.Run("lookup dist-info", func(t *testing.T) {
		d, ok := idx.Lookup("requests")
		require.True(t, ok)
		require.Equal(t, "requests", d.Name)
		require.Equal(t, root, d.Location)
		require.Equal(t, []string{"requests"}, d.TopLevel)
		require.Equal(t, []string{"urllib3", "certifi"}, d.Requires)
		require.Equal(t, filepath.Join(root, "requests", "__init__.py"), d.EntryFile)
	})

	t.Run("lookup egg-info", func(t *testing.T) {
		d, ok := idx.Lookup("six")
		require.True(t, ok)
		require.Equal(t, filepath.Join(root, "six.py"), d.EntryFile)
	})

	t.Run("top level fallback to RECORD", func(t *testing.T) {
		d, ok := idx.Lookup("idna")
		require.True(t, ok)
		require.Equal(t, []string{"idna"}, d.TopLevel)
	})

	t.Run("distributions providing", func(t *testing.T) {
		require.Equal(t, []string{"requests"}, idx.DistributionsProviding("requests"))
		require.Empty(t, idx.DistributionsProviding("flask"))
	})

	t.Run("unknown distribution", func(t *testing.T) {
		_, ok := idx.Lookup("flask")
		require.False(t, ok)
	})

	t.Run("names sorted", func(t *testing.T) {
		require.Equal(t, []string{"idna", "requests", "six"}, idx.Names())
	})
}

func TestBuildMissingRootSkipped(t *testing.T) {
	idx, err := Build([]string{filepath.Join(t.TempDir(), "nope")})
	require.NoError(t, err)
	require.Empty(t, idx.Roots())
	require.Empty(t, idx.Names())
}

func TestLocateModule(t *testing.T) {
	root := writeSitePackages(t)
	idx, err := Build([]string{root})
	require.NoError(t, err)

	tests := []struct {
		name   string
		module string
		want   string
		ok     bool
	}{
		{"package init", "requests", "requests/__init__.py", true},
		{"submodule", "requests.api", "requests/api.py", true},
		{"single file module", "six", "six.py", true},
		{"unknown top level", "flask", "", false},
		{"known top level missing submodule", "requests.missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := idx.LocateModule(tt.module, ".so")
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, filepath.Join(root, filepath.FromSlash(tt.want)), got)
			}
		})
	}
}

func TestParseRequiresDist(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"urllib3 (>=1.21.1,<3)", "urllib3", true},
		{"certifi>=2017.4.17", "certifi", true},
		{"idna", "idna", true},
		{`PySocks (!=1.5.7) ; extra == "socks"`, "", false},
		{`chardet ; python_version < "3"`, "chardet", true},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseRequiresDist(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("parseRequiresDist(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
