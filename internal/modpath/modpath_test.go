package modpath

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestToModulePath(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		module string
		want   string
	}{
		{"fully implied", "pkg/sub", "pkg.sub.mod", "mod"},
		{"no shared prefix", "pkg", "other.mod", "other.mod"},
		{"partial prefix", "pkg/sub", "pkg.other.mod", "other.mod"},
		{"package only", "pkg", "pkg.mod", "mod"},
		{"junk prefix stripped", "./pkg/sub", "pkg.sub.mod", "mod"},
		{"parent junk stripped", "../pkg/sub", "pkg.sub.mod", "mod"},
		{"base with filename", "pkg/sub/main.py", "pkg.sub.mod", "mod"},
		{"empty base", "", "other.mod", "other.mod"},
		{"mismatch after package", "pkg/lib", "pkg.sub.mod", "sub.mod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToModulePath(filepath.FromSlash(tt.base), tt.module)
			if got != tt.want {
				t.Errorf("ToModulePath(%q, %q) = %q, want %q", tt.base, tt.module, got, tt.want)
			}
		})
	}
}

func TestDistributionName(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
		ok   bool
	}{
		{"inside site-packages", "/venv/lib/site-packages/requests/api.py", "requests", true},
		{"single file in site-packages is standalone", "/venv/lib/site-packages/six.py", "", false},
		{"marker last segment", "/venv/lib/site-packages", "", false},
		{"local file", "/home/user/app/main.py", "", false},
		{"nested module", "/opt/py/site-packages/urllib3/util/retry.py", "urllib3", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DistributionName(filepath.FromSlash(tt.path))
			if got != tt.want || ok != tt.ok {
				t.Errorf("DistributionName(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestStripJunk(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"./a/b", []string{"a", "b"}},
		{"../a", []string{"a"}},
		{"../../a/b", []string{"a", "b"}},
		{"a/b", []string{"a", "b"}},
		{".", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := StripJunk(filepath.FromSlash(tt.path))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("StripJunk(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFileModulePath(t *testing.T) {
	tests := []struct {
		name string
		root string
		file string
		want string
	}{
		{"plain module", "/app", "/app/pkg/sub/mod.py", "pkg.sub.mod"},
		{"package initializer", "/app", "/app/pkg/__init__.py", "pkg"},
		{"top level", "/app", "/app/main.py", "main"},
		{"compiled module", "/app", "/app/pkg/native.so", "pkg.native"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FileModulePath(filepath.FromSlash(tt.root), filepath.FromSlash(tt.file))
			if got != tt.want {
				t.Errorf("FileModulePath(%q, %q) = %q, want %q", tt.root, tt.file, got, tt.want)
			}
		})
	}
}

func TestResolveRelative(t *testing.T) {
	tests := []struct {
		name    string
		current string
		level   int
		module  string
		want    string
	}{
		{"current package", "pkg.sub.mod", 1, "", "pkg.sub"},
		{"sibling module", "pkg.sub.mod", 1, "util", "pkg.sub.util"},
		{"parent package", "pkg.sub.mod", 2, "other", "pkg.other"},
		{"absolute untouched", "pkg.sub.mod", 0, "requests", "requests"},
		{"beyond top returns name", "mod", 2, "x", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRelative(tt.current, tt.level, tt.module)
			if got != tt.want {
				t.Errorf("ResolveRelative(%q, %d, %q) = %q, want %q", tt.current, tt.level, tt.module, got, tt.want)
			}
		})
	}
}

func TestSitePackagesRoot(t *testing.T) {
	root, ok := SitePackagesRoot(filepath.FromSlash("/venv/lib/site-packages/requests/api.py"))
	if !ok || root != filepath.FromSlash("/venv/lib/site-packages") {
		t.Errorf("SitePackagesRoot = (%q, %v), want (%q, true)", root, ok, "/venv/lib/site-packages")
	}

	if _, ok := SitePackagesRoot(filepath.FromSlash("/home/app/main.py")); ok {
		t.Error("SitePackagesRoot matched a local path")
	}
}
