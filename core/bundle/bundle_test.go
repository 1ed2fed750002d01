package bundle

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeOutputs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"hymn (C).tex":   "\\documentclass{extarticle}",
		"hymn (Db).tex":  "\\documentclass{extarticle} % Db",
		"hymn (NNS).tex": "1  4  5",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestRoundTrip(t *testing.T) {
	for _, ext := range []string{".tar.gz", ".tar.xz"} {
		t.Run(ext, func(t *testing.T) {
			srcDir := writeOutputs(t)
			dst := filepath.Join(t.TempDir(), "hymn"+ext)

			if err := Create(srcDir, dst); err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			names, err := List(dst)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			sort.Strings(names)
			want := []string{"hymn (C).tex", "hymn (Db).tex", "hymn (NNS).tex"}
			if len(names) != len(want) {
				t.Fatalf("List = %v, want %v", names, want)
			}
			for i := range want {
				if names[i] != want[i] {
					t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
				}
			}

			content, err := ReadFile(dst, "hymn (NNS).tex")
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if string(content) != "1  4  5" {
				t.Errorf("content = %q", content)
			}
		})
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"out/hymn.tar.gz", "hymn"},
		{"hymn.tar.xz", "hymn"},
		{"hymn.zip", ""},
		{"hymn", ""},
	}
	for _, tt := range tests {
		if got := Stem(tt.path); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCreateRejectsUnknownFormat(t *testing.T) {
	srcDir := writeOutputs(t)
	if err := Create(srcDir, filepath.Join(t.TempDir(), "hymn.zip")); err == nil {
		t.Error("Create should reject unknown formats")
	}
}

func TestReadFileMissing(t *testing.T) {
	srcDir := writeOutputs(t)
	dst := filepath.Join(t.TempDir(), "hymn.tar.gz")
	if err := Create(srcDir, dst); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := ReadFile(dst, "absent.tex"); err == nil {
		t.Error("ReadFile should fail for a missing entry")
	}
}
