package fileutil_test

// Notes:
// - WriteIfChanged write/close/rename failure branches are not tested:
//   triggering them needs a full disk or a racing rename.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-mdblog/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestValidateExtension - Extension validation
// ---------------------------------------------------------------------------

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{
			name:      "valid extension md",
			extension: "md",
			wantErr:   nil,
		},
		{
			name:      "valid extension html",
			extension: "html",
			wantErr:   nil,
		},
		{
			name:      "empty extension",
			extension: "",
			wantErr:   fileutil.ErrExtensionEmpty,
		},
		{
			name:      "forward slash path traversal",
			extension: "../etc/passwd",
			wantErr:   fileutil.ErrExtensionPathTraversal,
		},
		{
			name:      "backslash path traversal",
			extension: "..\\windows\\system32",
			wantErr:   fileutil.ErrExtensionPathTraversal,
		},
		{
			name:      "null byte injection",
			extension: "html\x00exe",
			wantErr:   fileutil.ErrExtensionPathTraversal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fileutil.ValidateExtension(tt.extension)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFileExists - File existence check
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	// Create a test file
	testFile := filepath.Join(tempDir, "test.txt")
	if err := os.WriteFile(testFile, []byte("content"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	// Create a test directory
	testDir := filepath.Join(tempDir, "testdir")
	if err := os.Mkdir(testDir, 0755); err != nil {
		t.Fatalf("failed to create test dir: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{
			name: "existing file returns true",
			path: testFile,
			want: true,
		},
		{
			name: "directory returns false",
			path: testDir,
			want: false,
		},
		{
			name: "nonexistent path returns false",
			path: filepath.Join(tempDir, "nonexistent"),
			want: false,
		},
		{
			name: "empty path returns false",
			path: "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fileutil.FileExists(tt.path)
			if got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsFilePath - File path detection
// ---------------------------------------------------------------------------

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{
			name:  "simple name returns false",
			input: "blog",
			want:  false,
		},
		{
			name:  "relative path with dot-slash returns true",
			input: "./blog.yaml",
			want:  true,
		},
		{
			name:  "parent path returns true",
			input: "../shared/blog.toml",
			want:  true,
		},
		{
			name:  "absolute Unix path returns true",
			input: "/etc/mdblog/blog.yaml",
			want:  true,
		},
		{
			name:  "Windows path with backslash returns true",
			input: "C:\\blog\\config.yaml",
			want:  true,
		},
		{
			name:  "hyphenated name returns false",
			input: "my-blog",
			want:  false,
		},
		{
			name:  "path with subdirectory returns true",
			input: "sub/dir",
			want:  true,
		},
		{
			name:  "empty string returns false",
			input: "",
			want:  false,
		},
		{
			name:  "name with dots but no slash returns false",
			input: "name.with.dots",
			want:  false,
		},
		{
			name:  "underscore name returns false",
			input: "my_blog",
			want:  false,
		},
		{
			name:  "single forward slash returns true",
			input: "/",
			want:  true,
		},
		{
			name:  "single backslash returns true",
			input: "\\",
			want:  true,
		},
		{
			name:  "Windows drive letter path returns true",
			input: "D:/Blog/config.yaml",
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fileutil.IsFilePath(tt.input)
			if got != tt.want {
				t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsURL - URL detection
// ---------------------------------------------------------------------------

func TestIsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{
			name:  "http URL returns true",
			input: "http://example.com",
			want:  true,
		},
		{
			name:  "https URL returns true",
			input: "https://example.com",
			want:  true,
		},
		{
			name:  "file path returns false",
			input: "/path/to/file",
			want:  false,
		},
		{
			name:  "relative path returns false",
			input: "./file.txt",
			want:  false,
		},
		{
			name:  "empty string returns false",
			input: "",
			want:  false,
		},
		{
			name:  "ftp URL returns false",
			input: "ftp://example.com",
			want:  false,
		},
		{
			name:  "HTTP uppercase returns false",
			input: "HTTP://example.com",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fileutil.IsURL(tt.input)
			if got != tt.want {
				t.Errorf("IsURL(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteIfChanged - Conditional writes
// ---------------------------------------------------------------------------

func TestWriteIfChanged(t *testing.T) {
	t.Parallel()

	t.Run("creates file and parent directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a", "b", "index.html")
		written, err := fileutil.WriteIfChanged(path, []byte("<p>hi</p>"))
		if err != nil {
			t.Fatalf("WriteIfChanged() unexpected error: %v", err)
		}
		if !written {
			t.Error("WriteIfChanged() = false, want true for a new file")
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading written file: %v", err)
		}
		if string(got) != "<p>hi</p>" {
			t.Errorf("file content = %q, want %q", got, "<p>hi</p>")
		}
	})

	t.Run("identical content is not rewritten", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "same.txt")
		if err := os.WriteFile(path, []byte("same"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		before, err := os.Stat(path)
		if err != nil {
			t.Fatalf("setup stat: %v", err)
		}

		written, err := fileutil.WriteIfChanged(path, []byte("same"))
		if err != nil {
			t.Fatalf("WriteIfChanged() unexpected error: %v", err)
		}
		if written {
			t.Error("WriteIfChanged() = true, want false for unchanged content")
		}

		after, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if !after.ModTime().Equal(before.ModTime()) {
			t.Error("unchanged file should keep its modification time")
		}
	})

	t.Run("changed content is replaced", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "changed.txt")
		if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		written, err := fileutil.WriteIfChanged(path, []byte("new"))
		if err != nil {
			t.Fatalf("WriteIfChanged() unexpected error: %v", err)
		}
		if !written {
			t.Error("WriteIfChanged() = false, want true for changed content")
		}
		got, _ := os.ReadFile(path)
		if string(got) != "new" {
			t.Errorf("file content = %q, want %q", got, "new")
		}
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if _, err := fileutil.WriteIfChanged(filepath.Join(dir, "out.txt"), []byte("x")); err != nil {
			t.Fatalf("WriteIfChanged() unexpected error: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir: %v", err)
		}
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".tmp") {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
		if len(entries) != 1 {
			t.Errorf("got %d entries, want 1", len(entries))
		}
	})

	t.Run("path under a file fails", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := fileutil.WriteIfChanged(filepath.Join(blocker, "child.txt"), []byte("y"))
		if err == nil {
			t.Error("WriteIfChanged() expected error when parent is a file")
		}
	})
}
