// Package fileutil provides the filesystem helpers around generation:
// input discovery, recursive copying, and a line-level tree differ used
// by the end-to-end tests.
package fileutil

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ListFiles walks root recursively and returns the relative paths of all
// regular files, sorted. Platform housekeeping files (.DS_Store) are
// skipped.
func ListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Name() == ".DS_Store" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// CopyDir recursively copies the contents of src into dst, creating dst
// as needed.
func CopyDir(src, dst string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := CopyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	return out.Close()
}

// ---------------------------------------------------------------------------
// Tree diffing
// ---------------------------------------------------------------------------

// Diff is one differing line between two files. Line numbers are
// 1-based; a side that ran out of lines reports the empty string.
type Diff struct {
	Line  int
	Left  string
	Right string
}

// DirDiff is one difference between two trees: either a path mismatch
// (a relative path present on one side only, or paired up differently),
// or a shared path whose content differs line by line.
type DirDiff struct {
	// Left and Right are relative paths; empty when that side has no
	// counterpart.
	Left  string
	Right string
	// Diffs is non-empty for content mismatches.
	Diffs []Diff
}

// CompareFiles compares two files line by line. Lines are compared with
// surrounding whitespace trimmed, so CRLF and LF trees compare equal.
// A nil result means the files match.
func CompareFiles(path1, path2 string) ([]Diff, error) {
	lines1, err := readLines(path1)
	if err != nil {
		return nil, err
	}
	lines2, err := readLines(path2)
	if err != nil {
		return nil, err
	}

	var diffs []Diff
	for i := 0; i < len(lines1) || i < len(lines2); i++ {
		var l1, l2 string
		if i < len(lines1) {
			l1 = lines1[i]
		}
		if i < len(lines2) {
			l2 = lines2[i]
		}
		if l1 != l2 {
			diffs = append(diffs, Diff{Line: i + 1, Left: l1, Right: l2})
		}
	}
	return diffs, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, trimEOLSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}

func trimEOLSpace(s string) string {
	for len(s) > 0 {
		c := s[len(s)-1]
		if c != '\r' && c != ' ' && c != '\t' {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}

// CompareDirs compares two trees path by path and line by line. Both
// file lists are sorted and walked pairwise; a nil result means the
// trees match.
func CompareDirs(dir1, dir2 string) ([]DirDiff, error) {
	paths1, err := ListFiles(dir1)
	if err != nil {
		return nil, err
	}
	paths2, err := ListFiles(dir2)
	if err != nil {
		return nil, err
	}

	var diffs []DirDiff
	for i := 0; i < len(paths1) || i < len(paths2); i++ {
		switch {
		case i >= len(paths1):
			diffs = append(diffs, DirDiff{Right: paths2[i]})
		case i >= len(paths2):
			diffs = append(diffs, DirDiff{Left: paths1[i]})
		case paths1[i] != paths2[i]:
			diffs = append(diffs, DirDiff{Left: paths1[i], Right: paths2[i]})
		default:
			fileDiffs, err := CompareFiles(filepath.Join(dir1, paths1[i]), filepath.Join(dir2, paths2[i]))
			if err != nil {
				return nil, err
			}
			if len(fileDiffs) > 0 {
				diffs = append(diffs, DirDiff{Left: paths1[i], Right: paths2[i], Diffs: fileDiffs})
			}
		}
	}
	return diffs, nil
}

// FormatDirDiffs renders tree differences for log output.
func FormatDirDiffs(diffs []DirDiff) string {
	var out string
	for i, d := range diffs {
		switch {
		case len(d.Diffs) > 0:
			out += fmt.Sprintf("%d. %s: content differs\n", i+1, d.Left)
			for _, fd := range d.Diffs {
				out += fmt.Sprintf("   line %d: %q != %q\n", fd.Line, fd.Left, fd.Right)
			}
		case d.Left == "":
			out += fmt.Sprintf("%d. only in right tree: %s\n", i+1, d.Right)
		case d.Right == "":
			out += fmt.Sprintf("%d. only in left tree: %s\n", i+1, d.Left)
		default:
			out += fmt.Sprintf("%d. paths differ: %s != %s\n", i+1, d.Left, d.Right)
		}
	}
	return out
}
