package schemareg

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// skipDirs are never descended into while matching patterns.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// readFile returns the content of p, or false when it does not exist.
func readFile(fs billy.Filesystem, p string) ([]byte, bool, error) {
	data, err := util.ReadFile(fs, p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", p, err)
	}
	return data, true, nil
}

// isDir reports whether p exists and is a directory.
func isDir(fs billy.Filesystem, p string) (bool, error) {
	info, err := fs.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", p, err)
	}
	return info.IsDir(), nil
}

// listDir returns the regular files directly under dir whose names match
// pattern, as slash paths in sorted order. ok is false when dir is absent.
func listDir(fs billy.Filesystem, dir, pattern string) (files []string, ok bool, err error) {
	if ok, err := isDir(fs, dir); err != nil || !ok {
		return nil, false, err
	}
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, false, fmt.Errorf("list %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		matched, err := doublestar.Match(pattern, e.Name())
		if err != nil {
			return nil, false, fmt.Errorf("match %s: %w", pattern, err)
		}
		if matched {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, true, nil
}

// walkMatch returns files below base whose path relative to base matches
// pattern, sorted. A missing base yields no files.
func walkMatch(fs billy.Filesystem, base, pattern string) ([]string, error) {
	if ok, err := isDir(fs, base); err != nil || !ok {
		return nil, err
	}

	var files []string
	err := util.Walk(fs, base, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		p = filepath.ToSlash(p)
		if info.IsDir() {
			if p != base && skipDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, base), "/")
		if base == "." || base == "" {
			rel = p
		}
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			return err
		}
		if matched {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", base, err)
	}
	sort.Strings(files)
	return files, nil
}

// globFiles expands root-relative patterns into a sorted, de-duplicated list.
func globFiles(fs billy.Filesystem, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		base, rest := doublestar.SplitPattern(pattern)
		matches, err := walkMatch(fs, base, rest)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			seen[m] = true
		}
	}
	return sortedKeys(seen), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
