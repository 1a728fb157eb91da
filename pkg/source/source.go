// Package source resolves the profile configuration given on the command
// line. The value is either literal JSON or a path to a file holding it.
//
// A value is treated as a path when it starts with "./", "/" or "~/", or ends
// with ".json". If such a file cannot be read the value is used as literal
// text instead, and the result counts as not coming from a file. Callers
// that must not guess use ReadFile.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var pathPrefixes = []string{"./", "/", "~/"}

// Source is resolved configuration text and the file it came from, if any
type Source struct {
	Content string
	Path    string
}

// LooksLikePath reports whether value should be tried as a file path
func LooksLikePath(value string) bool {
	for _, prefix := range pathPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return strings.HasSuffix(value, ".json")
}

// Resolve returns the file contents when value looks like a readable path,
// and the literal value otherwise. It never fails.
func Resolve(value string) Source {
	if !LooksLikePath(value) {
		return Source{Content: value}
	}
	src, err := ReadFile(value)
	if err != nil {
		return Source{Content: value}
	}
	return src
}

// ReadFile reads path, expanding a leading "~/" to the home directory
func ReadFile(path string) (Source, error) {
	expanded, err := ExpandHome(path)
	if err != nil {
		return Source{}, err
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return Source{}, fmt.Errorf("failed to read config file: %w", err)
	}

	return Source{Content: string(data), Path: expanded}, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	return filepath.Join(home, path[2:]), nil
}

// FromFile reports whether the content was read from a file
func (s Source) FromFile() bool {
	return s.Path != ""
}

// BaseName is the file name without directory and extension, or "" for
// literal content. "configs/home.json" gives "home".
func (s Source) BaseName() string {
	if !s.FromFile() {
		return ""
	}
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPath replaces the file's extension with ext, or returns "" for
// literal content. "configs/home.json" with ".bpf" gives "configs/home.bpf".
func (s Source) OutputPath(ext string) string {
	if !s.FromFile() {
		return ""
	}
	return strings.TrimSuffix(s.Path, filepath.Ext(s.Path)) + ext
}
