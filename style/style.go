package style

import (
	"path/filepath"
	"strings"
)

// RootLabel is the style assigned to files that live directly in the
// corpus root instead of a style directory.
const RootLabel = "ROOT"

// FromRelPath derives the style from a path relative to the corpus
// root: the first directory segment, or RootLabel when there is none.
func FromRelPath(rel string) string {
	rel = filepath.ToSlash(rel)
	if i := strings.Index(rel, "/"); i >= 0 {
		return rel[:i]
	}
	return RootLabel
}

// FromPath derives the style for a path under root.
func FromPath(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return FromRelPath(rel), nil
}

// Partition groups paths under root by style.
func Partition(root string, paths []string) (map[string][]string, error) {
	byStyle := make(map[string][]string)
	for _, path := range paths {
		s, err := FromPath(root, path)
		if err != nil {
			return nil, err
		}
		byStyle[s] = append(byStyle[s], path)
	}
	return byStyle, nil
}
