package filesystem

import "strings"

// SplitPath splits a slash-separated path into its non-empty segment names.
// A leading slash is ignored, consecutive slashes collapse and a trailing
// slash is ignored, so "/a//b/" and "a/b" yield the same segments.
// "/" and "" yield no segments and denote the root.
func SplitPath(path string) []string {
	parts := strings.Split(path, "/")
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// SplitLast splits a path into its parent path and final segment, stripping
// a single trailing slash first: "/tmp/x.txt" -> ("/tmp", "x.txt") and
// "/tmp/x/" -> ("/tmp", "x"). A path with no parent returns ("", name).
func SplitLast(path string) (parent, name string) {
	path = strings.TrimSuffix(path, "/")
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}
