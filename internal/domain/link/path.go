package link

import (
	"strings"

	apperrors "sharelink-service/pkg/errors"
)

const (
	maxPathLength = 1024

	errPathEmpty       = "path cannot be empty"
	errPathNotAbsolute = "path must start with '/'"
	errPathTooLong     = "path exceeds maximum length"
	errPathEmptySeg    = "path contains an empty segment"
	errPathTraversal   = "path cannot contain '.' or '..' segments"
	errPathControl     = "path cannot contain control characters"
	errPathBackslash   = "path cannot contain backslashes"
)

// NormalizePath canonicalizes a caller-supplied filesystem path.
// Paths are absolute, slash-separated, case-insensitive (stored
// lowercased) and carry no trailing slash except for the root.
func NormalizePath(p string) (string, error) {
	if p == "" {
		return "", apperrors.MalformedPath(errPathEmpty)
	}
	if len(p) > maxPathLength {
		return "", apperrors.MalformedPath(errPathTooLong)
	}
	if strings.ContainsRune(p, '\\') {
		return "", apperrors.MalformedPath(errPathBackslash)
	}
	for _, r := range p {
		if r < 32 || r == 127 {
			return "", apperrors.MalformedPath(errPathControl)
		}
	}
	if !strings.HasPrefix(p, "/") {
		return "", apperrors.MalformedPath(errPathNotAbsolute)
	}
	if p == "/" {
		return "/", nil
	}

	p = strings.TrimSuffix(p, "/")
	for _, seg := range strings.Split(p[1:], "/") {
		switch seg {
		case "":
			return "", apperrors.MalformedPath(errPathEmptySeg)
		case ".", "..":
			return "", apperrors.MalformedPath(errPathTraversal)
		}
	}

	return strings.ToLower(p), nil
}

// Ancestors returns every proper ancestor of a normalized path,
// leaf-first, ending with the root. Ancestors("/a/b/c") yields
// ["/a/b", "/a", "/"].
func Ancestors(p string) []string {
	if p == "/" || p == "" {
		return nil
	}

	var out []string
	for {
		idx := strings.LastIndexByte(p, '/')
		if idx <= 0 {
			out = append(out, "/")
			return out
		}
		p = p[:idx]
		out = append(out, p)
	}
}
