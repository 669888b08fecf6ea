package gamedata

import (
	"fmt"
	"strings"
)

// MaxPathLength is the longest logical path the game accepts.
const MaxPathLength = 259

// PathError reports a malformed logical or package-relative path.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// GamePath is a normalized logical path inside the base asset store.
type GamePath string

// String returns the path as a plain string.
func (p GamePath) String() string {
	return string(p)
}

// NewGamePath normalizes raw into a GamePath.
// Backslashes become forward slashes, the result is lowercased and a leading
// slash is stripped. Empty, relative-traversal or non-ASCII paths are rejected.
func NewGamePath(raw string) (GamePath, error) {
	cleaned, err := cleanPath(raw)
	if err != nil {
		return "", err
	}
	return GamePath(strings.ToLower(cleaned)), nil
}

// MustGamePath is NewGamePath for constant inputs; it panics on error.
func MustGamePath(raw string) GamePath {
	p, err := NewGamePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// RelPath is a file path relative to a package folder. Case is preserved.
type RelPath string

// String returns the path as a plain string.
func (p RelPath) String() string {
	return string(p)
}

// NewRelPath normalizes raw into a RelPath that cannot escape its package.
func NewRelPath(raw string) (RelPath, error) {
	cleaned, err := cleanPath(raw)
	if err != nil {
		return "", err
	}
	return RelPath(cleaned), nil
}

func cleanPath(raw string) (string, error) {
	p := strings.TrimSpace(strings.ReplaceAll(raw, "\\", "/"))
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "", &PathError{Path: raw, Reason: "empty"}
	}
	if len(p) > MaxPathLength {
		return "", &PathError{Path: raw, Reason: fmt.Sprintf("longer than %d characters", MaxPathLength)}
	}
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c < 0x20 || c > 0x7e {
			return "", &PathError{Path: raw, Reason: "contains non-printable or non-ASCII characters"}
		}
		if c == ':' {
			return "", &PathError{Path: raw, Reason: "drive or scheme prefix"}
		}
	}
	segments := strings.Split(p, "/")
	for _, seg := range segments {
		switch seg {
		case "":
			return "", &PathError{Path: raw, Reason: "empty segment"}
		case ".", "..":
			return "", &PathError{Path: raw, Reason: "relative segment"}
		}
	}
	return p, nil
}
