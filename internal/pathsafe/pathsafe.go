// Package pathsafe confines derived filesystem paths to their base
// directories. Video filenames and directory names come from outside the
// program, so every path built from them goes through SecureJoin,
// SanitizeFilename, or ValidateComponent before it touches the disk.
package pathsafe

import (
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// maxNameLen caps sanitized filenames to stay well under common
// filesystem limits once suffixes like "_partial.md" are appended.
const maxNameLen = 100

// unnamedFallback replaces filenames that sanitize down to nothing.
const unnamedFallback = "unnamed"

var (
	// unsafeCharRe matches everything outside the sanitized alphabet.
	unsafeCharRe = regexp.MustCompile(`[^a-z0-9_-]`)

	// hyphenRunRe collapses the replacement hyphens unsafeCharRe produces.
	hyphenRunRe = regexp.MustCompile(`-+`)
)

// dangerousPatterns are substrings never allowed in a path component.
var dangerousPatterns = []string{"..", "/", "\\", "\x00", "~"}

// windowsReserved are device names Windows claims regardless of extension.
var windowsReserved = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
	"com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
	"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

// SecureJoin joins parts onto base and guarantees the result stays inside
// base. It returns ErrUnsafePath when the cleaned path climbs out of base,
// or when an existing path resolves through a symlink to somewhere outside.
func SecureJoin(base string, parts ...string) (string, error) {
	baseAbs, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolve base %s: %w", base, err)
	}

	joined := filepath.Join(append([]string{baseAbs}, parts...)...)
	if !within(baseAbs, joined) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, filepath.Join(parts...))
	}

	// Lexical containment is not enough once symlinks exist on disk.
	if resolved, err := filepath.EvalSymlinks(joined); err == nil {
		resolvedBase, err := filepath.EvalSymlinks(baseAbs)
		if err != nil {
			return "", fmt.Errorf("resolve base %s: %w", base, err)
		}
		if !within(resolvedBase, resolved) {
			return "", fmt.Errorf("%w: %s resolves outside %s", ErrUnsafePath, filepath.Join(parts...), base)
		}
	}

	return joined, nil
}

// within reports whether path equals base or sits beneath it.
func within(base, path string) bool {
	return path == base || strings.HasPrefix(path, base+string(filepath.Separator))
}

// Within reports whether path sits inside base after both are made
// absolute. Purely lexical; callers needing symlink resolution should
// build the path with SecureJoin instead.
func Within(base, path string) bool {
	baseAbs, err := filepath.Abs(base)
	if err != nil {
		return false
	}
	pathAbs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return within(baseAbs, pathAbs)
}

// SanitizeFilename converts an arbitrary filename into a safe directory or
// file stem: extension stripped, lowercased, unsafe characters replaced by
// hyphens. Names carrying traversal sequences or separators are rejected
// outright rather than repaired.
func SanitizeFilename(name string) (string, error) {
	if err := rejectUnsafe(name); err != nil {
		return "", err
	}
	return sanitize(strings.TrimSuffix(name, filepath.Ext(name))), nil
}

// SanitizeDirName sanitizes a directory name with the same rules but keeps
// dots as ordinary characters instead of treating the tail as an extension,
// so "Course.2024" becomes "course-2024" rather than "course".
func SanitizeDirName(name string) (string, error) {
	if err := rejectUnsafe(name); err != nil {
		return "", err
	}
	return sanitize(name), nil
}

func rejectUnsafe(name string) error {
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	return nil
}

func sanitize(stem string) string {
	s := strings.ToLower(stem)
	s = unsafeCharRe.ReplaceAllString(s, "-")
	s = hyphenRunRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		return unnamedFallback
	}
	if len(s) > maxNameLen {
		s = s[:maxNameLen]
	}
	return s
}

// ValidateComponent rejects a single path component that carries traversal
// sequences, separators, a NUL byte, or a home-directory reference. On
// Windows it additionally rejects reserved device names.
func ValidateComponent(part string) error {
	return validateComponent(part, runtime.GOOS)
}

func validateComponent(part, goos string) error {
	if part == "" {
		return fmt.Errorf("%w: empty", ErrUnsafeComponent)
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(part, pattern) {
			return fmt.Errorf("%w: %q", ErrUnsafeComponent, part)
		}
	}
	if goos == "windows" {
		stem := part
		if idx := strings.IndexByte(part, '.'); idx != -1 {
			stem = part[:idx]
		}
		if windowsReserved[strings.ToLower(stem)] {
			return fmt.Errorf("%w: %q is a reserved device name", ErrUnsafeComponent, part)
		}
	}
	return nil
}
