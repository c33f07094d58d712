// Package subtitle locates sidecar SRT files next to videos and flattens
// their cue text into plain transcripts.
package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joselrodrigues/audiototext/internal/pathsafe"
)

var (
	// cueTimeRe matches SRT timing lines ("00:01:02,000 --> 00:01:04,500").
	cueTimeRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}[,.]\d{1,3}\s*-->\s*\d{2}:\d{2}:\d{2}[,.]\d{1,3}`)

	// tagRe strips inline markup from cue text (<i>, <font ...>, and so on).
	tagRe = regexp.MustCompile(`<[^>]+>`)
)

// maxCueLine bounds scanner buffering for files with very long cue lines.
const maxCueLine = 1024 * 1024

// FindSidecar looks for an SRT file in the video's directory whose name
// starts with the video's stem. Matching is case-insensitive and entries
// are checked in sorted order, so the same sidecar wins on every run.
// Candidates resolving outside root are ignored.
func FindSidecar(videoPath, root string) (string, bool) {
	dir := filepath.Dir(videoPath)
	base := filepath.Base(videoPath)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	// os.ReadDir returns entries sorted by name.
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if !strings.HasPrefix(name, stem) || !strings.HasSuffix(name, ".srt") {
			continue
		}

		path, err := pathsafe.SecureJoin(dir, entry.Name())
		if err != nil {
			continue
		}
		if !pathsafe.Within(root, path) {
			continue
		}
		return path, true
	}

	return "", false
}

// ExtractText flattens the cue text of the SRT file at path into a single
// space-joined string. Index and timing lines are dropped, markup tags
// are stripped. Files yielding no text at all report ErrNoText.
func ExtractText(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- sidecar paths are validated by FindSidecar
	if err != nil {
		return "", fmt.Errorf("open subtitle file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var parts []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxCueLine)

	for scanner.Scan() {
		line := strings.TrimPrefix(scanner.Text(), "\uFEFF")
		line = strings.TrimSpace(line)
		if line == "" || isCueIndex(line) || cueTimeRe.MatchString(line) {
			continue
		}

		line = strings.ReplaceAll(line, "<br>", " ")
		line = tagRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line != "" {
			parts = append(parts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read subtitle file: %w", err)
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoText, filepath.Base(path))
	}
	return strings.Join(parts, " "), nil
}

// isCueIndex reports whether line is a bare cue sequence number.
func isCueIndex(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
