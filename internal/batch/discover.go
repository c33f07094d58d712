package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joselrodrigues/audiototext/internal/pathsafe"
)

// Video is one input file found under the input folder.
type Video struct {
	// Path is the absolute path to the video file.
	Path string

	// RelPath is the path relative to the input folder. The output
	// layout mirrors it.
	RelPath string
}

// Discover walks root recursively and returns every regular file whose
// extension is listed in exts, sorted by path. Files that fail path
// validation are reported through warn and skipped instead of failing
// the walk.
func Discover(root string, exts []string, warn func(msg string)) ([]Video, error) {
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = true
	}

	var videos []Video
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !allowed[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		safe, err := pathsafe.SecureJoin(root, rel)
		if err != nil {
			warnf(warn, "Skipping invalid file: %v", err)
			return nil
		}
		info, err := os.Stat(safe)
		if err != nil {
			warnf(warn, "Skipping invalid file: %v", err)
			return nil
		}
		if !info.Mode().IsRegular() {
			warnf(warn, "Skipping invalid file: not a regular file: %s", rel)
			return nil
		}

		videos = append(videos, Video{Path: safe, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover videos: %w", err)
	}

	slices.SortFunc(videos, func(a, b Video) int {
		return strings.Compare(a.Path, b.Path)
	})
	return videos, nil
}

func warnf(warn func(msg string), format string, args ...any) {
	if warn != nil {
		warn(fmt.Sprintf(format, args...))
	}
}
