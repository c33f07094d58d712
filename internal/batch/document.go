package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joselrodrigues/audiototext/internal/format"
)

// documentTimeLayout stamps generated documents.
const documentTimeLayout = "2006-01-02 15:04:05"

// transcriptDocument renders the markdown document saved for a transcription.
// videoName is the original filename with its extension.
func transcriptDocument(videoName, language string, elapsed time.Duration, date time.Time, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transcription: %s\n\n", videoName)
	fmt.Fprintf(&b, "**Original file**: %s\n", videoName)
	fmt.Fprintf(&b, "**Detected language**: %s\n", language)
	fmt.Fprintf(&b, "**Processing time**: %s\n", format.Seconds(elapsed))
	fmt.Fprintf(&b, "**Date**: %s\n\n", date.Format(documentTimeLayout))
	b.WriteString("---\n\n")
	b.WriteString(text)
	return b.String()
}

// subtitleDocument renders the markdown document saved for extracted
// sidecar subtitles.
func subtitleDocument(videoName, srtName string, date time.Time, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Subtitles: %s\n\n", videoName)
	fmt.Fprintf(&b, "**Original file**: %s\n", videoName)
	fmt.Fprintf(&b, "**SRT file**: %s\n", srtName)
	fmt.Fprintf(&b, "**Extracted**: %s\n\n", date.Format(documentTimeLayout))
	b.WriteString("---\n\n")
	b.WriteString(text)
	return b.String()
}

// writeFileAtomic writes content through a temp file in the same directory
// so a crash never leaves a half-written document at path.
func writeFileAtomic(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil { // #nosec G302 -- standard document permissions
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
