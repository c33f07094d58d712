package batch_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joselrodrigues/audiototext/internal/batch"
)

var docDate = time.Date(2024, 3, 12, 15, 4, 5, 0, time.UTC)

func TestTranscriptDocument(t *testing.T) {
	t.Parallel()

	got := batch.TranscriptDocument("Lecture 1.mp4", "en", 93520*time.Millisecond, docDate, "hello world")
	want := `# Transcription: Lecture 1.mp4

**Original file**: Lecture 1.mp4
**Detected language**: en
**Processing time**: 93.52 seconds
**Date**: 2024-03-12 15:04:05

---

hello world`

	if got != want {
		t.Errorf("transcript document mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestSubtitleDocument(t *testing.T) {
	t.Parallel()

	got := batch.SubtitleDocument("Lecture 1.mp4", "Lecture 1.srt", docDate, "some subtitle text")
	want := `# Subtitles: Lecture 1.mp4

**Original file**: Lecture 1.mp4
**SRT file**: Lecture 1.srt
**Extracted**: 2024-03-12 15:04:05

---

some subtitle text`

	if got != want {
		t.Errorf("subtitle document mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	t.Run("writes content", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "doc.md")

		if err := batch.WriteFileAtomic(path, "content"); err != nil {
			t.Fatalf("WriteFileAtomic() unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading result: %v", err)
		}
		if string(data) != "content" {
			t.Errorf("content = %q, want %q", data, "content")
		}
	})

	t.Run("replaces existing file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "doc.md")
		if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := batch.WriteFileAtomic(path, "new"); err != nil {
			t.Fatalf("WriteFileAtomic() unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "new" {
			t.Errorf("content = %q, want %q", data, "new")
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "doc.md")

		if err := batch.WriteFileAtomic(path, "content"); err != nil {
			t.Fatalf("WriteFileAtomic() unexpected error: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		for _, entry := range entries {
			if strings.Contains(entry.Name(), ".tmp") {
				t.Errorf("temp file left behind: %s", entry.Name())
			}
		}
		if len(entries) != 1 {
			t.Errorf("directory has %d entries, want 1", len(entries))
		}
	})

	t.Run("missing directory errors", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "missing", "doc.md")
		if err := batch.WriteFileAtomic(path, "content"); err == nil {
			t.Error("WriteFileAtomic() expected error for missing directory")
		}
	})
}
