package transcribe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joselrodrigues/audiototext/internal/pathsafe"
)

// checkpointSuffix names partial transcription files under the
// transcripts root.
const checkpointSuffix = "_partial.md"

// Checkpoint persists partial chunk progress so an interrupted or failed
// run leaves salvageable text behind. The file lives directly under the
// transcripts root, not mirrored into course subdirectories: only one
// video is in flight at a time, and the file is removed on success.
// Resuming from a checkpoint is an operator decision, never automatic.
type Checkpoint struct {
	path string
}

// NewCheckpoint returns the checkpoint location for the named video.
// name must already be sanitized; the join still fails closed on
// traversal.
func NewCheckpoint(transcriptsRoot, name string) (*Checkpoint, error) {
	path, err := pathsafe.SecureJoin(transcriptsRoot, name+checkpointSuffix)
	if err != nil {
		return nil, fmt.Errorf("checkpoint path: %w", err)
	}
	return &Checkpoint{path: path}, nil
}

// Path returns the partial file location.
func (c *Checkpoint) Path() string {
	return c.path
}

// Write replaces the partial file with the texts collected so far,
// labeled done out of total chunks.
func (c *Checkpoint) Write(texts []string, done, total int) error {
	content := fmt.Sprintf("# Transcription (Partial - %d/%d chunks)\n\n%s",
		done, total, strings.Join(texts, " "))
	if err := os.WriteFile(c.path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// Remove deletes the partial file. A missing file is fine: short runs
// may never have saved one.
func (c *Checkpoint) Remove() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}
