package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joselrodrigues/audiototext/internal/audio"
	"github.com/joselrodrigues/audiototext/internal/lang"
)

// defaultSaveFrequency is how many chunks are transcribed between
// checkpoint saves.
const defaultSaveFrequency = 10

// ProgressFunc is a callback for progress messages during chunked
// transcription. Set to nil to suppress them.
type ProgressFunc func(msg string)

// defaultProgressFunc writes progress to stderr.
func defaultProgressFunc(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// ChunkTranscriber feeds audio chunks to a Transcriber strictly in file
// order, one at a time, checkpointing progress along the way. Sequential
// submission keeps the partial file meaningful: every save is a clean
// prefix of the final transcript, never a transcript with holes.
type ChunkTranscriber struct {
	transcriber   Transcriber
	saveFrequency int
	progress      ProgressFunc
}

// ChunkTranscriberOption configures a ChunkTranscriber.
type ChunkTranscriberOption func(*ChunkTranscriber)

// WithSaveFrequency sets how many chunks pass between checkpoint saves.
// Values < 1 are ignored.
func WithSaveFrequency(n int) ChunkTranscriberOption {
	return func(ct *ChunkTranscriber) {
		if n >= 1 {
			ct.saveFrequency = n
		}
	}
}

// WithProgress sets a callback for progress messages.
// By default, progress is written to stderr. Set to nil to suppress.
func WithProgress(fn ProgressFunc) ChunkTranscriberOption {
	return func(ct *ChunkTranscriber) {
		ct.progress = fn
	}
}

// NewChunkTranscriber creates a ChunkTranscriber around t.
func NewChunkTranscriber(t Transcriber, opts ...ChunkTranscriberOption) *ChunkTranscriber {
	ct := &ChunkTranscriber{
		transcriber:   t,
		saveFrequency: defaultSaveFrequency,
		progress:      defaultProgressFunc,
	}
	for _, opt := range opts {
		opt(ct)
	}
	return ct
}

// TranscribeAll transcribes chunks in order and returns the combined
// transcript with the majority language across chunks.
//
// Progress is checkpointed to cp every saveFrequency chunks and after
// the final chunk. On a chunk failure or cancellation, whatever
// completed is checkpointed before the error propagates; the checkpoint
// is removed only when every chunk succeeded.
func (ct *ChunkTranscriber) TranscribeAll(ctx context.Context, chunks []audio.Chunk, cp *Checkpoint) (Result, error) {
	texts := make([]string, 0, len(chunks))
	var votes lang.Tally

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			ct.saveFailure(cp, texts, i, len(chunks))
			return Result{}, err
		}

		res, err := ct.transcriber.Transcribe(ctx, chunk.Path)
		if err != nil {
			ct.say(fmt.Sprintf("\n  Error transcribing chunk %s: %v", chunk.Path, err))
			ct.saveFailure(cp, texts, i, len(chunks))
			return Result{}, fmt.Errorf("chunk %d (%s): %w", chunk.Index, filepath.Base(chunk.Path), err)
		}

		texts = append(texts, res.Text)
		votes.Add(res.Language)
		ct.say(fmt.Sprintf("  Transcribed chunk %d/%d", i+1, len(chunks)))

		if (i+1)%ct.saveFrequency == 0 || i+1 == len(chunks) {
			if err := cp.Write(texts, i+1, len(chunks)); err != nil {
				return Result{}, err
			}
		}
	}

	if err := cp.Remove(); err != nil {
		return Result{}, err
	}

	return Result{Text: strings.Join(texts, " "), Language: votes.Majority()}, nil
}

// saveFailure checkpoints whatever completed before a failure. Nothing
// is written when no chunk finished: an empty partial file has nothing
// to salvage.
func (ct *ChunkTranscriber) saveFailure(cp *Checkpoint, texts []string, done, total int) {
	if len(texts) == 0 {
		return
	}
	_ = cp.Write(texts, done, total) // best-effort; the chunk error takes precedence
}

// say emits a progress message when a callback is configured.
func (ct *ChunkTranscriber) say(msg string) {
	if ct.progress != nil {
		ct.progress(msg)
	}
}
