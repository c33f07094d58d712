package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joselrodrigues/audiototext/internal/format"
	"github.com/joselrodrigues/audiototext/internal/pathsafe"
)

// Compile-time interface implementation check.
var _ Chunker = (*SizeChunker)(nil)

// ChunkThreshold is the audio size above which files are split before
// upload. The gateway rejects bodies over 25MB.
const ChunkThreshold = 25 * 1024 * 1024

// Chunk file naming inside the audio scratch directory.
const (
	chunkNamePattern = "chunk_%03d.wav"
	chunkGlobPattern = "chunk_*.wav"
)

// defaultMaxChunkMB is the planning size when none is configured.
// Well under the gateway's own limit; the gateway is more restrictive
// than the nominal 25MB.
const defaultMaxChunkMB = 0.95

// Chunk represents a segment of audio sliced from a larger file.
// The caller is responsible for cleaning up chunk files after use.
type Chunk struct {
	Path      string        // Absolute path to the chunk file.
	Index     int           // Zero-based index for ordering.
	StartTime time.Duration // Start timestamp in the source audio.
	EndTime   time.Duration // End timestamp in the source audio.
}

// Duration returns the length of this chunk.
func (c Chunk) Duration() time.Duration {
	return c.EndTime - c.StartTime
}

// Chunker splits an audio file into chunks suitable for upload.
type Chunker interface {
	// Chunk slices audioPath into numbered chunk files inside destDir.
	// Returns chunks ordered by their position in the source audio.
	Chunk(ctx context.Context, audioPath, destDir string) ([]Chunk, error)
}

// ProgressFunc is a callback for progress messages during chunking.
// Set to nil to suppress them.
type ProgressFunc func(msg string)

// defaultProgressFunc writes progress to stderr.
func defaultProgressFunc(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// SizeChunker slices a PCM WAV file into fixed-duration chunks sized to
// stay under an upload limit. Slicing is lossless: sample frames are
// copied as-is under a fresh header, never re-encoded or resampled.
type SizeChunker struct {
	maxSizeMB float64
	progress  ProgressFunc

	// Injectable dependencies (defaults to OS implementations).
	statter fileStatter
	files   fileRemover
}

// SizeChunkerOption configures a SizeChunker.
type SizeChunkerOption func(*SizeChunker)

// WithChunkProgress sets a callback for progress messages.
// By default, progress is written to stderr. Set to nil to suppress.
func WithChunkProgress(fn ProgressFunc) SizeChunkerOption {
	return func(sc *SizeChunker) {
		sc.progress = fn
	}
}

// WithChunkerFileStatter sets the file statter for SizeChunker.
func WithChunkerFileStatter(s fileStatter) SizeChunkerOption {
	return func(sc *SizeChunker) {
		sc.statter = s
	}
}

// WithChunkerFileRemover sets the file remover for SizeChunker.
func WithChunkerFileRemover(f fileRemover) SizeChunkerOption {
	return func(sc *SizeChunker) {
		sc.files = f
	}
}

// NewSizeChunker creates a SizeChunker that plans chunks of at most
// maxSizeMB megabytes. Values <= 0 fall back to the default.
func NewSizeChunker(maxSizeMB float64, opts ...SizeChunkerOption) *SizeChunker {
	if maxSizeMB <= 0 {
		maxSizeMB = defaultMaxChunkMB
	}

	sc := &SizeChunker{
		maxSizeMB: maxSizeMB,
		progress:  defaultProgressFunc,
		statter:   osFileStatter{},
		files:     osFileRemover{},
	}

	for _, opt := range opts {
		opt(sc)
	}

	return sc
}

// Chunk slices audioPath into numbered WAV files inside destDir.
//
// Chunk duration is planned from the observed bitrate: the file's size
// per minute of audio determines how many minutes fit in maxSizeMB.
// Every chunk covers chunkLength milliseconds except the final one,
// which covers whatever remains.
func (sc *SizeChunker) Chunk(ctx context.Context, audioPath, destDir string) ([]Chunk, error) {
	fi, err := sc.statter.Stat(audioPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}

	sc.say("  Loading audio file...")

	f, err := os.Open(audioPath) // #nosec G304 -- audioPath comes from the pipeline's own layout
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	defer func() { _ = f.Close() }()

	info, err := ReadInfo(f)
	if err != nil {
		return nil, err
	}

	totalDuration := info.Duration()
	sc.say("  Total audio duration: " + format.Minutes(totalDuration))

	durationMinutes := totalDuration.Minutes()
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: no audio frames", ErrInvalidWAV)
	}

	fileSizeMB := float64(fi.Size()) / (1024 * 1024)
	minutesPerChunk := sc.maxSizeMB / (fileSizeMB / durationMinutes)
	chunkMs := int64(minutesPerChunk * 60 * 1000)
	framesPerChunk := chunkMs * int64(info.SampleRate) / 1000
	if framesPerChunk <= 0 {
		return nil, fmt.Errorf("%w: bitrate too high for %gMB chunks", ErrChunkingFailed, sc.maxSizeMB)
	}

	sc.say(fmt.Sprintf("  Splitting into chunks of %.2f minutes each", minutesPerChunk))

	frameSize := int64(info.FrameSize())
	totalFrames := info.Frames()

	var chunks []Chunk
	for start := int64(0); start < totalFrames; start += framesPerChunk {
		if err := ctx.Err(); err != nil {
			sc.removeChunkFiles(chunks)
			return nil, err
		}

		index := int(start / framesPerChunk)
		frames := min(framesPerChunk, totalFrames-start)

		chunkPath, err := pathsafe.SecureJoin(destDir, fmt.Sprintf(chunkNamePattern, index))
		if err != nil {
			sc.removeChunkFiles(chunks)
			return nil, fmt.Errorf("%w: %v", ErrChunkingFailed, err)
		}

		if err := sc.writeChunk(f, info, start, frames, chunkPath); err != nil {
			sc.removeChunkFiles(chunks)
			return nil, err
		}

		chunk := Chunk{
			Path:      chunkPath,
			Index:     index,
			StartTime: frameTime(start, info.SampleRate),
			EndTime:   frameTime(start+frames, info.SampleRate),
		}
		chunks = append(chunks, chunk)

		sc.say(fmt.Sprintf("  Created chunk %d: %s, %s",
			index+1,
			format.Seconds(chunk.Duration()),
			format.MB(wavHeaderSize+frames*frameSize)))
	}

	return chunks, nil
}

// writeChunk copies frames [start, start+frames) of src into a
// standalone WAV file at path.
func (sc *SizeChunker) writeChunk(src io.ReadSeeker, info Info, start, frames int64, path string) error {
	frameSize := int64(info.FrameSize())
	dataSize := frames * frameSize

	if _, err := src.Seek(info.DataOffset+start*frameSize, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", ErrChunkingFailed, err)
	}

	out, err := os.Create(path) // #nosec G304 -- path validated by pathsafe.SecureJoin
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChunkingFailed, err)
	}

	if err := writeWAVHeader(out, info, uint32(dataSize)); err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: %v", ErrChunkingFailed, err)
	}
	if _, err := io.CopyN(out, src, dataSize); err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: %v", ErrChunkingFailed, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrChunkingFailed, err)
	}
	return nil
}

// removeChunkFiles deletes already-created chunk files after a failure.
func (sc *SizeChunker) removeChunkFiles(chunks []Chunk) {
	for _, c := range chunks {
		_ = sc.files.Remove(c.Path) // best-effort cleanup; original error takes precedence
	}
}

// say emits a progress message when a callback is configured.
func (sc *SizeChunker) say(msg string) {
	if sc.progress != nil {
		sc.progress(msg)
	}
}

// frameTime converts a frame count to its position in the audio.
func frameTime(frames int64, sampleRate int) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

// RemoveChunkFiles deletes every chunk file in dir, including stale ones
// left by earlier interrupted runs. The main audio file is kept.
func RemoveChunkFiles(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, chunkGlobPattern))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return err
		}
	}
	return nil
}
