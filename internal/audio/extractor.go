package audio

import (
	"context"
	"fmt"
	"strconv"
)

// Default extraction parameters. 44.1kHz stereo keeps the full speech
// band; the gateway accepts it without resampling.
const (
	DefaultSampleRate = 44100
	DefaultChannels   = 2
	DefaultBitrate    = "192k"
)

// allowedBitrates guards the -b:a value handed to ffmpeg.
var allowedBitrates = map[string]bool{
	"96k":  true,
	"128k": true,
	"160k": true,
	"192k": true,
	"256k": true,
	"320k": true,
}

// Extractor converts video files to WAV audio through ffmpeg.
type Extractor struct {
	ffmpegPath string
	sampleRate int
	channels   int
	bitrate    string

	// Injectable dependencies (defaults to OS implementations).
	cmd     commandRunner
	statter fileStatter
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithSampleRate sets the output sample rate in Hz. Default: 44100.
func WithSampleRate(hz int) ExtractorOption {
	return func(e *Extractor) {
		e.sampleRate = hz
	}
}

// WithChannels sets the output channel count. Default: 2 (stereo).
func WithChannels(n int) ExtractorOption {
	return func(e *Extractor) {
		e.channels = n
	}
}

// WithBitrate sets the output bitrate passed to ffmpeg. Default: 192k.
func WithBitrate(rate string) ExtractorOption {
	return func(e *Extractor) {
		e.bitrate = rate
	}
}

// WithExtractorCommandRunner sets the command runner for Extractor.
func WithExtractorCommandRunner(r commandRunner) ExtractorOption {
	return func(e *Extractor) {
		e.cmd = r
	}
}

// WithExtractorFileStatter sets the file statter for Extractor.
func WithExtractorFileStatter(s fileStatter) ExtractorOption {
	return func(e *Extractor) {
		e.statter = s
	}
}

// NewExtractor creates an Extractor using the ffmpeg binary at ffmpegPath.
func NewExtractor(ffmpegPath string, opts ...ExtractorOption) (*Extractor, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ErrFFmpegNotFound)
	}

	e := &Extractor{
		ffmpegPath: ffmpegPath,
		sampleRate: DefaultSampleRate,
		channels:   DefaultChannels,
		bitrate:    DefaultBitrate,
		cmd:        osCommandRunner{},
		statter:    osFileStatter{},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidParameter, e.sampleRate)
	}
	if e.channels != 1 && e.channels != 2 {
		return nil, fmt.Errorf("%w: channel count %d, want 1 or 2", ErrInvalidParameter, e.channels)
	}
	if !allowedBitrates[e.bitrate] {
		return nil, fmt.Errorf("%w: bitrate %q", ErrInvalidParameter, e.bitrate)
	}

	return e, nil
}

// Extract converts videoPath to a WAV file at audioPath. The video
// stream is dropped; audio is resampled to the configured rate and
// channel count. Existing output is overwritten.
func (e *Extractor) Extract(ctx context.Context, videoPath, audioPath string) error {
	if _, err := e.statter.Stat(videoPath); err != nil {
		return fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}

	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-ar", strconv.Itoa(e.sampleRate),
		"-ac", strconv.Itoa(e.channels),
		"-b:a", e.bitrate,
		audioPath,
	}

	output, err := e.cmd.CombinedOutput(ctx, e.ffmpegPath, args)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %v\nOutput: %s", ErrExtractionFailed, videoPath, err, string(output))
	}
	return nil
}
