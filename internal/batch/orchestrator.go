// Package batch orchestrates the transcription pipeline over a folder of
// videos: discovery, audio extraction, chunked transcription, and document
// generation. Videos are isolated from each other, so one failure never
// stops the run.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joselrodrigues/audiototext/internal/audio"
	"github.com/joselrodrigues/audiototext/internal/config"
	"github.com/joselrodrigues/audiototext/internal/transcribe"
)

// ExistingPolicy decides what happens to a video whose outputs already
// exist.
type ExistingPolicy int

const (
	// PolicyPrompt asks the user before re-processing. Without a
	// confirmer the video is skipped.
	PolicyPrompt ExistingPolicy = iota

	// PolicySkip silently keeps existing outputs.
	PolicySkip

	// PolicyOverwrite re-processes regardless of existing outputs.
	PolicyOverwrite
)

// ConfirmFunc asks the user a yes/no question and reports the answer.
type ConfirmFunc func(message string) bool

// Extractor converts a video file into a PCM WAV audio file.
type Extractor interface {
	Extract(ctx context.Context, videoPath, audioPath string) error
}

// Orchestrator drives the batch pipeline over the configured folders.
type Orchestrator struct {
	cfg         config.Config
	extractor   Extractor
	chunker     audio.Chunker
	transcriber transcribe.Transcriber
	chunks      *transcribe.ChunkTranscriber
	policy      ExistingPolicy
	confirm     ConfirmFunc
	stderr      io.Writer
	now         func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPolicy sets how videos with existing outputs are handled.
func WithPolicy(p ExistingPolicy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

// WithConfirm sets the prompt used by PolicyPrompt.
func WithConfirm(fn ConfirmFunc) Option {
	return func(o *Orchestrator) { o.confirm = fn }
}

// WithStderr redirects progress output.
func WithStderr(w io.Writer) Option {
	return func(o *Orchestrator) { o.stderr = w }
}

// WithNow overrides the clock, for tests.
func WithNow(fn func() time.Time) Option {
	return func(o *Orchestrator) { o.now = fn }
}

// NewOrchestrator wires a pipeline over the given stages.
func NewOrchestrator(cfg config.Config, extractor Extractor, chunker audio.Chunker, transcriber transcribe.Transcriber, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:         cfg,
		extractor:   extractor,
		chunker:     chunker,
		transcriber: transcriber,
		policy:      PolicyPrompt,
		stderr:      os.Stderr,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.chunks = transcribe.NewChunkTranscriber(transcriber, transcribe.WithProgress(func(msg string) {
		fmt.Fprintln(o.stderr, msg)
	}))
	return o
}

// Run processes every video under the input folder and returns the run
// report. Per-video failures are recorded in the report and the run
// continues; Run itself only fails when the batch cannot proceed at all.
// Cancelling ctx stops the run at the next chunk or video boundary and
// records the unprocessed videos as interrupted.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	videos, err := Discover(o.cfg.InputFolder, o.cfg.VideoFormats, func(msg string) {
		fmt.Fprintln(o.stderr, msg)
	})
	if err != nil {
		report := NewReport(o.now())
		report.FinishedAt = o.now()
		return report, err
	}

	if len(videos) == 0 {
		fmt.Fprintf(o.stderr, "\nNo video files found in '%s' folder.\n", o.cfg.InputFolder)
		fmt.Fprintf(o.stderr, "Supported formats: %s\n", strings.Join(o.cfg.VideoFormats, ", "))
		report := NewReport(o.now())
		report.FinishedAt = o.now()
		return report, nil
	}

	fmt.Fprintf(o.stderr, "\nFound %d video file(s) to process:\n", len(videos))
	for _, v := range videos {
		fmt.Fprintf(o.stderr, "  - %s\n", filepath.Base(v.Path))
	}

	return o.Process(ctx, videos), nil
}

// Process runs the pipeline over an already discovered set of videos and
// returns the run report. Run is discovery plus Process; watch mode
// discovers on its own schedule and calls Process directly.
func (o *Orchestrator) Process(ctx context.Context, videos []Video) *Report {
	report := NewReport(o.now())
	for i, video := range videos {
		if ctx.Err() != nil {
			for _, rest := range videos[i:] {
				report.Add(VideoResult{Video: rest.RelPath, Status: StatusInterrupted})
			}
			break
		}
		report.Add(o.runOne(ctx, video))
	}
	report.FinishedAt = o.now()
	return report
}

// Pending returns the discovered videos that have none of their outputs
// yet. Videos whose output paths cannot be derived are left out, since
// processing them would only fail again.
func (o *Orchestrator) Pending() ([]Video, error) {
	videos, err := Discover(o.cfg.InputFolder, o.cfg.VideoFormats, nil)
	if err != nil {
		return nil, err
	}

	var pending []Video
	for _, video := range videos {
		paths, err := o.pathsFor(video)
		if err != nil {
			continue
		}
		if len(existingOutputs(paths)) == 0 {
			pending = append(pending, video)
		}
	}
	return pending, nil
}

// runOne applies the existing-output policy for one video and processes
// it, converting any failure into a recorded result.
func (o *Orchestrator) runOne(ctx context.Context, video Video) VideoResult {
	base := filepath.Base(video.Path)

	paths, err := o.pathsFor(video)
	if err != nil {
		fmt.Fprintf(o.stderr, "\nError processing %s: %v\n", base, err)
		return VideoResult{Video: video.RelPath, Status: StatusFailed, Error: err.Error()}
	}

	if existing := existingOutputs(paths); len(existing) > 0 {
		switch o.policy {
		case PolicySkip:
			return VideoResult{Video: video.RelPath, Status: StatusSkipped}
		case PolicyOverwrite:
			o.printExisting(base, existing)
			fmt.Fprintf(o.stderr, "Force re-processing %s...\n", base)
		default:
			o.printExisting(base, existing)
			if o.confirm == nil || !o.confirm(fmt.Sprintf("Do you want to re-process '%s'?", base)) {
				fmt.Fprintf(o.stderr, "Skipping %s\n", base)
				return VideoResult{Video: video.RelPath, Status: StatusSkipped}
			}
			fmt.Fprintf(o.stderr, "Re-processing %s...\n", base)
		}
	} else {
		fmt.Fprintf(o.stderr, "\nProcessing %s...\n", base)
	}

	res, err := o.processOne(ctx, video, paths)
	if err != nil {
		res.Error = err.Error()
		if ctx.Err() != nil {
			res.Status = StatusInterrupted
			return res
		}
		fmt.Fprintf(o.stderr, "\nError processing %s: %v\n", base, err)
		res.Status = StatusFailed
		return res
	}
	res.Status = StatusSucceeded
	return res
}

// printExisting lists the outputs already on disk for a video.
func (o *Orchestrator) printExisting(base string, existing []string) {
	fmt.Fprintf(o.stderr, "\nTranscriptions already exist for '%s':\n", base)
	for _, path := range existing {
		fmt.Fprintf(o.stderr, "  - %s\n", relDisplay(path))
	}
}
