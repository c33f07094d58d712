package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joselrodrigues/audiototext/internal/audio"
	"github.com/joselrodrigues/audiototext/internal/format"
	"github.com/joselrodrigues/audiototext/internal/pathsafe"
	"github.com/joselrodrigues/audiototext/internal/subtitle"
	"github.com/joselrodrigues/audiototext/internal/transcribe"
)

// videoPaths collects the derived output locations for one video.
type videoPaths struct {
	name       string // sanitized stem shared by every output name
	audioDir   string // per-video directory holding the wav and its chunks
	audioFile  string
	transcript string
	subtitles  string
}

// pathsFor derives the output layout for a video. Outputs mirror the input
// directory structure with every path component sanitized, so the same
// video always maps to the same locations.
func (o *Orchestrator) pathsFor(video Video) (videoPaths, error) {
	name, err := pathsafe.SanitizeFilename(filepath.Base(video.RelPath))
	if err != nil {
		return videoPaths{}, err
	}

	audioBase := o.cfg.OutputFolder
	transcriptBase := o.cfg.TranscriptsFolder
	if relDir := filepath.Dir(video.RelPath); relDir != "." {
		for _, part := range strings.Split(relDir, string(filepath.Separator)) {
			dir, err := pathsafe.SanitizeDirName(part)
			if err != nil {
				return videoPaths{}, err
			}
			if audioBase, err = pathsafe.SecureJoin(audioBase, dir); err != nil {
				return videoPaths{}, err
			}
			if transcriptBase, err = pathsafe.SecureJoin(transcriptBase, dir); err != nil {
				return videoPaths{}, err
			}
		}
	}

	p := videoPaths{name: name}
	if p.audioDir, err = pathsafe.SecureJoin(audioBase, name); err != nil {
		return videoPaths{}, err
	}
	if p.audioFile, err = pathsafe.SecureJoin(p.audioDir, name+".wav"); err != nil {
		return videoPaths{}, err
	}
	if p.transcript, err = pathsafe.SecureJoin(transcriptBase, name+".md"); err != nil {
		return videoPaths{}, err
	}
	if p.subtitles, err = pathsafe.SecureJoin(transcriptBase, name+"-subtitles.md"); err != nil {
		return videoPaths{}, err
	}
	return p, nil
}

// existingOutputs returns the documents already on disk for a video, in
// the order they are listed to the user.
func existingOutputs(p videoPaths) []string {
	var existing []string
	for _, path := range []string{p.transcript, p.subtitles} {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	return existing
}

// relDisplay shortens p relative to the working directory for listing
// output, matching how the configured folders are usually written.
func relDisplay(p string) string {
	wd, err := os.Getwd()
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(wd, p)
	if err != nil {
		return p
	}
	return rel
}

// processOne runs the pipeline for a single video: audio extraction,
// transcription (chunked when the audio exceeds the upload threshold), and
// document generation, plus sidecar subtitle extraction when present.
func (o *Orchestrator) processOne(ctx context.Context, video Video, paths videoPaths) (VideoResult, error) {
	res := VideoResult{Video: video.RelPath}
	videoName := filepath.Base(video.Path)

	fmt.Fprintf(o.stderr, "\nProcessing: %s\n", video.RelPath)
	fmt.Fprintf(o.stderr, "  Sanitized name: %s\n", paths.name)

	srtPath, hasSRT := subtitle.FindSidecar(video.Path, o.cfg.InputFolder)
	if hasSRT {
		fmt.Fprintf(o.stderr, "  Found SRT file: %s\n", filepath.Base(srtPath))
	}

	if err := os.MkdirAll(paths.audioDir, 0750); err != nil {
		return res, fmt.Errorf("create audio directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(paths.transcript), 0750); err != nil {
		return res, fmt.Errorf("create transcript directory: %w", err)
	}

	if _, err := os.Stat(paths.audioFile); err == nil {
		fmt.Fprintln(o.stderr, "  Audio file already exists, skipping conversion")
	} else {
		fmt.Fprintln(o.stderr, "  Converting video to audio...")
		if err := o.extractor.Extract(ctx, video.Path, paths.audioFile); err != nil {
			return res, err
		}
	}

	info, err := os.Stat(paths.audioFile)
	if err != nil {
		fmt.Fprintln(o.stderr, "  Failed to create audio file")
		return res, ErrAudioNotCreated
	}
	fmt.Fprintf(o.stderr, "  Audio file size: %s\n", format.MB(info.Size()))

	var (
		result  transcribe.Result
		elapsed time.Duration
	)
	if info.Size() > audio.ChunkThreshold {
		fmt.Fprintln(o.stderr, "  Audio file is larger than 25MB, splitting into chunks...")
		chunks, err := o.chunker.Chunk(ctx, paths.audioFile, paths.audioDir)
		if err != nil {
			return res, err
		}
		fmt.Fprintf(o.stderr, "  Created %d chunks\n", len(chunks))

		cp, err := transcribe.NewCheckpoint(o.cfg.TranscriptsFolder, paths.name)
		if err != nil {
			return res, err
		}
		start := o.now()
		result, err = o.chunks.TranscribeAll(ctx, chunks, cp)
		if err != nil {
			return res, err
		}
		elapsed = o.now().Sub(start)
	} else {
		fmt.Fprintln(o.stderr, "  Transcribing audio...")
		start := o.now()
		result, err = o.transcriber.Transcribe(ctx, paths.audioFile)
		if err != nil {
			return res, err
		}
		elapsed = o.now().Sub(start)
	}
	fmt.Fprintf(o.stderr, "  Transcription completed in %s\n", format.Seconds(elapsed))
	fmt.Fprintf(o.stderr, "  Detected language: %s\n", result.Language)

	doc := transcriptDocument(videoName, result.Language, elapsed, o.now(), result.Text)
	if err := writeFileAtomic(paths.transcript, doc); err != nil {
		return res, err
	}
	fmt.Fprintf(o.stderr, "  Transcription saved to: %s\n", paths.transcript)

	res.Transcript = paths.transcript
	res.Language = result.Language
	res.Elapsed = elapsed.Seconds()

	if hasSRT {
		o.processSubtitles(srtPath, videoName, paths, &res)
	}

	// Chunks are only needed until their transcriptions land in the
	// document. The wav itself stays for future re-runs.
	if err := audio.RemoveChunkFiles(paths.audioDir); err != nil {
		fmt.Fprintf(o.stderr, "Warning: failed to cleanup chunks: %v\n", err)
	}
	return res, nil
}

// processSubtitles extracts sidecar subtitle text into its own document.
// Subtitle problems never fail the video, they only print.
func (o *Orchestrator) processSubtitles(srtPath, videoName string, paths videoPaths, res *VideoResult) {
	fmt.Fprintln(o.stderr, "  Processing SRT file...")

	text, err := subtitle.ExtractText(srtPath)
	if err != nil {
		if !errors.Is(err, subtitle.ErrNoText) {
			fmt.Fprintf(o.stderr, "    Error reading SRT file: %v\n", err)
		}
		fmt.Fprintln(o.stderr, "  Failed to extract text from SRT file")
		return
	}

	doc := subtitleDocument(videoName, filepath.Base(srtPath), o.now(), text)
	if err := writeFileAtomic(paths.subtitles, doc); err != nil {
		fmt.Fprintf(o.stderr, "  Warning: failed to save subtitle text: %v\n", err)
		return
	}
	fmt.Fprintf(o.stderr, "  SRT text saved to: %s\n", paths.subtitles)
	res.Subtitles = paths.subtitles
}
