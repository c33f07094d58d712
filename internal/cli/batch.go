package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joselrodrigues/audiototext/internal/audio"
	"github.com/joselrodrigues/audiototext/internal/batch"
	"github.com/joselrodrigues/audiototext/internal/config"
)

// BatchCmd creates the batch command.
// The env parameter provides injectable dependencies for testing.
func BatchCmd(env *Env) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Transcribe every video in the input folder",
		Long: `Transcribe every video found under the input folder.

Each video is converted to WAV audio, transcribed through the configured
gateway, and saved as a markdown document. Audio above the upload size
limit is split into chunks and transcribed piece by piece with checkpoint
saves, so an interrupted run resumes where it stopped. Sidecar .srt files
become companion subtitle documents.

Settings come from the environment (a .env file is loaded when present):
BASE_URL, API_KEY, INPUT_FOLDER, OUTPUT_FOLDER, TRANSCRIPTS_FOLDER,
MAX_CHUNK_SIZE_MB, SUPPORTED_VIDEO_FORMATS.`,
		Example: `  audiototext batch
  audiototext batch --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), env, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing transcriptions without asking")

	return cmd
}

// runBatch executes the batch pipeline: discover videos, extract audio,
// transcribe, and write documents, then print the run summary.
func runBatch(ctx context.Context, env *Env, force bool) error {
	fmt.Fprintf(env.Stderr, "=== Batch Video Transcription Tool ===\n\n")
	if force {
		fmt.Fprintf(env.Stderr, "Force mode: Will overwrite existing transcriptions without asking\n\n")
	}

	// === VALIDATION (fail-fast) ===

	// 1. Configuration from the environment
	cfg, err := config.FromEnv(env.Getenv)
	if err != nil {
		return err
	}

	// 2. ffmpeg on PATH
	ffmpegPath, err := env.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("%w: install ffmpeg and make sure it is on PATH", audio.ErrFFmpegNotFound)
	}

	// 3. Folder structure
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "Folder structure ready: %s\n", strings.Join(cfg.Dirs(), ", "))

	policy := batch.PolicyPrompt
	if force {
		policy = batch.PolicyOverwrite
	}
	orch, err := newOrchestrator(env, cfg, ffmpegPath, policy)
	if err != nil {
		return err
	}

	report, err := orch.Run(ctx)
	if err != nil {
		return err
	}
	if report.Total == 0 {
		return nil
	}

	// The console summary is the user-facing record; the saved report
	// is for tooling, so losing it is only worth a warning.
	if _, err := report.Save(cfg.TranscriptsFolder); err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to save run report: %v\n", err)
	}
	fmt.Fprint(env.Stdout, report.Summary(cfg.TranscriptsFolder, cfg.OutputFolder))

	if report.Interrupted > 0 {
		return fmt.Errorf("%w: %d video(s) left unprocessed", ErrInterrupted, report.Interrupted)
	}
	if report.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrBatchFailures, report.Failed, report.Total)
	}
	return nil
}

// newOrchestrator assembles the pipeline from the environment's
// factories. Prompts and chunking progress go to stderr, keeping stdout
// clean for the summary.
func newOrchestrator(env *Env, cfg config.Config, ffmpegPath string, policy batch.ExistingPolicy) (*batch.Orchestrator, error) {
	extractor, err := env.ExtractorFactory.NewExtractor(ffmpegPath)
	if err != nil {
		return nil, err
	}
	chunker := env.ChunkerFactory.NewChunker(cfg.MaxChunkSizeMB, func(msg string) {
		fmt.Fprintln(env.Stderr, msg)
	})
	transcriber := env.TranscriberFactory.NewTranscriber(cfg.BaseURL, cfg.APIKey)

	return batch.NewOrchestrator(cfg, extractor, chunker, transcriber,
		batch.WithPolicy(policy),
		batch.WithConfirm(func(message string) bool {
			return Confirm(env.Stdin, env.Stderr, message)
		}),
		batch.WithStderr(env.Stderr),
		batch.WithNow(env.Now),
	), nil
}
