package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/joselrodrigues/audiototext/internal/audio"
	"github.com/joselrodrigues/audiototext/internal/batch"
	"github.com/joselrodrigues/audiototext/internal/config"
)

// watchDebounce is how long after the last filesystem event a pass
// starts. Copying a video into the folder fires a burst of events; the
// pause lets the file finish arriving before ffmpeg reads it.
const watchDebounce = 2 * time.Second

// defaultWatchInterval is the fallback rescan period for changes the
// watcher misses, such as files appearing on network mounts.
const defaultWatchInterval = 30 * time.Second

// WatchCmd creates the watch command.
// The env parameter provides injectable dependencies for testing.
func WatchCmd(env *Env) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the input folder and transcribe new videos",
		Long: `Watch the input folder and transcribe videos as they appear.

Videos that already have transcriptions are left alone, so the watcher
can sit next to a folder that fills up over time. A periodic rescan
catches anything the filesystem watcher misses. Videos that fail are not
retried until the file changes on disk.`,
		Example: `  audiototext watch
  audiototext watch --interval 5m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), env, interval, watchDebounce)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", defaultWatchInterval, "Fallback rescan period")

	return cmd
}

// runWatch processes pending videos whenever the input folder settles,
// until ctx is cancelled.
func runWatch(ctx context.Context, env *Env, interval, debounce time.Duration) error {
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

	// 3. Rescan period
	if interval <= 0 {
		return fmt.Errorf("invalid --interval %s: must be positive", interval)
	}

	// 4. Folder structure
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	orch, err := newOrchestrator(env, cfg, ffmpegPath, batch.PolicySkip)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create filesystem watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchTree(watcher, cfg.InputFolder); err != nil {
		return fmt.Errorf("watch input folder: %w", err)
	}

	fmt.Fprintf(env.Stderr, "Watching '%s' for new videos... (press Ctrl+C to stop)\n", cfg.InputFolder)

	state := newWatchState()

	// The armed timer runs the initial pass; afterwards every event
	// re-arms it so a pass starts once the folder goes quiet.
	pass := time.NewTimer(0)
	defer pass.Stop()
	rescan := time.NewTicker(interval)
	defer rescan.Stop()

	for {
		select {
		case <-ctx.Done():
			return ErrInterrupted

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				// Watches are not recursive; cover new subdirectories.
				if err := watchTree(watcher, event.Name); err != nil {
					fmt.Fprintf(env.Stderr, "Warning: cannot watch %s: %v\n", event.Name, err)
				}
			}
			if !pass.Stop() {
				select {
				case <-pass.C:
				default:
				}
			}
			pass.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(env.Stderr, "Warning: watch error: %v\n", err)

		case <-pass.C:
			if err := runWatchPass(ctx, env, cfg, orch, state); err != nil {
				return err
			}

		case <-rescan.C:
			if err := runWatchPass(ctx, env, cfg, orch, state); err != nil {
				return err
			}
		}
	}
}

// runWatchPass processes the videos that still have no outputs. Only an
// interrupt ends the watch; anything else is reported and the watcher
// keeps going.
func runWatchPass(ctx context.Context, env *Env, cfg config.Config, orch *batch.Orchestrator, state *watchState) error {
	if ctx.Err() != nil {
		return ErrInterrupted
	}

	pending, err := orch.Pending()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: scan failed: %v\n", err)
		return nil
	}
	pending = state.filter(pending)
	if len(pending) == 0 {
		return nil
	}

	fmt.Fprintf(env.Stderr, "\nFound %d new video file(s) to process:\n", len(pending))
	for _, v := range pending {
		fmt.Fprintf(env.Stderr, "  - %s\n", filepath.Base(v.Path))
	}

	report := orch.Process(ctx, pending)
	state.record(pending, report)

	if _, err := report.Save(cfg.TranscriptsFolder); err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to save run report: %v\n", err)
	}
	fmt.Fprint(env.Stdout, report.Summary(cfg.TranscriptsFolder, cfg.OutputFolder))

	if ctx.Err() != nil {
		return ErrInterrupted
	}
	return nil
}

// watchTree adds root and every directory below it to the watcher.
func watchTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

// watchState remembers failed videos so a broken file is not retried on
// every pass, only after it changes on disk.
type watchState struct {
	failedAt map[string]time.Time // video path to its mtime at last failure
}

func newWatchState() *watchState {
	return &watchState{failedAt: make(map[string]time.Time)}
}

// filter drops videos that failed earlier and have not changed since.
func (s *watchState) filter(videos []batch.Video) []batch.Video {
	var keep []batch.Video
	for _, v := range videos {
		if failedMod, ok := s.failedAt[v.Path]; ok {
			if info, err := os.Stat(v.Path); err == nil && info.ModTime().Equal(failedMod) {
				continue
			}
		}
		keep = append(keep, v)
	}
	return keep
}

// record updates the failure ledger from a finished pass.
func (s *watchState) record(videos []batch.Video, report *batch.Report) {
	byRel := make(map[string]batch.Video, len(videos))
	for _, v := range videos {
		byRel[v.RelPath] = v
	}
	for _, res := range report.Videos {
		v, ok := byRel[res.Video]
		if !ok {
			continue
		}
		switch res.Status {
		case batch.StatusFailed:
			if info, err := os.Stat(v.Path); err == nil {
				s.failedAt[v.Path] = info.ModTime()
			}
		case batch.StatusSucceeded:
			delete(s.failedAt, v.Path)
		}
	}
}
