package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joselrodrigues/audiototext/internal/audio"
	"github.com/joselrodrigues/audiototext/internal/cli"
	"github.com/joselrodrigues/audiototext/internal/config"
	"github.com/joselrodrigues/audiototext/internal/interrupt"
	"github.com/joselrodrigues/audiototext/internal/pathsafe"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitGeneral       = 1
	ExitUsage         = 2
	ExitSetup         = 3
	ExitValidation    = 4
	ExitBatchFailures = 6
	ExitInterrupt     = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// The interrupt handler owns SIGINT/SIGTERM: the first press cancels
	// ctx for a graceful drain, a quick second press aborts.
	handler, ctx := interrupt.NewHandler(context.Background())
	defer handler.Stop()

	// Create the CLI environment with production defaults.
	env := cli.DefaultEnv()

	// Root command.
	rootCmd := &cobra.Command{
		Use:     "audiototext",
		Short:   "Transcribe lecture videos into markdown documents",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Subcommands.
	rootCmd.AddCommand(cli.BatchCmd(env))
	rootCmd.AddCommand(cli.WatchCmd(env))
	rootCmd.AddCommand(cli.DoctorCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to process exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Interrupts first: a cancelled run may also carry failure counts,
	// and 130 is the more truthful exit.
	if errors.Is(err, cli.ErrInterrupted) || errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	// Cobra doesn't expose typed errors, so we check for known error message patterns.
	// These patterns are stable across Cobra versions (tested with v1.8+).
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3): the environment is not ready.
	if errors.Is(err, config.ErrMissingEnv) || errors.Is(err, config.ErrInvalidEnv) ||
		errors.Is(err, audio.ErrFFmpegNotFound) || errors.Is(err, cli.ErrChecksFailed) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4): the input is not usable.
	if errors.Is(err, pathsafe.ErrUnsafePath) || errors.Is(err, pathsafe.ErrUnsafeName) ||
		errors.Is(err, pathsafe.ErrUnsafeComponent) || errors.Is(err, audio.ErrInvalidParameter) ||
		errors.Is(err, audio.ErrInvalidWAV) || errors.Is(err, audio.ErrFileNotFound) ||
		errors.Is(err, audio.ErrChunkingFailed) {
		return ExitValidation
	}

	// Batch outcome (ExitBatchFailures = 6): the run finished but some
	// videos failed. Gateway errors stay inside the per-video isolation,
	// so they surface here rather than as their own code.
	if errors.Is(err, cli.ErrBatchFailures) {
		return ExitBatchFailures
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// These patterns are stable across Cobra versions (tested with v1.8+).
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
