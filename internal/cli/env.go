// Package cli wires the batch, watch, and doctor commands. Commands read
// their dependencies from an Env so tests can swap the environment,
// the ffmpeg lookup, and the gateway clients without touching globals.
package cli

import (
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/joselrodrigues/audiototext/internal/audio"
	"github.com/joselrodrigues/audiototext/internal/batch"
	"github.com/joselrodrigues/audiototext/internal/transcribe"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
type Env struct {
	// Stdout receives the end-of-run summary and diagnostics report.
	Stdout io.Writer

	// Stderr receives progress, warnings, and prompts.
	Stderr io.Writer

	// Stdin supplies answers to confirmation prompts.
	Stdin io.Reader

	// Getenv reads configuration variables.
	Getenv func(key string) string

	// Now returns the current time.
	Now func() time.Time

	// LookPath locates a binary on PATH.
	LookPath func(file string) (string, error)

	// ExtractorFactory creates the video-to-audio extractor.
	ExtractorFactory ExtractorFactory

	// ChunkerFactory creates the audio chunker.
	ChunkerFactory ChunkerFactory

	// TranscriberFactory creates the transcription client.
	TranscriberFactory TranscriberFactory

	// ChatFactory creates the chat client used by the doctor probe.
	ChatFactory ChatFactory
}

// ExtractorFactory creates audio extractors bound to an ffmpeg binary.
type ExtractorFactory interface {
	NewExtractor(ffmpegPath string) (batch.Extractor, error)
}

// ChunkerFactory creates chunkers that split audio to fit the upload
// size limit, reporting progress through the callback.
type ChunkerFactory interface {
	NewChunker(maxSizeMB float64, progress audio.ProgressFunc) audio.Chunker
}

// TranscriberFactory creates transcription clients for a gateway.
type TranscriberFactory interface {
	NewTranscriber(baseURL, apiKey string) transcribe.Transcriber
}

// ChatCompleter is the slice of the chat API the doctor probe needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatFactory creates chat clients for a gateway.
type ChatFactory interface {
	NewChatCompleter(baseURL, apiKey string) ChatCompleter
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the summary output writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) { e.Stdout = w }
}

// WithStderr sets the progress output writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithStdin sets the prompt input reader.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) { e.Stdin = r }
}

// WithGetenv sets the environment variable lookup.
func WithGetenv(fn func(key string) string) EnvOption {
	return func(e *Env) { e.Getenv = fn }
}

// WithNow sets the clock.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) { e.Now = fn }
}

// WithLookPath sets the binary lookup.
func WithLookPath(fn func(file string) (string, error)) EnvOption {
	return func(e *Env) { e.LookPath = fn }
}

// WithExtractorFactory sets the extractor factory.
func WithExtractorFactory(f ExtractorFactory) EnvOption {
	return func(e *Env) { e.ExtractorFactory = f }
}

// WithChunkerFactory sets the chunker factory.
func WithChunkerFactory(f ChunkerFactory) EnvOption {
	return func(e *Env) { e.ChunkerFactory = f }
}

// WithTranscriberFactory sets the transcriber factory.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) { e.TranscriberFactory = f }
}

// WithChatFactory sets the chat client factory.
func WithChatFactory(f ChatFactory) EnvOption {
	return func(e *Env) { e.ChatFactory = f }
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:             os.Stdout,
		Stderr:             os.Stderr,
		Stdin:              os.Stdin,
		Getenv:             os.Getenv,
		Now:                time.Now,
		LookPath:           exec.LookPath,
		ExtractorFactory:   &defaultExtractorFactory{},
		ChunkerFactory:     &defaultChunkerFactory{},
		TranscriberFactory: &defaultTranscriberFactory{},
		ChatFactory:        &defaultChatFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// === Default factory implementations ===

type defaultExtractorFactory struct{}

func (*defaultExtractorFactory) NewExtractor(ffmpegPath string) (batch.Extractor, error) {
	return audio.NewExtractor(ffmpegPath)
}

type defaultChunkerFactory struct{}

func (*defaultChunkerFactory) NewChunker(maxSizeMB float64, progress audio.ProgressFunc) audio.Chunker {
	return audio.NewSizeChunker(maxSizeMB, audio.WithChunkProgress(progress))
}

type defaultTranscriberFactory struct{}

func (*defaultTranscriberFactory) NewTranscriber(baseURL, apiKey string) transcribe.Transcriber {
	return transcribe.NewClient(baseURL, apiKey)
}

type defaultChatFactory struct{}

func (*defaultChatFactory) NewChatCompleter(baseURL, apiKey string) ChatCompleter {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return openai.NewClientWithConfig(cfg)
}

// Compile-time interface verification.
var (
	_ ExtractorFactory   = (*defaultExtractorFactory)(nil)
	_ ChunkerFactory     = (*defaultChunkerFactory)(nil)
	_ TranscriberFactory = (*defaultTranscriberFactory)(nil)
	_ ChatFactory        = (*defaultChatFactory)(nil)
	_ ChatCompleter      = (*openai.Client)(nil)
)
