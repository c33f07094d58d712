// Package config loads the pipeline configuration from environment
// variables. A .env file in the working directory is loaded by the CLI
// entrypoint before this package reads the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by FromEnv.
const (
	EnvBaseURL           = "BASE_URL"
	EnvAPIKey            = "API_KEY"
	EnvInputFolder       = "INPUT_FOLDER"
	EnvOutputFolder      = "OUTPUT_FOLDER"
	EnvTranscriptsFolder = "TRANSCRIPTS_FOLDER"
	EnvMaxChunkSizeMB    = "MAX_CHUNK_SIZE_MB"
	EnvVideoFormats      = "SUPPORTED_VIDEO_FORMATS"
)

// Defaults applied when the optional variables are unset.
const (
	DefaultInputFolder       = "input_videos"
	DefaultOutputFolder      = "output_audio"
	DefaultTranscriptsFolder = "transcripts"
	DefaultMaxChunkSizeMB    = 0.95
	DefaultVideoFormats      = ".mp4,.avi,.mov,.mkv,.webm,.flv,.wmv"
)

// Config holds the batch pipeline settings.
type Config struct {
	// BaseURL is the transcription gateway root, without a trailing slash.
	BaseURL string

	// APIKey authenticates requests against the gateway.
	APIKey string

	// InputFolder is scanned recursively for video files.
	InputFolder string

	// OutputFolder receives extracted audio, mirroring the input layout.
	OutputFolder string

	// TranscriptsFolder receives transcription documents and checkpoints.
	TranscriptsFolder string

	// MaxChunkSizeMB is the upload size chunks are planned against.
	MaxChunkSizeMB float64

	// VideoFormats lists the recognized video extensions, lowercase with
	// a leading dot.
	VideoFormats []string
}

// FromEnv builds a Config from environment variables via getenv, applying
// defaults for the optional values. getenv is injected so commands can
// run against a test environment; nil falls back to os.Getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := Config{
		BaseURL:           strings.TrimRight(strings.TrimSpace(getenv(EnvBaseURL)), "/"),
		APIKey:            strings.TrimSpace(getenv(EnvAPIKey)),
		InputFolder:       valueOr(getenv(EnvInputFolder), DefaultInputFolder),
		OutputFolder:      valueOr(getenv(EnvOutputFolder), DefaultOutputFolder),
		TranscriptsFolder: valueOr(getenv(EnvTranscriptsFolder), DefaultTranscriptsFolder),
		MaxChunkSizeMB:    DefaultMaxChunkSizeMB,
	}

	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("%s is not set: %w", EnvBaseURL, ErrMissingEnv)
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return Config{}, fmt.Errorf("%s must start with http:// or https://: %w", EnvBaseURL, ErrInvalidEnv)
	}
	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("%s is not set: %w", EnvAPIKey, ErrMissingEnv)
	}

	if raw := strings.TrimSpace(getenv(EnvMaxChunkSizeMB)); raw != "" {
		size, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%s=%q is not a number: %w", EnvMaxChunkSizeMB, raw, ErrInvalidEnv)
		}
		if size <= 0 {
			return Config{}, fmt.Errorf("%s must be positive, got %v: %w", EnvMaxChunkSizeMB, size, ErrInvalidEnv)
		}
		cfg.MaxChunkSizeMB = size
	}

	formats, err := ParseFormats(valueOr(getenv(EnvVideoFormats), DefaultVideoFormats))
	if err != nil {
		return Config{}, err
	}
	cfg.VideoFormats = formats

	return cfg, nil
}

// valueOr returns v unless it is blank.
func valueOr(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

// ParseFormats normalizes a comma-separated extension list: entries are
// trimmed, lowercased, and given a leading dot. Blank entries are dropped.
func ParseFormats(csv string) ([]string, error) {
	var formats []string
	for _, entry := range strings.Split(csv, ",") {
		ext := strings.ToLower(strings.TrimSpace(entry))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		formats = append(formats, ext)
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("%s has no usable extensions: %w", EnvVideoFormats, ErrInvalidEnv)
	}
	return formats, nil
}

// Dirs lists the folders the pipeline reads and writes.
func (c Config) Dirs() []string {
	return []string{c.InputFolder, c.OutputFolder, c.TranscriptsFolder}
}

// EnsureDirs creates the input, audio, and transcripts folders if they
// don't exist yet.
func (c Config) EnsureDirs() error {
	for _, dir := range c.Dirs() {
		if err := os.MkdirAll(dir, 0750); err != nil { // #nosec G301 -- user data dirs
			return fmt.Errorf("cannot create directory %s: %w", dir, err)
		}
	}
	return nil
}
