package audio

import "errors"

// ErrFFmpegNotFound indicates no usable ffmpeg binary was found.
var ErrFFmpegNotFound = errors.New("ffmpeg not found")

// ErrExtractionFailed indicates FFmpeg failed to extract audio from a video.
var ErrExtractionFailed = errors.New("audio extraction failed")

// ErrChunkingFailed indicates audio chunking failed.
var ErrChunkingFailed = errors.New("audio chunking failed")

// ErrInvalidWAV indicates a file is not a readable PCM WAV.
var ErrInvalidWAV = errors.New("invalid WAV file")

// ErrInvalidParameter indicates an unusable extraction parameter.
var ErrInvalidParameter = errors.New("invalid extraction parameter")

// ErrFileNotFound indicates the specified input file does not exist.
var ErrFileNotFound = errors.New("file not found")
