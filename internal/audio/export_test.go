package audio

// Export internal identifiers for testing.
// This file is only compiled during tests (suffix _test.go).

// WriteWAVHeader exports writeWAVHeader for testing.
var WriteWAVHeader = writeWAVHeader

// FrameTime exports frameTime for testing.
var FrameTime = frameTime

// --- Dependency injection exports ---

// CommandRunner exports commandRunner interface for testing.
type CommandRunner = commandRunner

// FileStatter exports fileStatter interface for testing.
type FileStatter = fileStatter

// FileRemover exports fileRemover interface for testing.
type FileRemover = fileRemover
