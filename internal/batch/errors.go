package batch

import "errors"

// ErrAudioNotCreated indicates the extractor returned without error but no
// audio file appeared on disk.
var ErrAudioNotCreated = errors.New("audio file was not created")
