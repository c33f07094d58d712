package subtitle

import "errors"

// ErrNoText indicates an SRT file contained no usable cue text.
var ErrNoText = errors.New("no subtitle text")
