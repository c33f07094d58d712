package pathsafe

import "errors"

// ErrUnsafePath indicates a joined path would escape its base directory.
var ErrUnsafePath = errors.New("path traversal attempt detected")

// ErrUnsafeName indicates a filename contains traversal sequences or separators.
var ErrUnsafeName = errors.New("invalid filename")

// ErrUnsafeComponent indicates a path component contains a dangerous pattern
// or is a reserved device name.
var ErrUnsafeComponent = errors.New("invalid path component")
