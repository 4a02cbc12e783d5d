package pipeline

import "errors"

// ErrIO is returned for read, write, or delete failures during a
// pipeline run.
var ErrIO = errors.New("i/o failure")
