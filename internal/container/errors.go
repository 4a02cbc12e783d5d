package container

import "errors"

// ErrCorrupt indicates the container framing invariant was violated:
// truncated frames, impossible lengths, missing final marker, or
// trailing data after the final frame.
var ErrCorrupt = errors.New("corrupt container")
