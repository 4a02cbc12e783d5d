package container

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Writer frames ciphertext chunks onto an output stream. Chunks must be
// written in strictly increasing sequence order, ending with exactly one
// final chunk.
type Writer struct {
	w     io.Writer
	index uint64
	done  bool
}

// NewWriter returns a Writer framing onto w. The container header must
// already have been written via WriteHeader.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrame appends one framed chunk. The chunk's index must match the
// writer's position; no frame may follow the final chunk.
func (w *Writer) WriteFrame(chunk Chunk) error {
	if w.done {
		return fmt.Errorf("frame after final chunk")
	}

	if chunk.Index != w.index {
		return fmt.Errorf("chunk index %d out of order, want %d", chunk.Index, w.index)
	}

	if len(chunk.Data) > MaxFrameSize {
		return fmt.Errorf("chunk of %d bytes exceeds maximum frame size", len(chunk.Data))
	}

	header := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint32(header, uint32(len(chunk.Data))) //nolint:gosec // bounded by MaxFrameSize

	if chunk.Final {
		header[frameHeaderSize-1] = flagFinal
	}

	if _, err := w.w.Write(header); err != nil {
		return fmt.Errorf("writing frame header: %w", err)
	}

	if _, err := w.w.Write(chunk.Data); err != nil {
		return fmt.Errorf("writing frame payload: %w", err)
	}

	w.index++

	if chunk.Final {
		w.done = true
	}

	return nil
}

// Closed reports whether the final chunk has been written.
func (w *Writer) Closed() bool { return w.done }
