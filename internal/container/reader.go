package container

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Reader unframes chunks from a container stream in strictly increasing
// sequence order. It is a finite, non-restartable iteration: after the
// final chunk it verifies the stream ends and then reports io.EOF.
type Reader struct {
	br    *bufio.Reader
	index uint64
	done  bool
}

// NewReader returns a Reader positioned after the container header.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Next returns the next chunk in sequence. It returns io.EOF once the
// final chunk has been consumed and ErrCorrupt if a frame extends past
// the available input, the final marker never arrives, or data trails
// the final frame.
func (r *Reader) Next() (Chunk, error) {
	if r.done {
		if _, err := r.br.ReadByte(); err == nil {
			return Chunk{}, fmt.Errorf("%w: trailing data after final chunk", ErrCorrupt)
		} else if !errors.Is(err, io.EOF) {
			return Chunk{}, fmt.Errorf("reading past final chunk: %w", err)
		}

		return Chunk{}, io.EOF
	}

	header := make([]byte, frameHeaderSize)

	if _, err := io.ReadFull(r.br, header); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return Chunk{}, fmt.Errorf("%w: input ended before final chunk", ErrCorrupt)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return Chunk{}, fmt.Errorf("%w: truncated frame header", ErrCorrupt)
		default:
			return Chunk{}, fmt.Errorf("reading frame header: %w", err)
		}
	}

	length := binary.BigEndian.Uint32(header)
	flags := header[frameHeaderSize-1]

	if flags&^flagFinal != 0 {
		return Chunk{}, fmt.Errorf("%w: unknown frame flags %#x", ErrCorrupt, flags)
	}

	if length > MaxFrameSize {
		return Chunk{}, fmt.Errorf("%w: frame length %d exceeds maximum", ErrCorrupt, length)
	}

	data := make([]byte, length)

	if _, err := io.ReadFull(r.br, data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Chunk{}, fmt.Errorf("%w: frame of %d bytes extends past input", ErrCorrupt, length)
		}

		return Chunk{}, fmt.Errorf("reading frame payload: %w", err)
	}

	chunk := Chunk{
		Index: r.index,
		Final: flags&flagFinal != 0,
		Data:  data,
	}

	r.index++

	if chunk.Final {
		r.done = true
	}

	return chunk, nil
}
