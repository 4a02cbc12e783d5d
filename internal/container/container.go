// Package container defines the encrypted-file container format: a fixed
// header followed by a sequence of length-delimited ciphertext frames,
// the last of which carries a final-chunk marker.
//
//	container := header frame* final_frame
//	header    := magic:"GSLF" | version:uint8 | alg:uint8
//	frame     := length:uint32(BE) | flags:uint8 | ciphertext:bytes[length]
//
// Bit 0 of flags marks the final frame. Frames are self-delimiting: a
// reader never seeks or buffers past one frame to find the next, and it
// trusts only the explicit per-frame lengths, never the encoder's chunk
// size.
package container

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	containerMagic   = "GSLF"
	containerVersion = byte(1)

	// HeaderSize is the fixed size of the container header.
	HeaderSize = len(containerMagic) + 2

	frameHeaderSize = 5
	flagFinal       = byte(0x01)

	// MaxFrameSize bounds a single frame. Lengths beyond it indicate a
	// corrupt length prefix rather than a legitimately huge chunk.
	MaxFrameSize = 64 << 20

	// MaxChunkSize bounds the plaintext chunk an encoder may frame. The
	// gap to MaxFrameSize absorbs what a frame carries on top of its
	// chunk: the envelope header, per-recipient key wraps, and AEAD tags.
	MaxChunkSize = MaxFrameSize - (1 << 20)
)

// Chunk is one bounded unit of ciphertext (or plaintext, before
// encryption) with its position in the stream.
type Chunk struct {
	// Index is the zero-based sequence number.
	Index uint64

	// Final marks the last chunk of the stream.
	Final bool

	// Data is the chunk payload.
	Data []byte
}

// WriteHeader writes the container header and returns its bytes, which
// callers bind into each chunk's associated data.
func WriteHeader(w io.Writer, algID byte) ([]byte, error) {
	header := make([]byte, 0, HeaderSize)
	header = append(header, containerMagic...)
	header = append(header, containerVersion, algID)

	if _, err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing container header: %w", err)
	}

	return header, nil
}

// ReadHeader reads and validates the container header, returning the
// algorithm identifier and the raw header bytes.
func ReadHeader(r io.Reader) (byte, []byte, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, fmt.Errorf("%w: container header: %w", ErrCorrupt, err)
	}

	if !bytes.Equal(header[:len(containerMagic)], []byte(containerMagic)) {
		return 0, nil, fmt.Errorf("%w: invalid magic", ErrCorrupt)
	}

	if version := header[len(containerMagic)]; version != containerVersion {
		return 0, nil, fmt.Errorf("%w: unsupported container version %d", ErrCorrupt, version)
	}

	return header[len(containerMagic)+1], header, nil
}

// ChunkAAD builds the associated data binding a chunk to its container
// header, sequence index, and final flag, so frames cannot be reordered,
// dropped, or spliced between containers without failing decryption.
func ChunkAAD(header []byte, index uint64, final bool) []byte {
	const indexSize = 8

	aad := make([]byte, len(header)+indexSize+1)
	copy(aad, header)
	binary.BigEndian.PutUint64(aad[len(header):], index)

	if final {
		aad[len(aad)-1] = flagFinal
	}

	return aad
}
