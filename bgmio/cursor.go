// Package bgmio provides the fixed-endian, seekable byte primitives that
// every layer of the BGM codec reads and writes through. All multi-byte
// scalars in the format are big-endian, unlike the little-endian eDSK
// format this package's conventions were first worked out against.
package bgmio

import (
	"errors"
	"fmt"
)

// ErrTruncated is returned (possibly wrapped) when a read runs past the end
// of the underlying buffer.
var ErrTruncated = errors.New("bgmio: truncated")

// ErrOffsetOutOfRange is returned when a Seek or Skip target falls outside
// the buffer.
var ErrOffsetOutOfRange = errors.New("bgmio: offset out of range")

// Reader is a forward-or-random-access cursor over an in-memory byte slice.
// It never copies the underlying slice; callers must not mutate it while a
// Reader is in use.
type Reader struct {
	data []byte
	pos  uint32
}

// NewReader wraps data for sequential or random-access big-endian reads.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the current absolute read offset.
func (r *Reader) Pos() uint32 { return r.pos }

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int { return len(r.data) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - int(r.pos) }

// Seek moves the cursor to an absolute offset.
func (r *Reader) Seek(pos uint32) error {
	if int(pos) > len(r.data) {
		return fmt.Errorf("seek to %#x: %w", pos, ErrOffsetOutOfRange)
	}
	r.pos = pos
	return nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	return r.Seek(r.pos + uint32(n))
}

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("need %d bytes at %#x, have %d: %w", n, r.pos, r.Remaining(), ErrTruncated)
	}
	return nil
}

// ReadBytes returns the next n bytes and advances the cursor. The returned
// slice aliases the underlying buffer; callers that need to retain it
// across further decoding must copy it.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+uint32(n)]
	r.pos += uint32(n)
	return b, nil
}

// PeekBytes is like ReadBytes but does not advance the cursor.
func (r *Reader) PeekBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	return r.data[r.pos : r.pos+uint32(n)], nil
}

// ReadU8 reads one byte.
func (r *Reader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

// ReadU16 reads a big-endian 16-bit value.
func (r *Reader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := uint16(r.data[r.pos])<<8 | uint16(r.data[r.pos+1])
	r.pos += 2
	return v, nil
}

// ReadU24 reads a big-endian 24-bit value into the low 24 bits of a uint32.
func (r *Reader) ReadU24() (uint32, error) {
	if err := r.need(3); err != nil {
		return 0, err
	}
	v := uint32(r.data[r.pos])<<16 | uint32(r.data[r.pos+1])<<8 | uint32(r.data[r.pos+2])
	r.pos += 3
	return v, nil
}

// ReadU32 reads a big-endian 32-bit value.
func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := uint32(r.data[r.pos])<<24 | uint32(r.data[r.pos+1])<<16 | uint32(r.data[r.pos+2])<<8 | uint32(r.data[r.pos+3])
	r.pos += 4
	return v, nil
}

// ExpectAlignPad consumes bytes up to the next multiple of modulus and
// reports whether every consumed byte was zero. A false return is not an
// error on its own — padding is conventionally zero but callers that round
// trip a file with non-zero padding should still tolerate it — but it lets
// strict callers log or reject it.
func (r *Reader) ExpectAlignPad(modulus int) (allZero bool, err error) {
	rem := int(r.pos) % modulus
	if rem == 0 {
		return true, nil
	}
	n := modulus - rem
	b, err := r.ReadBytes(n)
	if err != nil {
		return false, err
	}
	for _, v := range b {
		if v != 0 {
			return false, nil
		}
	}
	return true, nil
}
