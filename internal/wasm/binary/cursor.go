// Package binary implements the binary module decoder: the byte cursor and
// LEB128 codec, the section iterator, and the entry decoders for every
// binary entity including instructions. Each section's entries are decoded
// eagerly into a slice by decodeVector; no lazy per-entry sequence is
// exposed. The package has no encoder.
package binary

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/WebAssembly/wasp-sub003/internal/leb128"
	"github.com/WebAssembly/wasp-sub003/internal/wasm"
)

// cursor is a forward-only view over a borrowed byte span. It never copies
// the input; every []byte it returns is a subslice of the original buffer,
// so the buffer must outlive any AST built from it.
type cursor struct {
	buf  []byte
	pos  int
	base int // buf[0] corresponds to absolute offset `base` in the original input
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

// subCursor returns a cursor over buf whose absolute offsets continue from
// this cursor's current position, so diagnostics from the sub-span carry
// offsets into the original input.
func (c *cursor) subCursor(buf []byte) *cursor {
	return &cursor{buf: buf, base: c.base + c.pos}
}

func (c *cursor) offset() uint32 { return uint32(c.base + c.pos) }

func (c *cursor) rangeFrom(start uint32) wasm.Range {
	return wasm.Range{Start: start, End: c.offset()}
}

func (c *cursor) remaining() int { return len(c.buf) - c.pos }

func (c *cursor) eof() bool { return c.pos >= len(c.buf) }

// ReadByte implements io.ByteReader, so the leb128 package's Decode* family
// can read directly off a cursor with no allocation.
func (c *cursor) ReadByte() (byte, error) {
	if c.pos >= len(c.buf) {
		return 0, io.EOF
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// readBytes returns the next n bytes as a subslice (no copy) or
// NotEnoughBytes if fewer remain.
func (c *cursor) readBytes(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughBytes, n, c.remaining())
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) readByte() (byte, error) {
	b, err := c.readBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) vu32() (uint32, error) {
	v, _, err := leb128.DecodeUint32(c)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadLeb128, err)
	}
	return v, nil
}

func (c *cursor) vu64() (uint64, error) {
	v, _, err := leb128.DecodeUint64(c)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadLeb128, err)
	}
	return v, nil
}

func (c *cursor) vs32() (int32, error) {
	v, _, err := leb128.DecodeInt32(c)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadLeb128, err)
	}
	return v, nil
}

func (c *cursor) vs33() (int64, error) {
	v, _, err := leb128.DecodeInt33AsInt64(c)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadLeb128, err)
	}
	return v, nil
}

func (c *cursor) vs64() (int64, error) {
	v, _, err := leb128.DecodeInt64(c)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadLeb128, err)
	}
	return v, nil
}

// f32 reads a little-endian IEEE-754 single, returned as raw bits.
func (c *cursor) f32() (uint32, error) {
	b, err := c.readBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// f64 reads a little-endian IEEE-754 double, returned as raw bits.
func (c *cursor) f64() (uint64, error) {
	b, err := c.readBytes(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// name reads a LEB128 length followed by that many raw bytes, validated as
// UTF-8.
func (c *cursor) name() (string, error) {
	n, err := c.vu32()
	if err != nil {
		return "", err
	}
	b, err := c.readBytes(int(n))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadString, err)
	}
	if !isValidUTF8(b) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrBadString)
	}
	return string(b), nil
}

func isValidUTF8(b []byte) bool {
	return utf8.Valid(b)
}
