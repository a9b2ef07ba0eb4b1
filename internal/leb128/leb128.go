// Package leb128 encodes and decodes the LEB128 variable-length integer
// format used throughout the WebAssembly binary format: unsigned and signed
// variants, in both 32 and 64-bit widths.
//
// Decoding rejects "overlong" encodings: the spec requires that the extra
// bits carried by the final byte of a value are a sign or zero extension of
// the value itself, so a reader can tell a malformed stream from a merely
// large one.
package leb128

import (
	"fmt"
	"io"
)

// EncodeUint32 encodes v as unsigned LEB128.
func EncodeUint32(v uint32) []byte {
	return EncodeUint64(uint64(v))
}

// EncodeUint64 encodes v as unsigned LEB128.
func EncodeUint64(v uint64) (ret []byte) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		ret = append(ret, b)
		if v == 0 {
			return
		}
	}
}

// EncodeInt32 encodes v as signed LEB128.
func EncodeInt32(v int32) []byte {
	return EncodeInt64(int64(v))
}

// EncodeInt64 encodes v as signed LEB128.
func EncodeInt64(v int64) (ret []byte) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			ret = append(ret, b)
			return
		}
		ret = append(ret, b|0x80)
	}
}

// maxVarintLen32 bounds an unsigned or signed 32-bit LEB128 stream: 32 bits
// take at most 5 groups of 7.
const maxVarintLen32 = 5

// maxVarintLen33 bounds the 33-bit signed values used for block types and
// other i33 immediates.
const maxVarintLen33 = 5

// maxVarintLen64 bounds an unsigned or signed 64-bit LEB128 stream.
const maxVarintLen64 = 10

// LoadUint32 decodes an unsigned 32-bit LEB128 value from b, returning the
// value and the number of bytes consumed.
func LoadUint32(b []byte) (ret uint32, bytesRead uint64, err error) {
	v, n, err := loadUint(b, 32, maxVarintLen32)
	return uint32(v), n, err
}

// LoadUint64 decodes an unsigned 64-bit LEB128 value from b.
func LoadUint64(b []byte) (ret uint64, bytesRead uint64, err error) {
	return loadUint(b, 64, maxVarintLen64)
}

func loadUint(b []byte, width uint, maxBytes int) (ret uint64, bytesRead uint64, err error) {
	var shift uint
	for i := 0; i < maxBytes; i++ {
		if i >= len(b) {
			err = io.ErrUnexpectedEOF
			return
		}
		c := b[i]
		if i == maxBytes-1 {
			// The final byte may only carry the remaining value bits; any
			// higher bit is an overlong encoding.
			remaining := width - shift
			mask := byte(0xff) << remaining
			if remaining < 7 && c&mask != 0 {
				err = fmt.Errorf("invalid LEB128 encoding: too many bits at byte %d", i)
				return
			}
		}
		ret |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			bytesRead = uint64(i + 1)
			return
		}
		shift += 7
	}
	err = fmt.Errorf("invalid LEB128 encoding: exceeded %d bytes", maxBytes)
	return
}

// LoadInt32 decodes a signed 32-bit LEB128 value from b.
func LoadInt32(b []byte) (ret int32, bytesRead uint64, err error) {
	v, n, err := loadInt(b, 32, maxVarintLen32)
	return int32(v), n, err
}

// LoadInt64 decodes a signed 64-bit LEB128 value from b.
func LoadInt64(b []byte) (ret int64, bytesRead uint64, err error) {
	return loadInt(b, 64, maxVarintLen64)
}

func loadInt(b []byte, width uint, maxBytes int) (ret int64, bytesRead uint64, err error) {
	var shift uint
	var c byte
	var i int
	for i = 0; i < maxBytes; i++ {
		if i >= len(b) {
			err = io.ErrUnexpectedEOF
			return
		}
		c = b[i]
		if i == maxBytes-1 {
			remaining := width - shift
			signExtended := int8(c<<(8-remaining)) >> (8 - remaining)
			if remaining < 7 && byte(signExtended)&0x7f != c&0x7f {
				err = fmt.Errorf("invalid LEB128 encoding: inconsistent sign extension at byte %d", i)
				return
			}
		}
		ret |= int64(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			bytesRead = uint64(i + 1)
			if shift < 64 && c&0x40 != 0 {
				ret |= -1 << shift
			}
			return
		}
	}
	err = fmt.Errorf("invalid LEB128 encoding: exceeded %d bytes", maxBytes)
	return
}

// DecodeUint32 decodes an unsigned 32-bit LEB128 value from r.
func DecodeUint32(r io.ByteReader) (ret uint32, bytesRead uint64, err error) {
	v, n, err := decodeUint(r, 32, maxVarintLen32)
	return uint32(v), n, err
}

// DecodeUint64 decodes an unsigned 64-bit LEB128 value from r.
func DecodeUint64(r io.ByteReader) (ret uint64, bytesRead uint64, err error) {
	return decodeUint(r, 64, maxVarintLen64)
}

func decodeUint(r io.ByteReader, width uint, maxBytes int) (ret uint64, bytesRead uint64, err error) {
	var shift uint
	for i := 0; i < maxBytes; i++ {
		c, e := r.ReadByte()
		if e != nil {
			err = e
			return
		}
		if i == maxBytes-1 {
			remaining := width - shift
			mask := byte(0xff) << remaining
			if remaining < 7 && c&mask != 0 {
				err = fmt.Errorf("invalid LEB128 encoding: too many bits at byte %d", i)
				return
			}
		}
		ret |= uint64(c&0x7f) << shift
		bytesRead++
		if c&0x80 == 0 {
			return
		}
		shift += 7
	}
	err = fmt.Errorf("invalid LEB128 encoding: exceeded %d bytes", maxBytes)
	return
}

// DecodeInt32 decodes a signed 32-bit LEB128 value from r.
func DecodeInt32(r io.ByteReader) (ret int32, bytesRead uint64, err error) {
	v, n, err := decodeInt(r, 32, maxVarintLen32)
	return int32(v), n, err
}

// DecodeInt64 decodes a signed 64-bit LEB128 value from r.
func DecodeInt64(r io.ByteReader) (ret int64, bytesRead uint64, err error) {
	return decodeInt(r, 64, maxVarintLen64)
}

// DecodeInt33AsInt64 decodes a signed 33-bit LEB128 value (used for block
// type immediates) widened to int64.
func DecodeInt33AsInt64(r io.ByteReader) (ret int64, bytesRead uint64, err error) {
	return decodeInt(r, 33, maxVarintLen33)
}

func decodeInt(r io.ByteReader, width uint, maxBytes int) (ret int64, bytesRead uint64, err error) {
	var shift uint
	var c byte
	for i := 0; i < maxBytes; i++ {
		b, e := r.ReadByte()
		if e != nil {
			err = e
			return
		}
		c = b
		if i == maxBytes-1 {
			remaining := width - shift
			signExtended := int8(c<<(8-remaining)) >> (8 - remaining)
			if remaining < 7 && byte(signExtended)&0x7f != c&0x7f {
				err = fmt.Errorf("invalid LEB128 encoding: inconsistent sign extension at byte %d", i)
				return
			}
		}
		ret |= int64(c&0x7f) << shift
		shift += 7
		bytesRead++
		if c&0x80 == 0 {
			if shift < 64 && c&0x40 != 0 {
				ret |= -1 << shift
			}
			return
		}
	}
	err = fmt.Errorf("invalid LEB128 encoding: exceeded %d bytes", maxBytes)
	return
}
