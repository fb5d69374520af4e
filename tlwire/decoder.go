// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package tlwire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Decoder consumes TL primitives from a single contiguous byte buffer.
//
// The Decoder carries one sticky error slot: the first failure (truncated
// input, unmatched identifier, invalidated captured variable) records the
// error, and every subsequent Fetch call becomes a cheap no-op returning
// the zero value. The top-level caller checks Error exactly once after
// the whole object has been processed, not after each field.
//
// A Decoder must not be shared between goroutines. Independent decoders
// on independent buffers are safe to use concurrently.
type Decoder struct {
	buf []byte
	pos int
	err error
	ctx any
}

// NewDecoder creates a Decoder over data. The buffer is not copied.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{buf: data}
}

// Error returns the sticky decode error, or nil.
func (d *Decoder) Error() error {
	return d.err
}

// SetError records err as the sticky decode error. Only the first error
// is kept; later calls are ignored.
func (d *Decoder) SetError(err error) {
	if d.err == nil {
		d.err = err
	}
}

// Pos returns the current read position in bytes.
func (d *Decoder) Pos() int {
	return d.pos
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// SetContext attaches an opaque capability context that object codecs may
// consult while decoding. See Encoder.SetContext.
func (d *Decoder) SetContext(ctx any) {
	d.ctx = ctx
}

// Context returns the attached capability context, or nil.
func (d *Decoder) Context() any {
	return d.ctx
}

// FetchEnd verifies that the buffer was consumed completely and returns
// the sticky error state.
func (d *Decoder) FetchEnd() error {
	if d.err == nil && d.pos != len(d.buf) {
		d.SetError(fmt.Errorf("%w: %d of %d bytes consumed", ErrTrailingData, d.pos, len(d.buf)))
	}
	return d.err
}

func (d *Decoder) need(n int) bool {
	if d.err != nil {
		return false
	}
	if len(d.buf)-d.pos < n {
		d.SetError(ErrUnexpectedEOF)
		return false
	}
	return true
}

// FetchInt32 reads a 32-bit signed integer.
func (d *Decoder) FetchInt32() int32 {
	if !d.need(4) {
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(d.buf[d.pos:]))
	d.pos += 4
	return v
}

// FetchNat reads a natural (`#`) value, failing on negative input.
func (d *Decoder) FetchNat() int32 {
	v := d.FetchInt32()
	if v < 0 {
		d.SetError(ErrNegativeNat)
		return 0
	}
	return v
}

// FetchInt53 reads an Int53 value from its 8-byte wire form.
func (d *Decoder) FetchInt53() int64 {
	return d.FetchInt64()
}

// FetchInt64 reads a 64-bit signed integer.
func (d *Decoder) FetchInt64() int64 {
	if !d.need(8) {
		return 0
	}
	v := int64(binary.LittleEndian.Uint64(d.buf[d.pos:]))
	d.pos += 8
	return v
}

// FetchDouble reads a 64-bit IEEE 754 floating point value.
func (d *Decoder) FetchDouble() float64 {
	if !d.need(8) {
		return 0
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(d.buf[d.pos:]))
	d.pos += 8
	return v
}

// FetchInt128 reads a 128-bit value as 16 raw bytes.
func (d *Decoder) FetchInt128() [16]byte {
	var v [16]byte
	if !d.need(16) {
		return v
	}
	copy(v[:], d.buf[d.pos:])
	d.pos += 16
	return v
}

// FetchInt256 reads a 256-bit value as 32 raw bytes.
func (d *Decoder) FetchInt256() [32]byte {
	var v [32]byte
	if !d.need(32) {
		return v
	}
	copy(v[:], d.buf[d.pos:])
	d.pos += 32
	return v
}

// FetchBool reads a boxed boolean, failing on any identifier other than
// the two boolean constructors.
func (d *Decoder) FetchBool() bool {
	switch id := d.FetchInt32(); {
	case d.err != nil:
		return false
	case id == BoolTrueID:
		return true
	case id == BoolFalseID:
		return false
	default:
		d.SetError(fmt.Errorf("%w: 0x%08x", ErrInvalidBool, uint32(id)))
		return false
	}
}

// ExpectID reads a boxed constructor identifier and asserts it equals
// want. Used where exactly one constructor is viable at the call site.
func (d *Decoder) ExpectID(want int32) {
	id := d.FetchInt32()
	if d.err == nil && id != want {
		d.SetError(fmt.Errorf("%w: got 0x%08x, want 0x%08x", ErrUnexpectedConstructor, uint32(id), uint32(want)))
	}
}

// FetchString reads a length-prefixed string including its alignment
// padding.
func (d *Decoder) FetchString() string {
	return string(d.fetchRaw())
}

// FetchBytes reads a length-prefixed byte string including its alignment
// padding. The returned slice is a copy.
func (d *Decoder) FetchBytes() []byte {
	raw := d.fetchRaw()
	if raw == nil {
		return nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out
}

func (d *Decoder) fetchRaw() []byte {
	if !d.need(1) {
		return nil
	}
	var n, prefix int
	switch b := d.buf[d.pos]; {
	case b < 254:
		n = int(b)
		prefix = 1
	case b == 254:
		if !d.need(4) {
			return nil
		}
		n = int(d.buf[d.pos+1]) | int(d.buf[d.pos+2])<<8 | int(d.buf[d.pos+3])<<16
		prefix = 4
	default:
		d.SetError(ErrStringPadding)
		return nil
	}
	total := prefix + n
	if pad := total % 4; pad != 0 {
		total += 4 - pad
	}
	if !d.need(total) {
		return nil
	}
	raw := d.buf[d.pos+prefix : d.pos+prefix+n]
	d.pos += total
	return raw
}
