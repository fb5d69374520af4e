// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

// Package tlwire implements the primitive TL wire codecs: byte-level
// encoding and decoding of every terminal and generic shape, independent
// of any specific schema type. All multi-byte values are little endian
// and the stream is kept aligned to 4-byte boundaries.
package tlwire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Well-known constructor identifiers used by the generic codecs.
// These are externally defined wire constants, not derived here.
const (
	BoolTrueID  = int32(-1720552011) // 0x997275b5
	BoolFalseID = int32(-1132882121) // 0xbc799737
	VectorID    = int32(481674261)   // 0x1cb5c415
)

// MaxStringLength is the largest byte string representable by the TL
// length prefix (3 bytes in long form).
const MaxStringLength = 1<<24 - 1

// Encoder serializes TL primitives into an append-only byte buffer.
//
// Encoding is infallible at the primitive level: invalid in-memory state
// must be rejected by the producing collaborator before encoding is
// attempted. The same logical value always produces byte-identical
// output.
//
// An Encoder must not be shared between goroutines. Independent encoders
// on independent buffers are safe to use concurrently.
type Encoder struct {
	buf []byte
	ctx any
}

// NewEncoder creates an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// NewEncoderBuffer creates an Encoder that appends to buf.
func NewEncoderBuffer(buf []byte) *Encoder {
	return &Encoder{buf: buf}
}

// Bytes returns the encoded output. The slice is owned by the Encoder
// until Reset is called.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Reset drops all written data but keeps the allocated buffer.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// SetContext attaches an opaque capability context that object codecs may
// consult while encoding. The context is owned and synchronized by its
// provider; the codec only reads through it.
func (e *Encoder) SetContext(ctx any) {
	e.ctx = ctx
}

// Context returns the attached capability context, or nil.
func (e *Encoder) Context() any {
	return e.ctx
}

// StoreInt32 writes a 32-bit signed integer.
func (e *Encoder) StoreInt32(v int32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(v))
}

// StoreNat writes a natural (`#`) value. Callers must validate
// non-negativity at capture time; the wire form is identical to Int32.
func (e *Encoder) StoreNat(v int32) {
	e.StoreInt32(v)
}

// StoreCtorID writes a boxed constructor identifier.
func (e *Encoder) StoreCtorID(id int32) {
	e.StoreInt32(id)
}

// StoreInt53 writes an Int53 value. Int53 occupies a full 8 bytes on the
// wire; the 53-bit range constraint exists for foreign consumers and is
// not enforced here.
func (e *Encoder) StoreInt53(v int64) {
	e.StoreInt64(v)
}

// StoreInt64 writes a 64-bit signed integer.
func (e *Encoder) StoreInt64(v int64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, uint64(v))
}

// StoreDouble writes a 64-bit IEEE 754 floating point value.
func (e *Encoder) StoreDouble(v float64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, math.Float64bits(v))
}

// StoreInt128 writes a 128-bit value as 16 raw bytes.
func (e *Encoder) StoreInt128(v [16]byte) {
	e.buf = append(e.buf, v[:]...)
}

// StoreInt256 writes a 256-bit value as 32 raw bytes.
func (e *Encoder) StoreInt256(v [32]byte) {
	e.buf = append(e.buf, v[:]...)
}

// StoreBool writes a boxed boolean as one of its two zero-argument
// constructors.
func (e *Encoder) StoreBool(v bool) {
	if v {
		e.StoreInt32(BoolTrueID)
	} else {
		e.StoreInt32(BoolFalseID)
	}
}

// StoreString writes a length-prefixed string padded to a 4-byte
// boundary. Strings longer than MaxStringLength cannot be represented
// on the wire and panic; callers that take untrusted input must check
// the length first.
func (e *Encoder) StoreString(v string) {
	e.storeRaw([]byte(v))
}

// StoreBytes writes a length-prefixed byte string padded to a 4-byte
// boundary. Values longer than MaxStringLength panic, as with
// StoreString.
func (e *Encoder) StoreBytes(v []byte) {
	e.storeRaw(v)
}

func (e *Encoder) storeRaw(v []byte) {
	n := len(v)
	if n > MaxStringLength {
		panic(fmt.Sprintf("tlwire: byte string of %d bytes exceeds MaxStringLength", n))
	}
	if n < 254 {
		e.buf = append(e.buf, byte(n))
	} else {
		e.buf = append(e.buf, 0xfe, byte(n), byte(n>>8), byte(n>>16))
	}
	e.buf = append(e.buf, v...)
	for len(e.buf)%4 != 0 {
		e.buf = append(e.buf, 0)
	}
}
