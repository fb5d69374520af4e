// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

// Package tlstore layers versioned record persistence on top of the
// tlwire primitives. Records are written against a fixed application
// version; version checks gate which fields are present on the wire, so
// old records decoded by newer logic fall back to declared defaults and
// new records keep their trailing fields invisible to old readers only
// when the field order is append-only.
package tlstore

import "github.com/tlcodec/dynamic-tl/tlwire"

// Storer is an Encoder bound to the serialization version the record is
// written at. Field tables consult the version to decide what to emit.
type Storer struct {
	*tlwire.Encoder
	version int32
}

// NewStorer creates a Storer writing at the given version.
func NewStorer(version int32) *Storer {
	return &Storer{Encoder: tlwire.NewEncoder(), version: version}
}

// Version returns the version the record is written at.
func (s *Storer) Version() int32 {
	return s.version
}

// FlagStorer accumulates up to 31 presence bits into one flags word,
// assigned in call order starting at bit 0. Exceeding 31 bits is a
// programming error in the record definition and panics; a second word
// must be declared instead.
type FlagStorer struct {
	word  int32
	count int
}

// StoreFlags starts a new flags word.
func StoreFlags() *FlagStorer {
	return &FlagStorer{}
}

// Flag appends one presence bit.
func (f *FlagStorer) Flag(set bool) *FlagStorer {
	if f.count >= 31 {
		panic("tlstore: too many flags in one word")
	}
	if set {
		f.word |= 1 << f.count
	}
	f.count++
	return f
}

// StoreTo writes the accumulated word.
func (f *FlagStorer) StoreTo(s *Storer) {
	s.StoreNat(f.word)
}
