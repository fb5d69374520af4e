// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package tlstore

import "github.com/tlcodec/dynamic-tl/tlwire"

// Parser is a Decoder bound to the version the record was written at.
// The version must be recovered out of band (a header field or the
// store's metadata) before field parsing starts.
type Parser struct {
	*tlwire.Decoder
	version int32
}

// NewParser creates a Parser over data written at the given version.
func NewParser(data []byte, version int32) *Parser {
	return &Parser{Decoder: tlwire.NewDecoder(data), version: version}
}

// Version returns the version the record was written at.
func (p *Parser) Version() int32 {
	return p.version
}

// FlagParser reads presence bits back out of a flags word in the same
// order they were stored. Reading more than 31 bits panics, mirroring
// FlagStorer.
type FlagParser struct {
	word  int32
	count int
}

// ParseFlags consumes one flags word from the record.
func ParseFlags(p *Parser) *FlagParser {
	return &FlagParser{word: p.FetchNat()}
}

// Flag returns the next presence bit.
func (f *FlagParser) Flag() bool {
	if f.count >= 31 {
		panic("tlstore: too many flags in one word")
	}
	set := f.word&(1<<f.count) != 0
	f.count++
	return set
}
