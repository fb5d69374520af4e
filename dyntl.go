// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

// Package dyntl encodes and decodes TL (Type Language) binary values
// driven entirely by a runtime schema. A schema is loaded from a YAML
// document or a binary schema config, compiled into per-constructor
// field operation sequences, and then used to marshal dynamic Objects
// to the TL wire format and back.
//
// The same operation sequences also feed the codegen package, which
// renders them as static Go bindings for use without the runtime
// interpreter.
package dyntl

import (
	"fmt"
	"sync"

	"github.com/tlcodec/dynamic-tl/tlschema"
)

// DynTl is the main codec handle. It holds the schema and a cache of
// compiled constructor programs; a single instance is safe for
// concurrent use.
type DynTl struct {
	schema *tlschema.Schema

	programMutex sync.RWMutex
	programCache map[int32]*Program

	// Verbose enables diagnostic output from the helper tooling built
	// on top of the codec. The codec itself never logs.
	Verbose bool
}

// NewDynTl creates a codec for the given schema.
func NewDynTl(schema *tlschema.Schema, opts ...Option) *DynTl {
	d := &DynTl{
		schema:       schema,
		programCache: map[int32]*Program{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Schema returns the schema this codec was built from.
func (d *DynTl) Schema() *tlschema.Schema {
	return d.schema
}

// Program returns the compiled field operation sequence for a
// constructor, building and caching it on first use. The returned
// Program is shared and must not be modified.
func (d *DynTl) Program(c *tlschema.Constructor) (*Program, error) {
	d.programMutex.RLock()
	p := d.programCache[c.ID]
	d.programMutex.RUnlock()
	if p != nil {
		return p, nil
	}

	p, err := buildProgram(c)
	if err != nil {
		return nil, err
	}
	d.programMutex.Lock()
	if cached := d.programCache[c.ID]; cached != nil {
		p = cached
	} else {
		d.programCache[c.ID] = p
	}
	d.programMutex.Unlock()
	return p, nil
}

func (d *DynTl) programForName(name string) (*Program, error) {
	c := d.schema.ConstructorByName(name)
	if c == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConstructorName, name)
	}
	return d.Program(c)
}
