// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package tlstore

// FieldSpec declares one field of a versioned record. Fields are
// processed strictly in table order on both paths; evolution happens by
// appending fields with a higher Since, never by reordering.
type FieldSpec struct {
	// Name identifies the field in diagnostics.
	Name string
	// Since is the first version that carries the field. Zero means the
	// field has always been present.
	Since int32
	// Store writes the field value.
	Store func(*Storer)
	// Parse reads the field value.
	Parse func(*Parser)
	// Default is applied instead of Parse when the record predates
	// Since. Nil leaves the in-memory zero value in place.
	Default func(*Parser)
}

// StoreRecord writes all fields carried at the storer's version, in
// table order.
func StoreRecord(s *Storer, fields []FieldSpec) {
	for i := range fields {
		f := &fields[i]
		if s.version >= f.Since {
			f.Store(s)
		}
	}
}

// ParseRecord reads all fields carried at the parser's version, in
// table order, applying defaults for fields the record predates. The
// sticky decode error is returned once, after the whole table ran.
func ParseRecord(p *Parser, fields []FieldSpec) error {
	for i := range fields {
		f := &fields[i]
		if p.version >= f.Since {
			f.Parse(p)
		} else if f.Default != nil {
			f.Default(p)
		}
	}
	return p.Error()
}
