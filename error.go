// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package dyntl

import "fmt"

var (
	// ErrUnknownConstructorName is returned when an object names a
	// constructor the schema does not define.
	ErrUnknownConstructorName = fmt.Errorf("unknown constructor name")
	// ErrMissingField is returned when a required field is absent from
	// an object being encoded.
	ErrMissingField = fmt.Errorf("missing required field")
	// ErrTypeMismatch is returned when a field value has the wrong Go
	// type for its declared wire type.
	ErrTypeMismatch = fmt.Errorf("field type mismatch")
	// ErrFlagFieldMissing is returned when an explicit flags word has a
	// bit set whose gated field is absent from the object.
	ErrFlagFieldMissing = fmt.Errorf("flag bit set but field missing")
	// ErrConstructorMismatch is returned when a nested object's
	// constructor does not belong to the declared field type.
	ErrConstructorMismatch = fmt.Errorf("constructor does not match field type")
)
