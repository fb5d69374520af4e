// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package dyntl

// Object is the dynamic representation of one decoded or to-be-encoded
// value: the constructor name plus a field map keyed by argument name.
// Absent optional fields are simply missing from the map; flags words
// are materialized as regular int32 fields on decode.
//
// Field values use a fixed set of Go types:
//
//	#        int32 (non-negative)
//	Int32    int32
//	Int53    int64
//	Int64    int64
//	Int128   [16]byte
//	Int256   [32]byte
//	Double   float64
//	String   string
//	Bytes    []byte
//	Bool     bool
//	True     bool (always true when present)
//	Vector<T> []any
//	other    *Object
type Object struct {
	Ctor   string
	Fields map[string]any
}

// NewObject returns an empty object for the named constructor.
func NewObject(ctor string) *Object {
	return &Object{Ctor: ctor, Fields: map[string]any{}}
}

// Set assigns a field and returns the object for chaining.
func (o *Object) Set(name string, value any) *Object {
	o.Fields[name] = value
	return o
}

// Get returns the raw field value, or nil when absent.
func (o *Object) Get(name string) any {
	return o.Fields[name]
}

// Has reports whether the field is present.
func (o *Object) Has(name string) bool {
	_, ok := o.Fields[name]
	return ok
}

// Int32 returns the field as int32, or 0 when absent or mismatched.
func (o *Object) Int32(name string) int32 {
	v, _ := o.Fields[name].(int32)
	return v
}

// Int64 returns the field as int64, or 0 when absent or mismatched.
// Int53 fields are stored as int64 and read through this accessor too.
func (o *Object) Int64(name string) int64 {
	v, _ := o.Fields[name].(int64)
	return v
}

// Double returns the field as float64, or 0 when absent or mismatched.
func (o *Object) Double(name string) float64 {
	v, _ := o.Fields[name].(float64)
	return v
}

// String returns the field as string, or "" when absent or mismatched.
func (o *Object) String(name string) string {
	v, _ := o.Fields[name].(string)
	return v
}

// Bytes returns the field as []byte, or nil when absent or mismatched.
func (o *Object) Bytes(name string) []byte {
	v, _ := o.Fields[name].([]byte)
	return v
}

// Bool returns the field as bool, or false when absent or mismatched.
func (o *Object) Bool(name string) bool {
	v, _ := o.Fields[name].(bool)
	return v
}

// Object returns the field as a nested object, or nil when absent or
// mismatched.
func (o *Object) Object(name string) *Object {
	v, _ := o.Fields[name].(*Object)
	return v
}

// Vector returns the field as a slice, or nil when absent or mismatched.
func (o *Object) Vector(name string) []any {
	v, _ := o.Fields[name].([]any)
	return v
}
