// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package tlschema

// Built-in terminal and generic type names. The primitive wire codecs
// handle these directly; schemas reference them by name.
const (
	NameNat    = "#"
	NameInt32  = "Int32"
	NameInt53  = "Int53"
	NameInt64  = "Int64"
	NameInt128 = "Int128"
	NameInt256 = "Int256"
	NameDouble = "Double"
	NameString = "String"
	NameBytes  = "Bytes"
	NameBool   = "Bool"
	NameTrue   = "True"
	NameVector = "Vector"
)

// IsBuiltin reports whether name is one of the built-in type names.
func IsBuiltin(name string) bool {
	switch name {
	case NameNat, NameInt32, NameInt53, NameInt64, NameInt128, NameInt256,
		NameDouble, NameString, NameBytes, NameBool, NameTrue, NameVector:
		return true
	}
	return false
}

// builtinTypes returns freshly allocated Type entries for every built-in
// type. Each loaded Schema gets its own copies so that schemas stay
// independent of each other.
func builtinTypes() []*Type {
	mk := func(name string, arity int, bare bool) *Type {
		return &Type{Name: name, Arity: arity, BareDefault: bare}
	}
	return []*Type{
		mk(NameNat, 0, true),
		mk(NameInt32, 0, true),
		mk(NameInt53, 0, true),
		mk(NameInt64, 0, true),
		mk(NameInt128, 0, true),
		mk(NameInt256, 0, true),
		mk(NameDouble, 0, true),
		mk(NameString, 0, true),
		mk(NameBytes, 0, true),
		mk(NameBool, 0, false),
		mk(NameTrue, 0, true),
		mk(NameVector, 1, true),
	}
}
