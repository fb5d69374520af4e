// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

// Package tlschema holds the immutable, compile-time representation of a
// TL schema: types, constructors, arguments and the recursive type trees
// that describe argument and result shapes. Schemas are produced once by
// a loader (binary config or YAML document) and shared read-only across
// all encode/decode calls afterwards.
package tlschema

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// TreeKind discriminates the node kinds of a TypeTree.
type TreeKind uint8

const (
	// TreeTypeRef is a concrete type reference with one child tree per
	// generic parameter.
	TreeTypeRef TreeKind = iota
	// TreeVarType marks a node whose concrete type is determined by a
	// previously captured variable's value.
	TreeVarType
	// TreeNatConst is a numeric-constant type parameter.
	TreeNatConst
	// TreeNatVar is a numeric type parameter referencing a captured
	// variable.
	TreeNatVar
)

// TreeFlag carries per-node modifiers of a TypeTree.
type TreeFlag uint8

const (
	// TreeFlagBare forces bare encoding at this use site regardless of
	// the target type's default.
	TreeFlagBare TreeFlag = 1 << iota
)

// TypeTree is the recursive shape of an argument or result type.
type TypeTree struct {
	Kind     TreeKind
	Flags    TreeFlag
	Type     *Type       // TreeTypeRef
	Children []*TypeTree // TreeTypeRef generic parameters
	VarNum   int         // TreeVarType / TreeNatVar
	Value    int32       // TreeNatConst
}

// Bare reports whether this use site encodes without a constructor
// identifier prefix: either forced bare or referencing a bare-by-default
// type.
func (t *TypeTree) Bare() bool {
	if t.Flags&TreeFlagBare != 0 {
		return true
	}
	return t.Kind == TreeTypeRef && t.Type != nil && t.Type.BareDefault
}

// Argument is one declared argument of a Constructor.
type Argument struct {
	Name string
	Type *TypeTree

	// VarNum is the index of the variable this argument produces from
	// its own value, or -1. Producing arguments must have nat type.
	VarNum int

	// ExistVarNum / ExistVarBit link a conditional argument to its
	// controlling variable and bit position. ExistVarNum is -1 for
	// unconditional arguments.
	ExistVarNum int
	ExistVarBit int

	// Suppressed marks an argument that declares a variable but is
	// recomputed rather than materialized. The original generator
	// refuses such constructors; so does this one.
	Suppressed bool
}

// Conditional reports whether the argument exists only when its
// controlling variable's bit is set.
func (a *Argument) Conditional() bool {
	return a.ExistVarNum >= 0
}

// Constructor is one concrete variant of a Type.
type Constructor struct {
	Name     string
	ID       int32
	TypeID   int32
	VarCount int
	Args     []Argument
	Result   *TypeTree
}

// Type is a named, possibly generic schema type.
type Type struct {
	Name  string
	ID    int32
	Arity int

	// BareDefault marks types whose uses encode without an identifier
	// prefix unless the schema says otherwise. By TL convention these
	// are the types whose name starts with a lowercase letter, plus the
	// numeric builtins.
	BareDefault bool

	Constructors []*Constructor
}

// ConstructorByID returns the constructor of t with the given wire
// identifier, or nil.
func (t *Type) ConstructorByID(id int32) *Constructor {
	for _, c := range t.Constructors {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Schema is the compiled, immutable schema registry.
type Schema struct {
	Types     []*Type
	Functions []*Constructor

	typesByName map[string]*Type
	typesByID   map[int32]*Type
	ctorsByName map[string]*Constructor
	ctorsByID   map[int32]*Constructor
}

// New builds a Schema from fully constructed types and functions,
// validating registry uniqueness. Loaders call this after assembling the
// model; it is also the entry point for programmatically built schemas.
func New(types []*Type, functions []*Constructor) (*Schema, error) {
	s := &Schema{
		Types:       types,
		Functions:   functions,
		typesByName: make(map[string]*Type, len(types)),
		typesByID:   make(map[int32]*Type, len(types)),
		ctorsByName: make(map[string]*Constructor),
		ctorsByID:   make(map[int32]*Constructor),
	}
	for _, t := range types {
		if _, ok := s.typesByName[t.Name]; ok {
			return nil, fmt.Errorf("duplicate type name %q", t.Name)
		}
		s.typesByName[t.Name] = t
		if t.ID != 0 {
			s.typesByID[t.ID] = t
		}
		for _, c := range t.Constructors {
			if err := s.registerConstructor(c); err != nil {
				return nil, err
			}
		}
	}
	for _, f := range functions {
		if err := s.registerConstructor(f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Schema) registerConstructor(c *Constructor) error {
	if _, ok := s.ctorsByName[c.Name]; ok {
		return fmt.Errorf("duplicate constructor name %q", c.Name)
	}
	if prev, ok := s.ctorsByID[c.ID]; ok {
		return fmt.Errorf("constructor id 0x%08x of %q already used by %q", uint32(c.ID), c.Name, prev.Name)
	}
	s.ctorsByName[c.Name] = c
	s.ctorsByID[c.ID] = c
	return nil
}

// TypeByName returns the type with the given name, or nil.
func (s *Schema) TypeByName(name string) *Type {
	return s.typesByName[name]
}

// ConstructorByName returns the constructor or function with the given
// name, or nil.
func (s *Schema) ConstructorByName(name string) *Constructor {
	return s.ctorsByName[name]
}

// ConstructorByID returns the constructor or function with the given
// wire identifier, or nil.
func (s *Schema) ConstructorByID(id int32) *Constructor {
	return s.ctorsByID[id]
}

// bareByConvention reports whether a type name encodes bare by TL
// convention (lowercase initial).
func bareByConvention(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return r != utf8.RuneError && unicode.IsLower(r)
}
