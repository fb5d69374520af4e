// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

// Package tmpl holds the data models rendered by the codegen templates.
package tmpl

// Main is the top-level model of one generated file.
type Main struct {
	PackageName string
	Source      string
	Version     string
	Imports     []TypeImport
	Code        string
}

// TypeImport is one import line of a generated file.
type TypeImport struct {
	Alias string
	Path  string
}

// Constructor models one generated constructor binding: the struct,
// its identifier constant and the store/fetch method bodies.
type Constructor struct {
	StructName string
	TlName     string
	ID         int32
	Fields     []Field
	StoreCode  string
	FetchCode  string
	HasFetch   bool
}

// Field is one struct field of a generated constructor.
type Field struct {
	Name   string
	GoType string
}

// Class models the interface and dispatch function generated for a
// multi-constructor type.
type Class struct {
	ClassName string
	TypeName  string
	TlName    string
	Ctors     []ClassCtor
}

// ClassCtor is one dispatch case of a Class.
type ClassCtor struct {
	StructName string
}
