// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package codegen

// CodeGenOptions control output rendering.
type CodeGenOptions struct {
	// Source is named in the generated file header.
	Source string
	// NoFormat skips the goimports formatting pass. Mainly useful in
	// tests that assert on raw template output.
	NoFormat bool
}

// CodeGenOption configures a CodeGenerator.
type CodeGenOption func(*CodeGenOptions)

// WithSource sets the schema source named in the generated file header.
func WithSource(source string) CodeGenOption {
	return func(o *CodeGenOptions) {
		o.Source = source
	}
}

// WithNoFormat disables the goimports formatting pass.
func WithNoFormat() CodeGenOption {
	return func(o *CodeGenOptions) {
		o.NoFormat = true
	}
}
