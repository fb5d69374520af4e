// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package dyntl

// Option configures a DynTl instance at construction time.
type Option func(*DynTl)

// WithVerbose enables diagnostic output from tooling built on the
// codec.
func WithVerbose() Option {
	return func(d *DynTl) {
		d.Verbose = true
	}
}
