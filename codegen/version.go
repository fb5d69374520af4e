// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package codegen

import (
	"runtime/debug"
)

// Version contains the version string of the dynamic-tl library used
// for code generation. It is included in generated file headers so a
// reader can tell which generator release produced the bindings. When
// the build information is unavailable (e.g. during development) it
// stays "unknown".
var Version = "unknown"

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range info.Deps {
			if dep.Path == "github.com/tlcodec/dynamic-tl" {
				Version = dep.Version
				break
			}
		}
	}
}
