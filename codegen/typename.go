// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package codegen

import (
	"strings"
	"unicode"
)

// GoName converts a TL identifier to an exported Go name. Namespace
// dots and snake case underscores become camel case boundaries:
// "msg.text_message" renders as "MsgTextMessage".
func GoName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		switch {
		case r == '.' || r == '_':
			upper = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			// drop anything that cannot appear in a Go identifier
		case upper:
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "X"
	}
	out := b.String()
	if unicode.IsDigit(rune(out[0])) {
		out = "X" + out
	}
	return out
}

// className is the interface name generated for a multi-constructor
// type.
func className(typeName string) string {
	return GoName(typeName) + "Class"
}
