// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package tlwire

import "fmt"

var (
	ErrUnexpectedEOF         = fmt.Errorf("unexpected end of TL data")
	ErrStringPadding         = fmt.Errorf("invalid TL string length prefix")
	ErrUnknownConstructor    = fmt.Errorf("unknown constructor")
	ErrUnexpectedConstructor = fmt.Errorf("unexpected constructor")
	ErrInvalidBool           = fmt.Errorf("invalid boolean constructor")
	ErrNegativeNat           = fmt.Errorf("variable of type # can't be negative")
	ErrTrailingData          = fmt.Errorf("trailing bytes after TL object")
	ErrStringTooLong         = fmt.Errorf("string length exceeds TL limit")
)
