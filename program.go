// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package dyntl

import (
	"fmt"

	"github.com/tlcodec/dynamic-tl/tlschema"
)

// OpKind identifies the wire action of a single field operation.
type OpKind uint8

const (
	OpNat OpKind = iota
	OpInt32
	OpInt53
	OpInt64
	OpInt128
	OpInt256
	OpDouble
	OpString
	OpBytes
	OpBool
	OpTrue
	OpVector
	OpObject
	OpDispatch
)

// FieldOp is one step of a constructor's encode/decode sequence. The
// same ordered sequence drives both the runtime walkers and the static
// code generator; only the primitive calls differ.
type FieldOp struct {
	Name     string
	Kind     OpKind
	Boxed    bool                  // vector/object is prefixed by a constructor id
	ExpectID int32                 // boxed single-constructor object: id to assert
	Type     *tlschema.Type        // dispatch target type (nil for variable-type args)
	Ctor     *tlschema.Constructor // statically known constructor (OpObject)
	Elem     *FieldOp              // vector element operation
	Capture  int                   // variable produced by this op, or -1
	CondVar  int                   // gating variable, or -1
	CondBit  int
}

// controlledBit records that a bit of a flags variable gates the
// presence of the field at opIndex.
type controlledBit struct {
	bit     int
	opIndex int
}

// Program is the compiled form of one constructor: the ordered field
// operations plus the variable bookkeeping precomputed from the
// argument list. Programs are immutable once built and shared across
// calls.
type Program struct {
	Ctor *tlschema.Constructor
	Ops  []FieldOp

	varCount   int
	roles      []varRole
	controlled map[int][]controlledBit
}

// buildProgram compiles a constructor's argument list into its field
// operation sequence. All schema-authoring violations surface here,
// before any byte is encoded or decoded.
func buildProgram(c *tlschema.Constructor) (*Program, error) {
	roles, err := resolveRoles(c)
	if err != nil {
		return nil, err
	}
	p := &Program{
		Ctor:       c,
		varCount:   c.VarCount,
		roles:      roles,
		controlled: map[int][]controlledBit{},
	}
	producedAt := make([]int, c.VarCount)
	for i := range producedAt {
		producedAt[i] = -1
	}
	for i := range c.Args {
		a := &c.Args[i]
		if a.Suppressed {
			return nil, fmt.Errorf("constructor %q: argument %q: recomputed arguments are not supported", c.Name, a.Name)
		}
		var op FieldOp
		op.Name = a.Name
		op.Capture = -1
		op.CondVar = -1

		if a.Type.Kind == tlschema.TreeVarType {
			vn := a.Type.VarNum
			if producedAt[vn] >= 0 {
				return nil, fmt.Errorf("constructor %q: variable %d produced twice", c.Name, vn)
			}
			producedAt[vn] = i
			op.Kind = OpDispatch
			op.Boxed = true
		} else {
			built, err := buildTreeOp(a.Type)
			if err != nil {
				return nil, fmt.Errorf("constructor %q: argument %q: %w", c.Name, a.Name, err)
			}
			op = *built
			op.Name = a.Name
		}

		if a.VarNum >= 0 {
			if op.Kind != OpNat {
				return nil, fmt.Errorf("constructor %q: argument %q: only # arguments can declare a variable", c.Name, a.Name)
			}
			vn := a.VarNum
			if vn < 0 || vn >= c.VarCount {
				return nil, fmt.Errorf("constructor %q: argument %q declares undeclared variable %d", c.Name, a.Name, vn)
			}
			if roles[vn] != varRoleBitmask {
				return nil, fmt.Errorf("constructor %q: argument %q: variable %d is a type discriminator, not a flags word", c.Name, a.Name, vn)
			}
			if producedAt[vn] >= 0 {
				return nil, fmt.Errorf("constructor %q: variable %d produced twice", c.Name, vn)
			}
			producedAt[vn] = i
			op.Capture = vn
		}

		if a.Conditional() {
			ev := a.ExistVarNum
			if ev < 0 || ev >= c.VarCount {
				return nil, fmt.Errorf("constructor %q: argument %q is gated by undeclared variable %d", c.Name, a.Name, ev)
			}
			if roles[ev] != varRoleBitmask {
				return nil, fmt.Errorf("constructor %q: argument %q is gated by type variable %d", c.Name, a.Name, ev)
			}
			if producedAt[ev] < 0 {
				return nil, fmt.Errorf("constructor %q: argument %q is gated by variable %d before it is produced", c.Name, a.Name, ev)
			}
			if a.ExistVarBit < 0 || a.ExistVarBit > 30 {
				return nil, fmt.Errorf("constructor %q: argument %q: flag bit %d out of range", c.Name, a.Name, a.ExistVarBit)
			}
			op.CondVar = ev
			op.CondBit = a.ExistVarBit
			p.controlled[ev] = append(p.controlled[ev], controlledBit{bit: a.ExistVarBit, opIndex: len(p.Ops)})
		} else if op.Kind == OpTrue {
			return nil, fmt.Errorf("constructor %q: argument %q: True fields must be flag-gated", c.Name, a.Name)
		}

		p.Ops = append(p.Ops, op)
	}
	for vn, at := range producedAt {
		if at < 0 {
			return nil, fmt.Errorf("constructor %q: variable %d is never produced", c.Name, vn)
		}
	}
	return p, nil
}

// buildTreeOp lowers one type tree into a field operation. Nested
// variable types and bare numeric parameters cannot appear here; both
// are schema-authoring errors.
func buildTreeOp(tree *tlschema.TypeTree) (*FieldOp, error) {
	switch tree.Kind {
	case tlschema.TreeNatConst, tlschema.TreeNatVar:
		return nil, fmt.Errorf("numeric parameter cannot be serialized directly")
	case tlschema.TreeVarType:
		return nil, fmt.Errorf("variable types are only allowed as direct argument types")
	}

	op := &FieldOp{Capture: -1, CondVar: -1}
	switch tree.Type.Name {
	case tlschema.NameNat:
		op.Kind = OpNat
	case tlschema.NameInt32:
		op.Kind = OpInt32
	case tlschema.NameInt53:
		op.Kind = OpInt53
	case tlschema.NameInt64:
		op.Kind = OpInt64
	case tlschema.NameInt128:
		op.Kind = OpInt128
	case tlschema.NameInt256:
		op.Kind = OpInt256
	case tlschema.NameDouble:
		op.Kind = OpDouble
	case tlschema.NameString:
		op.Kind = OpString
	case tlschema.NameBytes:
		op.Kind = OpBytes
	case tlschema.NameBool:
		op.Kind = OpBool
	case tlschema.NameTrue:
		op.Kind = OpTrue
	case tlschema.NameVector:
		if len(tree.Children) != 1 {
			return nil, fmt.Errorf("vector must have exactly one type parameter")
		}
		elem, err := buildTreeOp(tree.Children[0])
		if err != nil {
			return nil, err
		}
		if elem.Kind == OpTrue {
			return nil, fmt.Errorf("vector of True has no wire representation")
		}
		op.Kind = OpVector
		op.Boxed = !tree.Bare()
		op.Elem = elem
	default:
		t := tree.Type
		ctors := t.Constructors
		if tree.Bare() || t.BareDefault {
			if len(ctors) != 1 {
				return nil, fmt.Errorf("bare use of type %q requires exactly one constructor, got %d", t.Name, len(ctors))
			}
			op.Kind = OpObject
			op.Ctor = ctors[0]
		} else if len(ctors) == 1 {
			op.Kind = OpObject
			op.Boxed = true
			op.Ctor = ctors[0]
			op.ExpectID = ctors[0].ID
		} else {
			if len(ctors) == 0 {
				return nil, fmt.Errorf("type %q has no constructors", t.Name)
			}
			op.Kind = OpDispatch
			op.Boxed = true
			op.Type = t
		}
	}
	return op, nil
}
