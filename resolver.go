// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package dyntl

import (
	"fmt"

	"github.com/tlcodec/dynamic-tl/tlschema"
)

// varRole classifies a declared variable of a constructor.
type varRole uint8

const (
	// varRoleBitmask is a plain numeric flags-word carrier, materialized
	// as a field on the encoded object.
	varRoleBitmask varRole = iota
	// varRoleType is a type discriminator: the variable's value selects
	// the concrete type of a later argument.
	varRoleType
)

// varSlot is the per-call state of one declared variable. Slots are
// created fresh on the call stack for each encode or decode invocation;
// a slot transitions from unproduced to produced exactly once per call.
type varSlot struct {
	role     varRole
	produced bool
	value    int32
}

func (v *varSlot) produce(value int32) {
	v.produced = true
	v.value = value
}

// resolveRoles assigns each declared variable of c its role by scanning
// the argument list once: any argument whose type tree is a variable-type
// reference marks that variable as a type discriminator; all others are
// bitmask carriers. Violations are schema-authoring errors, fatal at
// generation time only.
func resolveRoles(c *tlschema.Constructor) ([]varRole, error) {
	roles := make([]varRole, c.VarCount)
	for i := range c.Args {
		a := &c.Args[i]
		if a.Type == nil {
			return nil, fmt.Errorf("constructor %q: argument %q has no type", c.Name, a.Name)
		}
		if a.Type.Kind != tlschema.TreeVarType {
			continue
		}
		vn := a.Type.VarNum
		if vn < 0 || vn >= c.VarCount {
			return nil, fmt.Errorf("constructor %q: argument %q references undeclared variable %d", c.Name, a.Name, vn)
		}
		if roles[vn] == varRoleType {
			return nil, fmt.Errorf("constructor %q: variable %d marked as type discriminator twice", c.Name, vn)
		}
		roles[vn] = varRoleType
	}
	return roles, nil
}

func newVarSlots(p *Program) []varSlot {
	slots := make([]varSlot, p.varCount)
	for i := range slots {
		slots[i].role = p.roles[i]
	}
	return slots
}
