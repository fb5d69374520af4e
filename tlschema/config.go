// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package tlschema

import (
	"fmt"

	"github.com/tlcodec/dynamic-tl/tlwire"
)

// Section and node magics of the compiled TL-schema config format. These
// are externally defined wire constants.
const (
	tlsSchemaV2           = int32(0x3a2f9be2)
	tlsSchemaV3           = int32(-458530741)  // 0xe4a8604b
	tlsSchemaV4           = int32(-1867708201) // 0x90ac88d7
	tlsType               = int32(0x12eb4386)
	tlsCombinator         = int32(0x5c0a1ed5)
	tlsCombinatorLeftBltn = int32(-854450003) // 0xcd211f63
	tlsCombinatorLeft     = int32(0x4c12c6d9)
	tlsCombinatorRightV2  = int32(0x2c064372)
	tlsArgV2              = int32(0x29dfe61b)
	tlsExprNat            = int32(-593454120) // 0xdcb49bd8
	tlsExprType           = int32(-322250760) // 0xecc9da78
	tlsNatConstOld        = int32(-593454120) // 0xdcb49bd8
	tlsNatConst           = int32(-1935595343) // 0x8ce940b1
	tlsNatVar             = int32(0x4e8a14f0)
	tlsTypeVar            = int32(0x0142ceae)
	tlsArray              = int32(-638508834) // 0xd9fb20de
	tlsTypeExpr           = int32(-1045580442) // 0xc1863d08
)

// config arg flag bits; the optional-field and has-variable bits moved
// between schema versions 2 and 3.
func configArgFlags(schemaVersion int) (optField, hasVar int32) {
	optField = 2
	if schemaVersion >= 3 {
		optField = 4
	}
	return optField, optField ^ 6
}

type configParser struct {
	d             *tlwire.Decoder
	schemaVersion int
	typesByID     map[int32]*Type
}

// ParseConfig reads a compiled TL-schema config blob into a Schema. All
// failures are fatal load-time errors; a malformed config never reaches
// encode/decode time.
func ParseConfig(data []byte) (*Schema, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty schema config")
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("schema config size %d is not a multiple of 4", len(data))
	}
	p := &configParser{
		d:         tlwire.NewDecoder(data),
		typesByID: make(map[int32]*Type),
	}
	return p.parse()
}

func (p *configParser) fail(format string, args ...any) error {
	if err := p.d.Error(); err != nil {
		return fmt.Errorf("schema config at %d: %w", p.d.Pos(), err)
	}
	return fmt.Errorf("schema config at %d: %s", p.d.Pos(), fmt.Sprintf(format, args...))
}

func (p *configParser) parse() (*Schema, error) {
	switch p.d.FetchInt32() {
	case tlsSchemaV4:
		p.schemaVersion = 4
	case tlsSchemaV3:
		p.schemaVersion = 3
	case tlsSchemaV2:
		p.schemaVersion = 2
	default:
		return nil, p.fail("unsupported schema version magic")
	}
	p.d.FetchInt32() // date
	p.d.FetchInt32() // version

	typesN := p.d.FetchNat()
	types := make([]*Type, 0, typesN)
	constructorCounts := make(map[int32]int32, typesN)
	for i := int32(0); i < typesN; i++ {
		t, ctorNum, err := p.readType()
		if err != nil {
			return nil, err
		}
		if _, ok := p.typesByID[t.ID]; ok {
			return nil, p.fail("duplicate type id 0x%08x", uint32(t.ID))
		}
		p.typesByID[t.ID] = t
		constructorCounts[t.ID] = ctorNum
		types = append(types, t)
	}

	ctorsN := p.d.FetchNat()
	for i := int32(0); i < ctorsN; i++ {
		c, err := p.readCombinator()
		if err != nil {
			return nil, err
		}
		t := p.typesByID[c.TypeID]
		if t == nil {
			return nil, p.fail("constructor %q references unknown type id 0x%08x", c.Name, uint32(c.TypeID))
		}
		t.Constructors = append(t.Constructors, c)
	}
	for _, t := range types {
		if int32(len(t.Constructors)) != constructorCounts[t.ID] {
			return nil, p.fail("type %q declares %d constructors, got %d", t.Name, constructorCounts[t.ID], len(t.Constructors))
		}
	}

	funcsN := p.d.FetchNat()
	functions := make([]*Constructor, 0, funcsN)
	for i := int32(0); i < funcsN; i++ {
		f, err := p.readCombinator()
		if err != nil {
			return nil, err
		}
		functions = append(functions, f)
	}

	if err := p.d.FetchEnd(); err != nil {
		return nil, p.fail("unterminated config")
	}
	return New(types, functions)
}

func (p *configParser) readType() (*Type, int32, error) {
	if magic := p.d.FetchInt32(); magic != tlsType {
		return nil, 0, p.fail("wrong type section magic 0x%08x", uint32(magic))
	}
	t := &Type{
		ID:   p.d.FetchInt32(),
		Name: p.d.FetchString(),
	}
	ctorNum := p.d.FetchNat()
	p.d.FetchInt32() // type flags, unused here
	t.Arity = int(p.d.FetchNat())
	p.d.FetchInt64() // unused
	if err := p.d.Error(); err != nil {
		return nil, 0, p.fail("truncated type section")
	}
	t.BareDefault = IsBuiltin(t.Name) || bareByConvention(t.Name)
	return t, ctorNum, nil
}

func (p *configParser) readCombinator() (*Constructor, error) {
	if magic := p.d.FetchInt32(); magic != tlsCombinator {
		return nil, p.fail("wrong combinator section magic 0x%08x", uint32(magic))
	}
	c := &Constructor{
		ID:     p.d.FetchInt32(),
		Name:   p.d.FetchString(),
		TypeID: p.d.FetchInt32(),
	}

	switch left := p.d.FetchInt32(); left {
	case tlsCombinatorLeft:
		args, err := p.readArgsList(&c.VarCount)
		if err != nil {
			return nil, err
		}
		c.Args = args
	case tlsCombinatorLeftBltn:
		// builtin combinator, no explicit args
	default:
		return nil, p.fail("wrong combinator-left magic 0x%08x", uint32(left))
	}

	if right := p.d.FetchInt32(); right != tlsCombinatorRightV2 {
		return nil, p.fail("wrong combinator-right magic 0x%08x", uint32(right))
	}
	result, err := p.readTypeExpr(&c.VarCount)
	if err != nil {
		return nil, err
	}
	c.Result = result
	return c, p.d.Error()
}

func (p *configParser) readArgsList(varCount *int) ([]Argument, error) {
	optField, hasVar := configArgFlags(p.schemaVersion)

	argsN := p.d.FetchNat()
	args := make([]Argument, 0, argsN)
	for i := int32(0); i < argsN; i++ {
		if magic := p.d.FetchInt32(); magic != tlsArgV2 {
			return nil, p.fail("wrong arg magic 0x%08x", uint32(magic))
		}
		a := Argument{VarNum: -1, ExistVarNum: -1}
		a.Name = p.d.FetchString()
		flags := p.d.FetchInt32()

		optional := flags&optField != 0
		if flags&hasVar != 0 {
			a.VarNum = int(p.d.FetchNat())
			if a.VarNum >= *varCount {
				*varCount = a.VarNum + 1
			}
		}
		if optional {
			a.ExistVarNum = int(p.d.FetchNat())
			a.ExistVarBit = int(p.d.FetchNat())
		}
		tree, err := p.readTypeExpr(varCount)
		if err != nil {
			return nil, err
		}
		a.Type = tree
		args = append(args, a)
	}
	return args, p.d.Error()
}

func (p *configParser) readExpr(varCount *int) (*TypeTree, error) {
	switch magic := p.d.FetchInt32(); magic {
	case tlsExprNat:
		return p.readNatExpr(varCount)
	case tlsExprType:
		return p.readTypeExpr(varCount)
	default:
		return nil, p.fail("wrong expression magic 0x%08x", uint32(magic))
	}
}

func (p *configParser) readNatExpr(varCount *int) (*TypeTree, error) {
	switch magic := p.d.FetchInt32(); magic {
	case tlsNatConstOld, tlsNatConst:
		return &TypeTree{Kind: TreeNatConst, Value: p.d.FetchInt32()}, p.d.Error()
	case tlsNatVar:
		p.d.FetchInt32() // diff, unused
		varNum := int(p.d.FetchNat())
		if varNum >= *varCount {
			*varCount = varNum + 1
		}
		return &TypeTree{Kind: TreeNatVar, VarNum: varNum}, p.d.Error()
	default:
		return nil, p.fail("wrong nat expression magic 0x%08x", uint32(magic))
	}
}

func (p *configParser) readTypeExpr(varCount *int) (*TypeTree, error) {
	switch magic := p.d.FetchInt32(); magic {
	case tlsTypeVar:
		varNum := int(p.d.FetchNat())
		p.d.FetchInt32() // flags, always empty for type vars
		if varNum >= *varCount {
			*varCount = varNum + 1
		}
		return &TypeTree{Kind: TreeVarType, VarNum: varNum}, p.d.Error()
	case tlsTypeExpr:
		return p.readTypeRef(varCount)
	case tlsArray:
		return nil, p.fail("array type expressions are not supported")
	default:
		return nil, p.fail("wrong type expression magic 0x%08x", uint32(magic))
	}
}

func (p *configParser) readTypeRef(varCount *int) (*TypeTree, error) {
	typeID := p.d.FetchInt32()
	t := p.typesByID[typeID]
	if t == nil {
		return nil, p.fail("reference to unknown type id 0x%08x", uint32(typeID))
	}
	flags := p.d.FetchInt32()
	arity := int(p.d.FetchNat())
	if arity != t.Arity {
		return nil, p.fail("type %q used with arity %d, declared %d", t.Name, arity, t.Arity)
	}
	tree := &TypeTree{Kind: TreeTypeRef, Type: t, Children: make([]*TypeTree, 0, arity)}
	if flags&1 != 0 {
		tree.Flags |= TreeFlagBare
	}
	for i := 0; i < arity; i++ {
		child, err := p.readExpr(varCount)
		if err != nil {
			return nil, err
		}
		tree.Children = append(tree.Children, child)
	}
	return tree, p.d.Error()
}
