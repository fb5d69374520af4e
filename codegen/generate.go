// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package codegen

import (
	"fmt"
	"strings"

	dyntl "github.com/tlcodec/dynamic-tl"
	"github.com/tlcodec/dynamic-tl/codegen/tmpl"
	"github.com/tlcodec/dynamic-tl/tlschema"
)

// fileGen accumulates the generated bindings of one output file. Every
// type referenced by a generated field must itself be generated into
// the same package; the generator does not chase references across
// files.
type fileGen struct {
	dynTl *dyntl.DynTl
	code  strings.Builder

	needsFmt    bool
	needsObject bool
	doneTypes   map[string]bool
	doneCtors   map[string]bool
}

func newFileGen(d *dyntl.DynTl) *fileGen {
	return &fileGen{
		dynTl:     d,
		doneTypes: map[string]bool{},
		doneCtors: map[string]bool{},
	}
}

// genName generates bindings for one schema name: a type name covers
// all its constructors plus the dispatch interface, a constructor or
// function name covers just that combinator.
func (g *fileGen) genName(name string) error {
	s := g.dynTl.Schema()
	if t := s.TypeByName(name); t != nil {
		return g.genType(t)
	}
	if c := s.ConstructorByName(name); c != nil {
		return g.genConstructor(c)
	}
	return fmt.Errorf("name %q not found in schema", name)
}

func (g *fileGen) genType(t *tlschema.Type) error {
	if tlschema.IsBuiltin(t.Name) {
		return fmt.Errorf("builtin type %q needs no bindings", t.Name)
	}
	if g.doneTypes[t.Name] {
		return nil
	}
	g.doneTypes[t.Name] = true

	if len(t.Constructors) > 1 {
		model := tmpl.Class{
			ClassName: className(t.Name),
			TypeName:  GoName(t.Name),
			TlName:    t.Name,
		}
		for _, c := range t.Constructors {
			model.Ctors = append(model.Ctors, tmpl.ClassCtor{StructName: GoName(c.Name)})
		}
		g.needsFmt = true
		if err := GetTemplate("tmpl/bindings.tmpl").ExecuteTemplate(&g.code, "class", model); err != nil {
			return err
		}
	}
	for _, c := range t.Constructors {
		if err := g.genConstructor(c); err != nil {
			return err
		}
	}
	return nil
}

func (g *fileGen) genConstructor(c *tlschema.Constructor) error {
	if g.doneCtors[c.Name] {
		return nil
	}
	g.doneCtors[c.Name] = true

	p, err := g.dynTl.Program(c)
	if err != nil {
		return err
	}

	model := tmpl.Constructor{
		StructName: GoName(c.Name),
		TlName:     c.Name,
		ID:         c.ID,
		HasFetch:   true,
	}

	// flags variables resolve to the struct field of the op that
	// produced them
	flagsField := map[int]string{}
	for i := range p.Ops {
		op := &p.Ops[i]
		if op.Capture >= 0 {
			flagsField[op.Capture] = GoName(op.Name)
		}
		if op.Kind == dyntl.OpDispatch && op.Type == nil {
			// variable-typed arguments are store-only: the payload type
			// is chosen by the caller and cannot be recovered here
			model.HasFetch = false
			g.needsObject = true
		}
		model.Fields = append(model.Fields, tmpl.Field{
			Name:   GoName(op.Name),
			GoType: g.goType(op),
		})
	}

	store := &emitter{indent: 1}
	fetch := &emitter{indent: 1}
	for i := range p.Ops {
		op := &p.Ops[i]
		ref := "o." + GoName(op.Name)

		if op.Kind != dyntl.OpTrue {
			if op.CondVar >= 0 {
				store.line("if o.%s&(1<<%d) != 0 {", flagsField[op.CondVar], op.CondBit)
				store.indent++
			}
			g.emitStore(store, op, ref, 0)
			if op.CondVar >= 0 {
				store.indent--
				store.line("}")
			}
		}

		if !model.HasFetch {
			continue
		}
		if op.CondVar >= 0 {
			fetch.line("if o.%s&(1<<%d) != 0 {", flagsField[op.CondVar], op.CondBit)
			fetch.indent++
		}
		g.emitFetch(fetch, op, ref, 0)
		if op.CondVar >= 0 {
			fetch.indent--
			fetch.line("}")
		}
	}
	model.StoreCode = store.b.String()
	model.FetchCode = fetch.b.String()

	return GetTemplate("tmpl/bindings.tmpl").ExecuteTemplate(&g.code, "constructor", model)
}

func (g *fileGen) goType(op *dyntl.FieldOp) string {
	switch op.Kind {
	case dyntl.OpNat, dyntl.OpInt32:
		return "int32"
	case dyntl.OpInt53, dyntl.OpInt64:
		return "int64"
	case dyntl.OpInt128:
		return "[16]byte"
	case dyntl.OpInt256:
		return "[32]byte"
	case dyntl.OpDouble:
		return "float64"
	case dyntl.OpString:
		return "string"
	case dyntl.OpBytes:
		return "[]byte"
	case dyntl.OpBool, dyntl.OpTrue:
		return "bool"
	case dyntl.OpVector:
		return "[]" + g.goType(op.Elem)
	case dyntl.OpObject:
		return "*" + GoName(op.Ctor.Name)
	case dyntl.OpDispatch:
		if op.Type == nil {
			return "TlObject"
		}
		return className(op.Type.Name)
	default:
		return "any"
	}
}

func (g *fileGen) emitStore(e *emitter, op *dyntl.FieldOp, ref string, depth int) {
	switch op.Kind {
	case dyntl.OpNat:
		e.line("enc.StoreNat(%s)", ref)
	case dyntl.OpInt32:
		e.line("enc.StoreInt32(%s)", ref)
	case dyntl.OpInt53:
		e.line("enc.StoreInt53(%s)", ref)
	case dyntl.OpInt64:
		e.line("enc.StoreInt64(%s)", ref)
	case dyntl.OpInt128:
		e.line("enc.StoreInt128(%s)", ref)
	case dyntl.OpInt256:
		e.line("enc.StoreInt256(%s)", ref)
	case dyntl.OpDouble:
		e.line("enc.StoreDouble(%s)", ref)
	case dyntl.OpString:
		e.line("enc.StoreString(%s)", ref)
	case dyntl.OpBytes:
		e.line("enc.StoreBytes(%s)", ref)
	case dyntl.OpBool:
		e.line("enc.StoreBool(%s)", ref)
	case dyntl.OpVector:
		if op.Boxed {
			e.line("enc.StoreCtorID(tlwire.VectorID)")
		}
		e.line("enc.StoreNat(int32(len(%s)))", ref)
		v := fmt.Sprintf("v%d", depth)
		e.line("for _, %s := range %s {", v, ref)
		e.indent++
		g.emitStore(e, op.Elem, v, depth+1)
		e.indent--
		e.line("}")
	case dyntl.OpObject:
		if op.Boxed {
			e.line("%s.Store(enc)", ref)
		} else {
			e.line("%s.StoreBare(enc)", ref)
		}
	case dyntl.OpDispatch:
		e.line("%s.Store(enc)", ref)
	}
}

func (g *fileGen) emitFetch(e *emitter, op *dyntl.FieldOp, ref string, depth int) {
	switch op.Kind {
	case dyntl.OpNat:
		e.line("%s = dec.FetchNat()", ref)
	case dyntl.OpInt32:
		e.line("%s = dec.FetchInt32()", ref)
	case dyntl.OpInt53:
		e.line("%s = dec.FetchInt53()", ref)
	case dyntl.OpInt64:
		e.line("%s = dec.FetchInt64()", ref)
	case dyntl.OpInt128:
		e.line("%s = dec.FetchInt128()", ref)
	case dyntl.OpInt256:
		e.line("%s = dec.FetchInt256()", ref)
	case dyntl.OpDouble:
		e.line("%s = dec.FetchDouble()", ref)
	case dyntl.OpString:
		e.line("%s = dec.FetchString()", ref)
	case dyntl.OpBytes:
		e.line("%s = dec.FetchBytes()", ref)
	case dyntl.OpBool:
		e.line("%s = dec.FetchBool()", ref)
	case dyntl.OpTrue:
		e.line("%s = true", ref)
	case dyntl.OpVector:
		if op.Boxed {
			e.line("dec.ExpectID(tlwire.VectorID)")
		}
		n := fmt.Sprintf("n%d", depth)
		e.line("%s := int(dec.FetchNat())", n)
		e.line("if %s > dec.Remaining()/4 {", n)
		e.indent++
		e.line("dec.SetError(tlwire.ErrUnexpectedEOF)")
		e.line("%s = 0", n)
		e.indent--
		e.line("}")
		e.line("%s = make(%s, 0, %s)", ref, g.goType(op), n)
		i := fmt.Sprintf("i%d", depth)
		e.line("for %s := 0; %s < %s && dec.Error() == nil; %s++ {", i, i, n, i)
		e.indent++
		v := fmt.Sprintf("v%d", depth)
		e.line("var %s %s", v, g.goType(op.Elem))
		g.emitFetch(e, op.Elem, v, depth+1)
		e.line("%s = append(%s, %s)", ref, ref, v)
		e.indent--
		e.line("}")
	case dyntl.OpObject:
		e.line("%s = &%s{}", ref, GoName(op.Ctor.Name))
		if op.Boxed {
			e.line("%s.Fetch(dec)", ref)
		} else {
			e.line("%s.FetchBare(dec)", ref)
		}
	case dyntl.OpDispatch:
		e.line("%s = Fetch%s(dec)", ref, GoName(op.Type.Name))
	}
}

// emitter writes tab-indented statement lines.
type emitter struct {
	b      strings.Builder
	indent int
}

func (e *emitter) line(format string, args ...any) {
	for i := 0; i < e.indent; i++ {
		e.b.WriteByte('\t')
	}
	fmt.Fprintf(&e.b, format, args...)
	e.b.WriteByte('\n')
}
