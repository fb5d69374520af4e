// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package dyntl

import (
	"fmt"

	"github.com/tlcodec/dynamic-tl/tlschema"
	"github.com/tlcodec/dynamic-tl/tlwire"
)

// Unmarshal decodes a boxed object from data, requiring the buffer to
// be consumed completely.
func (d *DynTl) Unmarshal(data []byte) (*Object, error) {
	dec := tlwire.NewDecoder(data)
	o := d.Fetch(dec)
	if err := dec.FetchEnd(); err != nil {
		return nil, err
	}
	return o, nil
}

// UnmarshalType decodes a boxed object of the named type from data,
// requiring the buffer to be consumed completely. Dispatch is
// restricted to the type's own constructors.
func (d *DynTl) UnmarshalType(typeName string, data []byte) (*Object, error) {
	t := d.schema.TypeByName(typeName)
	if t == nil {
		return nil, fmt.Errorf("unknown type %q", typeName)
	}
	dec := tlwire.NewDecoder(data)
	o := d.FetchType(t, dec)
	if err := dec.FetchEnd(); err != nil {
		return nil, err
	}
	return o, nil
}

// Fetch decodes one boxed object from the decoder, dispatching on the
// constructor identifier across the whole schema. Failures are recorded
// in the decoder's sticky error slot; the result is nil once an error
// is set.
func (d *DynTl) Fetch(dec *tlwire.Decoder) *Object {
	id := dec.FetchInt32()
	if dec.Error() != nil {
		return nil
	}
	c := d.schema.ConstructorByID(id)
	if c == nil {
		dec.SetError(fmt.Errorf("%w: 0x%08x", tlwire.ErrUnknownConstructor, uint32(id)))
		return nil
	}
	return d.fetchBare(c, dec)
}

// FetchType decodes one boxed object whose type is known, dispatching
// only across that type's constructors. An identifier belonging to any
// other type fails as unknown.
func (d *DynTl) FetchType(t *tlschema.Type, dec *tlwire.Decoder) *Object {
	id := dec.FetchInt32()
	if dec.Error() != nil {
		return nil
	}
	c := t.ConstructorByID(id)
	if c == nil {
		dec.SetError(fmt.Errorf("%w: 0x%08x for type %q", tlwire.ErrUnknownConstructor, uint32(id), t.Name))
		return nil
	}
	return d.fetchBare(c, dec)
}

// FetchBare decodes one bare object of a known constructor.
func (d *DynTl) FetchBare(c *tlschema.Constructor, dec *tlwire.Decoder) *Object {
	return d.fetchBare(c, dec)
}

// fetchBare runs a constructor's field operations against the decoder.
// Once the sticky error is set the remaining operations degrade to
// cheap no-ops; the partially filled object is discarded by the caller.
func (d *DynTl) fetchBare(c *tlschema.Constructor, dec *tlwire.Decoder) *Object {
	p, err := d.Program(c)
	if err != nil {
		dec.SetError(err)
		return nil
	}
	vars := newVarSlots(p)
	o := NewObject(c.Name)

	for i := range p.Ops {
		op := &p.Ops[i]
		if op.CondVar >= 0 {
			if !vars[op.CondVar].produced || vars[op.CondVar].value&(1<<op.CondBit) == 0 {
				continue
			}
			if op.Kind == OpTrue {
				o.Fields[op.Name] = true
				continue
			}
		}
		v := d.fetchValue(op, dec)
		if op.Capture >= 0 {
			word, _ := v.(int32)
			vars[op.Capture].produce(word)
		}
		if dec.Error() != nil {
			return nil
		}
		o.Fields[op.Name] = v
	}
	return o
}

func (d *DynTl) fetchValue(op *FieldOp, dec *tlwire.Decoder) any {
	switch op.Kind {
	case OpNat:
		return dec.FetchNat()
	case OpInt32:
		return dec.FetchInt32()
	case OpInt53:
		return dec.FetchInt53()
	case OpInt64:
		return dec.FetchInt64()
	case OpInt128:
		return dec.FetchInt128()
	case OpInt256:
		return dec.FetchInt256()
	case OpDouble:
		return dec.FetchDouble()
	case OpString:
		return dec.FetchString()
	case OpBytes:
		return dec.FetchBytes()
	case OpBool:
		return dec.FetchBool()
	case OpVector:
		if op.Boxed {
			dec.ExpectID(tlwire.VectorID)
		}
		n := int(dec.FetchNat())
		if dec.Error() != nil {
			return []any(nil)
		}
		// every element occupies at least 4 bytes; divide so the
		// comparison cannot overflow int on 32-bit platforms
		if n > dec.Remaining()/4 {
			dec.SetError(fmt.Errorf("%w: vector of %d elements exceeds %d remaining bytes", tlwire.ErrUnexpectedEOF, n, dec.Remaining()))
			return []any(nil)
		}
		out := make([]any, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, d.fetchValue(op.Elem, dec))
			if dec.Error() != nil {
				return []any(nil)
			}
		}
		return out
	case OpObject:
		if op.Boxed {
			dec.ExpectID(op.ExpectID)
		}
		return d.fetchBare(op.Ctor, dec)
	case OpDispatch:
		if op.Type != nil {
			return d.FetchType(op.Type, dec)
		}
		return d.Fetch(dec)
	default:
		dec.SetError(fmt.Errorf("unhandled field operation %d", op.Kind))
		return nil
	}
}
