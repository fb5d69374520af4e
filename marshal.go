// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package dyntl

import (
	"fmt"

	"github.com/tlcodec/dynamic-tl/tlschema"
	"github.com/tlcodec/dynamic-tl/tlwire"
)

// Marshal encodes an object in boxed form, prefixed with its
// constructor identifier. The output is deterministic: equal objects
// always produce byte-identical buffers.
func (d *DynTl) Marshal(o *Object) ([]byte, error) {
	enc := tlwire.NewEncoder()
	if err := d.MarshalTo(o, enc); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// MarshalTo encodes an object in boxed form into an existing encoder.
func (d *DynTl) MarshalTo(o *Object, enc *tlwire.Encoder) error {
	p, err := d.programForName(o.Ctor)
	if err != nil {
		return err
	}
	enc.StoreCtorID(p.Ctor.ID)
	return d.storeBare(p, o, enc)
}

// MarshalBareTo encodes an object in bare form, without the leading
// constructor identifier.
func (d *DynTl) MarshalBareTo(o *Object, enc *tlwire.Encoder) error {
	p, err := d.programForName(o.Ctor)
	if err != nil {
		return err
	}
	return d.storeBare(p, o, enc)
}

// storeBare runs a constructor's field operations against an object.
// Flags words are produced first so that presence bits derived from the
// field map are already merged when the word itself is written.
func (d *DynTl) storeBare(p *Program, o *Object, enc *tlwire.Encoder) error {
	vars := newVarSlots(p)

	for i := range p.Ops {
		op := &p.Ops[i]
		if op.Capture < 0 {
			continue
		}
		var word int32
		if raw, ok := o.Fields[op.Name]; ok {
			w, ok := raw.(int32)
			if !ok {
				return fmt.Errorf("%w: field %q: expected int32, got %T", ErrTypeMismatch, op.Name, raw)
			}
			if w < 0 {
				return fmt.Errorf("field %q: %w", op.Name, tlwire.ErrNegativeNat)
			}
			word = w
		}
		for _, cb := range p.controlled[op.Capture] {
			present, err := d.fieldPresent(&p.Ops[cb.opIndex], o)
			if err != nil {
				return err
			}
			if present {
				word |= 1 << cb.bit
			} else if word&(1<<cb.bit) != 0 {
				return fmt.Errorf("%w: bit %d of %q gates field %q", ErrFlagFieldMissing, cb.bit, op.Name, p.Ops[cb.opIndex].Name)
			}
		}
		vars[op.Capture].produce(word)
	}

	for i := range p.Ops {
		op := &p.Ops[i]
		if op.CondVar >= 0 && vars[op.CondVar].value&(1<<op.CondBit) == 0 {
			continue
		}
		if op.Kind == OpTrue {
			// presence is fully carried by the flag bit
			continue
		}
		if op.Capture >= 0 {
			enc.StoreNat(vars[op.Capture].value)
			continue
		}
		v, ok := o.Fields[op.Name]
		if !ok {
			return fmt.Errorf("%w: %q of constructor %q", ErrMissingField, op.Name, p.Ctor.Name)
		}
		if err := d.storeValue(op, v, enc); err != nil {
			return fmt.Errorf("field %q: %w", op.Name, err)
		}
	}
	return nil
}

// fieldPresent reports whether a flag-gated field counts as present.
// True fields are present only when set to true; storing false is the
// same as omitting the field.
func (d *DynTl) fieldPresent(op *FieldOp, o *Object) (bool, error) {
	raw, ok := o.Fields[op.Name]
	if !ok {
		return false, nil
	}
	if op.Kind == OpTrue {
		b, ok := raw.(bool)
		if !ok {
			return false, fmt.Errorf("%w: field %q: expected bool, got %T", ErrTypeMismatch, op.Name, raw)
		}
		return b, nil
	}
	return true, nil
}

func (d *DynTl) storeValue(op *FieldOp, v any, enc *tlwire.Encoder) error {
	switch op.Kind {
	case OpNat:
		w, ok := v.(int32)
		if !ok {
			return fmt.Errorf("%w: expected int32, got %T", ErrTypeMismatch, v)
		}
		if w < 0 {
			return tlwire.ErrNegativeNat
		}
		enc.StoreNat(w)
	case OpInt32:
		w, ok := v.(int32)
		if !ok {
			return fmt.Errorf("%w: expected int32, got %T", ErrTypeMismatch, v)
		}
		enc.StoreInt32(w)
	case OpInt53:
		w, ok := v.(int64)
		if !ok {
			return fmt.Errorf("%w: expected int64, got %T", ErrTypeMismatch, v)
		}
		enc.StoreInt53(w)
	case OpInt64:
		w, ok := v.(int64)
		if !ok {
			return fmt.Errorf("%w: expected int64, got %T", ErrTypeMismatch, v)
		}
		enc.StoreInt64(w)
	case OpInt128:
		w, ok := v.([16]byte)
		if !ok {
			return fmt.Errorf("%w: expected [16]byte, got %T", ErrTypeMismatch, v)
		}
		enc.StoreInt128(w)
	case OpInt256:
		w, ok := v.([32]byte)
		if !ok {
			return fmt.Errorf("%w: expected [32]byte, got %T", ErrTypeMismatch, v)
		}
		enc.StoreInt256(w)
	case OpDouble:
		w, ok := v.(float64)
		if !ok {
			return fmt.Errorf("%w: expected float64, got %T", ErrTypeMismatch, v)
		}
		enc.StoreDouble(w)
	case OpString:
		w, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: expected string, got %T", ErrTypeMismatch, v)
		}
		if len(w) > tlwire.MaxStringLength {
			return tlwire.ErrStringTooLong
		}
		enc.StoreString(w)
	case OpBytes:
		w, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("%w: expected []byte, got %T", ErrTypeMismatch, v)
		}
		if len(w) > tlwire.MaxStringLength {
			return tlwire.ErrStringTooLong
		}
		enc.StoreBytes(w)
	case OpBool:
		w, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: expected bool, got %T", ErrTypeMismatch, v)
		}
		enc.StoreBool(w)
	case OpVector:
		w, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%w: expected []any, got %T", ErrTypeMismatch, v)
		}
		if op.Boxed {
			enc.StoreCtorID(tlwire.VectorID)
		}
		enc.StoreNat(int32(len(w)))
		for i, elem := range w {
			if err := d.storeValue(op.Elem, elem, enc); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
	case OpObject:
		w, ok := v.(*Object)
		if !ok {
			return fmt.Errorf("%w: expected *Object, got %T", ErrTypeMismatch, v)
		}
		if w.Ctor != op.Ctor.Name {
			return fmt.Errorf("%w: got %q, want %q", ErrConstructorMismatch, w.Ctor, op.Ctor.Name)
		}
		if op.Boxed {
			enc.StoreCtorID(op.Ctor.ID)
		}
		np, err := d.Program(op.Ctor)
		if err != nil {
			return err
		}
		return d.storeBare(np, w, enc)
	case OpDispatch:
		w, ok := v.(*Object)
		if !ok {
			return fmt.Errorf("%w: expected *Object, got %T", ErrTypeMismatch, v)
		}
		np, err := d.programForName(w.Ctor)
		if err != nil {
			return err
		}
		if op.Type != nil && !constructorOf(op.Type, np.Ctor) {
			return fmt.Errorf("%w: %q is not a constructor of %q", ErrConstructorMismatch, w.Ctor, op.Type.Name)
		}
		enc.StoreCtorID(np.Ctor.ID)
		return d.storeBare(np, w, enc)
	default:
		return fmt.Errorf("unhandled field operation %d", op.Kind)
	}
	return nil
}

func constructorOf(t *tlschema.Type, c *tlschema.Constructor) bool {
	return t.ConstructorByID(c.ID) != nil
}
