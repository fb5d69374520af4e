// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package fuzz

import (
	"bytes"
	"fmt"
	"math/rand"
	"time"

	dyntl "github.com/tlcodec/dynamic-tl"
	"github.com/tlcodec/dynamic-tl/tlschema"
)

// Fuzzer generates random schema-conformant objects and checks the
// marshal/unmarshal round trip for them.
type Fuzzer struct {
	r        *rand.Rand
	edgeProb float64 // probability of generating edge case values
}

// NewFuzzer creates a new fuzzer with optional seed
func NewFuzzer(seed int64) *Fuzzer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Fuzzer{
		r:        rand.New(rand.NewSource(seed)),
		edgeProb: 0.1, // 10% chance of edge cases
	}
}

// SetEdgeProbability sets the probability of generating edge case values
func (f *Fuzzer) SetEdgeProbability(prob float64) {
	f.edgeProb = prob
}

// FuzzObject builds a random object of the named constructor, filling
// every required field and flipping optional fields at random.
func (f *Fuzzer) FuzzObject(d *dyntl.DynTl, ctorName string) (*dyntl.Object, error) {
	c := d.Schema().ConstructorByName(ctorName)
	if c == nil {
		return nil, fmt.Errorf("unknown constructor %q", ctorName)
	}
	return f.fuzzConstructor(d, c, 0)
}

// FuzzMarshalUnmarshal checks that an object survives a full encode,
// decode, re-encode cycle byte-identically.
func (f *Fuzzer) FuzzMarshalUnmarshal(d *dyntl.DynTl, o *dyntl.Object) error {
	marshaled, err := d.Marshal(o)
	if err != nil {
		return err
	}
	unmarshaled, err := d.Unmarshal(marshaled)
	if err != nil {
		return fmt.Errorf("unmarshal of valid encoding failed: %w", err)
	}
	remarshaled, err := d.Marshal(unmarshaled)
	if err != nil {
		return fmt.Errorf("re-marshal of decoded object failed: %w", err)
	}
	if !bytes.Equal(marshaled, remarshaled) {
		return fmt.Errorf("marshal mismatch: %x != %x", marshaled, remarshaled)
	}
	return nil
}

func (f *Fuzzer) fuzzConstructor(d *dyntl.DynTl, c *tlschema.Constructor, depth int) (*dyntl.Object, error) {
	if depth > 10 { // prevent runaway recursion on self-referential schemas
		return nil, fmt.Errorf("constructor %q nests too deep", c.Name)
	}
	p, err := d.Program(c)
	if err != nil {
		return nil, err
	}

	o := dyntl.NewObject(c.Name)
	for i := range p.Ops {
		op := &p.Ops[i]
		if op.Capture >= 0 {
			// flags words are derived from field presence
			continue
		}
		if op.CondVar >= 0 && f.r.Intn(2) == 0 {
			continue
		}
		if op.Kind == dyntl.OpTrue {
			o.Set(op.Name, true)
			continue
		}
		v, err := f.fuzzValue(d, op, depth)
		if err != nil {
			return nil, err
		}
		o.Set(op.Name, v)
	}
	return o, nil
}

func (f *Fuzzer) fuzzValue(d *dyntl.DynTl, op *dyntl.FieldOp, depth int) (any, error) {
	switch op.Kind {
	case dyntl.OpNat:
		return int32(f.r.Intn(1 << 30)), nil
	case dyntl.OpInt32:
		return f.randomInt32(), nil
	case dyntl.OpInt53:
		v := f.randomInt64()
		// clamp into the 53 bit range
		return v % (1 << 52), nil
	case dyntl.OpInt64:
		return f.randomInt64(), nil
	case dyntl.OpInt128:
		var v [16]byte
		f.r.Read(v[:])
		return v, nil
	case dyntl.OpInt256:
		var v [32]byte
		f.r.Read(v[:])
		return v, nil
	case dyntl.OpDouble:
		return f.r.NormFloat64(), nil
	case dyntl.OpString:
		return f.randomString(), nil
	case dyntl.OpBytes:
		return f.randomBytes(), nil
	case dyntl.OpBool:
		return f.r.Intn(2) == 1, nil
	case dyntl.OpVector:
		n := f.r.Intn(8)
		if f.shouldGenerateEdgeCase() {
			n = 0
		}
		out := make([]any, 0, n)
		for i := 0; i < n; i++ {
			v, err := f.fuzzValue(d, op.Elem, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case dyntl.OpObject:
		return f.fuzzConstructor(d, op.Ctor, depth+1)
	case dyntl.OpDispatch:
		if op.Type == nil || len(op.Type.Constructors) == 0 {
			return nil, fmt.Errorf("cannot fuzz variable-typed field %q", op.Name)
		}
		c := op.Type.Constructors[f.r.Intn(len(op.Type.Constructors))]
		return f.fuzzConstructor(d, c, depth+1)
	default:
		return nil, fmt.Errorf("unhandled field operation %d", op.Kind)
	}
}

// Random value generators with edge cases

func (f *Fuzzer) randomInt32() int32 {
	if f.shouldGenerateEdgeCase() {
		switch f.r.Intn(4) {
		case 0:
			return 0
		case 1:
			return -1
		case 2:
			return 1<<31 - 1
		default:
			return -1 << 31
		}
	}
	return int32(f.r.Uint32())
}

func (f *Fuzzer) randomInt64() int64 {
	if f.shouldGenerateEdgeCase() {
		switch f.r.Intn(4) {
		case 0:
			return 0
		case 1:
			return -1
		case 2:
			return 1<<63 - 1
		default:
			return -1 << 63
		}
	}
	return int64(f.r.Uint64())
}

func (f *Fuzzer) randomString() string {
	if f.shouldGenerateEdgeCase() {
		switch f.r.Intn(4) {
		case 0:
			return ""
		case 1:
			return "\x00"
		case 2:
			// long enough to need the wide length prefix
			return string(f.randomBytesN(300))
		default:
			return "🚀"
		}
	}
	return string(f.randomBytesN(f.r.Intn(50)))
}

func (f *Fuzzer) randomBytes() []byte {
	if f.shouldGenerateEdgeCase() {
		return []byte{}
	}
	return f.randomBytesN(f.r.Intn(64))
}

func (f *Fuzzer) randomBytesN(n int) []byte {
	b := make([]byte, n)
	f.r.Read(b)
	return b
}

func (f *Fuzzer) shouldGenerateEdgeCase() bool {
	return f.r.Float64() < f.edgeProb
}
