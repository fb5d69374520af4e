// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package dyntl_test

import (
	"bytes"
	"errors"
	"testing"

	dyntl "github.com/tlcodec/dynamic-tl"
	"github.com/tlcodec/dynamic-tl/tlwire"
)

func TestUnmarshalRoundTrip(t *testing.T) {
	d := newTestCodec(t)
	tests := []struct {
		name string
		obj  *dyntl.Object
	}{
		{"user", dyntl.NewObject("user").Set("id", int64(42)).Set("name", "bob")},
		{"peer", dyntl.NewObject("peerChat").Set("chat_id", int64(-9))},
		{"message_minimal", dyntl.NewObject("message").
			Set("text", "hi").
			Set("from", dyntl.NewObject("user").Set("id", int64(1)).Set("name", "a")).
			Set("to", dyntl.NewObject("peerUser").Set("user_id", int64(2)))},
		{"message_full", dyntl.NewObject("message").
			Set("pinned", true).
			Set("text", "hello world").
			Set("views", int32(1000)).
			Set("from", dyntl.NewObject("user").Set("id", int64(1)).Set("name", "a")).
			Set("to", dyntl.NewObject("peerChat").Set("chat_id", int64(3)))},
		{"message_empty", dyntl.NewObject("messageEmpty")},
		{"blob", dyntl.NewObject("blob").
			Set("ok", true).
			Set("data", []byte{0xde, 0xad, 0xbe, 0xef, 0x01}).
			Set("score", -1.25).
			Set("nonce", [16]byte{1, 2, 3, 4}).
			Set("tags", []any{"a", "bb", "ccc"}).
			Set("peers", []any{
				dyntl.NewObject("peerUser").Set("user_id", int64(5)),
				dyntl.NewObject("peerChat").Set("chat_id", int64(6)),
			})},
		{"matrix", dyntl.NewObject("matrix").
			Set("rows", []any{
				[]any{int32(1), int32(2)},
				[]any{},
				[]any{int32(3)},
			})},
		{"matrix_empty", dyntl.NewObject("matrix").Set("rows", []any{})},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			data, err := d.Marshal(test.obj)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			got, err := d.Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			again, err := d.Marshal(got)
			if err != nil {
				t.Fatalf("re-Marshal: %v", err)
			}
			if !bytes.Equal(data, again) {
				t.Errorf("re-encode mismatch:\nfirst  0x%x\nsecond 0x%x", data, again)
			}
		})
	}
}

func TestUnmarshalNonCanonicalString(t *testing.T) {
	d := newTestCodec(t)

	canonical, err := d.Marshal(dyntl.NewObject("user").Set("id", int64(42)).Set("name", "ab"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	// ctor(4) + id(8) + prefix(1) + "ab"(2) + pad(1)
	dirtyPad := append([]byte(nil), canonical...)
	dirtyPad[len(dirtyPad)-1] = 0xbe

	// same string with the long-form length prefix
	longForm := append([]byte(nil), canonical[:12]...)
	longForm = append(longForm, 0xfe, 2, 0, 0, 'a', 'b', 0, 0)

	for _, test := range []struct {
		name string
		data []byte
	}{
		{"nonzero_padding", dirtyPad},
		{"long_form_prefix", longForm},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, err := d.Unmarshal(test.data)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got.Int64("id") != 42 || got.String("name") != "ab" {
				t.Errorf("wrong fields: %+v", got)
			}
			again, err := d.Marshal(got)
			if err != nil {
				t.Fatalf("re-Marshal: %v", err)
			}
			if !bytes.Equal(again, canonical) {
				t.Errorf("re-encode not canonical:\ngot  0x%x\nwant 0x%x", again, canonical)
			}
		})
	}
}

func TestUnmarshalFlagsMaterialized(t *testing.T) {
	d := newTestCodec(t)

	data, err := d.Marshal(dyntl.NewObject("opts").Set("b", int32(5)))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := d.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Int32("flags") != 0b010 {
		t.Errorf("wrong flags field: %d", got.Int32("flags"))
	}
	if got.Has("a") || got.Has("c") {
		t.Error("absent gated field materialized")
	}
	if got.Int32("b") != 5 {
		t.Errorf("wrong gated field: %d", got.Int32("b"))
	}
}

func TestUnmarshalTrueField(t *testing.T) {
	d := newTestCodec(t)

	src := dyntl.NewObject("message").
		Set("pinned", true).
		Set("text", "x").
		Set("from", dyntl.NewObject("user").Set("id", int64(1)).Set("name", "a")).
		Set("to", dyntl.NewObject("peerUser").Set("user_id", int64(2)))
	data, err := d.Marshal(src)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := d.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Bool("pinned") {
		t.Error("presence-only field not restored")
	}
}

func TestUnmarshalUnknownConstructor(t *testing.T) {
	d := newTestCodec(t)

	enc := tlwire.NewEncoder()
	enc.StoreCtorID(0x12345678)
	data := enc.Bytes()

	for i := 0; i < 3; i++ {
		_, err := d.Unmarshal(data)
		if !errors.Is(err, tlwire.ErrUnknownConstructor) {
			t.Fatalf("attempt %d: expected unknown constructor error, got %v", i, err)
		}
	}
}

func TestUnmarshalTypeRestricted(t *testing.T) {
	d := newTestCodec(t)

	data, err := d.Marshal(dyntl.NewObject("peerChat").Set("chat_id", int64(1)))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := d.UnmarshalType("Peer", data)
	if err != nil {
		t.Fatalf("UnmarshalType(Peer): %v", err)
	}
	if got.Ctor != "peerChat" {
		t.Errorf("wrong constructor: %q", got.Ctor)
	}

	// a valid Peer id is not a valid User id
	_, err = d.UnmarshalType("User", data)
	if !errors.Is(err, tlwire.ErrUnknownConstructor) {
		t.Errorf("expected unknown constructor error, got %v", err)
	}
}

func TestUnmarshalNestedConstructorMismatch(t *testing.T) {
	d := newTestCodec(t)

	src := dyntl.NewObject("message").
		Set("text", "x").
		Set("from", dyntl.NewObject("user").Set("id", int64(1)).Set("name", "a")).
		Set("to", dyntl.NewObject("peerUser").Set("user_id", int64(2)))
	data, err := d.Marshal(src)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	// corrupt the nested user ctor id: flags word + string "x" precede it
	pos := 4 + 4 + 4
	copy(data[pos:], []byte{0, 0, 0, 0})
	_, err = d.Unmarshal(data)
	if !errors.Is(err, tlwire.ErrUnexpectedConstructor) {
		t.Errorf("expected unexpected constructor error, got %v", err)
	}
}

func TestUnmarshalTrailingData(t *testing.T) {
	d := newTestCodec(t)

	data, err := d.Marshal(dyntl.NewObject("peerUser").Set("user_id", int64(1)))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	data = append(data, 0, 0, 0, 0)
	_, err = d.Unmarshal(data)
	if !errors.Is(err, tlwire.ErrTrailingData) {
		t.Errorf("expected trailing data error, got %v", err)
	}
}

func TestUnmarshalTruncated(t *testing.T) {
	d := newTestCodec(t)

	data, err := d.Marshal(dyntl.NewObject("user").Set("id", int64(1)).Set("name", "alice"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for cut := 1; cut < len(data); cut++ {
		_, err := d.Unmarshal(data[:len(data)-cut])
		if err == nil {
			t.Errorf("truncation by %d bytes accepted", cut)
		}
	}
}

func TestUnmarshalHostileVectorCount(t *testing.T) {
	d := newTestCodec(t)

	// counts far beyond the remaining bytes, including the maximum,
	// which would wrap a multiplied size check on 32-bit platforms
	for _, count := range []int32{1 << 28, 1<<31 - 1} {
		enc := tlwire.NewEncoder()
		enc.StoreCtorID(0x68b2a43f)
		enc.StoreCtorID(tlwire.VectorID)
		enc.StoreInt32(count)
		_, err := d.Unmarshal(enc.Bytes())
		if !errors.Is(err, tlwire.ErrUnexpectedEOF) {
			t.Errorf("count %d: expected eof error, got %v", count, err)
		}
	}
}

func TestFetchFromDecoder(t *testing.T) {
	d := newTestCodec(t)

	enc := tlwire.NewEncoder()
	if err := d.MarshalTo(dyntl.NewObject("peerUser").Set("user_id", int64(7)), enc); err != nil {
		t.Fatalf("MarshalTo: %v", err)
	}
	if err := d.MarshalTo(dyntl.NewObject("peerChat").Set("chat_id", int64(8)), enc); err != nil {
		t.Fatalf("MarshalTo: %v", err)
	}

	dec := tlwire.NewDecoder(enc.Bytes())
	first := d.Fetch(dec)
	second := d.Fetch(dec)
	if err := dec.FetchEnd(); err != nil {
		t.Fatalf("FetchEnd: %v", err)
	}
	if first == nil || first.Ctor != "peerUser" || first.Int64("user_id") != 7 {
		t.Errorf("wrong first object: %+v", first)
	}
	if second == nil || second.Ctor != "peerChat" || second.Int64("chat_id") != 8 {
		t.Errorf("wrong second object: %+v", second)
	}
}
