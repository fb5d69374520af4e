// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package codegen

import (
	"strings"
	"testing"

	dyntl "github.com/tlcodec/dynamic-tl"
	"github.com/tlcodec/dynamic-tl/tlschema"
)

const genTestSchema = `
constants:
  PINNED_BIT: "0"
  VIEWS_BIT: "1"
types:
  - name: User
    constructors:
      - name: user
        id: "0x7007fe73"
        args:
          - {name: id, type: Int64}
          - {name: name, type: String}
  - name: Peer
    constructors:
      - name: peerUser
        id: "0x211fe820"
        args:
          - {name: user_id, type: Int64}
      - name: peerChat
        id: "0x36c6019a"
        args:
          - {name: chat_id, type: Int64}
  - name: Message
    constructors:
      - name: message
        id: "0x5bb8e511"
        args:
          - {name: flags, type: "#", var: 0}
          - {name: pinned, type: True, when: flags.PINNED_BIT}
          - {name: text, type: String}
          - {name: views, type: Int32, when: flags.VIEWS_BIT}
          - {name: from, type: User}
          - {name: to, type: Peer}
  - name: Matrix
    constructors:
      - name: matrix
        id: "0x68b2a43f"
        args:
          - {name: rows, type: Vector<Vector<Int32>>}
functions:
  - name: getUser
    id: "0x10203040"
    type: User
    args:
      - {name: id, type: Int64}
  - name: invokeWith
    id: "0x50607080"
    type: User
    args:
      - {name: query, typevar: 0}
`

func newGenTestCodec(t *testing.T) *dyntl.DynTl {
	t.Helper()
	s, err := tlschema.LoadYAML([]byte(genTestSchema))
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	return dyntl.NewDynTl(s)
}

func generateOne(t *testing.T, names ...string) string {
	t.Helper()
	cg := NewCodeGenerator(newGenTestCodec(t), WithNoFormat())
	if err := cg.BuildFile("bindings.go", "bindings", names...); err != nil {
		t.Fatalf("BuildFile: %v", err)
	}
	out, err := cg.GenerateToMap()
	if err != nil {
		t.Fatalf("GenerateToMap: %v", err)
	}
	code, ok := out["bindings.go"]
	if !ok {
		t.Fatal("requested file missing from results")
	}
	return code
}

func TestGenerateConstructor(t *testing.T) {
	code := generateOne(t, "User")

	for _, want := range []string{
		"package bindings",
		"// Code generated by dyntl-gen",
		"type User struct {",
		"Id int64",
		"Name string",
		"const UserID = int32(1879572083)",
		"func (o *User) Store(enc *tlwire.Encoder) {",
		"enc.StoreCtorID(UserID)",
		"enc.StoreInt64(o.Id)",
		"enc.StoreString(o.Name)",
		"func (o *User) Fetch(dec *tlwire.Decoder) {",
		"dec.ExpectID(UserID)",
		"o.Id = dec.FetchInt64()",
		"o.Name = dec.FetchString()",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated code missing %q", want)
		}
	}
}

func TestGenerateClassDispatch(t *testing.T) {
	code := generateOne(t, "Peer")

	for _, want := range []string{
		"type PeerClass interface {",
		"func FetchPeer(dec *tlwire.Decoder) PeerClass {",
		"case PeerUserID:",
		"case PeerChatID:",
		"tlwire.ErrUnknownConstructor",
		`"fmt"`,
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated code missing %q", want)
		}
	}
}

func TestGenerateConditionalFields(t *testing.T) {
	code := generateOne(t, "Message", "User", "Peer")

	for _, want := range []string{
		"Flags int32",
		"Pinned bool",
		"if o.Flags&(1<<0) != 0 {",
		"if o.Flags&(1<<1) != 0 {",
		"o.Pinned = true",
		"o.Views = dec.FetchInt32()",
		"o.From = &User{}",
		"o.From.Fetch(dec)",
		"o.To = FetchPeer(dec)",
		"To PeerClass",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated code missing %q", want)
		}
	}
	// the pinned bit carries no wire bytes
	if strings.Contains(code, "StoreBool(o.Pinned)") {
		t.Error("presence-only field must not be stored")
	}
}

func TestGenerateVector(t *testing.T) {
	code := generateOne(t, "Matrix")

	for _, want := range []string{
		"Rows [][]int32",
		"enc.StoreCtorID(tlwire.VectorID)",
		"enc.StoreNat(int32(len(o.Rows)))",
		"for _, v0 := range o.Rows {",
		"for _, v1 := range v0 {",
		"dec.ExpectID(tlwire.VectorID)",
		"n0 := int(dec.FetchNat())",
		"if n0 > dec.Remaining()/4 {",
		"for i0 := 0; i0 < n0 && dec.Error() == nil; i0++ {",
		"var v0 []int32",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated code missing %q", want)
		}
	}
}

func TestGenerateFunction(t *testing.T) {
	code := generateOne(t, "getUser")

	if !strings.Contains(code, "type GetUser struct {") {
		t.Error("function binding missing")
	}
	if !strings.Contains(code, "func (o *GetUser) Store(enc *tlwire.Encoder) {") {
		t.Error("function store missing")
	}
}

func TestGenerateVariableTypeStoreOnly(t *testing.T) {
	code := generateOne(t, "invokeWith")

	for _, want := range []string{
		"type InvokeWith struct {",
		"Query TlObject",
		"o.Query.Store(enc)",
		"type TlObject interface {",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated code missing %q", want)
		}
	}
	// the payload type is chosen by the caller, so there is no fetch path
	if strings.Contains(code, "func (o *InvokeWith) Fetch(") {
		t.Error("variable-typed bindings must not have a fetch path")
	}
}

func TestGenerateFormatted(t *testing.T) {
	cg := NewCodeGenerator(newGenTestCodec(t))
	if err := cg.BuildFile("bindings.go", "bindings", "User"); err != nil {
		t.Fatalf("BuildFile: %v", err)
	}
	out, err := cg.GenerateToMap()
	if err != nil {
		t.Fatalf("GenerateToMap: %v", err)
	}
	code := out["bindings.go"]
	if strings.Contains(code, "\n\n\n") {
		t.Error("formatted output contains stacked blank lines")
	}
	if !strings.Contains(code, "github.com/tlcodec/dynamic-tl/tlwire") {
		t.Error("formatted output lost the tlwire import")
	}
}

func TestBuildFileValidation(t *testing.T) {
	cg := NewCodeGenerator(newGenTestCodec(t))
	if err := cg.BuildFile("bindings.go", "bindings", "NoSuchType"); err == nil {
		t.Error("unknown name accepted")
	}
	if err := cg.BuildFile("bindings.go", "", "User"); err == nil {
		t.Error("empty package accepted")
	}
	if err := cg.BuildFile("bindings.go", "bindings"); err == nil {
		t.Error("empty name list accepted")
	}
}

func TestGoName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user", "User"},
		{"peerUser", "PeerUser"},
		{"messages.sendMessage", "MessagesSendMessage"},
		{"input_peer_empty", "InputPeerEmpty"},
		{"Vector", "Vector"},
	}
	for _, test := range tests {
		if got := GoName(test.in); got != test.want {
			t.Errorf("GoName(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}
