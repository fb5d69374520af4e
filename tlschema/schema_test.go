// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package tlschema_test

import (
	"strings"
	"testing"

	"github.com/tlcodec/dynamic-tl/tlschema"
)

func TestNewRegistersLookups(t *testing.T) {
	user := &tlschema.Constructor{Name: "user", ID: 0x01020304, TypeID: 200}
	userType := &tlschema.Type{Name: "User", ID: 200, Constructors: []*tlschema.Constructor{user}}
	getUser := &tlschema.Constructor{Name: "getUser", ID: 0x0a0b0c0d}

	s, err := tlschema.New([]*tlschema.Type{userType}, []*tlschema.Constructor{getUser})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := s.TypeByName("User"); got != userType {
		t.Errorf("TypeByName returned %v", got)
	}
	if got := s.ConstructorByName("user"); got != user {
		t.Errorf("ConstructorByName returned %v", got)
	}
	if got := s.ConstructorByID(0x01020304); got != user {
		t.Errorf("ConstructorByID returned %v", got)
	}
	if got := s.ConstructorByID(0x0a0b0c0d); got != getUser {
		t.Errorf("function lookup returned %v", got)
	}
	if got := s.ConstructorByID(0x12345678); got != nil {
		t.Errorf("unknown id returned %v", got)
	}
}

func TestNewRejectsDuplicateTypeName(t *testing.T) {
	a := &tlschema.Type{Name: "User", Constructors: []*tlschema.Constructor{{Name: "userA", ID: 1}}}
	b := &tlschema.Type{Name: "User", Constructors: []*tlschema.Constructor{{Name: "userB", ID: 2}}}
	_, err := tlschema.New([]*tlschema.Type{a, b}, nil)
	if err == nil || !strings.Contains(err.Error(), "duplicate type name") {
		t.Errorf("expected duplicate type name error, got %v", err)
	}
}

func TestNewRejectsDuplicateConstructorID(t *testing.T) {
	a := &tlschema.Type{Name: "A", Constructors: []*tlschema.Constructor{{Name: "a", ID: 7}}}
	b := &tlschema.Type{Name: "B", Constructors: []*tlschema.Constructor{{Name: "b", ID: 7}}}
	_, err := tlschema.New([]*tlschema.Type{a, b}, nil)
	if err == nil || !strings.Contains(err.Error(), "already used") {
		t.Errorf("expected duplicate id error, got %v", err)
	}
}

func TestConstructorByID(t *testing.T) {
	a := &tlschema.Constructor{Name: "a", ID: 1}
	b := &tlschema.Constructor{Name: "b", ID: 2}
	typ := &tlschema.Type{Name: "T", Constructors: []*tlschema.Constructor{a, b}}

	if got := typ.ConstructorByID(2); got != b {
		t.Errorf("got %v, want b", got)
	}
	if got := typ.ConstructorByID(3); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestTypeTreeBare(t *testing.T) {
	boxed := &tlschema.Type{Name: "Message"}
	bare := &tlschema.Type{Name: "dataJSON", BareDefault: true}

	tests := []struct {
		name string
		tree *tlschema.TypeTree
		want bool
	}{
		{"boxed_type", &tlschema.TypeTree{Kind: tlschema.TreeTypeRef, Type: boxed}, false},
		{"bare_default_type", &tlschema.TypeTree{Kind: tlschema.TreeTypeRef, Type: bare}, true},
		{"forced_bare", &tlschema.TypeTree{Kind: tlschema.TreeTypeRef, Type: boxed, Flags: tlschema.TreeFlagBare}, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.tree.Bare(); got != test.want {
				t.Errorf("Bare() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestIsBuiltin(t *testing.T) {
	for _, name := range []string{"#", "Int32", "Int53", "Int64", "Int128", "Int256", "Double", "String", "Bytes", "Bool", "True", "Vector"} {
		if !tlschema.IsBuiltin(name) {
			t.Errorf("IsBuiltin(%q) = false", name)
		}
	}
	if tlschema.IsBuiltin("User") {
		t.Error("IsBuiltin(User) = true")
	}
}

func TestArgumentConditional(t *testing.T) {
	plain := tlschema.Argument{ExistVarNum: -1}
	gated := tlschema.Argument{ExistVarNum: 0, ExistVarBit: 3}
	if plain.Conditional() {
		t.Error("unconditional argument reported conditional")
	}
	if !gated.Conditional() {
		t.Error("gated argument reported unconditional")
	}
}
