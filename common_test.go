// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package dyntl_test

import (
	"testing"

	dyntl "github.com/tlcodec/dynamic-tl"
	"github.com/tlcodec/dynamic-tl/tlschema"
)

// testSchemaDoc covers every wire shape the codec handles: primitive
// fields, flag-gated fields, presence-only True fields, nested bare and
// boxed objects, multi-constructor dispatch and nested vectors.
var testSchemaDoc = `
constants:
  PINNED_BIT: "0"
  VIEWS_BIT: "1"
  A_BIT: "0"
  B_BIT: "1"
  C_BIT: "2"
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
      - name: messageEmpty
        id: "0x83e5de54"
  - name: Opts
    constructors:
      - name: opts
        id: "0x1c563459"
        args:
          - {name: flags, type: "#", var: 0}
          - {name: a, type: Int32, when: flags.A_BIT}
          - {name: b, type: Int32, when: flags.B_BIT}
          - {name: c, type: Int32, when: flags.C_BIT}
  - name: Matrix
    constructors:
      - name: matrix
        id: "0x68b2a43f"
        args:
          - {name: rows, type: Vector<Vector<Int32>>}
  - name: Blob
    constructors:
      - name: blob
        id: "0x44bb55cc"
        args:
          - {name: ok, type: Bool}
          - {name: data, type: Bytes}
          - {name: score, type: Double}
          - {name: nonce, type: Int128}
          - {name: tags, type: Vector<String>}
          - {name: peers, type: Vector<Peer>}
`

func newTestCodec(t *testing.T) *dyntl.DynTl {
	t.Helper()
	s, err := tlschema.LoadYAML([]byte(testSchemaDoc))
	if err != nil {
		t.Fatalf("failed to load test schema: %v", err)
	}
	return dyntl.NewDynTl(s)
}
