// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignature(t *testing.T) {
	cases := []struct {
		sig  string
		want []SigArg
	}{
		{"", nil},
		{"uo?sn", []SigArg{{ArgUint, false}, {ArgObject, false}, {ArgString, true}, {ArgNewID, false}}},
		{"3uo", []SigArg{{ArgUint, false}, {ArgObject, false}}}, // leading since-version digits skipped
	}
	for _, c := range cases {
		got := ParseSignature(c.sig)
		if len(got) != len(c.want) {
			t.Fatalf("ParseSignature(%q) = %v, want %v", c.sig, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("ParseSignature(%q)[%d] = %v, want %v", c.sig, i, got[i], c.want[i])
			}
		}
	}
}

func TestInterfaceCompatibleIdentical(t *testing.T) {
	a := &Interface{Name: "wl_output", Version: 2, Events: []Message{{Name: "geometry", Signature: "iiiiissi"}}}
	b := &Interface{Name: "wl_output", Version: 2, Events: []Message{{Name: "geometry", Signature: "iiiiissi"}}}
	if !a.Compatible(b) {
		t.Fatal("expected structurally identical interfaces to be compatible")
	}
}

func TestInterfaceCompatibleSignatureMismatch(t *testing.T) {
	a := &Interface{Name: "wl_output", Events: []Message{{Name: "geometry", Signature: "iiiiissi"}}}
	b := &Interface{Name: "wl_output", Events: []Message{{Name: "geometry", Signature: "iiiiiss"}}}
	if a.Compatible(b) {
		t.Fatal("expected differing signatures to be incompatible")
	}
}

func TestInterfaceCompatibleRecursive(t *testing.T) {
	// wl_surface-style self-reference: an event whose object argument
	// refers back to the same interface must not infinite-loop.
	surface := &Interface{Name: "wl_surface"}
	surface.Events = []Message{{Name: "enter", Signature: "o", Types: []*Interface{surface}}}

	other := &Interface{Name: "wl_surface"}
	other.Events = []Message{{Name: "enter", Signature: "o", Types: []*Interface{other}}}

	if !surface.Compatible(other) {
		t.Fatal("expected recursive self-referencing interfaces to be compatible")
	}
}

func TestInterfaceCompatibleNilVsTypedNewID(t *testing.T) {
	target := &Interface{Name: "wl_callback"}
	a := &Interface{Name: "wl_display", Requests: []Message{{Name: "sync", Signature: "n", Types: []*Interface{target}}}}
	b := &Interface{Name: "wl_display", Requests: []Message{{Name: "sync", Signature: "n", Types: []*Interface{nil}}}}
	if a.Compatible(b) {
		t.Fatal("expected a typed new_id and a generic new_id to be incompatible")
	}
}

func TestFixedRoundTrip(t *testing.T) {
	v := FixedFromFloat64(12.5)
	require.Equal(t, 12.5, v.ToFloat64())
}

func TestInterfaceString(t *testing.T) {
	i := &Interface{Name: "wl_compositor", Version: 6}
	assert.Equal(t, "wl_compositor@6", i.String())
}
