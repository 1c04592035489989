// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import "testing"

func TestMarshalDecodeArgsRoundTrip(t *testing.T) {
	sig := ParseSignature("ius")
	s := "hello"
	args := []Arg{
		{Kind: ArgInt, Int: -7},
		{Kind: ArgUint, Uint: 42},
		{Kind: ArgString, Str: &s},
	}
	raw, cleanup := MarshalArgs(sig, args)
	defer cleanup()

	decoded := DecodeArgs(sig, raw)
	if decoded[0].Int != -7 {
		t.Fatalf("Int = %d, want -7", decoded[0].Int)
	}
	if decoded[1].Uint != 42 {
		t.Fatalf("Uint = %d, want 42", decoded[1].Uint)
	}
	if decoded[2].Str == nil || *decoded[2].Str != "hello" {
		t.Fatalf("Str = %v, want \"hello\"", decoded[2].Str)
	}
}

func TestDerefString(t *testing.T) {
	if got := DerefString(nil); got != "" {
		t.Fatalf("DerefString(nil) = %q, want \"\"", got)
	}
	s := "x"
	if got := DerefString(&s); got != "x" {
		t.Fatalf("DerefString(&s) = %q, want \"x\"", got)
	}
}
