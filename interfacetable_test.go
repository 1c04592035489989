// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"testing"
	"unsafe"
)

func TestInterfaceTablePtrBasicLayout(t *testing.T) {
	child := &Interface{Name: "wl_callback", Version: 1, Events: []Message{
		{Name: "done", Signature: "u"},
	}}
	parent := &Interface{Name: "wl_display", Version: 1, Requests: []Message{
		{Name: "sync", Signature: "n", Types: []*Interface{child}},
	}}

	ptr := interfaceTablePtr(parent)
	if ptr == 0 {
		t.Fatal("interfaceTablePtr returned a null pointer")
	}
	ci := (*interfaceT)(unsafe.Pointer(ptr))
	if ci.version != 1 {
		t.Fatalf("version = %d, want 1", ci.version)
	}
	if ci.methodCount != 1 {
		t.Fatalf("methodCount = %d, want 1", ci.methodCount)
	}
	if ci.name == nil || *ci.name != 'w' {
		t.Fatal("name pointer not wired to a C string")
	}

	// The sync request's single "n" argument must reference the child
	// interface's own (cached) table, not a null or stray pointer.
	msg := ci.methods
	if msg.types == nil {
		t.Fatal("expected a non-nil types array for a new_id argument")
	}
	childPtr := *msg.types
	if childPtr == 0 {
		t.Fatal("expected the new_id argument to reference the child interface's table")
	}
	childIface := (*interfaceT)(unsafe.Pointer(childPtr))
	if childIface.eventCount != 1 {
		t.Fatalf("child eventCount = %d, want 1", childIface.eventCount)
	}
}

func TestInterfaceTablePtrStable(t *testing.T) {
	iface := &Interface{Name: "wl_registry", Version: 1}
	a := interfaceTablePtr(iface)
	b := interfaceTablePtr(iface)
	if a != b {
		t.Fatal("expected repeated calls for the same Interface to return the same address")
	}
}

func TestInterfaceTablePtrRecursiveSelfReference(t *testing.T) {
	surface := &Interface{Name: "wl_surface", Version: 1}
	surface.Events = []Message{{Name: "enter", Signature: "o", Types: []*Interface{surface}}}

	ptr := interfaceTablePtr(surface)
	if ptr == 0 {
		t.Fatal("interfaceTablePtr returned a null pointer for a self-referencing interface")
	}
	ci := (*interfaceT)(unsafe.Pointer(ptr))
	msg := ci.events
	selfPtr := *msg.types
	if selfPtr != ptr {
		t.Fatalf("self-referencing argument type = %#x, want the interface's own address %#x", selfPtr, ptr)
	}
}

func TestInterfaceTablePtrNil(t *testing.T) {
	if got := interfaceTablePtr(nil); got != 0 {
		t.Fatalf("interfaceTablePtr(nil) = %#x, want 0", got)
	}
}
