// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"sync"
	"unsafe"
)

// cInterfaceEntry owns the C wl_interface struct backing a Go Interface
// value, plus every byte slice and array it points into. libwayland reads
// these fields by following raw pointers long after this call returns
// (every new_id-creating request hands wl_proxy_marshal_array_flags the
// address of a method's return-type interface, which it stashes on the
// new wl_proxy for its own lifetime), so everything here must stay both
// alive and at a fixed address for as long as the process runs — the same
// never-freed lifetime dispatcherTrampoline already has in proxy.go.
type cInterfaceEntry struct {
	iface    interfaceT
	name     []byte
	methods  []messageT
	events   []messageT
	msgNames [][]byte
	msgSigs  [][]byte
	msgTypes [][]uintptr
}

var (
	cInterfaceMu    sync.Mutex
	cInterfaceCache = map[*Interface]*cInterfaceEntry{}
)

func cBytes(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

// buildCInterfaceLocked builds (or returns the cached) cInterfaceEntry for
// iface. Caller must hold cInterfaceMu. The entry is inserted into the
// cache before its fields are populated so that a self-referencing
// interface (an event argument whose type is the interface itself, as
// wl_surface's is in real protocol XML) resolves to the same, eventually
// fully-populated struct rather than recursing forever.
func buildCInterfaceLocked(iface *Interface) *cInterfaceEntry {
	if e, ok := cInterfaceCache[iface]; ok {
		return e
	}
	e := &cInterfaceEntry{}
	cInterfaceCache[iface] = e

	e.name = cBytes(iface.Name)
	e.iface.name = &e.name[0]
	e.iface.version = int32(iface.Version)

	e.methods = buildCMessagesLocked(iface.Requests, e)
	e.iface.methodCount = int32(len(iface.Requests))
	if len(e.methods) > 0 {
		e.iface.methods = &e.methods[0]
	}

	e.events = buildCMessagesLocked(iface.Events, e)
	e.iface.eventCount = int32(len(iface.Events))
	if len(e.events) > 0 {
		e.iface.events = &e.events[0]
	}
	return e
}

// buildCMessagesLocked builds the contiguous wl_message array for msgs,
// recursively building (and caching) the wl_interface tables referenced by
// any "o"/"n" argument that names a static target interface. Caller must
// hold cInterfaceMu.
func buildCMessagesLocked(msgs []Message, e *cInterfaceEntry) []messageT {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]messageT, len(msgs))
	for i, m := range msgs {
		nameBytes := cBytes(m.Name)
		sigBytes := cBytes(m.Signature)
		e.msgNames = append(e.msgNames, nameBytes)
		e.msgSigs = append(e.msgSigs, sigBytes)
		out[i].name = &nameBytes[0]
		out[i].signature = &sigBytes[0]

		if len(m.Types) == 0 {
			continue
		}
		typesArr := make([]uintptr, len(m.Types))
		for j, t := range m.Types {
			if t == nil {
				continue
			}
			sub := buildCInterfaceLocked(t)
			typesArr[j] = uintptr(unsafe.Pointer(&sub.iface))
		}
		e.msgTypes = append(e.msgTypes, typesArr)
		out[i].types = &typesArr[0]
	}
	return out
}

// interfaceTablePtr returns the address of the wl_interface C struct
// describing iface, building (and permanently caching) it on first use.
// Every new_id-creating MarshalRequest call passes this to
// wl_proxy_marshal_array_flags so libwayland knows the new object's
// interface and dispatch table, the same role the statically-emitted
// wl_interface tables in generated C client code play.
func interfaceTablePtr(iface *Interface) uintptr {
	if iface == nil {
		return 0
	}
	cInterfaceMu.Lock()
	defer cInterfaceMu.Unlock()
	e := buildCInterfaceLocked(iface)
	return uintptr(unsafe.Pointer(&e.iface))
}
