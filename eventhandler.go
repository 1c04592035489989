// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

// EventHandler receives decoded events for a single proxy (§5). Generated
// per-interface bindings implement a typed wrapper around this and decode
// args themselves; this is the untyped layer they sit on.
type EventHandler interface {
	HandleEvent(proxy *UntypedBorrowedProxy, opcode uint32, args []Arg, data any)
}

// noOpHandler discards every event; DispatchScope installs it on proxies
// attached to the scope via SetHandlerScoped once the scope exits, so an
// event arriving for
// an object whose handler closure has gone out of scope is dropped rather
// than panicking (§4.6).
type noOpHandler struct{}

func (noOpHandler) HandleEvent(*UntypedBorrowedProxy, uint32, []Arg, any) {}

var noOpEventHandler EventHandler = noOpHandler{}

// EventHandlerFunc adapts a plain function to EventHandler, for callers
// that don't need a dedicated type.
type EventHandlerFunc func(proxy *UntypedBorrowedProxy, opcode uint32, args []Arg, data any)

func (f EventHandlerFunc) HandleEvent(proxy *UntypedBorrowedProxy, opcode uint32, args []Arg, data any) {
	f(proxy, opcode, args, data)
}
