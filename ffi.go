// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import "unsafe"

// This file mirrors the C types and function table of libwayland-client, the
// way clipboard_wayland.go mirrored a small slice of the same ABI for
// wlr-data-control. Every field here has a fixed, libwayland-defined memory
// layout; only the pieces this runtime actually needs are modeled.

// messageT mirrors the libwayland wl_message type: name, wire signature, and
// the referenced-interface table for "o"/"n" arguments.
type messageT struct {
	name      *byte
	signature *byte
	types     *uintptr // *[]*interfaceT, one slot per argument (0 for non o/n args)
}

// interfaceT mirrors the libwayland wl_interface type.
type interfaceT struct {
	name         *byte
	version      int32
	methodCount  int32
	methods      *messageT
	eventCount   int32
	events       *messageT
}

// argumentT mirrors the libwayland wl_argument union. Go has no native
// union; we model it as the widest member (a pointer-sized word) and
// interpret it per signature character, exactly as libwayland's dispatcher
// trampolines do.
type argumentT uintptr

func (a argumentT) asInt32() int32      { return int32(uintptr(a)) }
func (a argumentT) asUint32() uint32    { return uint32(uintptr(a)) }
func (a argumentT) asFixed() Fixed      { return Fixed(int32(uintptr(a))) }
func (a argumentT) asFd() int32         { return int32(uintptr(a)) }
func (a argumentT) asString() *byte     { return (*byte)(unsafe.Pointer(uintptr(a))) }
func (a argumentT) asObject() uintptr   { return uintptr(a) }
func (a argumentT) asArray() unsafe.Pointer { return unsafe.Pointer(uintptr(a)) }

// WL_MARSHAL_FLAG_DESTROY is passed to wl_proxy_marshal_array_flags for
// destructor requests on server-created objects, so that id reuse by the
// compositor can never race a separate wl_proxy_destroy call (§6).
const wlMarshalFlagDestroy uint32 = 1 << 0

// symbols holds the full libwayland-client function table resolved once per
// Library. Each field is populated by purego.RegisterLibFunc in library.go;
// tests populate them directly with fakes, the way the original Rust crate's
// `Libwayland::inject_error` test hook swaps in fault behavior without a
// live compositor.
type symbols struct {
	displayConnect         func(name *byte) uintptr
	displayConnectToFd     func(fd int32) uintptr
	displayDisconnect      func(display uintptr)
	displayGetFd           func(display uintptr) int32
	displayDispatch        func(display uintptr) int32
	displayDispatchQueue   func(display uintptr, queue uintptr) int32
	displayDispatchPending func(display uintptr) int32
	displayDispatchQueuePending func(display uintptr, queue uintptr) int32
	displayFlush           func(display uintptr) int32
	displayGetError        func(display uintptr) int32
	displayPrepareRead      func(display uintptr) int32
	displayPrepareReadQueue func(display uintptr, queue uintptr) int32
	displayReadEvents       func(display uintptr) int32
	displayCancelRead       func(display uintptr)

	eventQueueCreate  func(display uintptr) uintptr
	eventQueueDestroy func(queue uintptr)

	proxyCreate            func(factory uintptr, iface uintptr) uintptr
	proxyCreateWrapper     func(proxy uintptr) uintptr
	proxyWrapperDestroy    func(wrapper uintptr)
	proxyMarshalArrayFlags func(proxy uintptr, opcode uint32, iface uintptr, version uint32, flags uint32, args uintptr) uintptr
	proxyMarshalArray      func(proxy uintptr, opcode uint32, args uintptr)
	proxySetQueue          func(proxy uintptr, queue uintptr)
	proxyGetVersion        func(proxy uintptr) uint32
	proxyGetID             func(proxy uintptr) uint32
	proxyDestroy           func(proxy uintptr)
	proxyAddDispatcher     func(proxy uintptr, dispatcherFunc uintptr, dispatcherData uintptr, data uintptr) int32
	proxySetUserData       func(proxy uintptr, data uintptr)
	proxyGetUserData       func(proxy uintptr) uintptr

	errnoLocation func() uintptr // glibc __errno_location, used to read errno after a -1 return
}
