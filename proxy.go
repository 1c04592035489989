// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
)

// proxyCore is the state shared by UntypedOwnedProxy and
// UntypedBorrowedProxy: a wl_proxy pointer, the interface describing it,
// and the event handler dispatch routes into (§5).
type proxyCore struct {
	conn  *Connection
	ptr   uintptr
	iface *Interface
	regID uintptr

	// queue is the queueCore this proxy's events are currently dispatched
	// on, kept in sync with the native wl_proxy_set_queue call through
	// SetQueue. It is what lets dispatch() find the &mut T a handler
	// attached to this proxy was promised, by looking at the queue's own
	// currently-dispatching data pointer rather than something stashed on
	// the proxy at SetHandler time (§4.5, "Mutable-data TLS").
	queue *queueCore

	mu          sync.Mutex
	destroyed   bool
	handler     EventHandler
	handlerKind DataKind
}

// checkDispatchingProxy panics if this proxy has already been destroyed,
// the Go-runtime-checked equivalent of the original's debug assertion
// that a proxy is never used past its destruction.
func (pc *proxyCore) checkDispatchingProxy() {
	pc.mu.Lock()
	destroyed := pc.destroyed
	pc.mu.Unlock()
	if destroyed {
		panic(ErrProxyDestroyed)
	}
}

// Interface returns the protocol interface this proxy implements.
func (pc *proxyCore) Interface() *Interface { return pc.iface }

// ID returns the proxy's wire object id (wl_proxy_get_id).
func (pc *proxyCore) ID() uint32 {
	pc.checkDispatchingProxy()
	return pc.conn.lib.symbols.proxyGetID(pc.ptr)
}

// Version returns the proxy's bound version (wl_proxy_get_version).
func (pc *proxyCore) Version() uint32 {
	pc.checkDispatchingProxy()
	return pc.conn.lib.symbols.proxyGetVersion(pc.ptr)
}

// SetHandler installs the EventHandler events for this proxy are routed to.
// dataKind declares what mutable-data type, if any, the handler expects to
// receive on every HandleEvent call; pass NoData for a handler that doesn't
// use the queue's per-dispatch data.
//
// Panics if dataKind names a type but the proxy's queue declares NoData, or
// if both declare a type and the two disagree (§4.5, "Mutable-data TLS").
// A handler that itself declares NoData is always accepted, the same way a
// generated Listen method that ignores the data parameter works on a
// queue-with-data queue.
func (pc *proxyCore) SetHandler(h EventHandler, dataKind DataKind) {
	if dataKind.typ != nil && pc.queue != nil {
		qk := pc.queue.dataKind
		switch {
		case qk.typ == nil:
			panic(fmt.Sprintf("wlclient: handler requires mutable data of type %s but its queue declares none", dataKind))
		case qk.typ != dataKind.typ:
			panic(fmt.Sprintf("wlclient: handler data type %s does not match queue data type %s", dataKind, qk))
		}
	}
	pc.mu.Lock()
	pc.handler = h
	pc.handlerKind = dataKind
	pc.mu.Unlock()
}

// SetQueue reassigns this proxy to qc, mirroring the change into libwayland
// via wl_proxy_set_queue. qc must not be nil; the connection's default
// queue is the queueCore with ptr == 0.
func (pc *proxyCore) SetQueue(qc *queueCore) {
	pc.checkDispatchingProxy()
	pc.conn.lib.symbols.proxySetQueue(pc.ptr, qc.ptr)
	pc.mu.Lock()
	pc.queue = qc
	pc.mu.Unlock()
}

func (pc *proxyCore) dispatch(opcode uint32, argsPtr uintptr) {
	pc.mu.Lock()
	h := pc.handler
	hk := pc.handlerKind
	q := pc.queue
	destroyed := pc.destroyed
	pc.mu.Unlock()
	if destroyed || h == nil {
		return
	}
	if int(opcode) >= len(pc.iface.Events) {
		return
	}
	msg := pc.iface.Events[opcode]
	sig := msg.Args()
	raw := make([]argumentT, len(sig))
	for i := range sig {
		raw[i] = *(*argumentT)(unsafe.Pointer(argsPtr + uintptr(i)*unsafe.Sizeof(argumentT(0))))
	}
	var data any
	if hk.typ != nil && q != nil {
		if p := q.currentData(); p != nil {
			data = reflect.NewAt(hk.typ, p).Interface()
		}
	}
	h.HandleEvent(&UntypedBorrowedProxy{proxyCore: pc}, opcode, DecodeArgs(sig, raw), data)
}

// MarshalRequest issues request opcode on this proxy, marshalling args per
// msg's signature. destroy marks the request as the object's destructor
// (WL_MARSHAL_FLAG_DESTROY), and newIface/newVersion describe the child
// object a "n" argument creates, if any. Generated bindings call this (or
// the higher-level Request/NewChild helpers) directly; it is exported so
// they can live outside this package.
func (pc *proxyCore) MarshalRequest(opcode uint32, msg Message, args []Arg, destroy bool, newIface *Interface, newVersion uint32) uintptr {
	pc.checkDispatchingProxy()
	sig := msg.Args()
	raw, cleanup := MarshalArgs(sig, args)
	defer cleanup()

	var flags uint32
	if destroy {
		flags |= wlMarshalFlagDestroy
	}
	var ifacePtr uintptr
	if newIface != nil {
		ifacePtr = interfaceTablePtr(newIface)
	}
	argsPtr := uintptr(0)
	if len(raw) > 0 {
		argsPtr = uintptr(unsafe.Pointer(&raw[0]))
	}
	result := pc.conn.lib.symbols.proxyMarshalArrayFlags(pc.ptr, opcode, ifacePtr, newVersion, flags, argsPtr)
	if newIface != nil && result == 0 {
		panic("wlclient: new wl_proxy is null")
	}
	if destroy {
		pc.mu.Lock()
		pc.destroyed = true
		pc.mu.Unlock()
	}
	return result
}

// Request marshals a request that creates no new object, optionally
// marking it as this proxy's destructor.
func (pc *proxyCore) Request(opcode uint32, msg Message, args []Arg, destroy bool) {
	pc.MarshalRequest(opcode, msg, args, destroy, nil, 0)
}

// NewChild marshals a request whose "new_id" argument creates a child
// object, wrapping the result as an UntypedOwnedProxy bound to iface. The
// child inherits the parent proxy's queue, matching libwayland's own default
// (a new object starts out on its factory's queue until SetQueue moves it).
func (pc *proxyCore) NewChild(opcode uint32, msg Message, args []Arg, iface *Interface, version uint32) *UntypedOwnedProxy {
	ptr := pc.MarshalRequest(opcode, msg, args, false, iface, version)
	return newOwnedProxy(pc.conn, ptr, iface, pc.queue)
}

var (
	proxyRegistryMu     sync.Mutex
	proxyRegistry        = map[uintptr]*proxyCore{}
	nextProxyRegistryID uintptr
)

// dispatcherTrampoline is the single libwayland dispatcher callback every
// proxy in this process shares, routing by the registry id passed as the
// dispatcher's opaque "data" pointer. A single shared trampoline avoids
// generating one purego.NewCallback per proxy, which the runtime never
// frees.
var dispatcherTrampoline = purego.NewCallback(func(regID, target uintptr, opcode uint32, message uintptr, args uintptr) int32 {
	proxyRegistryMu.Lock()
	pc := proxyRegistry[regID]
	proxyRegistryMu.Unlock()
	if pc != nil {
		pc.dispatch(opcode, args)
	}
	return 0
})

func registerProxyCore(pc *proxyCore) uintptr {
	id := atomic.AddUintptr(&nextProxyRegistryID, 1)
	proxyRegistryMu.Lock()
	proxyRegistry[id] = pc
	proxyRegistryMu.Unlock()
	return id
}

func unregisterProxyCore(id uintptr) {
	proxyRegistryMu.Lock()
	delete(proxyRegistry, id)
	proxyRegistryMu.Unlock()
}

func newProxyCore(conn *Connection, ptr uintptr, iface *Interface, queue *queueCore) *proxyCore {
	pc := &proxyCore{conn: conn, ptr: ptr, iface: iface, queue: queue}
	pc.regID = registerProxyCore(pc)
	conn.lib.symbols.proxyAddDispatcher(ptr, dispatcherTrampoline, pc.regID, 0)
	return pc
}

// UntypedOwnedProxy is a proxy this binding is responsible for destroying
// (typically one it created via a request's "new_id" argument), matching
// proxy/low_level/owned.
type UntypedOwnedProxy struct {
	*proxyCore
}

// newOwnedProxy wraps a freshly created wl_proxy pointer (already returned
// by a marshal call) as an owned proxy bound to queue.
func newOwnedProxy(conn *Connection, ptr uintptr, iface *Interface, queue *queueCore) *UntypedOwnedProxy {
	return &UntypedOwnedProxy{proxyCore: newProxyCore(conn, ptr, iface, queue)}
}

// Destroy calls wl_proxy_destroy. Using the proxy afterward panics.
func (p *UntypedOwnedProxy) Destroy() {
	p.checkDispatchingProxy()
	p.mu.Lock()
	p.destroyed = true
	p.mu.Unlock()
	unregisterProxyCore(p.regID)
	p.conn.lib.symbols.proxyDestroy(p.ptr)
}

// UntypedBorrowedProxy is a reference to a proxy this binding does not own
// — typically the proxy an event handler receives as its first argument —
// and therefore never destroys (proxy/low_level/borrowed).
type UntypedBorrowedProxy struct {
	*proxyCore
}

// wrapBorrowedProxy wraps an existing, already-dispatcher-attached wl_proxy
// pointer (for example one decoded out of an "o" event argument) without
// taking ownership of it. queue should be the queueCore the pointer is
// already assigned to, so handlers attached to the wrapper see the right
// per-dispatch data.
func wrapBorrowedProxy(conn *Connection, ptr uintptr, iface *Interface, queue *queueCore) *UntypedBorrowedProxy {
	return &UntypedBorrowedProxy{proxyCore: &proxyCore{conn: conn, ptr: ptr, iface: iface, queue: queue}}
}

