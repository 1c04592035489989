// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"context"
	"fmt"
	"unsafe"
)

// queueCore is the state shared by Queue and BorrowedQueue: a wl_event_queue
// pointer (0 meaning the display's built-in default queue) plus the
// dispatch lock serializing dispatch on this queue (§4.4).
type queueCore struct {
	conn         *Connection
	ptr          uintptr
	owned        bool
	dispatchLock *reentrantMutex
	generation   uint64

	// dataKind is NoData for a plain queue, or the type CreateQueueWithData
	// declared it with. dataStack holds the &T supplied by the dispatch
	// call currently running on this queue, one entry per nesting level, so
	// that a handler invoked during a nested Dispatch/Roundtrip sees the
	// same pointer the outermost caller supplied (§4.5, "Mutable-data
	// TLS"). Both fields are only ever touched while holding dispatchLock,
	// which is what makes a plain slice (rather than something actually
	// thread-local) safe: dispatchLock already serializes every caller that
	// could observe or mutate this queue's dispatch state, reentrantly for
	// the one goroutine currently inside it.
	dataKind  DataKind
	dataStack []unsafe.Pointer
}

func newQueueCore(conn *Connection, ptr uintptr, owned bool) *queueCore {
	return &queueCore{conn: conn, ptr: ptr, owned: owned, dispatchLock: newSharedMutex()}
}

func (qc *queueCore) pushData(p unsafe.Pointer) {
	qc.dataStack = append(qc.dataStack, p)
}

func (qc *queueCore) popData() {
	qc.dataStack = qc.dataStack[:len(qc.dataStack)-1]
}

// currentData returns the data pointer supplied by the innermost dispatch
// call currently running on this queue, or nil if none is (a plain queue,
// or a queue-with-data queue dispatched incorrectly via its NoData-checked
// entry points, which panic before currentData would ever be consulted).
func (qc *queueCore) currentData() unsafe.Pointer {
	if len(qc.dataStack) == 0 {
		return nil
	}
	return qc.dataStack[len(qc.dataStack)-1]
}

// requireDataSupplied panics if this queue declares a data type but the
// caller reached dispatch without pushing a value for it — i.e. called
// DispatchPending, Dispatch, or Roundtrip directly on a QueueWithData
// instead of through its data-supplying equivalents.
func (qc *queueCore) requireDataSupplied() {
	if qc.dataKind.typ != nil && qc.currentData() == nil {
		panic(fmt.Sprintf("wlclient: queue requires mutable data of type %s", qc.dataKind))
	}
}

// Queue is an event queue this Connection owns: dispatching, destroying
// proxies bound to it, and Close (which destroys the underlying
// wl_event_queue, except for the connection's built-in default queue,
// which has no backing pointer to destroy).
type Queue struct {
	*queueCore
}

func newOwnedQueue(conn *Connection, ptr uintptr) *Queue {
	return &Queue{queueCore: newQueueCore(conn, ptr, true)}
}

// Close destroys this queue's underlying wl_event_queue. Any proxy still
// assigned to it is left dangling, matching wl_event_queue_destroy's own
// contract; callers are expected to have destroyed their proxies first.
func (q *Queue) Close() {
	if q.ptr != 0 {
		q.conn.lib.symbols.eventQueueDestroy(q.ptr)
	}
}

// BorrowedQueue is a reference to a queue this binding does not own: the
// connection's default queue, or one created elsewhere. It has the same
// dispatch surface as Queue but no Close.
type BorrowedQueue struct {
	*queueCore
}

// dispatchPendingRaw runs one non-blocking pass over already-buffered
// events for this queue, returning the number dispatched.
func (qc *queueCore) dispatchPendingRaw() (int, error) {
	var n int32
	if qc.ptr == 0 {
		n = qc.conn.lib.symbols.displayDispatchPending(qc.conn.display)
	} else {
		n = qc.conn.lib.symbols.displayDispatchQueuePending(qc.conn.display, qc.ptr)
	}
	if n == -1 {
		return 0, qc.conn.lib.lastOSError()
	}
	return int(n), nil
}

// DispatchPending dispatches every already-buffered event for this queue
// without blocking and without touching the socket (§4.4,
// dispatch_pending).
func (qc *queueCore) DispatchPending() (int, error) {
	qc.requireDataSupplied()
	g := qc.dispatchLock.Lock()
	defer g.Unlock()
	return qc.dispatchPendingRaw()
}

// Dispatch dispatches pending events, reading from the socket first if
// none are buffered (§4.4, dispatch). It blocks until either some events
// were dispatched or ctx is done.
func (qc *queueCore) Dispatch(ctx context.Context) (int, error) {
	qc.requireDataSupplied()
	g := qc.dispatchLock.Lock()
	defer g.Unlock()
	n, err := qc.dispatchPendingRaw()
	if err != nil || n > 0 {
		return n, err
	}
	if err := qc.conn.WaitForEvents(ctx, &Queue{queueCore: qc}); err != nil {
		return 0, err
	}
	return qc.dispatchPendingRaw()
}

// Roundtrip blocks until every request already submitted on this queue has
// been acknowledged by the compositor, via a temporary wl_callback and
// nested dispatch (§4.4, roundtrip). Unlike a direct call to libwayland's
// wl_display_roundtrip (which internally calls wl_display_prepare_read and
// wl_display_read_events on its own), this drives the wl_display.sync
// request and the resulting dispatch loop entirely through this
// connection's sharedReadLock coordinator via WaitForEvents/
// dispatchPendingRaw, so it never reads the socket outside that
// coordinator's single dedicated reader goroutine, and it honors ctx
// throughout instead of blocking unconditionally.
func (qc *queueCore) Roundtrip(ctx context.Context) error {
	qc.requireDataSupplied()
	g := qc.dispatchLock.Lock()
	defer g.Unlock()

	display := qc.conn.DisplayProxy(wlDisplayInterface)
	callback := display.NewChild(0, wlDisplayInterface.Requests[0], []Arg{{Kind: ArgNewID}}, wlCallbackInterface, 1)
	callback.SetQueue(qc)

	done := make(chan struct{})
	callback.SetHandler(EventHandlerFunc(func(_ *UntypedBorrowedProxy, opcode uint32, _ []Arg, _ any) {
		if opcode == 0 {
			close(done)
		}
	}), NoData)
	defer callback.Destroy()

	if err := qc.conn.Flush(); err != nil {
		return err
	}

	self := &Queue{queueCore: qc}
	for {
		select {
		case <-done:
			return nil
		default:
		}
		n, err := qc.dispatchPendingRaw()
		if err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		if err := qc.conn.WaitForEvents(ctx, self); err != nil {
			return err
		}
	}
}

// Scope runs f with a fresh DispatchScope bound to this queue's dispatch
// lock. Every proxy f attaches a handler to via SetHandlerScoped has that
// handler replaced with the canonical no-op handler the moment f returns,
// and every proxy f defers to DestroyScoped is destroyed then, so that
// nothing f closed over can be reached by a later event. scope.close runs
// from a defer, so this guarantee holds even if f panics: the cleanup pass
// completes before the panic continues to unwind past this call (§4.5,
// "Dispatch scope").
func (qc *queueCore) Scope(f func(scope *DispatchScope)) {
	g := qc.dispatchLock.Lock()
	defer g.Unlock()
	scope := newDispatchScope(qc)
	defer scope.close()
	f(scope)
}
