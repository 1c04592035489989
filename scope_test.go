// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"strings"
	"testing"
	"unsafe"
)

func TestDispatchScopeSwapsHandlerToNoOpOnClose(t *testing.T) {
	qc := &queueCore{}
	pc := &proxyCore{iface: doneInterface(), queue: qc}
	called := false

	scope := newDispatchScope(qc)
	pc.SetHandlerScoped(scope, EventHandlerFunc(func(*UntypedBorrowedProxy, uint32, []Arg, any) { called = true }), NoData)
	scope.close()

	raw := rawUint(0)
	pc.dispatch(0, uintptr(unsafe.Pointer(&raw[0])))
	if called {
		t.Fatal("expected the scoped handler to have been replaced by the no-op handler on scope close")
	}
}

func TestDispatchScopeDuplicateAttachPanics(t *testing.T) {
	qc := &queueCore{}
	pc := &proxyCore{iface: doneInterface(), queue: qc}
	scope := newDispatchScope(qc)
	pc.SetHandlerScoped(scope, noOpEventHandler, NoData)

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on duplicate scope attachment")
		}
	}()
	pc.SetHandlerScoped(scope, noOpEventHandler, NoData)
}

func TestDispatchScopeUsedAfterClosePanics(t *testing.T) {
	qc := &queueCore{}
	scope := newDispatchScope(qc)
	scope.close()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic")
		}
		msg, _ := r.(string)
		if !strings.Contains(msg, "used after it exited") {
			t.Fatalf("panic message = %q", msg)
		}
	}()
	scope.checkLive()
}

func TestDispatchScopeClosesOnPanic(t *testing.T) {
	qc := newQueueCore(&Connection{}, 0, true)
	pc := &proxyCore{iface: doneInterface(), queue: qc}
	pc.SetHandler(noOpEventHandler, NoData)

	func() {
		defer func() { recover() }()
		qc.Scope(func(scope *DispatchScope) {
			pc.SetHandlerScoped(scope, EventHandlerFunc(func(*UntypedBorrowedProxy, uint32, []Arg, any) {}), NoData)
			panic("boom")
		})
	}()

	pc.mu.Lock()
	h := pc.handler
	pc.mu.Unlock()
	if _, ok := h.(noOpHandler); !ok {
		t.Fatal("expected scope.close to have run (swapping the handler to no-op) despite the panic")
	}
}

func TestDispatchScopeDestroyScopedDefersDestruction(t *testing.T) {
	destroyed := 0
	lib := &Library{symbols: symbols{proxyDestroy: func(uintptr) { destroyed++ }}}
	conn := &Connection{lib: lib}
	qc := newQueueCore(conn, 0, true)
	p := &UntypedOwnedProxy{proxyCore: &proxyCore{conn: conn, ptr: 1, iface: doneInterface(), queue: qc}}

	qc.Scope(func(scope *DispatchScope) {
		scope.DestroyScoped(p)
		if destroyed != 0 {
			t.Fatal("expected destruction to be deferred until scope close")
		}
	})

	if destroyed != 1 {
		t.Fatalf("destroyed = %d, want 1 after scope close", destroyed)
	}
}
