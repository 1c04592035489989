// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"strings"
	"testing"
	"unsafe"
)

func doneInterface() *Interface {
	return &Interface{Name: "wl_callback", Version: 1, Events: []Message{{Name: "done", Signature: "u"}}}
}

func rawUint(v uint32) []argumentT {
	return []argumentT{argumentT(uintptr(v))}
}

// TestProxyDispatchQueueWithDataIncrement mirrors the "Queue-with-data
// increment" scenario: a handler declaring uint8 data sees the current
// value the queue is threading through dispatch and can mutate it in place.
func TestProxyDispatchQueueWithDataIncrement(t *testing.T) {
	qc := &queueCore{dataKind: dataKindFor[uint8]()}
	var counter uint8
	qc.pushData(unsafe.Pointer(&counter))
	defer qc.popData()

	pc := &proxyCore{iface: doneInterface(), queue: qc}
	pc.SetHandler(EventHandlerFunc(func(_ *UntypedBorrowedProxy, opcode uint32, _ []Arg, data any) {
		d := data.(*uint8)
		*d++
	}), dataKindFor[uint8]())

	raw := rawUint(0)
	pc.dispatch(0, uintptr(unsafe.Pointer(&raw[0])))

	if counter != 1 {
		t.Fatalf("counter = %d, want 1", counter)
	}
}

// TestProxyDispatchNestedDataSharesPointer mirrors the "Nested dispatch with
// data" scenario: an inner dispatch pass pushing the same queue's data again
// (the way Roundtrip/Dispatch do when called reentrantly from inside a
// handler) observes and mutates the exact same value the outer pass sees.
func TestProxyDispatchNestedDataSharesPointer(t *testing.T) {
	qc := &queueCore{dataKind: dataKindFor[uint8]()}
	var counter uint8
	qc.pushData(unsafe.Pointer(&counter))

	pc := &proxyCore{iface: doneInterface(), queue: qc}
	pc.SetHandler(EventHandlerFunc(func(_ *UntypedBorrowedProxy, opcode uint32, _ []Arg, data any) {
		d := data.(*uint8)
		*d++
		if *d != 1 {
			// The nested pass: nothing further to nest.
			return
		}
		// Simulate a nested dispatch call pushing the queue's data again.
		qc.pushData(unsafe.Pointer(d))
		func() {
			defer qc.popData()
			raw := rawUint(0)
			pc.dispatch(0, uintptr(unsafe.Pointer(&raw[0])))
		}()
	}), dataKindFor[uint8]())

	raw := rawUint(0)
	pc.dispatch(0, uintptr(unsafe.Pointer(&raw[0])))
	qc.popData()

	if counter != 2 {
		t.Fatalf("counter = %d, want 2 (one outer increment, one nested)", counter)
	}
}

func TestSetHandlerPanicsWhenQueueDeclaresNoData(t *testing.T) {
	qc := &queueCore{}
	pc := &proxyCore{iface: doneInterface(), queue: qc}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic")
		}
		msg, _ := r.(string)
		if !strings.Contains(msg, "requires mutable data of type") {
			t.Fatalf("panic message = %q, want it to mention requiring mutable data", msg)
		}
	}()
	pc.SetHandler(EventHandlerFunc(func(*UntypedBorrowedProxy, uint32, []Arg, any) {}), dataKindFor[uint8]())
}

func TestSetHandlerPanicsOnDataKindMismatch(t *testing.T) {
	qc := &queueCore{dataKind: dataKindFor[uint8]()}
	pc := &proxyCore{iface: doneInterface(), queue: qc}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic")
		}
		msg, _ := r.(string)
		if !strings.Contains(msg, "uint8") || !strings.Contains(msg, "string") {
			t.Fatalf("panic message = %q, want it to name both types", msg)
		}
	}()
	pc.SetHandler(EventHandlerFunc(func(*UntypedBorrowedProxy, uint32, []Arg, any) {}), dataKindFor[string]())
}

func TestSetHandlerAllowsNoDataHandlerOnDataQueue(t *testing.T) {
	qc := &queueCore{dataKind: dataKindFor[uint8]()}
	pc := &proxyCore{iface: doneInterface(), queue: qc}
	pc.SetHandler(EventHandlerFunc(func(*UntypedBorrowedProxy, uint32, []Arg, any) {}), NoData)
}

func TestRequireDataSuppliedPanicsWithoutPush(t *testing.T) {
	qc := &queueCore{dataKind: dataKindFor[uint8]()}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic")
		}
		msg, _ := r.(string)
		if !strings.Contains(msg, "requires mutable data of type") {
			t.Fatalf("panic message = %q", msg)
		}
	}()
	qc.requireDataSupplied()
}

func TestRequireDataSuppliedAllowsPushedData(t *testing.T) {
	qc := &queueCore{dataKind: dataKindFor[uint8]()}
	var v uint8
	qc.pushData(unsafe.Pointer(&v))
	defer qc.popData()
	qc.requireDataSupplied() // must not panic
}

func TestQueueWithDataCreateDeclaresDataKind(t *testing.T) {
	lib := &Library{symbols: symbols{eventQueueCreate: func(uintptr) uintptr { return 1 }}}
	conn := &Connection{lib: lib}
	q := CreateQueueWithData[uint8](conn, 0)
	if q.queueCore.dataKind.typ == nil {
		t.Fatal("expected CreateQueueWithData to declare a data kind")
	}
	if q.queueCore.dataKind != DataKindFor[uint8]() {
		t.Fatal("expected the queue's data kind to match DataKindFor[uint8]()")
	}
}
