// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"context"
	"unsafe"
)

// QueueWithData pairs an owned Queue with a value of type T that every
// handler attached to this queue with SetHandler(h, DataKindFor[T]())
// receives a live *T to on every event, threaded through dispatch via the
// queue's own data stack rather than stashed on the proxy (§3, "per-queue
// mutable data"; §4.5, "Mutable-data TLS"). It is the Go equivalent of the
// original's per-queue user data slot, used so an event handler and its
// caller can share mutable state without a separate mutex.
//
// Go has no generic methods with their own type parameters, but methods on
// a generic receiver using the receiver's own parameter are fine, so
// CreateQueueWithData is a package-level function (matching Connection's
// other Create* constructors) while DispatchPending/Dispatch/Roundtrip are
// ordinary methods here, shadowing the NoData-only versions Queue
// contributes by embedding.
type QueueWithData[T any] struct {
	*Queue
	data *T
}

// CreateQueueWithData creates a new queue on conn and attaches initial as
// its protected data. Attach handlers to proxies assigned to this queue
// with SetHandler(h, DataKindFor[T]()) to receive it.
func CreateQueueWithData[T any](conn *Connection, initial T) *QueueWithData[T] {
	v := initial
	q := conn.CreateQueue()
	q.queueCore.dataKind = dataKindFor[T]()
	return &QueueWithData[T]{Queue: q, data: &v}
}

// DataKindFor is the DataKind a handler attached to a QueueWithData[T]
// passes to SetHandler to receive data's current value.
func DataKindFor[T any]() DataKind { return dataKindFor[T]() }

// WithData runs f with exclusive access to the queue's data, holding the
// dispatch lock for f's duration. Calling this from inside an event
// handler already dispatching on the same queue is safe: the dispatch
// lock is reentrant (§4.4).
func (q *QueueWithData[T]) WithData(f func(data *T)) {
	g := q.dispatchLock.Lock()
	defer g.Unlock()
	f(q.data)
}

// DispatchPending dispatches every already-buffered event for this queue,
// supplying data to every handler that declared DataKindFor[T]().
func (q *QueueWithData[T]) DispatchPending() (int, error) {
	g := q.dispatchLock.Lock()
	defer g.Unlock()
	q.pushData(unsafe.Pointer(q.data))
	defer q.popData()
	return q.dispatchPendingRaw()
}

// Dispatch dispatches pending events, reading from the socket first if none
// are buffered, supplying data to every handler that declared
// DataKindFor[T](). It blocks until either some events were dispatched or
// ctx is done.
func (q *QueueWithData[T]) Dispatch(ctx context.Context) (int, error) {
	g := q.dispatchLock.Lock()
	defer g.Unlock()
	q.pushData(unsafe.Pointer(q.data))
	defer q.popData()
	n, err := q.dispatchPendingRaw()
	if err != nil || n > 0 {
		return n, err
	}
	if err := q.conn.WaitForEvents(ctx, q.Queue); err != nil {
		return 0, err
	}
	return q.dispatchPendingRaw()
}

// Roundtrip blocks until every request already submitted on this queue has
// been acknowledged, supplying data to every handler invoked along the way,
// including to a handler that re-enters Roundtrip or Dispatch on this same
// queue from inside its own HandleEvent call (§8, "Nested dispatch with
// data": the reentrant dispatch lock lets the nested call through, and it
// observes the same *T because the push below is a no-op stack depth
// increase over the same pointer the outer call already pushed).
func (q *QueueWithData[T]) Roundtrip(ctx context.Context) error {
	g := q.dispatchLock.Lock()
	defer g.Unlock()
	q.pushData(unsafe.Pointer(q.data))
	defer q.popData()
	return q.queueCore.Roundtrip(ctx)
}
