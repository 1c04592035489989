// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import "reflect"

// DataKind identifies the mutable-data type a queue or an event handler
// declares, by type identity rather than by name, so that a queue created
// with CreateQueueWithData[T] and a handler attached via SetHandler can be
// checked for agreement the moment the handler is attached (§3, "per-queue
// mutable data").
//
// The zero DataKind, NoData, declares "no mutable data": a queue left at
// NoData never threads a data pointer into dispatch, and a handler declaring
// NoData never receives one, regardless of what the queue it's attached to
// declares.
type DataKind struct {
	typ  reflect.Type
	name string
}

// NoData is the DataKind every plain Queue and every handler that doesn't
// need per-dispatch mutable data declares.
var NoData DataKind

// dataKindFor returns the DataKind identifying T.
func dataKindFor[T any]() DataKind {
	t := reflect.TypeFor[T]()
	return DataKind{typ: t, name: t.String()}
}

// String renders the declared type's name, or "none" for NoData, for use in
// panic messages.
func (k DataKind) String() string {
	if k.typ == nil {
		return "none"
	}
	return k.name
}
