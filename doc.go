// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

// Package wlclient is a safe, high-level client library for the Wayland
// display-server protocol, layered on top of the C libwayland-client shared
// object loaded at runtime via purego.
//
// The package hides the raw callback/marshalling C ABI behind typed proxies,
// event-handler contracts, and structured concurrency. Concrete per-interface
// bindings (wl_compositor, wl_surface, xdg_shell, ...) are produced by the
// code generator in the generator subpackage from Wayland protocol XML; this
// package only implements the runtime those bindings are built on:
//
//   - the library handle that loads libwayland-client.so (Library, Open)
//   - the connection supervisor that multiplexes the Wayland socket between
//     threads and event queues (Connection)
//   - the typed proxy layer (UntypedOwnedProxy, UntypedBorrowedProxy)
//   - event queues, dispatch scopes, and per-queue mutable data (Queue,
//     BorrowedQueue, Scope)
//
// Basic usage:
//
//	lib, err := wlclient.Open()
//	con, err := lib.ConnectToDefaultDisplay()
//	queue := con.CreateQueue()
//	// attach handlers and issue requests via generated bindings
//	err = queue.Roundtrip(context.Background())
package wlclient
