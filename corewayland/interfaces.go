// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

// Package corewayland provides hand-written bindings for the three
// interfaces every Wayland client needs before any generated protocol code
// runs at all: wl_display, wl_registry, and wl_callback (§6,
// "Built-in core protocol"). A real generated binding for wayland.xml
// would produce the same shapes; these are written by hand because
// bootstrapping a connection happens before a generator has anywhere to
// write its output.
package corewayland

import "github.com/wl-client-go/wlclient"

// DisplayInterface describes wl_display: requests sync and get_registry,
// and the error/delete_id events (protocols/wayland/wl_display.rs).
var DisplayInterface = &wlclient.Interface{
	Name:    "wl_display",
	Version: 1,
	Requests: []wlclient.Message{
		{Name: "sync", Signature: "n", Types: []*wlclient.Interface{CallbackInterface}},
		{Name: "get_registry", Signature: "n", Types: []*wlclient.Interface{RegistryInterface}},
	},
	Events: []wlclient.Message{
		{Name: "error", Signature: "ous", Types: []*wlclient.Interface{nil, nil, nil}},
		{Name: "delete_id", Signature: "u", Types: []*wlclient.Interface{nil}},
	},
}

// RegistryInterface describes wl_registry: the bind request and the
// global/global_remove events (protocols/wayland/wl_registry, referenced
// from wl_display.rs's get_registry).
var RegistryInterface = &wlclient.Interface{
	Name:    "wl_registry",
	Version: 1,
	Requests: []wlclient.Message{
		// bind's "new_id" argument carries its own interface name and
		// version on the wire, since the bound interface is chosen at
		// runtime rather than fixed by the protocol; Types has no entry
		// for it precisely because it's generic (ffi.rs's "?" handling
		// for a new_id with no static interface).
		{Name: "bind", Signature: "usun", Types: []*wlclient.Interface{nil, nil, nil, nil}},
	},
	Events: []wlclient.Message{
		{Name: "global", Signature: "usu", Types: []*wlclient.Interface{nil, nil, nil}},
		{Name: "global_remove", Signature: "u", Types: []*wlclient.Interface{nil}},
	},
}

// CallbackInterface describes wl_callback: no requests (it is destroyed
// by the compositor firing its one event), and the done event
// (protocols/wayland/wl_callback.rs).
var CallbackInterface = &wlclient.Interface{
	Name:    "wl_callback",
	Version: 1,
	Events: []wlclient.Message{
		{Name: "done", Signature: "u", Types: []*wlclient.Interface{nil}},
	},
}
