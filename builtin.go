// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

// wlDisplayInterface and wlCallbackInterface are this runtime's own,
// built-in knowledge of wl_display.sync and wl_callback.done — the two
// messages Roundtrip needs to implement a round-trip marker the same way
// libwayland-client.so's own wl_display_roundtrip does internally, without
// depending on any generated or hand-written protocol binding. They
// describe exactly the same wire shapes as corewayland's DisplayInterface
// and CallbackInterface (duplicated here, not imported, since corewayland
// imports this package and a cycle back would be impossible); whichever of
// the two descriptions a given Connection's displayProxyCore is first
// bound with, both route the "sync" request to opcode 0 and the "done"
// event to opcode 0 identically.
var wlCallbackInterface = &Interface{
	Name:    "wl_callback",
	Version: 1,
	Events: []Message{
		{Name: "done", Signature: "u"},
	},
}

var wlDisplayInterface = &Interface{
	Name:    "wl_display",
	Version: 1,
	Requests: []Message{
		{Name: "sync", Signature: "n", Types: []*Interface{wlCallbackInterface}},
		{Name: "get_registry", Signature: "n"},
	},
	Events: []Message{
		{Name: "error", Signature: "ous"},
		{Name: "delete_id", Signature: "u"},
	},
}
