// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package corewayland

import "github.com/wl-client-go/wlclient"

// DisplayListener receives wl_display events.
type DisplayListener interface {
	// Error is sent when the compositor considers the client to have
	// committed a protocol error against objectID; the connection is
	// unusable once this fires.
	Error(objectID uint32, code uint32, message string)
	// DeleteID announces that the server has finished processing the
	// destructor for id and the client may now reuse it.
	DeleteID(id uint32)
}

// Bind returns conn's wl_display as a typed proxy, registering listener as
// its event handler. Call this once per connection; it is the Go
// counterpart of WlDisplay::from_connection in wl_display.rs.
func Bind(conn *wlclient.Connection, listener DisplayListener) *Display {
	proxy := conn.DisplayProxy(DisplayInterface)
	d := &Display{proxy: proxy}
	if listener != nil {
		proxy.SetHandler(wlclient.EventHandlerFunc(func(_ *wlclient.UntypedBorrowedProxy, opcode uint32, args []wlclient.Arg, _ any) {
			switch opcode {
			case 0: // error
				listener.Error(args[0].Object, args[1].Uint, wlclient.DerefString(args[2].Str))
			case 1: // delete_id
				listener.DeleteID(args[0].Uint)
			}
		}), wlclient.NoData)
	}
	return d
}

// Display is the well-known wl_display object itself, the entry point
// every other object is reached from.
type Display struct {
	proxy *wlclient.UntypedBorrowedProxy
}

// Sync asks the compositor for a round-trip marker: the returned Callback
// fires its Done event once every request submitted before Sync has been
// processed.
func (d *Display) Sync() *Callback {
	child := d.proxy.NewChild(0, DisplayInterface.Requests[0], []wlclient.Arg{{Kind: wlclient.ArgNewID}}, CallbackInterface, 1)
	return &Callback{proxy: child}
}

// GetRegistry returns the global registry, whose Global events enumerate
// every object the compositor currently advertises.
func (d *Display) GetRegistry() *Registry {
	child := d.proxy.NewChild(1, DisplayInterface.Requests[1], []wlclient.Arg{{Kind: wlclient.ArgNewID}}, RegistryInterface, 1)
	return &Registry{proxy: child}
}
