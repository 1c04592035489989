// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package corewayland

import "github.com/wl-client-go/wlclient"

// Callback is the one-shot wl_callback object returned by Display.Sync: it
// fires Done exactly once and is otherwise inert (protocols/wayland/wl_callback.rs).
type Callback struct {
	proxy *wlclient.UntypedOwnedProxy
}

// OnDone registers f to run when the callback fires, then destroys the
// local proxy — wl_callback has no destroy request of its own; the
// compositor retires the object server-side the moment it sends done, and
// the client only needs to free its local wl_proxy afterward.
func (c *Callback) OnDone(f func(callbackData uint32)) {
	c.proxy.SetHandler(wlclient.EventHandlerFunc(func(_ *wlclient.UntypedBorrowedProxy, opcode uint32, args []wlclient.Arg, _ any) {
		if opcode == 0 {
			f(args[0].Uint)
		}
		c.proxy.Destroy()
	}), wlclient.NoData)
}
