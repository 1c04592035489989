// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package corewayland

import "github.com/wl-client-go/wlclient"

// RegistryListener receives wl_registry events.
type RegistryListener interface {
	// Global announces a compositor-side object available for Bind.
	Global(name uint32, interfaceName string, version uint32)
	// GlobalRemove announces that name is no longer available; any proxy
	// already bound to it remains valid, but binding it again will fail.
	GlobalRemove(name uint32)
}

// Registry is the wl_registry singleton returned by Display.GetRegistry.
type Registry struct {
	proxy *wlclient.UntypedOwnedProxy
}

// Listen registers listener for this registry's events. Do this before the
// next round-trip to see every global the compositor currently advertises.
func (r *Registry) Listen(listener RegistryListener) {
	r.proxy.SetHandler(wlclient.EventHandlerFunc(func(_ *wlclient.UntypedBorrowedProxy, opcode uint32, args []wlclient.Arg, _ any) {
		switch opcode {
		case 0: // global
			listener.Global(args[0].Uint, wlclient.DerefString(args[1].Str), args[2].Uint)
		case 1: // global_remove
			listener.GlobalRemove(args[0].Uint)
		}
	}), wlclient.NoData)
}

// Bind requests a proxy for the global named name, advertised as
// implementing iface at the given version.
func (r *Registry) Bind(name uint32, iface *wlclient.Interface, version uint32) *wlclient.UntypedOwnedProxy {
	return r.proxy.NewChild(0, RegistryInterface.Requests[0], []wlclient.Arg{
		{Kind: wlclient.ArgUint, Uint: name},
		{Kind: wlclient.ArgString, Str: &iface.Name},
		{Kind: wlclient.ArgUint, Uint: version},
		{Kind: wlclient.ArgNewID},
	}, iface, version)
}

// Destroy destroys this registry's local proxy.
func (r *Registry) Destroy() { r.proxy.Destroy() }
