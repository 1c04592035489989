// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

// DispatchScope marks a bounded region of code running inside a queue's
// dispatch lock — typically the body passed to Queue.Scope — inside which
// handlers may close over non-static state: locals, stack frames, anything
// that stops being valid once the region returns. Every proxy whose handler
// is attached "into" the scope via SetHandlerScoped is tracked here; on
// scope exit every one of them is swapped back to the package's canonical
// no-op handler, and every proxy queued for destruction via DestroyScoped is
// actually destroyed, before the region's borrowed state can be observed as
// dangling by a later event (§4.5, "Dispatch scope").
//
// Calling a scope method after its region has returned panics, the same way
// using a borrow past its lifetime would fail to compile in a language that
// checks that statically; Go enforces it at runtime instead.
type DispatchScope struct {
	queue      *queueCore
	generation uint64
	exited     bool

	attached []*proxyCore
	destroy  []*UntypedOwnedProxy
}

func newDispatchScope(qc *queueCore) *DispatchScope {
	qc.generation++
	return &DispatchScope{queue: qc, generation: qc.generation}
}

// checkLive panics if this scope has already exited; proxy methods that
// require an active DispatchScope call this first.
func (s *DispatchScope) checkLive() {
	if s.exited || s.generation != s.queue.generation {
		panic("wlclient: dispatch scope used after it exited")
	}
}

// track records pc as attached to this scope, so close swaps its handler
// back to the no-op handler on the way out. Attaching the same proxy to the
// same scope twice is a programmer error.
func (s *DispatchScope) track(pc *proxyCore) {
	s.checkLive()
	for _, existing := range s.attached {
		if existing == pc {
			panic("wlclient: proxy already attached to this dispatch scope")
		}
	}
	s.attached = append(s.attached, pc)
}

// DestroyScoped defers destroying p until this scope exits, instead of
// destroying it immediately. Use this from inside a scoped handler that
// wants to retire its own proxy: destroying it mid-dispatch could otherwise
// invalidate the very wl_proxy libwayland is in the middle of delivering
// further batched events for.
func (s *DispatchScope) DestroyScoped(p *UntypedOwnedProxy) {
	s.checkLive()
	s.destroy = append(s.destroy, p)
}

// close runs scope exit: every attached proxy still alive has its handler
// replaced by the canonical no-op handler, then every proxy queued with
// DestroyScoped is destroyed. Both passes skip proxies destroyed by other
// means in the meantime.
func (s *DispatchScope) close() {
	for _, pc := range s.attached {
		pc.mu.Lock()
		if !pc.destroyed {
			pc.handler = noOpEventHandler
			pc.handlerKind = NoData
		}
		pc.mu.Unlock()
	}
	for _, p := range s.destroy {
		p.mu.Lock()
		destroyed := p.destroyed
		p.mu.Unlock()
		if !destroyed {
			p.Destroy()
		}
	}
	s.exited = true
}

// SetHandlerScoped installs h as pc's event handler for the lifetime of
// scope: on scope exit, pc reverts to the no-op handler even if the caller
// never detaches it explicitly. Use this instead of SetHandler whenever h
// closes over state that does not outlive scope's enclosing call.
func (pc *proxyCore) SetHandlerScoped(scope *DispatchScope, h EventHandler, dataKind DataKind) {
	scope.checkLive()
	pc.SetHandler(h, dataKind)
	scope.track(pc)
}
