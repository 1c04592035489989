// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Connection is a live connection to a Wayland compositor (§4), bundling
// the supervisor tasks that make the blocking libwayland-client API usable
// from arbitrarily many goroutines: a flusher, an fd poller, and the
// shared read-lock coordinator. It is the Go counterpart of the Rust
// crate's Connection.
type Connection struct {
	lib     *Library
	display uintptr
	owned   bool
	fd      int

	executor *executor
	poller   *poller
	flusher  *flusher
	readLock *sharedReadLock

	mu               sync.Mutex
	defaultQueue     *Queue
	displayProxyCore *proxyCore
	closed           bool
}

// DisplayProxy returns this connection's wl_display as a proxy bound to
// iface. Callers normally pass corewayland.DisplayInterface; Roundtrip
// passes this package's own built-in copy (builtin.go). The proxy is created
// on the first call, and later calls return it bound to the interface that
// first call supplied.
func (c *Connection) DisplayProxy(iface *Interface) *UntypedBorrowedProxy {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.displayProxyCore == nil {
		c.displayProxyCore = newProxyCore(c, c.display, iface, c.defaultQueue.queueCore)
	}
	return &UntypedBorrowedProxy{proxyCore: c.displayProxyCore}
}

func newConnection(lib *Library, display uintptr, owned bool) (*Connection, error) {
	fd := int(lib.symbols.displayGetFd(display))
	if fd < 0 {
		return nil, newError(KindConnect, "wl_display_get_fd returned an invalid descriptor", nil)
	}

	p, err := newPoller(fd)
	if err != nil {
		return nil, newError(KindConnect, "failed to start fd poller", err)
	}

	c := &Connection{
		lib:     lib,
		display: display,
		owned:   owned,
		fd:      fd,
		executor: newExecutor(),
		poller:   p,
	}
	c.readLock = newSharedReadLock(readLockReader{lib: lib, display: display})
	c.flusher = newFlusher(c.executor, uintptr(fd), p.data, func() error {
		if lib.symbols.displayFlush(display) == -1 {
			return lib.lastOSError()
		}
		return nil
	})
	c.defaultQueue = newOwnedQueue(c, 0)
	return c, nil
}

// Fd returns the connection's underlying socket descriptor, mainly useful
// for integrating with an external event loop (§6, "Environment").
func (c *Connection) Fd() int { return c.fd }

// Flush schedules buffered requests to be written to the compositor; see
// flusher's doc comment for its non-blocking, coalesced semantics.
func (c *Connection) Flush() error {
	return c.flusher.Flush()
}

// Error reports the latched fatal error for this connection, if any
// (wl_display_get_error), the way a dropped socket or protocol error
// becomes visible to every caller afterward.
func (c *Connection) Error() error {
	if errno := c.lib.symbols.displayGetError(c.display); errno != 0 {
		return newError(KindProtocol, "wayland display is in an error state", nil)
	}
	return nil
}

// BorrowDefaultQueue returns the connection's default event queue (the one
// object creation uses when no explicit queue is supplied), as a
// BorrowedQueue: callers never destroy it.
func (c *Connection) BorrowDefaultQueue() *BorrowedQueue {
	return &BorrowedQueue{queueCore: c.defaultQueue.queueCore}
}

// BorrowForeignQueue wraps a wl_event_queue pointer this Connection does
// not own (for example one created by another binding sharing the same
// wl_display), as a BorrowedQueue.
func (c *Connection) BorrowForeignQueue(ptr uintptr) *BorrowedQueue {
	return &BorrowedQueue{queueCore: newQueueCore(c, ptr, false)}
}

// CreateQueue creates a new, connection-wide (thread-safe) event queue via
// wl_display_create_queue.
func (c *Connection) CreateQueue() *Queue {
	ptr := c.lib.symbols.eventQueueCreate(c.display)
	return newOwnedQueue(c, ptr)
}

// CreateLocalQueue creates a new event queue whose dispatch lock is
// restricted to the calling OS thread, matching the runtime.LockOSThread
// discipline clipboard_wayland.go used for its own Wayland calls: the
// caller must have pinned itself first.
func (c *Connection) CreateLocalQueue() *Queue {
	ptr := c.lib.symbols.eventQueueCreate(c.display)
	q := newOwnedQueue(c, ptr)
	q.dispatchLock = newThreadLocalMutex()
	return q
}

// CreateWatcher returns a QueueWatcher that wakes whenever queue may have
// new events ready to dispatch (§4.5).
func (c *Connection) CreateWatcher(queue *Queue) (*QueueWatcher, error) {
	return newQueueWatcher(c, queue.queueCore)
}

// WaitForEvents blocks until at least one of queues has events ready to
// dispatch, acquiring and releasing read-lock tickets across all of them
// as needed (connection/wait_for_events.rs). Passing no queues waits on
// the connection's default queue.
//
// Only the first queue's read-lock ticket is ever acquired for real; the
// remaining queues are merely peeked via QueueHasEvents while that ticket
// is held. QueueHasEvents is only safe to call when the coordinator
// cannot be in the middle of the dedicated reader goroutine's blocking
// read (rlReading), which holding a ticket on the first queue guarantees:
// the state can only advance to rlReading once every outstanding ticket,
// including ours, has been dropped or converted to a read request.
func (c *Connection) WaitForEvents(ctx context.Context, queues ...*Queue) error {
	if len(queues) == 0 {
		queues = []*Queue{c.defaultQueue}
	}
	for {
		lk, err := c.readLock.AcquireReadLock(ctx, queues[0].ptr)
		if err != nil {
			return err
		}
		if lk == nil {
			// Events are already queued on the first queue.
			return nil
		}
		ready := false
		for _, q := range queues[1:] {
			if c.readLock.QueueHasEvents(q.ptr) {
				ready = true
				break
			}
		}
		if ready {
			lk.Release()
			return nil
		}
		if err := readablePoll(ctx, c.poller.data); err != nil {
			lk.Release()
			return err
		}
		if err := lk.ReadEvents(ctx); err != nil {
			return err
		}
		// The read we just performed may not have landed events on any of
		// queues (for example it was consumed entirely by an unrelated
		// queue); loop back and try again. If it did, the next
		// AcquireReadLock call observes prepare_read failing immediately
		// (events already pending) and returns nil above.
	}
}

// Close tears down this connection's supervisor tasks and, if owned,
// disconnects the underlying wl_display.
func (c *Connection) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.readLock.Close()
	c.poller.Close()
	c.executor.Close()
	if c.owned {
		c.lib.symbols.displayDisconnect(c.display)
	}
	log.Debug().Bool("owned", c.owned).Msg("wlclient: connection closed")
}
