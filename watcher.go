// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import "context"

// QueueWatcher exposes a pollable file descriptor that becomes readable
// whenever its queue has events ready to dispatch, for integrating with an
// external event loop instead of calling Connection.WaitForEvents directly
// (§4.5). A background goroutine repeatedly waits for events and bumps an
// eventfd; the caller drains that fd and then dispatches the queue itself.
type QueueWatcher struct {
	conn   *Connection
	queue  *queueCore
	notify *eventfd
	cancel context.CancelFunc
	done   chan struct{}
}

func newQueueWatcher(conn *Connection, qc *queueCore) (*QueueWatcher, error) {
	notify, err := newEventfd()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &QueueWatcher{conn: conn, queue: qc, notify: notify, cancel: cancel, done: make(chan struct{})}
	go w.loop(ctx)
	return w, nil
}

func (w *QueueWatcher) loop(ctx context.Context) {
	defer close(w.done)
	target := &Queue{queueCore: w.queue}
	for {
		if err := w.conn.WaitForEvents(ctx, target); err != nil {
			return
		}
		_ = w.notify.Bump()
	}
}

// Fd returns the watcher's notification descriptor; a caller's own poll
// loop should watch it for readability, then call Clear and dispatch the
// watched queue.
func (w *QueueWatcher) Fd() int { return w.notify.Fd() }

// Clear drains the watcher's notification, acknowledging the wake-up.
func (w *QueueWatcher) Clear() error { return w.notify.Clear() }

// Close cancels the watcher and blocks until its background goroutine has
// exited, mirroring the original's blocking Drop for QueueWatcher: a
// caller can rely on no further wake-ups once Close returns.
func (w *QueueWatcher) Close() {
	w.cancel()
	<-w.done
	w.notify.Close()
}
