// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sys/unix"
)

// flusher is the connection's flusher task (§4.3): flush() never blocks the
// caller; the actual wl_display_flush call happens on a supervisor
// goroutine, and errors are latched and returned from every subsequent
// flush() call. Multiple flush() requests that arrive before a previous
// flush completes are coalesced into a single underlying flush, matching
// connection/flush.rs.
type flusher struct {
	mu         sync.Mutex
	lastErr    error
	requestCh  chan struct{} // capacity 1: a pending, not-yet-serviced flush request
}

func newFlusher(e *executor, displayFd uintptr, pollData *pollData, tryFlush func() error) *flusher {
	f := &flusher{requestCh: make(chan struct{}, 1)}
	e.Add(func(ctx context.Context) {
		for {
			for {
				err := tryFlush()
				if err == nil {
					break
				}
				if errors.Is(err, unix.EINTR) {
					continue
				}
				if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
					if werr := writablePoll(ctx, pollData); werr != nil {
						f.latch(werr)
						return
					}
					continue
				}
				f.latch(err)
				return
			}
			select {
			case <-f.requestCh:
			case <-ctx.Done():
				return
			}
		}
	})
	return f
}

func (f *flusher) latch(err error) {
	f.mu.Lock()
	f.lastErr = err
	f.mu.Unlock()
}

// Flush schedules outgoing messages to be sent to the compositor. It never
// blocks; errors are asynchronous and, once latched, every subsequent call
// returns the same error.
func (f *flusher) Flush() error {
	f.mu.Lock()
	err := f.lastErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	select {
	case f.requestCh <- struct{}{}:
	default:
	}
	return nil
}
