// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"context"
	"sync"
)

// readLockState is the shared read-lock coordinator's state machine (§4.4),
// mirroring connection/read_lock.rs's ReadLockState. Exactly one dedicated
// goroutine ever calls wl_display_read_events; everyone else acquires a
// virtual ticket via wl_display_prepare_read and either reads events
// themselves (handing the real read off to that goroutine) or drops the
// ticket, cancelling the prepared read.
type readLockState int

const (
	rlUnlocked   readLockState = iota // no prepared read outstanding
	rlLocked                          // a prepared read outstanding, held by lockedN virtual tickets
	rlReadIfAble                      // all tickets dropped or requested a read; reader goroutine may proceed
	rlReading                         // the reader goroutine is inside wl_display_read_events
)

// readLockDriver is the small sliver of libwayland this coordinator
// drives directly, factored out as an interface so tests can substitute a
// fake without a live compositor (the way read_lock.rs's tests inject a
// fake FakeFd).
type readLockDriver interface {
	prepareRead(queue uintptr) int32
	readEvents() error
	cancelRead()
}

type readLockReader struct {
	lib     *Library
	display uintptr
}

func (r readLockReader) prepareRead(queue uintptr) int32 {
	if queue != 0 {
		return r.lib.symbols.displayPrepareReadQueue(r.display, queue)
	}
	return r.lib.symbols.displayPrepareRead(r.display)
}

func (r readLockReader) readEvents() error {
	if r.lib.symbols.displayReadEvents(r.display) == -1 {
		return r.lib.lastOSError()
	}
	return nil
}

func (r readLockReader) cancelRead() {
	r.lib.symbols.displayCancelRead(r.display)
}

// sharedReadLock is the connection-wide coordinator backing every
// SocketReadLock handed out by its AcquireReadLock method, which
// Connection.WaitForEvents calls (§4.4). Its mutex
// protects state transitions only; the actual blocking socket read happens
// outside the lock, in the dedicated reader goroutine.
type sharedReadLock struct {
	reader readLockDriver

	mu      sync.Mutex
	cond    *sync.Cond
	state   readLockState
	lockedN uint64

	serial  uint64 // bumped once per completed (or failed) real read
	lastErr error

	nextWakerID uint64
	wakers      map[uint64]chan struct{}

	exit bool
	done chan struct{}
}

func newSharedReadLock(reader readLockDriver) *sharedReadLock {
	l := &sharedReadLock{
		reader: reader,
		wakers: make(map[uint64]chan struct{}),
		done:   make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)
	go l.readerLoop()
	return l
}

// SocketReadLock is a ticket proving a prepared wl_display_read call is
// outstanding on the caller's behalf. Exactly one of Release or ReadEvents
// must be called on every ticket, the way the Rust SocketReadLock's Drop
// impl cancels an un-consumed read.
type SocketReadLock struct {
	srl  *sharedReadLock
	live bool
}

// tryAcquireLocked runs the do_acquire_read_lock algorithm from
// read_lock.rs. Caller must hold srl.mu.
func (srl *sharedReadLock) tryAcquireLocked(queue uintptr) *SocketReadLock {
	if srl.reader.prepareRead(queue) != 0 {
		// Events are already queued; nothing to read-lock.
		return nil
	}
	switch srl.state {
	case rlUnlocked:
		srl.state = rlLocked
		srl.lockedN = 1
	case rlLocked:
		// Another ticket is already outstanding; the prepare_read we just
		// issued is redundant (libwayland allows only one outstanding
		// prepare per queue-set), so give it back and just add a holder.
		srl.reader.cancelRead()
		srl.lockedN++
	case rlReadIfAble:
		// A read was about to start on our behalf; our own prepared read
		// supersedes it, so cancel it and start over as the sole holder.
		srl.reader.cancelRead()
		srl.state = rlLocked
		srl.lockedN = 1
	case rlReading:
		panic("wlclient: prepare_read succeeded while a read was in flight")
	}
	return &SocketReadLock{srl: srl, live: true}
}

// AcquireReadLock blocks until a read-lock ticket can be issued for queue
// (0 for the default queue), or returns nil immediately if the queue
// already has events ready to dispatch.
func (srl *sharedReadLock) AcquireReadLock(ctx context.Context, queue uintptr) (*SocketReadLock, error) {
	for {
		srl.mu.Lock()
		if srl.state != rlReading {
			lk := srl.tryAcquireLocked(queue)
			srl.mu.Unlock()
			return lk, nil
		}
		id := srl.nextWakerID
		srl.nextWakerID++
		ch := make(chan struct{})
		srl.wakers[id] = ch
		srl.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			srl.mu.Lock()
			delete(srl.wakers, id)
			srl.mu.Unlock()
			return nil, ctx.Err()
		}
	}
}

// QueueHasEvents reports whether queue already has events pending dispatch,
// by transiently acquiring and immediately releasing a read-lock ticket
// (§4.4, queue_has_events). It never blocks.
func (srl *sharedReadLock) QueueHasEvents(queue uintptr) bool {
	srl.mu.Lock()
	lk := srl.tryAcquireLocked(queue)
	srl.mu.Unlock()
	if lk == nil {
		return true
	}
	lk.Release()
	return false
}

// scheduleReadLocked transitions a fully-dropped Locked state to
// ReadIfAble, waking the reader goroutine. Caller must hold srl.mu and the
// last virtual holder must have just been removed (lockedN == 0).
func (srl *sharedReadLock) scheduleReadLocked() {
	srl.state = rlReadIfAble
	srl.cond.Broadcast()
}

// Release drops this ticket without reading (read_lock.rs's
// SocketReadLock::drop). Once the last holder is gone, the prepared read is
// handed to the reader goroutine if an earlier holder is still waiting in
// ReadEvents, and cancelled otherwise.
func (lk *SocketReadLock) Release() {
	if !lk.live {
		return
	}
	lk.live = false
	srl := lk.srl
	srl.mu.Lock()
	srl.lockedN--
	if srl.lockedN == 0 {
		// While a ticket is held the state is never rlReading, so every
		// registered waker belongs to a ReadEvents caller awaiting this read.
		if len(srl.wakers) > 0 {
			srl.scheduleReadLocked()
		} else {
			srl.reader.cancelRead()
			srl.state = rlUnlocked
		}
	}
	srl.mu.Unlock()
}

// ReadEvents consumes this ticket and requests the dedicated reader
// goroutine perform the actual wl_display_read_events, returning once that
// read (or a failure before it) has completed.
func (lk *SocketReadLock) ReadEvents(ctx context.Context) error {
	if !lk.live {
		return nil
	}
	lk.live = false
	srl := lk.srl

	srl.mu.Lock()
	srl.lockedN--
	if srl.lockedN == 0 {
		srl.scheduleReadLocked()
	}
	id := srl.nextWakerID
	srl.nextWakerID++
	ch := make(chan struct{})
	srl.wakers[id] = ch
	srl.mu.Unlock()

	select {
	case <-ch:
	case <-ctx.Done():
		srl.mu.Lock()
		delete(srl.wakers, id)
		srl.mu.Unlock()
		return ctx.Err()
	}

	srl.mu.Lock()
	err := srl.lastErr
	srl.mu.Unlock()
	return err
}

// readerLoop is the one goroutine ever allowed to call
// wl_display_read_events, woken whenever the coordinator reaches
// ReadIfAble (every virtual ticket either dropped or converted to a read
// request).
func (srl *sharedReadLock) readerLoop() {
	defer close(srl.done)
	srl.mu.Lock()
	for {
		for srl.state != rlReadIfAble && !srl.exit {
			srl.cond.Wait()
		}
		if srl.exit {
			srl.mu.Unlock()
			return
		}
		srl.state = rlReading
		srl.mu.Unlock()

		err := srl.reader.readEvents()

		srl.mu.Lock()
		srl.state = rlUnlocked
		srl.lastErr = err
		srl.serial++
		for id, ch := range srl.wakers {
			close(ch)
			delete(srl.wakers, id)
		}
	}
}

// Close stops the reader goroutine. Any ticket still outstanding at this
// point is a caller bug (an un-Released or un-ReadEvents'd SocketReadLock
// outliving the connection); Close does not wait for one.
func (srl *sharedReadLock) Close() {
	srl.mu.Lock()
	srl.exit = true
	srl.cond.Broadcast()
	srl.mu.Unlock()
	<-srl.done
}
