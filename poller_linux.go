// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

//go:build linux

package wlclient

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// pollData is the shared, lock-protected state of a poller (§4, "FD poller
// task"), mirroring utils/poller.rs's PollData. Waiters are plain channels
// instead of futures/wakers: closing a waiter's channel is this runtime's
// equivalent of waking it.
type pollData struct {
	mu             sync.Mutex
	nextWakerID    uint64
	readableSerial uint64
	readers        map[uint64]chan struct{}
	writableSerial uint64
	writers        map[uint64]chan struct{}
	lastErr        error
	notify         *eventfd
}

// poller is a dedicated OS thread polling the connection socket plus an
// internal wake eventfd (§4.2 step 2). Adding/removing waiters toggles the
// poller's registered epoll interest mask for the display fd.
type poller struct {
	data *pollData
	epfd int
	done chan struct{}
}

// newPoller starts the poller goroutine over displayFd. The goroutine locks
// itself to an OS thread for its lifetime: epoll_wait with a NULL timeout
// blocks the calling thread, and Go goroutines that never call runtime
// functions while blocked in a syscall don't stall other goroutines, but
// locking makes the dedicated-OS-thread framing literally true rather than
// just behaviorally true.
func newPoller(displayFd int) (*poller, error) {
	notify, err := newEventfd()
	if err != nil {
		return nil, err
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		notify.Close()
		return nil, err
	}
	data := &pollData{
		readers: make(map[uint64]chan struct{}),
		writers: make(map[uint64]chan struct{}),
		notify:  notify,
	}
	p := &poller{data: data, epfd: epfd, done: make(chan struct{})}
	const notifyCookie = 1
	const displayCookie = 2
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: notifyCookie}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, notify.Fd(), &ev); err != nil {
		unix.Close(epfd)
		notify.Close()
		return nil, err
	}
	go pollThread(epfd, displayFd, notifyCookie, displayCookie, notify, data, p.done)
	return p, nil
}

func pollThread(epfd, displayFd int, notifyCookie, displayCookie int32, notify *eventfd, data *pollData, done chan struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(done)
	registered := false
	var registeredMask uint32
	events := make([]unix.EpollEvent, 4)
	for {
		data.mu.Lock()
		exit := data.lastErr == errPollerClosed
		wantRead := len(data.readers) > 0
		wantWrite := len(data.writers) > 0
		data.mu.Unlock()
		if exit {
			return
		}
		var mask uint32
		switch {
		case wantRead && wantWrite:
			mask = unix.EPOLLIN | unix.EPOLLOUT
		case wantRead:
			mask = unix.EPOLLIN
		case wantWrite:
			mask = unix.EPOLLOUT
		default:
			mask = 0
		}
		if mask != registeredMask || registered != (mask != 0) {
			if mask == 0 && registered {
				_ = unix.EpollCtl(epfd, unix.EPOLL_CTL_DEL, displayFd, nil)
				registered = false
			} else if mask != 0 {
				ev := unix.EpollEvent{Events: mask, Fd: displayCookie}
				op := unix.EPOLL_CTL_ADD
				if registered {
					op = unix.EPOLL_CTL_MOD
				}
				if err := unix.EpollCtl(epfd, op, displayFd, &ev); err != nil {
					latchPollerError(data, err)
					return
				}
				registered = true
			}
			registeredMask = mask
		}
		n, err := unix.EpollWait(epfd, events, -1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			latchPollerError(data, err)
			return
		}
		data.mu.Lock()
		for i := 0; i < n; i++ {
			ev := events[i]
			switch int32(ev.Fd) {
			case notifyCookie:
				_ = notify.Clear()
			case displayCookie:
				if ev.Events&(unix.EPOLLIN|unix.EPOLLERR|unix.EPOLLHUP) != 0 {
					data.readableSerial++
					for id, ch := range data.readers {
						close(ch)
						delete(data.readers, id)
					}
				}
				if ev.Events&(unix.EPOLLOUT|unix.EPOLLERR) != 0 {
					data.writableSerial++
					for id, ch := range data.writers {
						close(ch)
						delete(data.writers, id)
					}
				}
			}
		}
		data.mu.Unlock()
	}
}

var errPollerClosed = errors.New("wlclient: poller closed")

func latchPollerError(data *pollData, err error) {
	data.mu.Lock()
	data.lastErr = err
	data.readableSerial++
	data.writableSerial++
	for id, ch := range data.readers {
		close(ch)
		delete(data.readers, id)
	}
	for id, ch := range data.writers {
		close(ch)
		delete(data.writers, id)
	}
	data.mu.Unlock()
	log.Debug().Err(err).Msg("wlclient: poller latched error")
}

// readablePoll suspends the caller until the display fd is readable, or returns
// the poller's latched error.
func readablePoll(ctx context.Context, data *pollData) error {
	return pollInterest(ctx, data, true)
}

// writablePoll suspends the caller until the display fd is writable, or returns
// the poller's latched error.
func writablePoll(ctx context.Context, data *pollData) error {
	return pollInterest(ctx, data, false)
}

func pollInterest(ctx context.Context, data *pollData, readable bool) error {
	data.mu.Lock()
	if data.lastErr != nil {
		err := data.lastErr
		data.mu.Unlock()
		return err
	}
	set := data.writers
	if readable {
		set = data.readers
	}
	id := data.nextWakerID
	data.nextWakerID++
	ch := make(chan struct{})
	wasEmpty := len(set) == 0
	set[id] = ch
	if wasEmpty {
		_ = data.notify.Bump()
	}
	data.mu.Unlock()

	select {
	case <-ch:
		data.mu.Lock()
		err := data.lastErr
		data.mu.Unlock()
		return err
	case <-ctx.Done():
		data.mu.Lock()
		if _, ok := set[id]; ok {
			delete(set, id)
			if len(set) == 0 {
				_ = data.notify.Bump()
			}
		}
		data.mu.Unlock()
		return ctx.Err()
	}
}

// Close stops the poller goroutine and releases its resources.
func (p *poller) Close() {
	latchPollerError(p.data, errPollerClosed)
	_ = p.data.notify.Bump()
	<-p.done
	unix.Close(p.epfd)
	p.data.notify.Close()
}
