// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import "sync"

// reentrantMutex is the queue dispatch-lock primitive (§3, §4.5). It comes
// in two forms, matching utils/reentrant_mutex.rs:
//
//   - shared: any OS thread may lock it; a thread already holding the lock
//     may lock it again (nested dispatch, §4.5 "Nested dispatch").
//   - threadLocal: only the OS thread that created the mutex may ever lock
//     it; any other thread panics (invariant 7, panic message #1).
//
// Reentrancy is tracked by comparing the lock holder's threadID, the same
// substitute for "current thread" used throughout this package (threadid.go).
type reentrantMutex struct {
	local    bool
	localTID threadID // only meaningful when local

	mu        sync.Mutex
	cond      sync.Cond
	holder    threadID
	holderSet bool
	depth     int
}

func newSharedMutex() *reentrantMutex {
	m := &reentrantMutex{}
	m.cond.L = &m.mu
	return m
}

func newThreadLocalMutex() *reentrantMutex {
	m := &reentrantMutex{local: true, localTID: currentThreadID()}
	m.cond.L = &m.mu
	return m
}

// IsThreadLocal reports whether this mutex is restricted to a single OS
// thread.
func (m *reentrantMutex) IsThreadLocal() bool { return m.local }

// reentrantMutexGuard releases the lock (or decrements the reentrancy
// depth) when Unlock is called.
type reentrantMutexGuard struct {
	m *reentrantMutex
}

// Lock acquires the dispatch-lock. If this mutex is thread-local and the
// calling goroutine is not pinned to the thread that created it, Lock
// panics (matches "Trying to lock thread-local mutex in other thread").
func (m *reentrantMutex) Lock() *reentrantMutexGuard {
	tid := currentThreadID()
	if m.local && tid != m.localTID {
		panic("wlclient: trying to lock thread-local mutex in other thread")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.holderSet && m.holder != tid {
		m.cond.Wait()
	}
	m.holder = tid
	m.holderSet = true
	m.depth++
	return &reentrantMutexGuard{m: m}
}

// Unlock releases one level of the dispatch-lock. The last Unlock for a
// given lock acquisition wakes any other OS thread blocked in Lock.
func (g *reentrantMutexGuard) Unlock() {
	m := g.m
	m.mu.Lock()
	m.depth--
	if m.depth == 0 {
		m.holderSet = false
		m.mu.Unlock()
		m.cond.Broadcast()
		return
	}
	m.mu.Unlock()
}
