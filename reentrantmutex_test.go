// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"runtime"
	"sync"
	"testing"
	"time"
)

func TestReentrantMutexReentry(t *testing.T) {
	// currentThreadID identifies OS threads, so both sides pin theirs.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	m := newSharedMutex()
	g1 := m.Lock()
	g1b := m.Lock() // re-locking on the holding thread must not deadlock
	g1b.Unlock()
	done := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		g2 := m.Lock() // a different thread blocks until the holder releases
		g2.Unlock()
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("lock acquired by a different goroutine before the holder released it")
	case <-time.After(50 * time.Millisecond):
	}
	g1.Unlock()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiting goroutine never acquired the mutex after release")
	}
}

func TestReentrantMutexMutualExclusion(t *testing.T) {
	m := newSharedMutex()
	var active int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g := m.Lock()
			active++
			if active != 1 {
				t.Errorf("expected exclusive access, got active=%d", active)
			}
			active--
			g.Unlock()
		}()
	}
	wg.Wait()
}

func TestThreadLocalMutexPanicsOnForeignThread(t *testing.T) {
	// currentThreadID is only meaningful for goroutines pinned to their OS
	// thread; both sides must lock it for this test to prove anything.
	mutexCh := make(chan *reentrantMutex, 1)
	ownerDone := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		mutexCh <- newThreadLocalMutex()
		<-ownerDone
	}()
	m := <-mutexCh
	defer close(ownerDone)

	panicked := make(chan any, 1)
	done := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(done)
		defer func() { panicked <- recover() }()
		m.Lock()
	}()
	<-done
	if r := <-panicked; r == nil {
		t.Fatal("expected a panic locking a thread-local mutex from a different OS thread")
	}
}
