// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeReadLockDriver stands in for libwayland's prepare_read/read_events/
// cancel_read trio, the way read_lock.rs's tests drive the coordinator
// against a fake socket instead of a live compositor.
type fakeReadLockDriver struct {
	mu           sync.Mutex
	eventsQueued bool // prepareRead returns non-zero (meaning "already readable") while true
	prepares     int
	cancels      int
	reads        int
	readErr      error
}

func (f *fakeReadLockDriver) prepareRead(uintptr) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prepares++
	if f.eventsQueued {
		return -1
	}
	return 0
}

func (f *fakeReadLockDriver) readEvents() error {
	f.mu.Lock()
	f.reads++
	err := f.readErr
	f.mu.Unlock()
	return err
}

func (f *fakeReadLockDriver) cancelRead() {
	f.mu.Lock()
	f.cancels++
	f.mu.Unlock()
}

func TestSharedReadLockQueueHasEventsWhenQueued(t *testing.T) {
	fake := &fakeReadLockDriver{eventsQueued: true}
	srl := newSharedReadLock(fake)
	defer srl.Close()

	if !srl.QueueHasEvents(0) {
		t.Fatal("expected QueueHasEvents to report true when prepare_read fails")
	}
}

func TestSharedReadLockAcquireAndReadEvents(t *testing.T) {
	fake := &fakeReadLockDriver{}
	srl := newSharedReadLock(fake)
	defer srl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	lk, err := srl.AcquireReadLock(ctx, 0)
	if err != nil {
		t.Fatalf("AcquireReadLock: %v", err)
	}
	if lk == nil {
		t.Fatal("expected a ticket when no events are queued")
	}
	if err := lk.ReadEvents(ctx); err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	fake.mu.Lock()
	reads := fake.reads
	fake.mu.Unlock()
	if reads != 1 {
		t.Fatalf("expected exactly one real read, got %d", reads)
	}
}

func TestSharedReadLockReleaseCancelsWhenLastHolderDrops(t *testing.T) {
	fake := &fakeReadLockDriver{}
	srl := newSharedReadLock(fake)
	defer srl.Close()

	ctx := context.Background()
	lk, err := srl.AcquireReadLock(ctx, 0)
	if err != nil || lk == nil {
		t.Fatalf("AcquireReadLock: lk=%v err=%v", lk, err)
	}
	lk.Release()

	fake.mu.Lock()
	cancels := fake.cancels
	fake.mu.Unlock()
	if cancels != 1 {
		t.Fatalf("expected cancel_read once the sole ticket was released, got %d cancels", cancels)
	}
}

func TestSharedReadLockSecondAcquireJoinsExistingLock(t *testing.T) {
	fake := &fakeReadLockDriver{}
	srl := newSharedReadLock(fake)
	defer srl.Close()

	ctx := context.Background()
	lk1, err := srl.AcquireReadLock(ctx, 0)
	if err != nil || lk1 == nil {
		t.Fatalf("first AcquireReadLock: lk=%v err=%v", lk1, err)
	}
	lk2, err := srl.AcquireReadLock(ctx, 0)
	if err != nil || lk2 == nil {
		t.Fatalf("second AcquireReadLock: lk=%v err=%v", lk2, err)
	}
	fake.mu.Lock()
	cancels := fake.cancels
	fake.mu.Unlock()
	if cancels != 1 {
		t.Fatalf("expected the second prepare_read to have been cancelled (redundant), got %d cancels", cancels)
	}

	lk1.Release()
	lk2.Release()
	fake.mu.Lock()
	finalCancels := fake.cancels
	fake.mu.Unlock()
	if finalCancels != 2 {
		t.Fatalf("expected the real prepared read to be cancelled once both virtual holders dropped, got %d cancels", finalCancels)
	}
}

func TestSharedReadLockPropagatesReadError(t *testing.T) {
	sentinel := context.DeadlineExceeded
	fake := &fakeReadLockDriver{readErr: sentinel}
	srl := newSharedReadLock(fake)
	defer srl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	lk, err := srl.AcquireReadLock(ctx, 0)
	if err != nil || lk == nil {
		t.Fatalf("AcquireReadLock: lk=%v err=%v", lk, err)
	}
	if err := lk.ReadEvents(ctx); err != sentinel {
		t.Fatalf("ReadEvents error = %v, want %v", err, sentinel)
	}
}
