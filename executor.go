// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"context"
	"sync"
)

// taskID names a task scheduled on an executor, returned by executor.Add so
// callers can cancel it later (utils/executor.rs TaskId).
type taskID uint64

// executor is a small supervisor-task runner (§4.2 "internal executor").
//
// The Rust original hand-rolls a single-thread cooperative future
// scheduler so that supervisor tasks (flusher, read-lock reader, queue
// watchers) keep making progress even while the user's thread is blocked
// elsewhere, and so those tasks are independent of whatever async runtime
// (if any) the application embeds.
//
// The Go runtime's scheduler already provides both properties for
// goroutines: a blocked user goroutine never stops other goroutines from
// running, and goroutines don't depend on an embedded async runtime. So
// executor here is a thin goroutine supervisor: Add starts a goroutine
// bound to a cancellable context and tracks it so Close can wait for every
// task to actually exit (this is what lets Connection's Close block until
// its background goroutines are gone, matching the original's join-on-drop
// discipline for its executor thread).
type executor struct {
	mu     sync.Mutex
	nextID taskID
	tasks  map[taskID]context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

func newExecutor() *executor {
	return &executor{tasks: make(map[taskID]context.CancelFunc)}
}

// Add schedules f to run on its own goroutine, passing it a context that is
// cancelled when Cancel(id) or Close is called. The returned taskID can be
// used to cancel the task early.
func (e *executor) Add(f func(ctx context.Context)) taskID {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		// A closed executor no longer tracks new work: f still runs on its
		// own goroutine, but with an already-cancelled context, and Close
		// does not wait for it. Supervisors only add tasks during Connection
		// construction, before Close can race them.
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		go f(ctx)
		return 0
	}
	id := e.nextID + 1
	e.nextID = id
	ctx, cancel := context.WithCancel(context.Background())
	e.tasks[id] = cancel
	e.wg.Add(1)
	e.mu.Unlock()
	go func() {
		defer e.wg.Done()
		f(ctx)
		e.mu.Lock()
		delete(e.tasks, id)
		e.mu.Unlock()
	}()
	return id
}

// Cancel requests that the task with the given id stop. The task is not
// necessarily finished before Cancel returns (matches utils/executor.rs:
// "The future is not necessarily dropped before this function returns").
func (e *executor) Cancel(id taskID) {
	e.mu.Lock()
	cancel, ok := e.tasks[id]
	e.mu.Unlock()
	if ok {
		cancel()
	}
}

// Close cancels every outstanding task and waits for all of them to exit.
func (e *executor) Close() {
	e.mu.Lock()
	e.closed = true
	for _, cancel := range e.tasks {
		cancel()
	}
	e.mu.Unlock()
	e.wg.Wait()
}

// executeResult carries either T or an error back from a task spawned via
// execute.
type executeResult[T any] struct {
	val T
	err error
}

// execute runs f on the executor and waits for its result, the same way
// Executor::execute lets a future make progress even if the calling thread
// is blocked elsewhere: the work genuinely happens on another goroutine, so
// a caller blocked in, say, a condition variable wait does not stall it.
//
// If ctx is cancelled before f finishes, execute cancels the underlying
// task and returns ctx.Err(); f may still be running briefly afterwards.
func execute[T any](e *executor, ctx context.Context, f func(ctx context.Context) (T, error)) (T, error) {
	ch := make(chan executeResult[T], 1)
	id := e.Add(func(taskCtx context.Context) {
		v, err := f(taskCtx)
		ch <- executeResult[T]{val: v, err: err}
	})
	select {
	case r := <-ch:
		return r.val, r.err
	case <-ctx.Done():
		e.Cancel(id)
		var zero T
		return zero, ctx.Err()
	}
}
