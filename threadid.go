// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import "golang.org/x/sys/unix"

// threadID identifies an OS thread. The original Rust crate identifies
// "the current thread" via a thread-local Arc<usize> and compares pointer
// addresses (utils/thread_id.rs); Go goroutines migrate between OS threads
// unless pinned, so the equivalent notion here is the Linux thread id
// (gettid) of a goroutine that has called runtime.LockOSThread, following
// the same dedicated-OS-thread discipline clipboard_wayland.go used for its
// own readWayland/writeWayland calls.
//
// There is no "unset" value: currentThreadID always reports the OS thread
// running the goroutine at that moment. A goroutine that has not locked an
// OS thread may move between threads, so it matches a recorded thread id
// only when it happens to run on that thread; thread-local checks built on
// this type are reliable only for goroutines that called
// runtime.LockOSThread.
type threadID int32

// currentThreadID returns the OS thread id of the calling goroutine. Callers
// that need local-queue affinity guarantees must have already called
// runtime.LockOSThread(); this function does not lock anything itself, it
// only identifies whichever OS thread is currently running the goroutine.
func currentThreadID() threadID {
	return threadID(unix.Gettid())
}
