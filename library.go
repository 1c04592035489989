// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/unix"
)

// Library is a process-wide, ref-counted handle to the loaded
// libwayland-client shared object, carrying its resolved function table
// (§4.1). Opening the same path twice yields the same handle, the way
// clipboard_wayland.go's waylandInitOnce guarantees a single initialization
// for the (singleton, in that file) Wayland connection.
type Library struct {
	path    string
	handle  uintptr
	symbols symbols

	refs *int32 // shared refcount cell; incremented by Open, decremented by Close
	mu   *sync.Mutex
}

var (
	libraryRegistryMu sync.Mutex
	libraryRegistry   = map[string]*Library{}
)

// Open loads libwayland-client.so.0 (falling back to libwayland-client.so)
// and resolves every symbol this runtime needs, caching the result so
// repeated calls to Open return the same handle (§4.1).
func Open() (*Library, error) {
	return OpenPath("")
}

// OpenPath loads the shared object at an explicit path, or, when path is
// empty, tries the two standard libwayland-client sonames in order.
func OpenPath(path string) (*Library, error) {
	libraryRegistryMu.Lock()
	defer libraryRegistryMu.Unlock()

	key := path
	if key == "" {
		key = "libwayland-client.so.0|libwayland-client.so"
	}
	if lib, ok := libraryRegistry[key]; ok {
		lib.mu.Lock()
		*lib.refs++
		lib.mu.Unlock()
		return &Library{path: lib.path, handle: lib.handle, symbols: lib.symbols, refs: lib.refs, mu: lib.mu}, nil
	}

	var handle uintptr
	var resolvedPath string
	var err error
	if path != "" {
		handle, err = purego.Dlopen(path, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
		resolvedPath = path
	} else {
		for _, candidate := range []string{"libwayland-client.so.0", "libwayland-client.so"} {
			handle, err = purego.Dlopen(candidate, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
			if err == nil {
				resolvedPath = candidate
				break
			}
		}
	}
	if handle == 0 || err != nil {
		return nil, newError(KindLibrary, "failed to load libwayland-client", ErrLibraryNotFound)
	}

	lib := &Library{path: resolvedPath, handle: handle, refs: new(int32), mu: &sync.Mutex{}}
	*lib.refs = 1
	if err := lib.resolveSymbols(); err != nil {
		return nil, err
	}
	libraryRegistry[key] = lib
	return lib, nil
}

// resolveSymbols binds every libwayland-client function this runtime uses.
// A symbol failing to resolve is a library-open failure (§4.1
// SymbolMissing), not a lazily-discovered error later.
func (l *Library) resolveSymbols() (retErr error) {
	defer func() {
		if r := recover(); r != nil {
			retErr = newError(KindLibrary, fmt.Sprintf("missing symbol: %v", r), ErrSymbolMissing)
		}
	}()
	reg := func(fptr any, name string) {
		purego.RegisterLibFunc(fptr, l.handle, name)
	}
	s := &l.symbols
	reg(&s.displayConnect, "wl_display_connect")
	reg(&s.displayConnectToFd, "wl_display_connect_to_fd")
	reg(&s.displayDisconnect, "wl_display_disconnect")
	reg(&s.displayGetFd, "wl_display_get_fd")
	reg(&s.displayDispatch, "wl_display_dispatch")
	reg(&s.displayDispatchQueue, "wl_display_dispatch_queue")
	reg(&s.displayDispatchPending, "wl_display_dispatch_pending")
	reg(&s.displayDispatchQueuePending, "wl_display_dispatch_queue_pending")
	reg(&s.displayFlush, "wl_display_flush")
	reg(&s.displayGetError, "wl_display_get_error")
	reg(&s.displayPrepareRead, "wl_display_prepare_read")
	reg(&s.displayPrepareReadQueue, "wl_display_prepare_read_queue")
	reg(&s.displayReadEvents, "wl_display_read_events")
	reg(&s.displayCancelRead, "wl_display_cancel_read")
	reg(&s.eventQueueCreate, "wl_display_create_queue")
	reg(&s.eventQueueDestroy, "wl_event_queue_destroy")
	reg(&s.proxyCreate, "wl_proxy_create")
	reg(&s.proxyCreateWrapper, "wl_proxy_create_wrapper")
	reg(&s.proxyWrapperDestroy, "wl_proxy_wrapper_destroy")
	reg(&s.proxyMarshalArrayFlags, "wl_proxy_marshal_array_flags")
	reg(&s.proxyMarshalArray, "wl_proxy_marshal_array")
	reg(&s.proxySetQueue, "wl_proxy_set_queue")
	reg(&s.proxyGetVersion, "wl_proxy_get_version")
	reg(&s.proxyGetID, "wl_proxy_get_id")
	reg(&s.proxyDestroy, "wl_proxy_destroy")
	reg(&s.proxyAddDispatcher, "wl_proxy_add_dispatcher")
	reg(&s.proxySetUserData, "wl_proxy_set_user_data")
	reg(&s.proxyGetUserData, "wl_proxy_get_user_data")
	reg(&s.errnoLocation, "__errno_location")
	return nil
}

// lastOSError reads glibc's thread-local errno, the way io.Error::last_os_error()
// does on the Rust side, for translating a libwayland -1 return into a Go
// error. Call this immediately after the failing call; nothing here should
// run in between that could itself touch errno.
func (l *Library) lastOSError() error {
	p := l.symbols.errnoLocation()
	if p == 0 {
		return unix.EIO
	}
	errno := *(*int32)(unsafe.Pointer(p))
	if errno == 0 {
		return unix.EIO
	}
	return unix.Errno(errno)
}

// defaultDisplayPath resolves the socket libwayland would connect to by
// default, honoring WAYLAND_DISPLAY and the XDG_RUNTIME_DIR/wayland-0
// fallback (§6 "Environment"). This is informational only: the actual
// connection always goes through wl_display_connect, which implements the
// same resolution inside libwayland; this helper exists so ConnectToDefaultDisplay
// can produce a descriptive KindConnect error when the socket plainly does
// not exist, instead of an opaque libwayland failure.
func defaultDisplayPath() (string, bool) {
	if name := os.Getenv("WAYLAND_DISPLAY"); name != "" {
		if filepath.IsAbs(name) {
			return name, true
		}
		if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
			return filepath.Join(dir, name), true
		}
		return "", false
	}
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, "wayland-0"), true
}

// ConnectToDefaultDisplay connects to the compositor named by
// WAYLAND_DISPLAY (or the wayland-0 fallback), returning an owned
// Connection responsible for disconnecting the display on Close.
func (l *Library) ConnectToDefaultDisplay() (*Connection, error) {
	if path, ok := defaultDisplayPath(); ok {
		if _, err := os.Stat(path); err != nil {
			return nil, newError(KindConnect, "wayland display socket not found", ErrNoDisplay)
		}
	}
	display := l.symbols.displayConnect(nil)
	if display == 0 {
		return nil, newError(KindConnect, "wl_display_connect failed", ErrNoDisplay)
	}
	return newConnection(l, display, true)
}

// ConnectToNamedDisplay connects to a named display, like
// ConnectToDefaultDisplay but overriding WAYLAND_DISPLAY for this call.
func (l *Library) ConnectToNamedDisplay(name string) (*Connection, error) {
	cName := append([]byte(name), 0)
	display := l.symbols.displayConnect(&cName[0])
	if display == 0 {
		return nil, newError(KindConnect, "wl_display_connect failed for "+name, ErrNoDisplay)
	}
	return newConnection(l, display, true)
}

// WrapOwnedPointer wraps a caller-supplied wl_display pointer as an owned
// Connection, which will call wl_display_disconnect when closed.
//
// displayPtr must be a valid wl_display* obtained from this same
// libwayland-client.so (typically via a lower-level integration that
// connected the display itself).
func (l *Library) WrapOwnedPointer(displayPtr uintptr) (*Connection, error) {
	if displayPtr == 0 {
		return nil, newError(KindConnect, "nil wl_display pointer", nil)
	}
	return newConnection(l, displayPtr, true)
}

// WrapBorrowedPointer wraps a caller-supplied wl_display pointer as a
// borrowed Connection, which never closes the display.
func (l *Library) WrapBorrowedPointer(displayPtr uintptr) (*Connection, error) {
	if displayPtr == 0 {
		return nil, newError(KindConnect, "nil wl_display pointer", nil)
	}
	return newConnection(l, displayPtr, false)
}

// Close releases this Library handle. The underlying shared object is never
// dlclose'd; it stays loaded for the rest of the process.
func (l *Library) Close() {
	libraryRegistryMu.Lock()
	defer libraryRegistryMu.Unlock()
	l.mu.Lock()
	*l.refs--
	remaining := *l.refs
	l.mu.Unlock()
	if remaining <= 0 {
		key := l.path
		delete(libraryRegistry, key)
		// purego does not expose Dlclose on every platform; leaking the
		// in-process handle on final close is acceptable since the library
		// is typically open for the process lifetime.
	}
}
