// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import "unsafe"

// Arg is a decoded Wayland wire argument, used both for requests a
// generated binding marshals out and for events this runtime decodes off
// an incoming wl_argument array (§5, "Event dispatch"). Only one field is
// meaningful per Arg, selected by Kind.
type Arg struct {
	Kind   ArgKind
	Int    int32
	Uint   uint32
	Fixed  Fixed
	Str    *string
	Object uintptr
	NewID  uint32
	Array  []byte
	Fd     int32
}

// wlArray mirrors libwayland's struct wl_array { size_t size, alloc; void
// *data; }, used when marshalling an "a" (array) request argument.
type wlArray struct {
	size  uintptr
	alloc uintptr
	data  uintptr
}

// cleanupFunc releases any memory a MarshalArgs call pinned for the
// duration of the wl_proxy_marshal_array_flags call; it must be invoked
// only after that call returns, never before.
type cleanupFunc func()

// MarshalArgs converts decoded Args into the wl_argument array libwayland
// expects for a request carrying sig, returning a cleanup function the
// caller must run once the marshal call has returned.
func MarshalArgs(sig []SigArg, args []Arg) ([]argumentT, cleanupFunc) {
	raw := make([]argumentT, len(sig))
	var pins []unsafe.Pointer
	for i, s := range sig {
		a := args[i]
		switch s.Kind {
		case ArgInt:
			raw[i] = argumentT(uintptr(int32(a.Int)))
		case ArgUint, ArgNewID:
			raw[i] = argumentT(uintptr(a.Uint))
		case ArgFixed:
			raw[i] = argumentT(uintptr(int32(a.Fixed)))
		case ArgString:
			if a.Str == nil {
				raw[i] = 0
				continue
			}
			b := append([]byte(*a.Str), 0)
			pins = append(pins, unsafe.Pointer(&b[0]))
			raw[i] = argumentT(uintptr(unsafe.Pointer(&b[0])))
		case ArgObject:
			raw[i] = argumentT(uintptr(a.Object))
		case ArgArray:
			arr := &wlArray{size: uintptr(len(a.Array)), alloc: uintptr(len(a.Array))}
			if len(a.Array) > 0 {
				buf := append([]byte(nil), a.Array...)
				pins = append(pins, unsafe.Pointer(&buf[0]))
				arr.data = uintptr(unsafe.Pointer(&buf[0]))
			}
			pins = append(pins, unsafe.Pointer(arr))
			raw[i] = argumentT(uintptr(unsafe.Pointer(arr)))
		case ArgFd:
			raw[i] = argumentT(uintptr(a.Fd))
		}
	}
	return raw, func() {
		// pins keeps the backing arrays reachable (and thus un-moved, were
		// the Go GC a moving one) for the marshal call's duration; nothing
		// to release explicitly once it returns.
		_ = pins
	}
}

// DecodeArgs decodes a raw wl_argument array for an incoming event carrying
// sig into Args (§5). Strings are copied into Go memory; array contents
// are not copied and alias the buffer libwayland passed in.
func DecodeArgs(sig []SigArg, raw []argumentT) []Arg {
	out := make([]Arg, len(sig))
	for i, s := range sig {
		a := raw[i]
		out[i].Kind = s.Kind
		switch s.Kind {
		case ArgInt:
			out[i].Int = a.asInt32()
		case ArgUint, ArgNewID:
			out[i].Uint = a.asUint32()
		case ArgFixed:
			out[i].Fixed = a.asFixed()
		case ArgString:
			p := a.asString()
			if p == nil {
				continue
			}
			out[i].Str = cStringToGo(p)
		case ArgObject:
			out[i].Object = a.asObject()
		case ArgArray:
			p := a.asArray()
			if p == nil {
				continue
			}
			arr := (*wlArray)(p)
			out[i].Array = unsafe.Slice((*byte)(unsafe.Pointer(arr.data)), int(arr.size))
		case ArgFd:
			out[i].Fd = a.asFd()
		}
	}
	return out
}

// DerefString returns "" for a nil *string, otherwise its value; generated
// bindings use this when rendering a nullable "s" event argument.
func DerefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cStringToGo(p *byte) *string {
	n := 0
	for {
		b := (*byte)(unsafe.Pointer(uintptr(unsafe.Pointer(p)) + uintptr(n)))
		if *b == 0 {
			break
		}
		n++
	}
	s := string(unsafe.Slice(p, n))
	return &s
}
