// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"strconv"
	"strings"
)

// Fixed is a Wayland fixed-point decimal, a 24.8 signed fixed-point number
// carried as a raw int32 on the wire.
type Fixed int32

// ToFloat64 converts a wire Fixed value to a float64.
func (f Fixed) ToFloat64() float64 { return float64(f) / 256.0 }

// FixedFromFloat64 converts a float64 to a wire Fixed value.
func FixedFromFloat64(v float64) Fixed { return Fixed(v * 256.0) }

// ArgKind is one signature character understood by the Wayland wire format
// (§6): i u f s o n a h, each optionally nullable ('?' prefix).
type ArgKind byte

const (
	ArgInt      ArgKind = 'i'
	ArgUint     ArgKind = 'u'
	ArgFixed    ArgKind = 'f'
	ArgString   ArgKind = 's'
	ArgObject   ArgKind = 'o'
	ArgNewID    ArgKind = 'n'
	ArgArray    ArgKind = 'a'
	ArgFd       ArgKind = 'h'
)

// SigArg describes one parsed argument of a message signature.
type SigArg struct {
	Kind     ArgKind
	Nullable bool
}

// ParseSignature parses a Wayland message signature string such as "2uo?s"
// into its argument list. A signature may additionally be prefixed with a
// decimal "since version" number; this runtime only cares about the
// argument characters, so any leading digits are skipped.
func ParseSignature(sig string) []SigArg {
	args := make([]SigArg, 0, len(sig))
	i := 0
	for i < len(sig) && sig[i] >= '0' && sig[i] <= '9' {
		i++
	}
	for i < len(sig) {
		nullable := false
		if sig[i] == '?' {
			nullable = true
			i++
			if i >= len(sig) {
				break
			}
		}
		args = append(args, SigArg{Kind: ArgKind(sig[i]), Nullable: nullable})
		i++
	}
	return args
}

// Message describes one request or event message of an interface: its name,
// wire signature, and the interfaces referenced by its "o"/"n" arguments (a
// nil entry at a given index means "any interface" / a generic new_id).
type Message struct {
	Name      string
	Signature string
	Types     []*Interface
}

// Args returns the parsed signature arguments for this message.
func (m Message) Args() []SigArg { return ParseSignature(m.Signature) }

// Interface is a static description of a Wayland interface: its name,
// version, and ordered request/event message tables (§3 "Interface
// descriptor"). Interface values are created once per generated binding and
// are never mutated afterwards (invariant 1).
type Interface struct {
	Name     string
	Version  uint32
	Requests []Message
	Events   []Message
}

// Compatible reports whether two interface descriptors are compatible: the
// same pointer, or matching names, matching request/event counts, identical
// signatures character-for-character, and recursively compatible object/
// new_id referenced interfaces (§3 invariant, ffi.rs interface_compatible).
func (i *Interface) Compatible(other *Interface) bool {
	return interfaceCompatible(i, other, map[[2]*Interface]bool{})
}

func interfaceCompatible(l, r *Interface, seen map[[2]*Interface]bool) bool {
	if l == r {
		return true
	}
	if l == nil || r == nil {
		return false
	}
	key := [2]*Interface{l, r}
	if seen[key] {
		// Recursive interface graphs (e.g. wl_surface referencing itself
		// transitively) terminate by treating a repeat comparison as
		// trivially compatible; the first comparison already validated it.
		return true
	}
	seen[key] = true
	if l.Name != r.Name {
		return false
	}
	if len(l.Requests) != len(r.Requests) || len(l.Events) != len(r.Events) {
		return false
	}
	if !signaturesEqual(l.Requests, r.Requests) || !signaturesEqual(l.Events, r.Events) {
		return false
	}
	for idx := range l.Events {
		if !eventArgTypesCompatible(l.Events[idx], r.Events[idx], seen) {
			return false
		}
	}
	for idx := range l.Requests {
		if !eventArgTypesCompatible(l.Requests[idx], r.Requests[idx], seen) {
			return false
		}
	}
	return true
}

func signaturesEqual(l, r []Message) bool {
	for idx := range l {
		if l[idx].Signature != r[idx].Signature {
			return false
		}
	}
	return true
}

func eventArgTypesCompatible(l, r Message, seen map[[2]*Interface]bool) bool {
	largs := l.Args()
	idx := 0
	for _, a := range largs {
		if a.Kind != ArgObject && a.Kind != ArgNewID {
			continue
		}
		var lt, rt *Interface
		if idx < len(l.Types) {
			lt = l.Types[idx]
		}
		if idx < len(r.Types) {
			rt = r.Types[idx]
		}
		if (lt == nil) != (rt == nil) {
			return false
		}
		if lt != nil && !interfaceCompatible(lt, rt, seen) {
			return false
		}
		idx++
	}
	return true
}

// String renders a short debug description of the interface as
// "name@version".
func (i *Interface) String() string {
	var b strings.Builder
	b.WriteString(i.Name)
	b.WriteByte('@')
	b.WriteString(strconv.FormatUint(uint64(i.Version), 10))
	return b.String()
}
