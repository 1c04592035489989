// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

// Package generator reads Wayland protocol XML and emits Go bindings on
// top of the wlclient runtime (§6, "wl-client-builder"), the Go
// counterpart of wl-client-builder/src/builder.rs.
package generator

import "encoding/xml"

// xmlProtocol mirrors the handful of elements wayland protocol XML files
// actually use; unknown elements and attributes are ignored by
// encoding/xml, so this need not be exhaustive.
type xmlProtocol struct {
	XMLName    xml.Name       `xml:"protocol"`
	Name       string         `xml:"name,attr"`
	Interfaces []xmlInterface `xml:"interface"`
}

type xmlInterface struct {
	Name     string       `xml:"name,attr"`
	Version  uint32       `xml:"version,attr"`
	Requests []xmlMessage `xml:"request"`
	Events   []xmlMessage `xml:"event"`
}

type xmlMessage struct {
	Name       string  `xml:"name,attr"`
	Type       string  `xml:"type,attr"` // "destructor" for requests, otherwise empty
	SinceAttr  string  `xml:"since,attr"`
	Args       []xmlArg `xml:"arg"`
}

type xmlArg struct {
	Name       string `xml:"name,attr"`
	Type       string `xml:"type,attr"` // int uint fixed string object new_id array fd
	Interface  string `xml:"interface,attr"`
	AllowNull  string `xml:"allow-null,attr"`
}

// Protocol is the intermediate model emit.go renders from, decoupled from
// the XML schema so future wire-format quirks don't leak into templates.
type Protocol struct {
	Name       string
	Interfaces []*InterfaceDef
}

// InterfaceDef is one <interface> element, resolved to its Go identifiers.
type InterfaceDef struct {
	Name       string // wire name, e.g. "wl_compositor"
	GoName     string // exported Go type name, e.g. "Compositor"
	Version    uint32
	Requests   []*MessageDef
	Events     []*MessageDef
}

// MessageDef is one <request> or <event>.
type MessageDef struct {
	Name       string // wire name, e.g. "create_surface"
	GoName     string // exported Go method/listener-method name
	Opcode     uint32
	Destructor bool
	Signature  string // wlclient wire signature, e.g. "usun"
	Args       []ArgDef
}

// ArgDef is one <arg>.
type ArgDef struct {
	Name      string
	GoName    string
	Kind      byte // i u f s o n a h
	Nullable  bool
	Interface string // wire interface name this o/n argument references, if fixed
}
