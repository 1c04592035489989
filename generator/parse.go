// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package generator

import (
	"encoding/xml"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// argKind maps a wayland.xml arg type="..." attribute to the wire
// signature character wlclient.ParseSignature understands.
var argKind = map[string]byte{
	"int":     'i',
	"uint":    'u',
	"fixed":   'f',
	"string":  's',
	"object":  'o',
	"new_id":  'n',
	"array":   'a',
	"fd":      'h',
}

// ParseFile reads one Wayland protocol XML file into a Protocol. Unknown
// XML attributes and elements are silently ignored, matching
// wl-client-builder-cli's tolerance for vendor protocol extensions.
func ParseFile(path string) (*Protocol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening protocol file %q", path)
	}
	defer f.Close()

	var doc xmlProtocol
	if err := xml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, errors.Wrapf(err, "parsing protocol XML in %q", path)
	}
	return convertProtocol(&doc), nil
}

func convertProtocol(doc *xmlProtocol) *Protocol {
	p := &Protocol{Name: doc.Name}
	for _, xi := range doc.Interfaces {
		p.Interfaces = append(p.Interfaces, convertInterface(&xi))
	}
	return p
}

func convertInterface(xi *xmlInterface) *InterfaceDef {
	iface := &InterfaceDef{
		Name:    xi.Name,
		GoName:  goIdentifier(strings.TrimPrefix(xi.Name, "wl_")),
		Version: xi.Version,
	}
	for i, xr := range xi.Requests {
		iface.Requests = append(iface.Requests, convertMessage(xr, uint32(i)))
	}
	for i, xe := range xi.Events {
		iface.Events = append(iface.Events, convertMessage(xe, uint32(i)))
	}
	return iface
}

func convertMessage(xm xmlMessage, opcode uint32) *MessageDef {
	m := &MessageDef{
		Name:       xm.Name,
		GoName:     goIdentifier(xm.Name),
		Opcode:     opcode,
		Destructor: xm.Type == "destructor",
	}
	var sig strings.Builder
	for _, xa := range xm.Args {
		kind, ok := argKind[xa.Type]
		if !ok {
			continue
		}
		nullable := xa.AllowNull == "true"
		if nullable {
			sig.WriteByte('?')
		}
		sig.WriteByte(kind)
		m.Args = append(m.Args, ArgDef{
			Name:      xa.Name,
			GoName:    goIdentifier(xa.Name),
			Kind:      kind,
			Nullable:  nullable,
			Interface: xa.Interface,
		})
	}
	m.Signature = sig.String()
	return m
}

// goIdentifier converts a wire snake_case name (e.g. "create_surface",
// "global_remove") to an exported Go identifier ("CreateSurface",
// "GlobalRemove").
func goIdentifier(wire string) string {
	parts := strings.Split(wire, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	if b.Len() == 0 {
		return "X"
	}
	return b.String()
}
