// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package generator

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<protocol name="sample">
  <interface name="wl_dummy" version="3">
    <request name="create_thing">
      <arg name="id" type="new_id" interface="wl_thing"/>
    </request>
    <request name="release" type="destructor"/>
    <event name="thing_added">
      <arg name="name" type="string" allow-null="true"/>
      <arg name="serial" type="uint"/>
    </event>
  </interface>
</protocol>`

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.xml")
	if err := os.WriteFile(path, []byte(sampleXML), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if p.Name != "sample" {
		t.Fatalf("Name = %q, want sample", p.Name)
	}
	if len(p.Interfaces) != 1 {
		t.Fatalf("expected 1 interface, got %d", len(p.Interfaces))
	}
	iface := p.Interfaces[0]
	if iface.GoName != "Dummy" {
		t.Fatalf("GoName = %q, want Dummy", iface.GoName)
	}
	if len(iface.Requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(iface.Requests))
	}
	if iface.Requests[0].Signature != "n" {
		t.Fatalf("create_thing signature = %q, want \"n\"", iface.Requests[0].Signature)
	}
	if !iface.Requests[1].Destructor {
		t.Fatal("expected release to be marked as a destructor")
	}
	if got, want := iface.Events[0].Signature, "?su"; got != want {
		t.Fatalf("thing_added signature = %q, want %q", got, want)
	}
}

func TestGoIdentifier(t *testing.T) {
	cases := map[string]string{
		"create_surface": "CreateSurface",
		"global_remove":   "GlobalRemove",
		"sync":            "Sync",
	}
	for in, want := range cases {
		if got := goIdentifier(in); got != want {
			t.Fatalf("goIdentifier(%q) = %q, want %q", in, got, want)
		}
	}
}
