// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package generator

import (
	"strings"
	"testing"
)

func TestGenerateProducesExpectedShape(t *testing.T) {
	proto := &Protocol{
		Name: "sample",
		Interfaces: []*InterfaceDef{{
			Name:    "wl_dummy",
			GoName:  "Dummy",
			Version: 3,
			Requests: []*MessageDef{
				{Name: "release", GoName: "Release", Opcode: 0, Destructor: true},
			},
			Events: []*MessageDef{
				{Name: "thing_added", GoName: "ThingAdded", Opcode: 0, Signature: "?su", Args: []ArgDef{
					{Name: "name", GoName: "Name", Kind: 's', Nullable: true},
					{Name: "serial", GoName: "Serial", Kind: 'u'},
				}},
			},
		}},
	}

	var got string
	err := Generate("protocol", []*Protocol{proto}, func(filename string, content []byte) error {
		if filename != "sample.go" {
			t.Fatalf("filename = %q, want sample.go", filename)
		}
		got = string(content)
		return nil
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, want := range []string{
		"package protocol",
		`import "github.com/wl-client-go/wlclient"`,
		"var DummyInterface = &wlclient.Interface{",
		"type Dummy struct {",
		"func (o *Dummy) Release()",
		"type DummyListener interface {",
		"ThingAdded(Name string, Serial uint32)",
		"listener.ThingAdded(wlclient.DerefString(args[0].Str), args[1].Uint)",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("generated output missing %q; got:\n%s", want, got)
		}
	}
}
