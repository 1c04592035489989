// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package generator

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

// text/template renders generated source. Go code generators conventionally
// reach for the stdlib template packages rather than a third-party
// templating library (golang.org/x/tools/cmd/stringer included), so this
// file does too.
var fileTemplate = template.Must(template.New("file").Funcs(template.FuncMap{
	"argList":          argListFunc,
	"argRefs":          argRefsFunc,
	"quote":            strconv_Quote,
	"eventArgAccessor": eventArgAccessor,
}).Parse(fileTemplateSrc))

// Generate renders one Go source file per protocol and hands it to write
// under the name <protocol name>.go (with '-' replaced by '_'), all sharing
// package pkgName and importing the wlclient runtime from
// "github.com/wl-client-go/wlclient". GenerateWithImportPath takes that
// import path explicitly; the --wl-client-path flag exists for forks that
// vendor this runtime under a different module path.
func Generate(pkgName string, protocols []*Protocol, write func(filename string, content []byte) error) error {
	return GenerateWithImportPath(pkgName, "github.com/wl-client-go/wlclient", protocols, write)
}

// GenerateWithImportPath is Generate with an explicit wlclient import path.
func GenerateWithImportPath(pkgName, wlClientPath string, protocols []*Protocol, write func(filename string, content []byte) error) error {
	for _, p := range protocols {
		var buf bytes.Buffer
		if err := fileTemplate.Execute(&buf, struct {
			Package      string
			WLClientPath string
			Protocol     *Protocol
		}{Package: pkgName, WLClientPath: wlClientPath, Protocol: p}); err != nil {
			return errors.Wrapf(err, "rendering protocol %q", p.Name)
		}
		name := strings.ReplaceAll(p.Name, "-", "_") + ".go"
		if err := write(name, buf.Bytes()); err != nil {
			return errors.Wrapf(err, "writing %q", name)
		}
	}
	return nil
}

// WriteAll is a convenience Generate sink writing files under dir.
func WriteAll(dir string, protocols []*Protocol, pkgName string, openFile func(path string) (io.WriteCloser, error)) error {
	return Generate(pkgName, protocols, func(filename string, content []byte) error {
		w, err := openFile(dir + "/" + filename)
		if err != nil {
			return err
		}
		defer w.Close()
		_, err = w.Write(content)
		return err
	})
}

func strconv_Quote(s string) string { return fmt.Sprintf("%q", s) }

// argListFunc renders a Go parameter list for a message's arguments,
// skipping new_id arguments (those become the method's return value, not
// a parameter) unless the new_id has no statically known interface, in
// which case the caller must supply the target interface and version.
func argListFunc(args []ArgDef) string {
	var parts []string
	for _, a := range args {
		if a.Kind == 'n' {
			if a.Interface == "" {
				parts = append(parts, "iface *wlclient.Interface", "version uint32")
			}
			continue
		}
		parts = append(parts, a.GoName+" "+goArgType(a.Kind))
	}
	return strings.Join(parts, ", ")
}

// argRefsFunc renders the []wlclient.Arg literal marshalling every
// argument of a message, in wire order.
func argRefsFunc(args []ArgDef) string {
	var parts []string
	for _, a := range args {
		switch a.Kind {
		case 'i':
			parts = append(parts, fmt.Sprintf("{Kind: wlclient.ArgInt, Int: %s}", a.GoName))
		case 'u':
			parts = append(parts, fmt.Sprintf("{Kind: wlclient.ArgUint, Uint: %s}", a.GoName))
		case 'f':
			parts = append(parts, fmt.Sprintf("{Kind: wlclient.ArgFixed, Fixed: %s}", a.GoName))
		case 's':
			parts = append(parts, fmt.Sprintf("{Kind: wlclient.ArgString, Str: &%s}", a.GoName))
		case 'o':
			parts = append(parts, fmt.Sprintf("{Kind: wlclient.ArgObject, Object: %s}", a.GoName))
		case 'n':
			parts = append(parts, "{Kind: wlclient.ArgNewID}")
		case 'a':
			parts = append(parts, fmt.Sprintf("{Kind: wlclient.ArgArray, Array: %s}", a.GoName))
		case 'h':
			parts = append(parts, fmt.Sprintf("{Kind: wlclient.ArgFd, Fd: %s}", a.GoName))
		}
	}
	return strings.Join(parts, ", ")
}

// eventArgAccessor renders the expression reading the i-th decoded event
// argument out of the "args []wlclient.Arg" slice a generated Listen
// method's dispatcher closure receives.
func eventArgAccessor(i int, a ArgDef) string {
	field := "Uint"
	switch a.Kind {
	case 'i':
		field = "Int"
	case 'f':
		field = "Fixed"
	case 's':
		return fmt.Sprintf("wlclient.DerefString(args[%d].Str)", i)
	case 'o', 'n':
		field = "Object"
	case 'a':
		field = "Array"
	case 'h':
		field = "Fd"
	}
	return fmt.Sprintf("args[%d].%s", i, field)
}

func goArgType(kind byte) string {
	switch kind {
	case 'i':
		return "int32"
	case 'u':
		return "uint32"
	case 'f':
		return "wlclient.Fixed"
	case 's':
		return "string"
	case 'o':
		return "uintptr"
	case 'a':
		return "[]byte"
	case 'h':
		return "int32"
	}
	return "any"
}

const fileTemplateSrc = `// Code generated by wl-client-builder from {{.Protocol.Name}}.xml. DO NOT EDIT.

package {{.Package}}

import "{{.WLClientPath}}"

{{range .Protocol.Interfaces}}
// {{.GoName}}Interface describes {{.Name}}.
var {{.GoName}}Interface = &wlclient.Interface{
	Name:    {{quote .Name}},
	Version: {{.Version}},
	Requests: []wlclient.Message{
{{range .Requests}}		{Name: {{quote .Name}}, Signature: {{quote .Signature}}},
{{end}}	},
	Events: []wlclient.Message{
{{range .Events}}		{Name: {{quote .Name}}, Signature: {{quote .Signature}}},
{{end}}	},
}

// {{.GoName}} is a typed binding for {{.Name}}.
type {{.GoName}} struct {
	proxy *wlclient.UntypedOwnedProxy
}

// Wrap{{.GoName}} wraps an already-created proxy (typically one returned by
// another request's new_id argument, or by Registry.Bind) as a {{.GoName}}.
func Wrap{{.GoName}}(p *wlclient.UntypedOwnedProxy) *{{.GoName}} { return &{{.GoName}}{proxy: p} }

// Proxy returns the underlying untyped proxy, for low-level calls such as
// SetQueue or SetHandlerScoped.
func (o *{{.GoName}}) Proxy() *wlclient.UntypedOwnedProxy { return o.proxy }

// Destroy destroys this object's local proxy.
func (o *{{.GoName}}) Destroy() { o.proxy.Destroy() }

{{$iface := .}}
{{range .Requests}}
{{$hasNewID := false}}{{range .Args}}{{if eq .Kind 'n'}}{{$hasNewID = true}}{{end}}{{end}}
{{if $hasNewID}}
// {{.GoName}} issues the {{.Name}} request, returning the object it creates.
func (o *{{$iface.GoName}}) {{.GoName}}({{argList .Args}}) *wlclient.UntypedOwnedProxy {
	return o.proxy.NewChild({{.Opcode}}, {{$iface.GoName}}Interface.Requests[{{.Opcode}}], []wlclient.Arg{ {{argRefs .Args}} }, iface, version)
}
{{else}}
// {{.GoName}} issues the {{.Name}} request.
func (o *{{$iface.GoName}}) {{.GoName}}({{argList .Args}}) {
	o.proxy.Request({{.Opcode}}, {{$iface.GoName}}Interface.Requests[{{.Opcode}}], []wlclient.Arg{ {{argRefs .Args}} }, {{.Destructor}})
}
{{end}}
{{end}}

{{if .Events}}
// {{.GoName}}Listener receives {{.Name}} events.
type {{.GoName}}Listener interface {
{{range .Events}}	{{.GoName}}({{argList .Args}})
{{end}}}

// Listen registers listener for this object's events.
func (o *{{.GoName}}) Listen(listener {{.GoName}}Listener) {
	o.proxy.SetHandler(wlclient.EventHandlerFunc(func(_ *wlclient.UntypedBorrowedProxy, opcode uint32, args []wlclient.Arg, _ any) {
		switch opcode {
{{range .Events}}		case {{.Opcode}}:
			listener.{{.GoName}}({{range $i, $a := .Args}}{{if $i}}, {{end}}{{eventArgAccessor $i $a}}{{end}})
{{end}}		}
	}), wlclient.NoData)
}
{{end}}
{{end}}
`
