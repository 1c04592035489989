// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

// Command wl-client-builder generates Go bindings for Wayland protocol XML
// files, the way wl-client-builder-cli/src/main.rs generates Rust ones
// (§6, "wl-client-builder").
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wl-client-go/wlclient/generator"
)

var (
	xmlFiles    []string
	xmlDirs     []string
	packageName string
	wlClientPath string
)

func main() {
	root := &cobra.Command{
		Use:   "wl-client-builder <out_dir>",
		Short: "Generate Go Wayland protocol bindings on top of wlclient",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	flags := root.Flags()
	flags.StringArrayVar(&xmlFiles, "xml-file", nil, "protocol XML file to generate bindings for (repeatable)")
	flags.StringArrayVar(&xmlDirs, "xml-dir", nil, "directory to scan for *.xml protocol files (repeatable)")
	flags.StringVar(&packageName, "package", "protocol", "Go package name for the generated files")
	flags.StringVar(&wlClientPath, "wl-client-path", "github.com/wl-client-go/wlclient", "import path of the wlclient runtime module the generated code imports")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wl-client-builder:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	outDir := args[0]
	if len(xmlFiles) == 0 && len(xmlDirs) == 0 {
		return errors.New("at least one --xml-file or --xml-dir is required")
	}

	files, err := collectFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no .xml protocol files found")
	}

	var protocols []*generator.Protocol
	for _, f := range files {
		p, err := generator.ParseFile(f)
		if err != nil {
			return errors.Wrapf(err, "parsing %q", f)
		}
		protocols = append(protocols, p)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating output directory %q", outDir)
	}

	return generator.GenerateWithImportPath(packageName, wlClientPath, protocols, func(filename string, content []byte) error {
		path := filepath.Join(outDir, filename)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return errors.Wrapf(err, "writing %q", path)
		}
		fmt.Fprintln(os.Stdout, "wrote", path)
		return nil
	})
}

func collectFiles() ([]string, error) {
	files := append([]string(nil), xmlFiles...)
	for _, dir := range xmlDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "reading xml-dir %q", dir)
		}
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".xml" {
				continue
			}
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
