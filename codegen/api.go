// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

// Package codegen renders static Go bindings from a TL schema. The
// bindings are plain structs with Store/Fetch methods over the tlwire
// primitives and need neither the schema nor the runtime interpreter at
// run time. Generation is driven by the same compiled field operation
// sequences the dyntl runtime walkers execute, so both paths always
// agree on the wire layout.
package codegen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/imports"

	dyntl "github.com/tlcodec/dynamic-tl"
	"github.com/tlcodec/dynamic-tl/codegen/tmpl"
)

// GenerationRequest represents a request to generate bindings for a set
// of schema names into one file.
type GenerationRequest struct {
	FileName string
	Package  string
	Names    []string // type names (all constructors) or single combinator names
}

// CodeGenerator manages batch generation of TL bindings for multiple
// files.
type CodeGenerator struct {
	requests []*GenerationRequest
	dynTl    *dyntl.DynTl
	options  *CodeGenOptions
}

// NewCodeGenerator creates a new code generator instance over a loaded
// schema.
func NewCodeGenerator(dynTl *dyntl.DynTl, opts ...CodeGenOption) *CodeGenerator {
	options := &CodeGenOptions{
		Source: "tl schema",
	}
	for _, opt := range opts {
		opt(options)
	}

	return &CodeGenerator{
		requests: make([]*GenerationRequest, 0),
		dynTl:    dynTl,
		options:  options,
	}
}

// BuildFile queues one output file. Each name must resolve to a schema
// type or combinator.
func (cg *CodeGenerator) BuildFile(fileName string, packageName string, names ...string) error {
	if packageName == "" {
		return fmt.Errorf("package name is required")
	}
	if len(names) == 0 {
		return fmt.Errorf("no schema names requested for %s", fileName)
	}
	s := cg.dynTl.Schema()
	for _, name := range names {
		if s.TypeByName(name) == nil && s.ConstructorByName(name) == nil {
			return fmt.Errorf("name %q not found in schema", name)
		}
	}

	cg.requests = append(cg.requests, &GenerationRequest{
		FileName: fileName,
		Package:  packageName,
		Names:    names,
	})

	return nil
}

// GenerateToMap generates code for all requested files and returns it
// as a map of file name to source text.
func (cg *CodeGenerator) GenerateToMap() (map[string]string, error) {
	if len(cg.requests) == 0 {
		return nil, fmt.Errorf("no files requested for generation")
	}

	results := make(map[string]string)

	for _, req := range cg.requests {
		g := newFileGen(cg.dynTl)
		for _, name := range req.Names {
			if err := g.genName(name); err != nil {
				return nil, fmt.Errorf("failed to generate code for %s: %w", req.FileName, err)
			}
		}
		if g.needsObject {
			if err := GetTemplate("tmpl/bindings.tmpl").ExecuteTemplate(&g.code, "object", nil); err != nil {
				return nil, err
			}
		}

		importList := []tmpl.TypeImport{
			{Path: "github.com/tlcodec/dynamic-tl/tlwire"},
		}
		if g.needsFmt {
			importList = append(importList, tmpl.TypeImport{Path: "fmt"})
		}
		sort.Slice(importList, func(i, j int) bool {
			return importList[i].Path < importList[j].Path
		})

		mainCode := tmpl.Main{
			PackageName: req.Package,
			Source:      cg.options.Source,
			Version:     Version,
			Imports:     importList,
			Code:        g.code.String(),
		}

		mainCodeBuilder := strings.Builder{}
		if err := GetTemplate("tmpl/main.tmpl").ExecuteTemplate(&mainCodeBuilder, "main", mainCode); err != nil {
			return nil, fmt.Errorf("failed to generate code for %s: %w", req.FileName, err)
		}

		code := mainCodeBuilder.String()
		if !cg.options.NoFormat {
			formatted, err := imports.Process(req.FileName, []byte(code), nil)
			if err != nil {
				return nil, fmt.Errorf("failed to format generated code for %s: %w", req.FileName, err)
			}
			code = string(formatted)
		}

		results[req.FileName] = code
	}

	return results, nil
}

// Generate renders all requested files and writes them to disk.
func (cg *CodeGenerator) Generate() error {
	results, err := cg.GenerateToMap()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	for fileName, code := range results {
		dir := filepath.Dir(fileName)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}

		if err := os.WriteFile(fileName, []byte(code), 0644); err != nil {
			return fmt.Errorf("failed to write code to file %s: %w", fileName, err)
		}
	}

	return nil
}
