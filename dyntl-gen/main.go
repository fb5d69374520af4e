// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	dyntl "github.com/tlcodec/dynamic-tl"
	"github.com/tlcodec/dynamic-tl/codegen"
	"github.com/tlcodec/dynamic-tl/tlschema"
)

func main() {
	var (
		schemaFile  = flag.String("schema", "", "Schema file to load (.yaml/.yml document or .tlo binary config)")
		typeNames   = flag.String("types", "", "Comma-separated list of schema type or combinator names to generate bindings for")
		outputFile  = flag.String("output", "", "Output file path for generated code")
		packageName = flag.String("package", "", "Package name for the generated code")
		verbose     = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if *schemaFile == "" {
		log.Fatal("Schema file is required (-schema)")
	}
	if *typeNames == "" {
		log.Fatal("Type names are required (-types)")
	}
	if *outputFile == "" {
		log.Fatal("Output file is required (-output)")
	}
	if *packageName == "" {
		log.Fatal("Package name is required (-package)")
	}

	if *verbose {
		log.Printf("Loading schema: %s", *schemaFile)
	}

	data, err := os.ReadFile(*schemaFile)
	if err != nil {
		log.Fatalf("Failed to read schema file %s: %v", *schemaFile, err)
	}

	var schema *tlschema.Schema
	switch ext := filepath.Ext(*schemaFile); ext {
	case ".yaml", ".yml":
		schema, err = tlschema.LoadYAML(data)
	case ".tlo":
		schema, err = tlschema.ParseConfig(data)
	default:
		log.Fatalf("Unsupported schema file extension %q (want .yaml, .yml or .tlo)", ext)
	}
	if err != nil {
		log.Fatalf("Failed to load schema %s: %v", *schemaFile, err)
	}

	if *verbose {
		log.Printf("Loaded %d types and %d functions", len(schema.Types), len(schema.Functions))
	}

	requested := strings.Split(*typeNames, ",")
	for i, name := range requested {
		requested[i] = strings.TrimSpace(name)
	}

	opts := []dyntl.Option{}
	if *verbose {
		opts = append(opts, dyntl.WithVerbose())
	}
	codeGen := codegen.NewCodeGenerator(dyntl.NewDynTl(schema, opts...),
		codegen.WithSource(filepath.Base(*schemaFile)))

	if err := codeGen.BuildFile(*outputFile, *packageName, requested...); err != nil {
		log.Fatalf("Failed to queue generation: %v", err)
	}

	if *verbose {
		log.Printf("Generating code...")
	}

	if err := codeGen.Generate(); err != nil {
		log.Fatalf("Failed to generate code: %v", err)
	}

	if *verbose {
		log.Printf("Wrote %s", *outputFile)
	} else {
		fmt.Printf("Generated TL bindings for %d names in %s\n", len(requested), *outputFile)
	}
}
