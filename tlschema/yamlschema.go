// Copyright (c) 2025 tlcodec
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-tl library.

package tlschema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/casbin/govaluate"
	"gopkg.in/yaml.v3"
)

// The YAML schema document is the human-editable counterpart of the
// compiled binary config. Numeric fields (constructor ids, condition
// bits, nat constants) may be given either as literals or as expressions
// over the document's named constants.
//
//	constants:
//	  SILENT_BIT: "5"
//	types:
//	  - name: MessageContent
//	    constructors:
//	      - name: messageText
//	        id: "0x9a33dfc3"
//	        args:
//	          - {name: flags, type: "#", var: 0}
//	          - {name: text, type: String}
//	          - {name: silent, type: True, when: flags.SILENT_BIT}
//	functions:
//	  - name: sendMessage
//	    id: "0x11223344"
//	    type: Message
//	    args: [...]
type yamlDocument struct {
	Constants map[string]string `yaml:"constants"`
	Types     []yamlType        `yaml:"types"`
	Functions []yamlCombinator  `yaml:"functions"`
}

type yamlType struct {
	Name         string           `yaml:"name"`
	Constructors []yamlCombinator `yaml:"constructors"`
}

type yamlCombinator struct {
	Name string    `yaml:"name"`
	ID   string    `yaml:"id"`
	Type string    `yaml:"type"` // result type, functions only
	Args []yamlArg `yaml:"args"`
}

type yamlArg struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	When       string `yaml:"when"`
	Var        *int   `yaml:"var"`
	TypeVar    *int   `yaml:"typevar"`
	Suppressed bool   `yaml:"suppressed"`
}

type yamlLoader struct {
	consts map[string]any
	types  map[string]*Type
}

// LoadYAML parses a YAML schema document into a Schema. Built-in types
// are registered implicitly; all failures are fatal load-time errors.
func LoadYAML(data []byte) (*Schema, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid schema document: %w", err)
	}

	l := &yamlLoader{types: make(map[string]*Type)}
	if err := l.resolveConstants(doc.Constants); err != nil {
		return nil, err
	}

	types := builtinTypes()
	for _, t := range types {
		l.types[t.Name] = t
	}

	// first pass: type shells, so constructors can reference each other
	for _, yt := range doc.Types {
		if yt.Name == "" {
			return nil, fmt.Errorf("schema type without a name")
		}
		if _, ok := l.types[yt.Name]; ok {
			return nil, fmt.Errorf("duplicate type name %q", yt.Name)
		}
		t := &Type{Name: yt.Name, BareDefault: bareByConvention(yt.Name)}
		l.types[yt.Name] = t
		types = append(types, t)
	}

	for _, yt := range doc.Types {
		t := l.types[yt.Name]
		if len(yt.Constructors) == 0 {
			return nil, fmt.Errorf("type %q has no constructors", yt.Name)
		}
		for _, yc := range yt.Constructors {
			c, err := l.buildCombinator(yc, t)
			if err != nil {
				return nil, err
			}
			t.Constructors = append(t.Constructors, c)
		}
	}

	functions := make([]*Constructor, 0, len(doc.Functions))
	for _, yf := range doc.Functions {
		f, err := l.buildCombinator(yf, nil)
		if err != nil {
			return nil, err
		}
		functions = append(functions, f)
	}

	return New(types, functions)
}

// resolveConstants evaluates the constants table, allowing constants to
// reference each other in any declaration order.
func (l *yamlLoader) resolveConstants(raw map[string]string) error {
	l.consts = make(map[string]any, len(raw))
	pending := make(map[string]string, len(raw))
	for name, expr := range raw {
		pending[name] = expr
	}
	for len(pending) > 0 {
		progress := false
		for name, expr := range pending {
			v, err := l.evalNumber(expr)
			if err != nil {
				continue
			}
			l.consts[name] = float64(v)
			delete(pending, name)
			progress = true
		}
		if !progress {
			for name, expr := range pending {
				if _, err := l.evalNumber(expr); err != nil {
					return fmt.Errorf("constant %q: %w", name, err)
				}
			}
		}
	}
	return nil
}

// evalNumber resolves a numeric literal (including 0x hex) or an
// expression over the document's constants.
func (l *yamlLoader) evalNumber(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty numeric expression")
	}
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return v, nil
	}
	expr, err := govaluate.NewEvaluableExpression(s)
	if err != nil {
		return 0, fmt.Errorf("invalid expression %q: %w", s, err)
	}
	result, err := expr.Evaluate(l.consts)
	if err != nil {
		return 0, fmt.Errorf("cannot evaluate %q: %w", s, err)
	}
	f, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("expression %q is not numeric", s)
	}
	return int64(f), nil
}

func (l *yamlLoader) buildCombinator(yc yamlCombinator, parent *Type) (*Constructor, error) {
	if yc.Name == "" {
		return nil, fmt.Errorf("constructor without a name")
	}
	idVal, err := l.evalNumber(yc.ID)
	if err != nil {
		return nil, fmt.Errorf("constructor %q: id: %w", yc.Name, err)
	}
	c := &Constructor{Name: yc.Name, ID: int32(idVal)}

	argsByName := make(map[string]*Argument, len(yc.Args))
	for _, ya := range yc.Args {
		a, err := l.buildArgument(yc.Name, ya, argsByName, &c.VarCount)
		if err != nil {
			return nil, err
		}
		c.Args = append(c.Args, a)
		argsByName[a.Name] = &c.Args[len(c.Args)-1]
	}

	switch {
	case parent != nil:
		c.TypeID = parent.ID
		c.Result = &TypeTree{Kind: TreeTypeRef, Type: parent}
	case yc.Type != "":
		result, err := l.parseTypeExpr(yc.Type, &c.VarCount)
		if err != nil {
			return nil, fmt.Errorf("function %q: result: %w", yc.Name, err)
		}
		c.Result = result
	default:
		return nil, fmt.Errorf("function %q has no result type", yc.Name)
	}
	return c, nil
}

func (l *yamlLoader) buildArgument(ctor string, ya yamlArg, seen map[string]*Argument, varCount *int) (Argument, error) {
	a := Argument{Name: ya.Name, VarNum: -1, ExistVarNum: -1, Suppressed: ya.Suppressed}
	if a.Name == "" {
		return a, fmt.Errorf("constructor %q: argument without a name", ctor)
	}
	if _, ok := seen[a.Name]; ok {
		return a, fmt.Errorf("constructor %q: duplicate argument %q", ctor, a.Name)
	}

	if ya.Var != nil {
		a.VarNum = *ya.Var
		if a.VarNum < 0 {
			return a, fmt.Errorf("constructor %q: argument %q declares negative variable", ctor, a.Name)
		}
		if a.VarNum >= *varCount {
			*varCount = a.VarNum + 1
		}
	}

	if ya.When != "" {
		varName, bitExpr, ok := strings.Cut(ya.When, ".")
		if !ok {
			return a, fmt.Errorf("constructor %q: argument %q: condition %q is not of the form field.bit", ctor, a.Name, ya.When)
		}
		controlling, ok := seen[varName]
		if !ok || controlling.VarNum < 0 {
			return a, fmt.Errorf("constructor %q: argument %q: condition references %q, which is not an earlier variable-producing argument", ctor, a.Name, varName)
		}
		bit, err := l.evalNumber(bitExpr)
		if err != nil {
			return a, fmt.Errorf("constructor %q: argument %q: condition bit: %w", ctor, a.Name, err)
		}
		if bit < 0 || bit > 30 {
			return a, fmt.Errorf("constructor %q: argument %q: condition bit %d out of range", ctor, a.Name, bit)
		}
		a.ExistVarNum = controlling.VarNum
		a.ExistVarBit = int(bit)
	}

	if ya.TypeVar != nil {
		varNum := *ya.TypeVar
		if varNum < 0 {
			return a, fmt.Errorf("constructor %q: argument %q references negative type variable", ctor, a.Name)
		}
		if varNum >= *varCount {
			*varCount = varNum + 1
		}
		a.Type = &TypeTree{Kind: TreeVarType, VarNum: varNum}
		return a, nil
	}

	tree, err := l.parseTypeExpr(ya.Type, varCount)
	if err != nil {
		return a, fmt.Errorf("constructor %q: argument %q: %w", ctor, a.Name, err)
	}
	a.Type = tree
	return a, nil
}

// parseTypeExpr parses a type expression such as "#", "String",
// "%Message", "Vector<Vector<Int32>>".
func (l *yamlLoader) parseTypeExpr(s string, varCount *int) (*TypeTree, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("missing type")
	}

	var flags TreeFlag
	if strings.HasPrefix(s, "%") {
		flags |= TreeFlagBare
		s = strings.TrimSpace(s[1:])
	}

	name := s
	var params []string
	if open := strings.IndexByte(s, '<'); open >= 0 {
		if !strings.HasSuffix(s, ">") {
			return nil, fmt.Errorf("unbalanced type expression %q", s)
		}
		name = strings.TrimSpace(s[:open])
		var err error
		params, err = splitTypeParams(s[open+1 : len(s)-1])
		if err != nil {
			return nil, fmt.Errorf("type expression %q: %w", s, err)
		}
	}

	t, ok := l.types[name]
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	if len(params) != t.Arity {
		return nil, fmt.Errorf("type %q takes %d parameters, got %d", name, t.Arity, len(params))
	}

	tree := &TypeTree{Kind: TreeTypeRef, Flags: flags, Type: t}
	for _, param := range params {
		if v, err := strconv.ParseInt(strings.TrimSpace(param), 0, 32); err == nil {
			tree.Children = append(tree.Children, &TypeTree{Kind: TreeNatConst, Value: int32(v)})
			continue
		}
		child, err := l.parseTypeExpr(param, varCount)
		if err != nil {
			return nil, err
		}
		tree.Children = append(tree.Children, child)
	}
	return tree, nil
}

// splitTypeParams splits a generic parameter list on top-level commas.
func splitTypeParams(s string) ([]string, error) {
	var params []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced angle brackets")
			}
		case ',':
			if depth == 0 {
				params = append(params, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced angle brackets")
	}
	params = append(params, s[start:])
	return params, nil
}
