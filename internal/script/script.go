// Package script parses and runs cell scripts: YAML documents that declare
// named cells and a sequence of operations applied to them.
package script

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind selects the element type of a declared cell.
type Kind string

// Cell kinds.
const (
	KindInt  Kind = "int"  // Cell[int64]
	KindText Kind = "text" // Cell[string]
	KindList Kind = "list" // Cell[[]int64]
)

// Op names an operation a step applies to a cell.
type Op string

// Step operations.
const (
	OpGet     Op = "get"
	OpSet     Op = "set"
	OpAdd     Op = "add"
	OpAppend  Op = "append"
	OpPush    Op = "push"
	OpLen     Op = "len"
	OpTake    Op = "take"
	OpReplace Op = "replace"
)

// validOps lists the operations each kind accepts.
var validOps = map[Kind]map[Op]bool{
	KindInt: {
		OpGet: true, OpSet: true, OpAdd: true, OpTake: true, OpReplace: true,
	},
	KindText: {
		OpGet: true, OpSet: true, OpAppend: true, OpLen: true, OpTake: true, OpReplace: true,
	},
	KindList: {
		OpGet: true, OpSet: true, OpPush: true, OpLen: true, OpTake: true, OpReplace: true,
	},
}

// argOps lists the operations that require an arg.
var argOps = map[Op]bool{
	OpSet:     true,
	OpAdd:     true,
	OpAppend:  true,
	OpPush:    true,
	OpReplace: true,
}

// Script errors.
var (
	ErrEmptyName     = errors.New("cell name must not be empty")
	ErrDuplicateCell = errors.New("duplicate cell name")
	ErrUnknownCell   = errors.New("unknown cell")
	ErrUnknownKind   = errors.New("unknown cell kind")
	ErrUnknownOp     = errors.New("operation not supported for cell kind")
	ErrInvalidArg    = errors.New("invalid argument")
	ErrExpectation   = errors.New("expectation failed")
)

// Script is a parsed cell script.
type Script struct {
	Name  string     `yaml:"name"`
	Cells []CellDecl `yaml:"cells"`
	Steps []Step     `yaml:"steps"`
}

// CellDecl declares a named cell and its initial value. A missing value
// leaves the cell at the zero value of its kind.
type CellDecl struct {
	Name  string    `yaml:"name"`
	Kind  Kind      `yaml:"kind"`
	Value yaml.Node `yaml:"value"`
}

// Step applies Op to the cell named Cell. Arg is decoded according to the
// cell's kind; Expect, when present, is compared with the rendered result.
type Step struct {
	Cell   string    `yaml:"cell"`
	Op     Op        `yaml:"op"`
	Arg    yaml.Node `yaml:"arg"`
	Expect yaml.Node `yaml:"expect"`
}

// HasExpect reports whether the step carries an expected result.
func (s Step) HasExpect() bool {
	return !s.Expect.IsZero()
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses the script at path. A script without a name is
// named after its path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// Validate checks cell declarations and that every step names a declared
// cell, an operation its kind supports, and an arg when one is required.
func (s *Script) Validate() error {
	kinds := make(map[string]Kind, len(s.Cells))
	for i, d := range s.Cells {
		if d.Name == "" {
			return fmt.Errorf("cell %d: %w", i, ErrEmptyName)
		}
		if _, ok := kinds[d.Name]; ok {
			return fmt.Errorf("cell %q: %w", d.Name, ErrDuplicateCell)
		}
		if _, ok := validOps[d.Kind]; !ok {
			return fmt.Errorf("cell %q: %w: %q", d.Name, ErrUnknownKind, d.Kind)
		}
		kinds[d.Name] = d.Kind
	}

	for i, st := range s.Steps {
		kind, ok := kinds[st.Cell]
		if !ok {
			return fmt.Errorf("step %d: %w: %q", i+1, ErrUnknownCell, st.Cell)
		}
		if !validOps[kind][st.Op] {
			return fmt.Errorf("step %d: %w: %s on %s", i+1, ErrUnknownOp, st.Op, kind)
		}
		if argOps[st.Op] && st.Arg.IsZero() {
			return fmt.Errorf("step %d: %w: %s needs an arg", i+1, ErrInvalidArg, st.Op)
		}
	}
	return nil
}
