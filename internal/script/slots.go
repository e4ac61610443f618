package script

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/cellref/pkg/cell"
)

// slot is a declared cell of one kind. apply runs a validated op and
// returns its rendered result; expect decodes an expected result for op
// into the same Go type apply renders, so both sides compare as strings.
type slot interface {
	apply(op Op, arg *yaml.Node) (string, error)
	expect(op Op, n *yaml.Node) (string, error)
	String() string
}

// renderAs decodes n into a T and renders it.
func renderAs[T any](n *yaml.Node) (string, error) {
	v, err := decodeArg[T](n)
	if err != nil {
		return "", err
	}
	return render(v), nil
}

func newSlot(d CellDecl) (slot, error) {
	switch d.Kind {
	case KindInt:
		v, err := decodeArg[int64](&d.Value)
		if err != nil {
			return nil, err
		}
		return &intSlot{c: cell.New(v)}, nil
	case KindText:
		v, err := decodeArg[string](&d.Value)
		if err != nil {
			return nil, err
		}
		return &textSlot{c: cell.New(v)}, nil
	case KindList:
		v, err := decodeArg[[]int64](&d.Value)
		if err != nil {
			return nil, err
		}
		return &listSlot{c: cell.New(v)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, d.Kind)
	}
}

// decodeArg decodes n into a T. A zero node yields the zero T.
func decodeArg[T any](n *yaml.Node) (T, error) {
	var v T
	if n.IsZero() {
		return v, nil
	}
	if err := n.Decode(&v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidArg, err)
	}
	return v, nil
}

func render(v any) string {
	return fmt.Sprint(v)
}

type intSlot struct {
	c *cell.Cell[int64]
}

func (s *intSlot) apply(op Op, arg *yaml.Node) (string, error) {
	switch op {
	case OpGet:
		return render(s.c.Get()), nil
	case OpTake:
		return render(s.c.Take()), nil
	}

	n, err := decodeArg[int64](arg)
	if err != nil {
		return "", err
	}
	switch op {
	case OpSet:
		s.c.Set(n)
		return render(n), nil
	case OpAdd:
		return render(cell.WithMut(s.c, func(p *int64) int64 {
			*p += n
			return *p
		})), nil
	case OpReplace:
		return render(s.c.Replace(n)), nil
	}
	return "", fmt.Errorf("%w: %s on %s", ErrUnknownOp, op, KindInt)
}

func (s *intSlot) expect(_ Op, n *yaml.Node) (string, error) {
	return renderAs[int64](n)
}

func (s *intSlot) String() string { return s.c.String() }

type textSlot struct {
	c *cell.Cell[string]
}

func (s *textSlot) apply(op Op, arg *yaml.Node) (string, error) {
	switch op {
	case OpGet:
		return s.c.Get(), nil
	case OpLen:
		return render(cell.With(s.c, func(v string) int { return len(v) })), nil
	case OpTake:
		return s.c.Take(), nil
	}

	str, err := decodeArg[string](arg)
	if err != nil {
		return "", err
	}
	switch op {
	case OpSet:
		s.c.Set(str)
		return str, nil
	case OpAppend:
		return cell.WithMut(s.c, func(p *string) string {
			*p += str
			return *p
		}), nil
	case OpReplace:
		return s.c.Replace(str), nil
	}
	return "", fmt.Errorf("%w: %s on %s", ErrUnknownOp, op, KindText)
}

func (s *textSlot) expect(op Op, n *yaml.Node) (string, error) {
	if op == OpLen {
		return renderAs[int64](n)
	}
	// Unquoted scalars such as 1.50 or an empty value keep their text.
	return renderAs[string](n)
}

func (s *textSlot) String() string { return s.c.String() }

type listSlot struct {
	c *cell.Cell[[]int64]
}

func (s *listSlot) apply(op Op, arg *yaml.Node) (string, error) {
	switch op {
	case OpGet:
		return render(cell.CloneSlice(s.c)), nil
	case OpLen:
		return render(cell.With(s.c, func(v []int64) int { return len(v) })), nil
	case OpTake:
		return render(s.c.Take()), nil
	case OpPush:
		n, err := decodeArg[int64](arg)
		if err != nil {
			return "", err
		}
		return render(cell.WithMut(s.c, func(p *[]int64) int {
			*p = append(*p, n)
			return len(*p)
		})), nil
	}

	l, err := decodeArg[[]int64](arg)
	if err != nil {
		return "", err
	}
	switch op {
	case OpSet:
		s.c.Set(l)
		return render(l), nil
	case OpReplace:
		return render(s.c.Replace(l)), nil
	}
	return "", fmt.Errorf("%w: %s on %s", ErrUnknownOp, op, KindList)
}

func (s *listSlot) expect(op Op, n *yaml.Node) (string, error) {
	switch op {
	case OpLen, OpPush:
		return renderAs[int64](n)
	}
	return renderAs[[]int64](n)
}

func (s *listSlot) String() string { return s.c.String() }
