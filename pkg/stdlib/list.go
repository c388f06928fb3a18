package stdlib

import (
	"math"

	"github.com/lemonberrylabs/miro/pkg/types"
)

// registerList registers the list functions.
func (r *Registry) registerList() {
	r.Register("length", listLength)
	r.Register("nth", listNth)
	r.Register("join", listJoin)
	r.Register("append", listAppend)
	r.Register("index", listIndex)
}

func listLength(args []types.Value) (types.Value, error) {
	if err := requireArgs("length", args, 1, 1); err != nil {
		return nil, err
	}
	return types.NewNumeric(float64(len(items(args[0]))), types.UnitNone), nil
}

// listNth returns the element at a 1-based index. Negative indexes count
// from the end.
func listNth(args []types.Value) (types.Value, error) {
	if err := requireArgs("nth", args, 2, 2); err != nil {
		return nil, err
	}
	n, err := numberArg("nth", args, 1)
	if err != nil {
		return nil, err
	}
	list := items(args[0])
	i := n.Magnitude()
	if i != math.Trunc(i) || i == 0 || math.Abs(i) > float64(len(list)) {
		return nil, types.NewParameterError("nth", "invalid index %s for a list of %d", n, len(list))
	}
	if i < 0 {
		return list[len(list)+int(i)], nil
	}
	return list[int(i)-1], nil
}

func listJoin(args []types.Value) (types.Value, error) {
	if err := requireArgs("join", args, 2, 2); err != nil {
		return nil, err
	}
	joined := append(items(args[0]), items(args[1])...)
	return types.NewList(joined...), nil
}

func listAppend(args []types.Value) (types.Value, error) {
	if err := requireArgs("append", args, 2, 2); err != nil {
		return nil, err
	}
	return types.NewList(append(items(args[0]), args[1])...), nil
}

// listIndex returns the 1-based position of a value, or false when absent.
func listIndex(args []types.Value) (types.Value, error) {
	if err := requireArgs("index", args, 2, 2); err != nil {
		return nil, err
	}
	for i, v := range items(args[0]) {
		if types.Equal(v, args[1]) {
			return types.NewNumeric(float64(i+1), types.UnitNone), nil
		}
	}
	return types.False, nil
}
