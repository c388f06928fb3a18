package stdlib

import (
	"math"

	"github.com/lemonberrylabs/miro/pkg/types"
)

// registerMath registers the numeric functions.
func (r *Registry) registerMath() {
	r.Register("abs", unary("abs", math.Abs))
	r.Register("ceil", unary("ceil", math.Ceil))
	r.Register("floor", unary("floor", math.Floor))
	r.Register("round", unary("round", math.Round))
	r.Register("max", extremum("max", func(a, b float64) bool { return a > b }))
	r.Register("min", extremum("min", func(a, b float64) bool { return a < b }))
	r.Register("percentage", mathPercentage)
}

// unary lifts f to a built-in that keeps the unit of its argument.
func unary(name string, f func(float64) float64) types.Builtin {
	return func(args []types.Value) (types.Value, error) {
		if err := requireArgs(name, args, 1, 1); err != nil {
			return nil, err
		}
		n, err := numberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return types.NewNumeric(f(n.Magnitude()), n.Unit()), nil
	}
}

// extremum picks the argument for which better holds against all others.
// Numbers in different units cannot be ordered before render time, so such a
// call is left to CSS. A unitless number compares with any absolute unit.
func extremum(name string, better func(a, b float64) bool) types.Builtin {
	return func(args []types.Value) (types.Value, error) {
		if err := requireArgs(name, args, 1, -1); err != nil {
			return nil, err
		}
		best, err := numberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		for i := 1; i < len(args); i++ {
			n, err := numberArg(name, args, i)
			if err != nil {
				return nil, err
			}
			if !sameScale(n, best) {
				return types.NewFunction(name, types.NewMultiValue(args...)), nil
			}
			if better(n.Magnitude(), best.Magnitude()) {
				best = n
			}
		}
		return best, nil
	}
}

func mathPercentage(args []types.Value) (types.Value, error) {
	if err := requireArgs("percentage", args, 1, 1); err != nil {
		return nil, err
	}
	n, err := numberArg("percentage", args, 0)
	if err != nil {
		return nil, err
	}
	if n.Unit() != types.UnitNone {
		return nil, types.NewParameterError("percentage", "expects a unitless number, got %s", n)
	}
	return types.NewNumeric(n.Magnitude()*100, types.UnitPercent), nil
}

func sameScale(a, b types.Numeric) bool {
	if a.Unit() == b.Unit() {
		return true
	}
	if a.IsRelative() || b.IsRelative() {
		return false
	}
	return a.Unit() == types.UnitNone || b.Unit() == types.UnitNone
}
