package stdlib

import (
	"github.com/lemonberrylabs/miro/pkg/types"
)

// registerUnits registers the unit inspection functions.
func (r *Registry) registerUnits() {
	r.Register("unit", unitOf)
	r.Register("unitless", unitless)
	r.Register("strip-unit", stripUnit)
	r.Register("comparable", unitsComparable)
}

func unitOf(args []types.Value) (types.Value, error) {
	if err := requireArgs("unit", args, 1, 1); err != nil {
		return nil, err
	}
	n, err := numberArg("unit", args, 0)
	if err != nil {
		return nil, err
	}
	return types.NewString(n.Unit().String()), nil
}

func unitless(args []types.Value) (types.Value, error) {
	if err := requireArgs("unitless", args, 1, 1); err != nil {
		return nil, err
	}
	n, err := numberArg("unitless", args, 0)
	if err != nil {
		return nil, err
	}
	return types.NewBool(n.Unit() == types.UnitNone), nil
}

func stripUnit(args []types.Value) (types.Value, error) {
	if err := requireArgs("strip-unit", args, 1, 1); err != nil {
		return nil, err
	}
	n, err := numberArg("strip-unit", args, 0)
	if err != nil {
		return nil, err
	}
	return types.NewNumeric(n.Magnitude(), types.UnitNone), nil
}

// unitsComparable reports whether two numbers can be ordered before render
// time.
func unitsComparable(args []types.Value) (types.Value, error) {
	if err := requireArgs("comparable", args, 2, 2); err != nil {
		return nil, err
	}
	a, err := numberArg("comparable", args, 0)
	if err != nil {
		return nil, err
	}
	b, err := numberArg("comparable", args, 1)
	if err != nil {
		return nil, err
	}
	return types.NewBool(sameScale(a, b)), nil
}
