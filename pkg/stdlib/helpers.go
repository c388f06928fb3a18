package stdlib

import (
	"github.com/lemonberrylabs/miro/pkg/types"
)

// registerExpressionHelpers registers general helpers: if, type-of, inspect.
func (r *Registry) registerExpressionHelpers() {
	r.Register("if", stdIf)
	r.Register("type-of", stdTypeOf)
	r.Register("inspect", stdInspect)
}

// stdIf returns the second argument if the first is truthy, otherwise the
// third. Both branches are already evaluated.
func stdIf(args []types.Value) (types.Value, error) {
	if err := requireArgs("if", args, 3, 3); err != nil {
		return nil, err
	}
	if args[0].Truthy() {
		return args[1], nil
	}
	return args[2], nil
}

func stdTypeOf(args []types.Value) (types.Value, error) {
	if err := requireArgs("type-of", args, 1, 1); err != nil {
		return nil, err
	}
	var name string
	switch args[0].(type) {
	case types.Numeric:
		name = "number"
	case types.StringValue, types.Ident:
		name = "string"
	case types.Bool:
		name = "bool"
	case types.List, types.MultiValue:
		name = "list"
	case types.Function:
		name = "function"
	}
	return types.NewIdent(name), nil
}

func stdInspect(args []types.Value) (types.Value, error) {
	if err := requireArgs("inspect", args, 1, 1); err != nil {
		return nil, err
	}
	return types.NewString(args[0].String()), nil
}
