// Package stdlib implements the miro built-in functions.
package stdlib

import (
	"maps"
	"slices"

	"github.com/lemonberrylabs/miro/pkg/types"
)

// Registry holds the built-in functions and serves as a types.Catalog.
// It is safe for concurrent lookups once built.
type Registry struct {
	funcs map[string]types.Builtin
}

// NewRegistry creates a new registry with all built-in functions registered.
func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]types.Builtin),
	}
	r.registerExpressionHelpers()
	r.registerMath()
	r.registerUnits()
	r.registerList()
	r.registerText()
	r.registerUUID()
	return r
}

// Lookup implements types.Catalog.
func (r *Registry) Lookup(name string) (types.Builtin, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Register adds a function to the registry.
func (r *Registry) Register(name string, fn types.Builtin) {
	r.funcs[name] = fn
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.funcs))
}

// requireArgs checks that the number of args is in range. A negative max
// means no upper bound.
func requireArgs(name string, args []types.Value, min, max int) error {
	if len(args) >= min && (max < 0 || len(args) <= max) {
		return nil
	}
	switch {
	case min == max:
		return types.NewParameterError(name, "expects %d argument(s), got %d", min, len(args))
	case max < 0:
		return types.NewParameterError(name, "expects at least %d argument(s), got %d", min, len(args))
	default:
		return types.NewParameterError(name, "expects %d-%d arguments, got %d", min, max, len(args))
	}
}

// numberArg returns args[i] as a number.
func numberArg(name string, args []types.Value, i int) (types.Numeric, error) {
	n, ok := args[i].(types.Numeric)
	if !ok {
		return types.Numeric{}, types.NewParameterError(name,
			"argument %d must be a number, got %s", i+1, args[i].Kind())
	}
	return n, nil
}

// textArg returns the text of a string or identifier argument.
func textArg(name string, args []types.Value, i int) (string, error) {
	switch v := args[i].(type) {
	case types.StringValue:
		return v.Text(), nil
	case types.Ident:
		return v.Name(), nil
	}
	return "", types.NewParameterError(name,
		"argument %d must be a string, got %s", i+1, args[i].Kind())
}

// items returns the elements of a list-like value. Any other value is a
// one-element list.
func items(v types.Value) []types.Value {
	switch l := v.(type) {
	case types.List:
		return l.Values()
	case types.MultiValue:
		return l.Values()
	}
	return []types.Value{v}
}
