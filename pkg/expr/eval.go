package expr

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lemonberrylabs/miro/pkg/types"
)

// ErrMalformed is returned for a postfix sequence that does not reduce to
// exactly one value.
var ErrMalformed = errors.New("malformed expression")

// Evaluate runs a postfix sequence on a value stack and returns the single
// resulting value. The sequence and its operands are not modified, so a
// sequence may be evaluated any number of times.
func Evaluate(p Postfix) (types.Value, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: empty expression", ErrMalformed)
	}
	if len(p) == 1 && !p[0].IsOperator() {
		return p[0].value, nil
	}

	stack := make([]types.Value, 0, len(p))
	for _, item := range p {
		if !item.IsOperator() {
			stack = append(stack, item.value)
			continue
		}
		if len(stack) < 2 {
			return nil, fmt.Errorf("%w: operator %s is missing an operand", ErrMalformed, item.op)
		}
		right := stack[len(stack)-1]
		left := stack[len(stack)-2]
		stack = stack[:len(stack)-2]

		result, err := apply(item.op, left, right)
		if err != nil {
			return nil, err
		}
		stack = append(stack, result)
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("%w: %d operands are not joined by an operator", ErrMalformed, len(stack))
	}
	return stack[0], nil
}

// apply dispatches a binary operator on the kinds of its operands.
func apply(op Operator, left, right types.Value) (types.Value, error) {
	switch op {
	case OpPlus:
		return add(left, right)
	case OpMinus:
		return subtract(left, right)
	case OpMultiply:
		return multiply(left, right)
	case OpDivide:
		return divide(left, right)
	case OpEquals:
		return equals(left, right)
	case OpGreater, OpLess, OpGreaterEq, OpLessEq:
		return compare(op, left, right)
	case OpAnd:
		return types.NewBool(left.Truthy() && right.Truthy()), nil
	case OpOr:
		return types.NewBool(left.Truthy() || right.Truthy()), nil
	default:
		return nil, undefined(op, left, right)
	}
}

func undefined(op Operator, left, right types.Value) error {
	return &types.UndefinedOperatorError{Operator: op.String(), Left: left.Kind(), Right: right.Kind()}
}

// deferred reports whether arithmetic on a and b must be left to calc().
func deferred(a, b types.Numeric) bool {
	return a.IsRelative() || b.IsRelative()
}

func add(left, right types.Value) (types.Value, error) {
	switch l := left.(type) {
	case types.Numeric:
		switch r := right.(type) {
		case types.Numeric:
			if deferred(l, r) {
				return types.Calc(l, OpPlus.String(), r), nil
			}
			return types.NewNumeric(l.Magnitude()+r.Magnitude(), l.Unit()), nil
		case types.StringValue:
			return types.NewString(l.String() + r.Text()), nil
		}
	case types.StringValue:
		return types.NewString(l.Text() + right.String()), nil
	}
	return nil, undefined(OpPlus, left, right)
}

func subtract(left, right types.Value) (types.Value, error) {
	if l, ok := left.(types.Numeric); ok {
		switch r := right.(type) {
		case types.Numeric:
			if deferred(l, r) {
				return types.Calc(l, OpMinus.String(), r), nil
			}
			return types.NewNumeric(l.Magnitude()-r.Magnitude(), l.Unit()), nil
		case types.StringValue:
			return types.NewString(strings.ReplaceAll(r.Text(), l.String(), "")), nil
		}
	}
	return nil, undefined(OpMinus, left, right)
}

func multiply(left, right types.Value) (types.Value, error) {
	switch l := left.(type) {
	case types.Numeric:
		switch r := right.(type) {
		case types.Numeric:
			if deferred(l, r) {
				return types.Calc(l, OpMultiply.String(), r), nil
			}
			return types.NewNumeric(l.Magnitude()*r.Magnitude(), l.Unit()), nil
		case types.StringValue:
			return repeat(r.Text(), l.Magnitude())
		}
	case types.StringValue:
		if r, ok := right.(types.Numeric); ok {
			return repeat(l.Text(), r.Magnitude())
		}
	}
	return nil, undefined(OpMultiply, left, right)
}

// MaxRepeatSize bounds the length in bytes of a string built by
// multiplying a string with a number.
const MaxRepeatSize = 1 << 20

// repeat concatenates s floor(times) times; zero or negative counts give "".
func repeat(s string, times float64) (types.Value, error) {
	n := math.Floor(times)
	if n <= 0 || math.IsNaN(n) || s == "" {
		return types.NewString(""), nil
	}
	if size := n * float64(len(s)); size > MaxRepeatSize {
		return nil, &types.ResultTooLargeError{Size: size, Limit: MaxRepeatSize}
	}
	return types.NewString(strings.Repeat(s, int(n))), nil
}

func divide(left, right types.Value) (types.Value, error) {
	l, lok := left.(types.Numeric)
	r, rok := right.(types.Numeric)
	if !lok || !rok {
		return nil, undefined(OpDivide, left, right)
	}
	if deferred(l, r) {
		return types.Calc(l, OpDivide.String(), r), nil
	}
	if r.Magnitude() == 0 {
		return nil, &types.DivisionByZeroError{Dividend: l}
	}
	return types.NewNumeric(l.Magnitude()/r.Magnitude(), l.Unit()), nil
}

// equals compares numeric magnitudes (units are ignored) or a boolean
// against the truthiness of any value.
func equals(left, right types.Value) (types.Value, error) {
	switch l := left.(type) {
	case types.Numeric:
		if r, ok := right.(types.Numeric); ok {
			return types.NewBool(l.Magnitude() == r.Magnitude()), nil
		}
	case types.Bool:
		return types.NewBool(l.Flag() == right.Truthy()), nil
	}
	return nil, undefined(OpEquals, left, right)
}

func compare(op Operator, left, right types.Value) (types.Value, error) {
	l, lok := left.(types.Numeric)
	r, rok := right.(types.Numeric)
	if !lok || !rok {
		return nil, undefined(op, left, right)
	}
	a, b := l.Magnitude(), r.Magnitude()
	switch op {
	case OpGreater:
		return types.NewBool(a > b), nil
	case OpLess:
		return types.NewBool(a < b), nil
	case OpGreaterEq:
		return types.NewBool(a >= b), nil
	default:
		return types.NewBool(a <= b), nil
	}
}
