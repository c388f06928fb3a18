// Package types defines the runtime values of the miro expression language:
// numbers with CSS units, strings, booleans, lists, argument lists, function
// calls and bare identifiers.
package types

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNumeric  Kind = iota // Numeric
	KindString               // StringValue
	KindBool                 // Bool
	KindList                 // List
	KindMulti                // MultiValue
	KindFunction             // Function
	KindIdent                // Ident
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "Numeric"
	case KindString:
		return "StringValue"
	case KindBool:
		return "Bool"
	case KindList:
		return "List"
	case KindMulti:
		return "MultiValue"
	case KindFunction:
		return "Function"
	case KindIdent:
		return "Ident"
	default:
		return "unknown"
	}
}

// Value is a miro runtime value. The set of implementations is closed: only
// the types in this package satisfy it. Values are immutable once built.
type Value interface {
	// Kind returns the variant tag.
	Kind() Kind

	// String returns the canonical CSS text of the value. It is also the form
	// a value takes when concatenated onto a string.
	String() string

	// Truthy is the boolean coercion used by &&, || and == against a Bool.
	Truthy() bool

	// CallFunc invokes the built-in name with the value as first argument.
	CallFunc(c Catalog, name string, args ...Value) (Value, error)

	sealed()
}

// Builtin is a function provided by a Catalog.
type Builtin func(args []Value) (Value, error)

// Catalog resolves built-in functions by name.
type Catalog interface {
	Lookup(name string) (Builtin, bool)
}

func callFunc(c Catalog, name string, args []Value) (Value, error) {
	if c == nil {
		return nil, &UnimplementedFunctionError{Name: name}
	}
	fn, ok := c.Lookup(name)
	if !ok {
		return nil, &UnimplementedFunctionError{Name: name}
	}
	return fn(args)
}

func prepend(v Value, args []Value) []Value {
	all := make([]Value, 0, len(args)+1)
	all = append(all, v)
	return append(all, args...)
}

// Numeric is a number with an optional CSS unit.
type Numeric struct {
	magnitude float64
	unit      Unit
}

// NewNumeric creates a Numeric value.
func NewNumeric(magnitude float64, unit Unit) Numeric {
	return Numeric{magnitude: magnitude, unit: unit}
}

// Magnitude returns the raw number without its unit.
func (n Numeric) Magnitude() float64 { return n.magnitude }

// Unit returns the CSS unit.
func (n Numeric) Unit() Unit { return n.unit }

// IsRelative reports whether the value's unit is only resolvable at render time.
func (n Numeric) IsRelative() bool { return n.unit.IsRelative() }

func (n Numeric) Kind() Kind { return KindNumeric }

// String renders the shortest decimal form followed by the unit suffix,
// e.g. "5", "5px", "50%", "0.5em".
func (n Numeric) String() string {
	return FormatNumber(n.magnitude) + n.unit.String()
}

// Truthy is false only for zero.
func (n Numeric) Truthy() bool { return n.magnitude != 0 }

func (n Numeric) CallFunc(c Catalog, name string, args ...Value) (Value, error) {
	return callFunc(c, name, prepend(n, args))
}

func (Numeric) sealed() {}

// FormatNumber formats a magnitude without a trailing ".0" for whole numbers.
func FormatNumber(f float64) string {
	if f == 0 {
		// avoid "-0"
		return "0"
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// StringValue is a string literal.
type StringValue struct {
	text string
}

// NewString creates a StringValue.
func NewString(text string) StringValue {
	return StringValue{text: text}
}

// Text returns the unquoted string content.
func (s StringValue) Text() string { return s.text }

func (s StringValue) Kind() Kind { return KindString }

func (s StringValue) String() string { return s.text }

// Truthy is false only for the empty string.
func (s StringValue) Truthy() bool { return s.text != "" }

func (s StringValue) CallFunc(c Catalog, name string, args ...Value) (Value, error) {
	return callFunc(c, name, prepend(s, args))
}

func (StringValue) sealed() {}

// Bool is a boolean value.
type Bool struct {
	flag bool
}

// True and False are the two Bool values.
var (
	True  = Bool{flag: true}
	False = Bool{flag: false}
)

// NewBool creates a Bool.
func NewBool(flag bool) Bool {
	return Bool{flag: flag}
}

// Flag returns the boolean.
func (b Bool) Flag() bool { return b.flag }

func (b Bool) Kind() Kind { return KindBool }

func (b Bool) String() string {
	if b.flag {
		return "true"
	}
	return "false"
}

func (b Bool) Truthy() bool { return b.flag }

func (b Bool) CallFunc(c Catalog, name string, args ...Value) (Value, error) {
	return callFunc(c, name, prepend(b, args))
}

func (Bool) sealed() {}

// List is an ordered list literal. It renders space separated, which is also
// the shape of the symbolic argument of a deferred calc().
type List struct {
	items []Value
}

// NewList creates a List holding a copy of items.
func NewList(items ...Value) List {
	return List{items: clone(items)}
}

// Len returns the number of items.
func (l List) Len() int { return len(l.items) }

// Get returns the item at index i. It panics if i is out of range.
func (l List) Get(i int) Value { return l.items[i] }

// Values returns a copy of the items.
func (l List) Values() []Value { return clone(l.items) }

func (l List) Kind() Kind { return KindList }

func (l List) String() string { return join(l.items, " ") }

// Truthy is true for a non-empty list.
func (l List) Truthy() bool { return len(l.items) > 0 }

func (l List) CallFunc(c Catalog, name string, args ...Value) (Value, error) {
	return callFunc(c, name, prepend(l, args))
}

func (List) sealed() {}

// MultiValue is an argument list. It has the shape of a List but renders
// comma separated.
type MultiValue struct {
	items []Value
}

// NewMultiValue creates a MultiValue holding a copy of items.
func NewMultiValue(items ...Value) MultiValue {
	return MultiValue{items: clone(items)}
}

// Len returns the number of items.
func (m MultiValue) Len() int { return len(m.items) }

// Get returns the item at index i. It panics if i is out of range.
func (m MultiValue) Get(i int) Value { return m.items[i] }

// Values returns a copy of the items.
func (m MultiValue) Values() []Value { return clone(m.items) }

func (m MultiValue) Kind() Kind { return KindMulti }

func (m MultiValue) String() string { return join(m.items, ", ") }

// Truthy is true for a non-empty argument list.
func (m MultiValue) Truthy() bool { return len(m.items) > 0 }

func (m MultiValue) CallFunc(c Catalog, name string, args ...Value) (Value, error) {
	return callFunc(c, name, prepend(m, args))
}

func (MultiValue) sealed() {}

// Function is a call that was not, or cannot be, resolved at compile time.
// Deferred arithmetic is a Function named "calc".
type Function struct {
	name string
	args MultiValue
}

// NewFunction creates a Function.
func NewFunction(name string, args MultiValue) Function {
	return Function{name: name, args: args}
}

// Calc builds the deferred calc(left op right) expression.
func Calc(left Value, op string, right Value) Function {
	return NewFunction("calc", NewMultiValue(NewList(left, NewIdent(op), right)))
}

// Name returns the callee name.
func (f Function) Name() string { return f.name }

// Args returns the argument list.
func (f Function) Args() MultiValue { return f.args }

func (f Function) Kind() Kind { return KindFunction }

func (f Function) String() string { return f.name + "(" + f.args.String() + ")" }

// Truthy is always true.
func (f Function) Truthy() bool { return true }

func (f Function) CallFunc(c Catalog, name string, args ...Value) (Value, error) {
	return callFunc(c, name, prepend(f, args))
}

// Invoke calls the built-in named like the function. The first argument, if
// any, is the receiver of the call.
func (f Function) Invoke(c Catalog) (Value, error) {
	if f.args.Len() == 0 {
		return callFunc(c, f.name, nil)
	}
	return f.args.Get(0).CallFunc(c, f.name, f.args.items[1:]...)
}

func (Function) sealed() {}

// Ident is a bare symbol: a CSS keyword such as "solid", a hash colour, or an
// operator re-embedded in a deferred calc().
type Ident struct {
	name string
}

// NewIdent creates an Ident.
func NewIdent(name string) Ident {
	return Ident{name: name}
}

// Name returns the symbol text.
func (i Ident) Name() string { return i.name }

func (i Ident) Kind() Kind { return KindIdent }

func (i Ident) String() string { return i.name }

// Truthy is false only for an empty name.
func (i Ident) Truthy() bool { return i.name != "" }

func (i Ident) CallFunc(c Catalog, name string, args ...Value) (Value, error) {
	return callFunc(c, name, prepend(i, args))
}

func (Ident) sealed() {}

// Equal reports whether two values are structurally identical, units included.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Numeric:
		bv := b.(Numeric)
		return av.magnitude == bv.magnitude && av.unit == bv.unit
	case StringValue:
		return av.text == b.(StringValue).text
	case Bool:
		return av.flag == b.(Bool).flag
	case Ident:
		return av.name == b.(Ident).name
	case List:
		return equalItems(av.items, b.(List).items)
	case MultiValue:
		return equalItems(av.items, b.(MultiValue).items)
	case Function:
		bv := b.(Function)
		return av.name == bv.name && equalItems(av.args.items, bv.args.items)
	}
	return false
}

func equalItems(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func clone(items []Value) []Value {
	if len(items) == 0 {
		return nil
	}
	c := make([]Value, len(items))
	copy(c, items)
	return c
}

func join(items []Value, sep string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return strings.Join(parts, sep)
}
