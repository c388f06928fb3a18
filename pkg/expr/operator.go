package expr

import (
	"github.com/lemonberrylabs/miro/pkg/types"
)

// Operator is a binary operator of the expression language.
type Operator int

const (
	OpAnd Operator = iota + 1 // &&
	OpOr                      // ||
	OpEquals                  // ==
	OpGreater                 // >
	OpLess                    // <
	OpGreaterEq               // >=
	OpLessEq                  // <=
	OpPlus                    // +
	OpMinus                   // -
	OpMultiply                // *
	OpDivide                  // /
)

type operatorInfo struct {
	symbol     string
	precedence int
}

var operators = [...]operatorInfo{
	OpAnd:       {"&&", 1},
	OpOr:        {"||", 1},
	OpEquals:    {"==", 2},
	OpGreater:   {">", 2},
	OpLess:      {"<", 2},
	OpGreaterEq: {">=", 2},
	OpLessEq:    {"<=", 2},
	OpPlus:      {"+", 3},
	OpMinus:     {"-", 3},
	OpMultiply:  {"*", 4},
	OpDivide:    {"/", 4},
}

var operatorsBySymbol = map[string]Operator{
	"&&": OpAnd,
	"||": OpOr,
	"==": OpEquals,
	">":  OpGreater,
	"<":  OpLess,
	">=": OpGreaterEq,
	"<=": OpLessEq,
	"+":  OpPlus,
	"-":  OpMinus,
	"*":  OpMultiply,
	"/":  OpDivide,
}

// ParseOperator resolves an operator symbol.
func ParseOperator(symbol string) (Operator, error) {
	op, ok := operatorsBySymbol[symbol]
	if !ok {
		return 0, &types.UnknownOperatorError{Symbol: symbol}
	}
	return op, nil
}

// Precedence returns the binding strength; higher binds tighter.
func (op Operator) Precedence() int {
	if !op.valid() {
		return 0
	}
	return operators[op].precedence
}

// String returns the operator symbol.
func (op Operator) String() string {
	if !op.valid() {
		return "?"
	}
	return operators[op].symbol
}

func (op Operator) valid() bool {
	return op >= OpAnd && op <= OpDivide
}
