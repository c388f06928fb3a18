package types

import (
	"errors"
	"fmt"
)

// Error codes reported by the API surfaces for each error kind.
const (
	CodeSyntaxError           = "SYNTAX_ERROR"
	CodeUnknownOperator       = "UNKNOWN_OPERATOR"
	CodeUndefinedOperator     = "UNDEFINED_OPERATOR"
	CodeDivisionByZero        = "DIVISION_BY_ZERO"
	CodeUnimplementedFunction = "UNIMPLEMENTED_FUNCTION"
	CodeFunctionParameter     = "FUNCTION_PARAMETER"
	CodeResultTooLarge        = "RESULT_TOO_LARGE"
)

// UnknownOperatorError is returned when an operator symbol has no entry in
// the operator table.
type UnknownOperatorError struct {
	Symbol string
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator '%s'", e.Symbol)
}

// UndefinedOperatorError is returned when an operator is applied to a pair of
// operand kinds it has no rule for.
type UndefinedOperatorError struct {
	Operator string
	Left     Kind
	Right    Kind
}

func (e *UndefinedOperatorError) Error() string {
	return fmt.Sprintf("operator %s is not defined for %s and %s", e.Operator, e.Left, e.Right)
}

// DivisionByZeroError is returned when a numeric value is divided by zero.
type DivisionByZeroError struct {
	Dividend Numeric
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("division by zero (%s / 0)", e.Dividend)
}

// ResultTooLargeError is returned when repeating a string would exceed the
// result size limit.
type ResultTooLargeError struct {
	Size  float64
	Limit int
}

func (e *ResultTooLargeError) Error() string {
	return fmt.Sprintf("result of %g bytes exceeds the limit of %d bytes", e.Size, e.Limit)
}

// UnimplementedFunctionError is returned when a function name is not known to
// the built-in catalog.
type UnimplementedFunctionError struct {
	Name string
}

func (e *UnimplementedFunctionError) Error() string {
	return fmt.Sprintf("function '%s' is not implemented", e.Name)
}

// FunctionParameterError is returned when a built-in is called with the wrong
// number or kind of arguments.
type FunctionParameterError struct {
	Function string
	Message  string
}

func (e *FunctionParameterError) Error() string {
	return fmt.Sprintf("%s: %s", e.Function, e.Message)
}

// NewParameterError creates a FunctionParameterError with a formatted message.
func NewParameterError(function, format string, args ...any) *FunctionParameterError {
	return &FunctionParameterError{Function: function, Message: fmt.Sprintf(format, args...)}
}

// SyntaxError is raised by the tokenizer and value parser. Pos is the byte
// offset in the source, or -1 when unknown.
type SyntaxError struct {
	Pos     int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Pos < 0 {
		return "syntax error: " + e.Message
	}
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Message)
}

// NewSyntaxError creates a SyntaxError with a formatted message.
func NewSyntaxError(pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode maps an error, or an error it wraps, to its API code. Errors of
// any other kind map to "".
func ErrorCode(err error) string {
	var (
		syntax     *SyntaxError
		unknown    *UnknownOperatorError
		undefined  *UndefinedOperatorError
		divByZero  *DivisionByZeroError
		unimpl     *UnimplementedFunctionError
		paramError *FunctionParameterError
		tooLarge   *ResultTooLargeError
	)
	switch {
	case errors.As(err, &syntax):
		return CodeSyntaxError
	case errors.As(err, &unknown):
		return CodeUnknownOperator
	case errors.As(err, &undefined):
		return CodeUndefinedOperator
	case errors.As(err, &divByZero):
		return CodeDivisionByZero
	case errors.As(err, &unimpl):
		return CodeUnimplementedFunction
	case errors.As(err, &paramError):
		return CodeFunctionParameter
	case errors.As(err, &tooLarge):
		return CodeResultTooLarge
	}
	return ""
}
