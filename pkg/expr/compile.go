package expr

import (
	"strings"

	"github.com/lemonberrylabs/miro/pkg/types"
)

// TokenStream is what the compiler needs from the surrounding parser.
type TokenStream interface {
	// NextKind returns the kind of the next token without consuming it.
	NextKind() TokenKind

	// Consume consumes the next token, failing with a syntax error if it is
	// not of the expected kind.
	Consume(kind TokenKind) (Token, error)

	// ConsumeWhitespace skips whitespace tokens.
	ConsumeWhitespace()

	// ConsumeNewlines skips newline tokens.
	ConsumeNewlines()

	// ParseValue parses one operand and advances past it.
	ParseValue() (types.Value, error)
}

// Item is one element of a postfix sequence: either an operand or an operator.
type Item struct {
	value types.Value
	op    Operator
}

// ValueItem wraps an operand.
func ValueItem(v types.Value) Item { return Item{value: v} }

// OperatorItem wraps an operator.
func OperatorItem(op Operator) Item { return Item{op: op} }

// IsOperator reports whether the item is an operator.
func (i Item) IsOperator() bool { return i.value == nil }

// Value returns the operand, or nil for an operator item.
func (i Item) Value() types.Value { return i.value }

// Operator returns the operator, or 0 for an operand item.
func (i Item) Operator() Operator { return i.op }

func (i Item) String() string {
	if i.IsOperator() {
		return i.op.String()
	}
	return i.value.String()
}

// Postfix is a compiled expression in reverse Polish order.
type Postfix []Item

// String renders the sequence space separated, e.g. "5 2 3 * +".
func (p Postfix) String() string {
	parts := make([]string, len(p))
	for i, item := range p {
		parts[i] = item.String()
	}
	return strings.Join(parts, " ")
}

// Compile reads one expression from s and returns it in postfix order. When
// openedByBracket is set the expression must be wrapped in parentheses, which
// are consumed as well. On return s is positioned after the expression.
func Compile(s TokenStream, openedByBracket bool) (Postfix, error) {
	var (
		out Postfix
		ops []Operator
	)

	if openedByBracket {
		if _, err := s.Consume(TokenLParen); err != nil {
			return nil, err
		}
	}
	s.ConsumeWhitespace()

	for {
		if s.NextKind() == TokenOperator {
			tok, err := s.Consume(TokenOperator)
			if err != nil {
				return nil, err
			}
			op, err := ParseOperator(tok.Value)
			if err != nil {
				return nil, err
			}
			// Pop operators that bind at least as tightly, so equal precedence
			// associates to the left.
			for len(ops) > 0 && ops[len(ops)-1].Precedence() >= op.Precedence() {
				out = append(out, OperatorItem(ops[len(ops)-1]))
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, op)
		} else {
			v, err := s.ParseValue()
			if err != nil {
				return nil, err
			}
			out = append(out, ValueItem(v))
		}
		s.ConsumeWhitespace()

		if s.NextKind().terminates() {
			break
		}
	}

	for len(ops) > 0 {
		out = append(out, OperatorItem(ops[len(ops)-1]))
		ops = ops[:len(ops)-1]
	}

	s.ConsumeNewlines()
	s.ConsumeWhitespace()
	s.ConsumeNewlines()

	if openedByBracket {
		if _, err := s.Consume(TokenRParen); err != nil {
			return nil, err
		}
	}
	return out, nil
}
