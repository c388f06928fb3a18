package expr

import (
	"errors"
	"testing"

	"github.com/lemonberrylabs/miro/pkg/types"
)

// stubStream is a TokenStream over pre-built tokens whose operands already
// carry their parsed value.
type stubStream struct {
	toks []stubToken
	pos  int
}

type stubToken struct {
	kind  TokenKind
	text  string
	value types.Value
}

func (s *stubStream) NextKind() TokenKind {
	if s.pos >= len(s.toks) {
		return TokenEOF
	}
	return s.toks[s.pos].kind
}

func (s *stubStream) Consume(kind TokenKind) (Token, error) {
	if got := s.NextKind(); got != kind {
		return Token{}, types.NewSyntaxError(s.pos, "expected %s, got %s", kind, got)
	}
	tok := s.toks[s.pos]
	s.pos++
	return Token{Kind: tok.kind, Value: tok.text, Pos: s.pos - 1}, nil
}

func (s *stubStream) ConsumeWhitespace() {
	for s.NextKind() == TokenWhitespace {
		s.pos++
	}
}

func (s *stubStream) ConsumeNewlines() {
	for s.NextKind() == TokenNewline {
		s.pos++
	}
}

func (s *stubStream) ParseValue() (types.Value, error) {
	if s.pos >= len(s.toks) || s.toks[s.pos].value == nil {
		return nil, types.NewSyntaxError(s.pos, "expected a value, got %s", s.NextKind())
	}
	v := s.toks[s.pos].value
	s.pos++
	return v, nil
}

func stream(toks ...stubToken) *stubStream {
	return &stubStream{toks: toks}
}

func num(f float64) stubToken {
	return stubToken{kind: TokenNumber, value: types.NewNumeric(f, types.UnitNone)}
}

func dim(f float64, u types.Unit) stubToken {
	return stubToken{kind: TokenNumber, value: types.NewNumeric(f, u)}
}

func str(s string) stubToken {
	return stubToken{kind: TokenString, value: types.NewString(s)}
}

func boolean(b bool) stubToken {
	return stubToken{kind: TokenIdent, value: types.NewBool(b)}
}

func op(sym string) stubToken { return stubToken{kind: TokenOperator, text: sym} }

var (
	ws     = stubToken{kind: TokenWhitespace, text: " "}
	nl     = stubToken{kind: TokenNewline, text: "\n"}
	lparen = stubToken{kind: TokenLParen, text: "("}
	rparen = stubToken{kind: TokenRParen, text: ")"}
	comma  = stubToken{kind: TokenComma, text: ","}
	semi   = stubToken{kind: TokenSemicolon, text: ";"}
)

// infix interleaves whitespace between the given tokens.
func infix(toks ...stubToken) *stubStream {
	var out []stubToken
	for i, tok := range toks {
		if i > 0 {
			out = append(out, ws)
		}
		out = append(out, tok)
	}
	return stream(out...)
}

func TestCompilePostfix(t *testing.T) {
	tests := []struct {
		name  string
		input *stubStream
		want  string
	}{
		{"single operand", infix(num(5)), "5"},
		{"addition", infix(num(5), op("+"), num(10)), "5 10 +"},
		{"multiplication first", infix(num(5), op("+"), num(2), op("*"), num(3)), "5 2 3 * +"},
		{"multiplication on the left", infix(num(2), op("*"), num(3), op("+"), num(5)), "2 3 * 5 +"},
		{"left associative", infix(num(10), op("-"), num(3), op("-"), num(2)), "10 3 - 2 -"},
		{"division chain", infix(num(8), op("/"), num(2), op("/"), num(2)), "8 2 / 2 /"},
		{"comparison below arithmetic", infix(num(1), op("+"), num(2), op(">"), num(2)), "1 2 + 2 >"},
		{
			"boolean below comparison",
			infix(num(1), op("<"), num(2), op("&&"), num(3), op(">="), num(4)),
			"1 2 < 3 4 >= &&",
		},
		{
			"mixed tiers",
			infix(num(1), op("||"), num(2), op("=="), num(3), op("+"), num(4), op("*"), num(5)),
			"1 2 3 4 5 * + == ||",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.input, false)
			if err != nil {
				t.Fatalf("compile error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompileItems(t *testing.T) {
	got, err := Compile(infix(num(5), op("+"), num(10)), false)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d items, want 3", len(got))
	}
	if got[0].IsOperator() || !types.Equal(got[0].Value(), types.NewNumeric(5, types.UnitNone)) {
		t.Errorf("item 0 = %v, want 5", got[0])
	}
	if got[1].IsOperator() || !types.Equal(got[1].Value(), types.NewNumeric(10, types.UnitNone)) {
		t.Errorf("item 1 = %v, want 10", got[1])
	}
	if !got[2].IsOperator() || got[2].Operator() != OpPlus {
		t.Errorf("item 2 = %v, want +", got[2])
	}
}

func TestCompileStopsAtTerminator(t *testing.T) {
	for _, term := range []stubToken{comma, semi, rparen, nl, {kind: TokenRBrace}, {kind: TokenColon}, {kind: TokenBang}, {kind: TokenRBracket}} {
		t.Run(term.kind.String(), func(t *testing.T) {
			s := stream(num(1), ws, op("+"), ws, num(2), term, num(99))
			got, err := Compile(s, false)
			if err != nil {
				t.Fatalf("compile error: %v", err)
			}
			if got.String() != "1 2 +" {
				t.Errorf("got %q, want %q", got, "1 2 +")
			}
			if term.kind == TokenNewline {
				// trailing layout is consumed
				if s.NextKind() != TokenNumber {
					t.Errorf("stream at %s, want NUMBER after newline", s.NextKind())
				}
				return
			}
			if s.NextKind() != term.kind {
				t.Errorf("stream at %s, want %s", s.NextKind(), term.kind)
			}
		})
	}
}

func TestCompileBracketed(t *testing.T) {
	s := stream(lparen, ws, num(5), ws, op("+"), ws, num(3), ws, nl, rparen, semi)
	got, err := Compile(s, true)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	if got.String() != "5 3 +" {
		t.Errorf("got %q, want %q", got, "5 3 +")
	}
	if s.NextKind() != TokenSemicolon {
		t.Errorf("closing bracket not consumed, stream at %s", s.NextKind())
	}
}

func TestCompileMissingClosingBracket(t *testing.T) {
	_, err := Compile(stream(lparen, num(5), op("+"), num(3), semi), true)
	var syntax *types.SyntaxError
	if !errors.As(err, &syntax) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
}

func TestCompileRequiresOpeningBracket(t *testing.T) {
	_, err := Compile(stream(num(5)), true)
	var syntax *types.SyntaxError
	if !errors.As(err, &syntax) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
}

func TestCompileUnknownOperator(t *testing.T) {
	_, err := Compile(infix(num(5), op("%"), num(3)), false)
	var unknown *types.UnknownOperatorError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownOperatorError, got %v", err)
	}
	if unknown.Symbol != "%" {
		t.Errorf("Symbol = %q, want %%", unknown.Symbol)
	}
}

func TestCompileValueError(t *testing.T) {
	_, err := Compile(stream(semi), false)
	var syntax *types.SyntaxError
	if !errors.As(err, &syntax) {
		t.Fatalf("expected SyntaxError for an empty expression, got %v", err)
	}
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		symbol     string
		want       Operator
		precedence int
	}{
		{"&&", OpAnd, 1},
		{"||", OpOr, 1},
		{"==", OpEquals, 2},
		{">", OpGreater, 2},
		{"<", OpLess, 2},
		{">=", OpGreaterEq, 2},
		{"<=", OpLessEq, 2},
		{"+", OpPlus, 3},
		{"-", OpMinus, 3},
		{"*", OpMultiply, 4},
		{"/", OpDivide, 4},
	}
	for _, tt := range tests {
		got, err := ParseOperator(tt.symbol)
		if err != nil {
			t.Errorf("ParseOperator(%q): %v", tt.symbol, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOperator(%q) = %v, want %v", tt.symbol, got, tt.want)
		}
		if got.Precedence() != tt.precedence {
			t.Errorf("%s precedence = %d, want %d", got, got.Precedence(), tt.precedence)
		}
		if got.String() != tt.symbol {
			t.Errorf("%v String() = %q, want %q", tt.want, got.String(), tt.symbol)
		}
	}

	for _, sym := range []string{"!=", "=", "%", "^", ""} {
		if _, err := ParseOperator(sym); err == nil {
			t.Errorf("ParseOperator(%q) succeeded", sym)
		}
	}
}
