package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/lemonberrylabs/miro/pkg/expr"
	"github.com/lemonberrylabs/miro/pkg/types"
)

// render joins token kinds and values for compact comparison, skipping
// whitespace and the final EOF.
func render(tokens []expr.Token) string {
	var parts []string
	for _, tok := range tokens {
		switch tok.Kind {
		case expr.TokenWhitespace, expr.TokenEOF:
			continue
		case expr.TokenNewline:
			parts = append(parts, "NL")
		default:
			parts = append(parts, tok.Kind.String()+":"+tok.Value)
		}
	}
	return strings.Join(parts, " ")
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"addition", "5 + 10", "NUMBER:5 OPERATOR:+ NUMBER:10"},
		{"glued sign", "5+10", "NUMBER:5 OPERATOR:+ NUMBER:10"},
		{"glued minus", "10px-5px", "NUMBER:10px OPERATOR:- NUMBER:5px"},
		{"negative literal", "-5", "NUMBER:-5"},
		{"sign after space is a literal", "10 -3", "NUMBER:10 NUMBER:-3"},
		{"spaced minus", "10 - 3", "NUMBER:10 OPERATOR:- NUMBER:3"},
		{"percentage", "50% + 10px", "NUMBER:50% OPERATOR:+ NUMBER:10px"},
		{"fraction", "1.5 * 2em", "NUMBER:1.5 OPERATOR:* NUMBER:2em"},
		{"strings", `'I am ' + "large"`, "STRING:I am  OPERATOR:+ STRING:large"},
		{"variable", "$gutter * 2", "VARIABLE:gutter OPERATOR:* NUMBER:2"},
		{"boolean operators", "a && b || c", "IDENT:a OPERATOR:&& IDENT:b OPERATOR:|| IDENT:c"},
		{"comparison", "1 >= 2 <= 3 == 4 > 5 < 6", "NUMBER:1 OPERATOR:>= NUMBER:2 OPERATOR:<= NUMBER:3 OPERATOR:== NUMBER:4 OPERATOR:> NUMBER:5 OPERATOR:< NUMBER:6"},
		{"not equal stays one symbol", "1 != 2", "NUMBER:1 OPERATOR:!= NUMBER:2"},
		{"bang", "10px !important", "NUMBER:10px BANG:! IDENT:important"},
		{"function", "round(1.5)", "FUNCTION:round NUMBER:1.5 RPAREN:)"},
		{"list", "[1, 2]", "LBRACKET:[ NUMBER:1 COMMA:, NUMBER:2 RBRACKET:]"},
		{"hash", "#fff", "HASH:#fff"},
		{"punctuation", "a: b; {}", "IDENT:a COLON:: IDENT:b SEMICOLON:; LBRACE:{ RBRACE:}"},
		{"newline", "1\n2", "NUMBER:1 NL NUMBER:2"},
		{"comment dropped", "1 /* note */ + 2", "NUMBER:1 OPERATOR:+ NUMBER:2"},
		{"escaped quote", `'it\'s'`, "STRING:it's"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("tokenize error: %v", err)
			}
			if got := render(tokens); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
			if last := tokens[len(tokens)-1]; last.Kind != expr.TokenEOF {
				t.Errorf("last token is %s, want EOF", last.Kind)
			}
		})
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens, err := Tokenize("$a +  3px")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}
	want := []struct {
		kind expr.TokenKind
		pos  int
	}{
		{expr.TokenVariable, 0},
		{expr.TokenWhitespace, 2},
		{expr.TokenOperator, 3},
		{expr.TokenWhitespace, 4},
		{expr.TokenNumber, 6},
		{expr.TokenEOF, 9},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		if tokens[i].Kind != w.kind || tokens[i].Pos != w.pos {
			t.Errorf("token %d = %s@%d, want %s@%d", i, tokens[i].Kind, tokens[i].Pos, w.kind, w.pos)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	for _, input := range []string{"$ 5", "1 + $", "'open\nclose'"} {
		t.Run(input, func(t *testing.T) {
			_, err := Tokenize(input)
			var syntax *types.SyntaxError
			if !errors.As(err, &syntax) {
				t.Fatalf("expected SyntaxError, got %v", err)
			}
		})
	}
}

func TestSplitDimension(t *testing.T) {
	tests := []struct {
		input, head, rest string
	}{
		{"10px-5px", "10px", "5px"},
		{"10px-.5em", "10px", ".5em"},
		{"10px", "10px", ""},
		{"10px-a", "10px-a", ""},
		{"10foo-5px", "10foo-5px", ""},
	}
	for _, tt := range tests {
		head, rest := splitDimension(tt.input)
		if head != tt.head || rest != tt.rest {
			t.Errorf("splitDimension(%q) = %q, %q; want %q, %q", tt.input, head, rest, tt.head, tt.rest)
		}
	}
}
