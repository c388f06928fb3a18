package parser

import (
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/lemonberrylabs/miro/pkg/expr"
	"github.com/lemonberrylabs/miro/pkg/types"
)

// rawToken is a token as produced by the CSS lexer, before it is mapped to
// an expression token.
type rawToken struct {
	tt   css.TokenType
	text string
	pos  int
}

// Tokenize scans miro source into expression tokens. The last token is
// always TokenEOF.
func Tokenize(src string) ([]expr.Token, error) {
	raw, err := scan(src)
	if err != nil {
		return nil, err
	}

	tokens := make([]expr.Token, 0, len(raw)+1)
	emit := func(kind expr.TokenKind, value string, pos int) {
		tokens = append(tokens, expr.Token{Kind: kind, Value: value, Pos: pos})
	}

	for i := 0; i < len(raw); i++ {
		tok := raw[i]
		switch tok.tt {
		case css.WhitespaceToken:
			if strings.ContainsAny(tok.text, "\n\r\f") {
				emit(expr.TokenNewline, tok.text, tok.pos)
			} else {
				emit(expr.TokenWhitespace, tok.text, tok.pos)
			}

		case css.NumberToken, css.PercentageToken, css.DimensionToken:
			text, pos := tok.text, tok.pos
			// "5-3" scans as 5 followed by -3; split the sign off when it
			// directly follows an operand.
			if (text[0] == '-' || text[0] == '+') && endsOperand(tokens) {
				emit(expr.TokenOperator, text[:1], pos)
				text, pos = text[1:], pos+1
			}
			for {
				head, rest := splitDimension(text)
				emit(expr.TokenNumber, head, pos)
				if rest == "" {
					break
				}
				emit(expr.TokenOperator, "-", pos+len(head))
				text, pos = rest, pos+len(head)+1
			}

		case css.StringToken:
			emit(expr.TokenString, unquote(tok.text), tok.pos)

		case css.IdentToken, css.URLToken, css.AtKeywordToken, css.CustomPropertyNameToken:
			emit(expr.TokenIdent, tok.text, tok.pos)

		case css.FunctionToken:
			emit(expr.TokenFunction, strings.TrimSuffix(tok.text, "("), tok.pos)

		case css.HashToken:
			emit(expr.TokenHash, tok.text, tok.pos)

		case css.ColumnToken, css.DashMatchToken, css.IncludeMatchToken,
			css.PrefixMatchToken, css.SuffixMatchToken, css.SubstringMatchToken:
			// "||" plus attribute matchers, which the operator table rejects
			emit(expr.TokenOperator, tok.text, tok.pos)

		case css.DelimToken:
			n, err := delim(raw, i, emit)
			if err != nil {
				return nil, err
			}
			i += n

		case css.LeftParenthesisToken:
			emit(expr.TokenLParen, tok.text, tok.pos)
		case css.RightParenthesisToken:
			emit(expr.TokenRParen, tok.text, tok.pos)
		case css.LeftBracketToken:
			emit(expr.TokenLBracket, tok.text, tok.pos)
		case css.RightBracketToken:
			emit(expr.TokenRBracket, tok.text, tok.pos)
		case css.LeftBraceToken:
			emit(expr.TokenLBrace, tok.text, tok.pos)
		case css.RightBraceToken:
			emit(expr.TokenRBrace, tok.text, tok.pos)
		case css.CommaToken:
			emit(expr.TokenComma, tok.text, tok.pos)
		case css.SemicolonToken:
			emit(expr.TokenSemicolon, tok.text, tok.pos)
		case css.ColonToken:
			emit(expr.TokenColon, tok.text, tok.pos)

		case css.CommentToken:
			// dropped

		case css.BadStringToken:
			return nil, types.NewSyntaxError(tok.pos, "unterminated string")
		default:
			return nil, types.NewSyntaxError(tok.pos, "unexpected %q", tok.text)
		}
	}

	emit(expr.TokenEOF, "", len(src))
	return tokens, nil
}

// scan runs the CSS lexer over src.
func scan(src string) ([]rawToken, error) {
	l := css.NewLexer(parse.NewInputString(src))

	var (
		raw []rawToken
		pos int
	)
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, types.NewSyntaxError(pos, "%v", err)
			}
			return raw, nil
		}
		raw = append(raw, rawToken{tt: tt, text: string(data), pos: pos})
		pos += len(data)
	}
}

// delim maps the delimiter at raw[i], merging it with the following
// delimiter or identifier where they form one token. It returns the number
// of extra raw tokens consumed.
func delim(raw []rawToken, i int, emit func(expr.TokenKind, string, int)) (int, error) {
	tok := raw[i]
	var next *rawToken
	if i+1 < len(raw) {
		next = &raw[i+1]
	}

	switch tok.text {
	case "$":
		if next == nil || next.tt != css.IdentToken {
			return 0, types.NewSyntaxError(tok.pos, "expected variable name after '$'")
		}
		emit(expr.TokenVariable, next.text, tok.pos)
		return 1, nil

	case "&", "=", ">", "<", "!":
		if next != nil && next.tt == css.DelimToken {
			if pair := tok.text + next.text; isPair(pair) {
				emit(expr.TokenOperator, pair, tok.pos)
				return 1, nil
			}
		}
		if tok.text == "!" {
			emit(expr.TokenBang, tok.text, tok.pos)
			return 0, nil
		}
		emit(expr.TokenOperator, tok.text, tok.pos)
		return 0, nil

	case "+", "-", "*", "/", "%", "|", "^", "~":
		emit(expr.TokenOperator, tok.text, tok.pos)
		return 0, nil
	}

	return 0, types.NewSyntaxError(tok.pos, "unexpected %q", tok.text)
}

func isPair(s string) bool {
	switch s {
	case "&&", "==", ">=", "<=", "!=":
		return true
	}
	return false
}

// endsOperand reports whether the last emitted token closes an operand.
func endsOperand(tokens []expr.Token) bool {
	if len(tokens) == 0 {
		return false
	}
	switch tokens[len(tokens)-1].Kind {
	case expr.TokenNumber, expr.TokenString, expr.TokenVariable,
		expr.TokenRParen, expr.TokenRBracket:
		return true
	}
	return false
}

// splitDimension cuts "10px-5px", which CSS scans as one dimension with
// unit "px-5px", after the first known unit. rest is empty when there is
// nothing to split.
func splitDimension(text string) (head, rest string) {
	n := numberPrefix(text)
	unit := text[n:]
	i := strings.IndexByte(unit, '-')
	if i <= 0 || i+1 >= len(unit) {
		return text, ""
	}
	if _, ok := types.ParseUnit(unit[:i]); !ok {
		return text, ""
	}
	if c := unit[i+1]; (c < '0' || c > '9') && c != '.' {
		return text, ""
	}
	return text[:n+i], unit[i+1:]
}

// unquote strips the quotes of a CSS string and resolves backslash escapes
// of single characters. Hex escapes are kept verbatim. The closing quote is
// missing when the string runs to end of input.
func unquote(s string) string {
	if s == "" {
		return s
	}
	body := s[1:]
	if n := len(body); n > 0 && body[n-1] == s[0] {
		body = body[:n-1]
	}
	if !strings.Contains(body, `\`) {
		return body
	}

	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch == '\\' && i+1 < len(body) && !isHex(body[i+1]) {
			i++
			if body[i] == '\n' {
				// escaped line break continues the string
				continue
			}
			sb.WriteByte(body[i])
			continue
		}
		sb.WriteByte(ch)
	}
	return sb.String()
}

func isHex(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
