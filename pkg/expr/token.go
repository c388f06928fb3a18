// Package expr compiles miro expressions to postfix form and evaluates them.
// It handles arithmetic, comparison and boolean operators over unit-aware
// values, deferring arithmetic on relative units to CSS calc().
package expr

// TokenKind represents the kind of a lexical token.
type TokenKind int

const (
	// Operands
	TokenNumber   TokenKind = iota // number, percentage or dimension
	TokenString                    // quoted string
	TokenIdent                     // bare identifier
	TokenVariable                  // $name
	TokenFunction                  // name( ; Value holds the name
	TokenHash                      // #abc

	// Operators
	TokenOperator // arithmetic, comparison or boolean symbol

	// Brackets
	TokenLParen   // (
	TokenRParen   // )
	TokenLBracket // [
	TokenRBracket // ]
	TokenLBrace   // {
	TokenRBrace   // }

	// Punctuation
	TokenComma     // ,
	TokenSemicolon // ;
	TokenColon     // :
	TokenBang      // !

	// Layout
	TokenWhitespace // spaces and tabs
	TokenNewline    // whitespace containing a line break

	// Special
	TokenEOF // end of input
)

// Token represents a single lexical token.
type Token struct {
	Kind  TokenKind
	Value string // raw text; unquoted for strings, bare name for variables and functions
	Pos   int    // byte offset in source
}

// String returns a debug-friendly representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "NUMBER"
	case TokenString:
		return "STRING"
	case TokenIdent:
		return "IDENT"
	case TokenVariable:
		return "VARIABLE"
	case TokenFunction:
		return "FUNCTION"
	case TokenHash:
		return "HASH"
	case TokenOperator:
		return "OPERATOR"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	case TokenLBracket:
		return "LBRACKET"
	case TokenRBracket:
		return "RBRACKET"
	case TokenLBrace:
		return "LBRACE"
	case TokenRBrace:
		return "RBRACE"
	case TokenComma:
		return "COMMA"
	case TokenSemicolon:
		return "SEMICOLON"
	case TokenColon:
		return "COLON"
	case TokenBang:
		return "BANG"
	case TokenWhitespace:
		return "WHITESPACE"
	case TokenNewline:
		return "NEWLINE"
	case TokenEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// terminates reports whether a token of this kind ends an expression.
func (k TokenKind) terminates() bool {
	switch k {
	case TokenRParen, TokenRBracket, TokenRBrace,
		TokenNewline, TokenSemicolon, TokenComma, TokenColon, TokenBang,
		TokenEOF:
		return true
	default:
		return false
	}
}
