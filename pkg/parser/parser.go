// Package parser turns miro source text into values. It tokenizes the source,
// parses operands and hands whole expressions to the expr compiler.
package parser

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/lemonberrylabs/miro/pkg/expr"
	"github.com/lemonberrylabs/miro/pkg/types"
)

// Env is what an expression can see while it is parsed.
type Env struct {
	// Variables maps names, without the leading '$', to their values.
	Variables map[string]types.Value

	// Catalog resolves built-in functions. With a nil catalog every call is
	// kept as a CSS function.
	Catalog types.Catalog

	Logger *zap.Logger
}

// Parser reads expressions from a token slice. It implements expr.TokenStream.
type Parser struct {
	tokens []expr.Token
	pos    int
	env    Env
	log    *zap.Logger
}

// New tokenizes src and returns a parser positioned at its first token.
func New(src string, env Env) (*Parser, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	log := env.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{tokens: tokens, env: env, log: log.Named("parser")}, nil
}

// Eval evaluates src, which must hold exactly one expression optionally
// followed by a semicolon.
func Eval(src string, env Env) (types.Value, error) {
	p, err := New(src, env)
	if err != nil {
		return nil, err
	}
	v, err := p.Expression()
	if err != nil {
		return nil, err
	}
	p.skipLayout()
	if p.NextKind() == expr.TokenSemicolon {
		p.pos++
		p.skipLayout()
	}
	if tok := p.peek(); tok.Kind != expr.TokenEOF {
		return nil, types.NewSyntaxError(tok.Pos, "unexpected %s after expression", tok.Kind)
	}
	return v, nil
}

// Expression compiles and evaluates the next expression.
func (p *Parser) Expression() (types.Value, error) {
	p.skipLayout()
	postfix, err := expr.Compile(p, false)
	if err != nil {
		return nil, err
	}
	return expr.Evaluate(postfix)
}

// Definition is a named expression, as in "$gutter: 10px * 2".
type Definition struct {
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source" yaml:"source"`
}

// Resolve evaluates defs in order on top of env.Variables. Each definition
// sees the ones before it. Failed definitions are left out of the result and
// their errors are combined.
func Resolve(defs []Definition, env Env) (map[string]types.Value, error) {
	vars := make(map[string]types.Value, len(env.Variables)+len(defs))
	for name, v := range env.Variables {
		vars[name] = v
	}
	env.Variables = vars

	var errs error
	for _, def := range defs {
		v, err := Eval(def.Source, env)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("$%s: %w", def.Name, err))
			continue
		}
		vars[def.Name] = v
	}
	return vars, errs
}

func (p *Parser) peek() expr.Token {
	if p.pos >= len(p.tokens) {
		// Tokenize always ends with EOF
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

// NextKind returns the kind of the next token.
func (p *Parser) NextKind() expr.TokenKind {
	return p.peek().Kind
}

// Consume returns the next token if it has the given kind.
func (p *Parser) Consume(kind expr.TokenKind) (expr.Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return expr.Token{}, types.NewSyntaxError(tok.Pos, "expected %s, got %s", kind, tok.Kind)
	}
	p.pos++
	return tok, nil
}

// ConsumeWhitespace skips whitespace.
func (p *Parser) ConsumeWhitespace() {
	for p.NextKind() == expr.TokenWhitespace {
		p.pos++
	}
}

// ConsumeNewlines skips line breaks.
func (p *Parser) ConsumeNewlines() {
	for p.NextKind() == expr.TokenNewline {
		p.pos++
	}
}

func (p *Parser) skipLayout() {
	for k := p.NextKind(); k == expr.TokenWhitespace || k == expr.TokenNewline; k = p.NextKind() {
		p.pos++
	}
}

// ParseValue parses one operand.
func (p *Parser) ParseValue() (types.Value, error) {
	tok := p.peek()
	switch tok.Kind {
	case expr.TokenNumber:
		p.pos++
		return parseNumber(tok.Value, tok.Pos)

	case expr.TokenString:
		p.pos++
		return types.NewString(tok.Value), nil

	case expr.TokenIdent:
		p.pos++
		switch tok.Value {
		case "true":
			return types.True, nil
		case "false":
			return types.False, nil
		}
		return types.NewIdent(tok.Value), nil

	case expr.TokenHash:
		p.pos++
		return types.NewIdent(tok.Value), nil

	case expr.TokenVariable:
		p.pos++
		v, ok := p.env.Variables[tok.Value]
		if !ok {
			return nil, types.NewSyntaxError(tok.Pos, "undefined variable $%s", tok.Value)
		}
		return v, nil

	case expr.TokenLParen:
		postfix, err := expr.Compile(p, true)
		if err != nil {
			return nil, err
		}
		return expr.Evaluate(postfix)

	case expr.TokenLBracket:
		return p.parseList()

	case expr.TokenFunction:
		return p.parseCall()
	}
	return nil, types.NewSyntaxError(tok.Pos, "expected a value, got %s", tok.Kind)
}

// parseList parses "[a, b, c]".
func (p *Parser) parseList() (types.Value, error) {
	if _, err := p.Consume(expr.TokenLBracket); err != nil {
		return nil, err
	}
	items, err := p.parseArgs(expr.TokenRBracket)
	if err != nil {
		return nil, err
	}
	return types.NewList(items...), nil
}

// parseCall parses "name(args)". Calls the catalog knows are evaluated, the
// rest stay CSS functions.
func (p *Parser) parseCall() (types.Value, error) {
	tok, err := p.Consume(expr.TokenFunction)
	if err != nil {
		return nil, err
	}
	args, err := p.parseArgs(expr.TokenRParen)
	if err != nil {
		return nil, err
	}

	fn := types.NewFunction(tok.Value, types.NewMultiValue(args...))
	if p.env.Catalog == nil {
		return fn, nil
	}
	v, err := fn.Invoke(p.env.Catalog)
	var unimplemented *types.UnimplementedFunctionError
	if errors.As(err, &unimplemented) {
		p.log.Debug("keeping CSS function", zap.String("name", tok.Value))
		return fn, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// parseArgs parses comma separated expressions up to and including the
// closing token.
func (p *Parser) parseArgs(closing expr.TokenKind) ([]types.Value, error) {
	var args []types.Value

	p.skipLayout()
	if p.NextKind() == closing {
		p.pos++
		return args, nil
	}
	for {
		v, err := p.Expression()
		if err != nil {
			return nil, err
		}
		args = append(args, v)

		p.skipLayout()
		if p.NextKind() != expr.TokenComma {
			break
		}
		p.pos++
	}
	if _, err := p.Consume(closing); err != nil {
		return nil, err
	}
	return args, nil
}

// parseNumber parses a number with an optional unit suffix, e.g. "-1.5e2px".
func parseNumber(text string, pos int) (types.Numeric, error) {
	n := numberPrefix(text)
	f, err := strconv.ParseFloat(text[:n], 64)
	if err != nil {
		return types.Numeric{}, types.NewSyntaxError(pos, "invalid number %q", text)
	}
	unit, ok := types.ParseUnit(text[n:])
	if !ok {
		return types.Numeric{}, types.NewSyntaxError(pos, "unknown unit %q", text[n:])
	}
	return types.NewNumeric(f, unit), nil
}

// numberPrefix returns the length of the numeric part of a CSS number.
func numberPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	i = digits(s, i)
	if i+1 < len(s) && s[i] == '.' && isDigit(s[i+1]) {
		i = digits(s, i+1)
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			i = digits(s, j)
		}
	}
	return i
}

func digits(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }
