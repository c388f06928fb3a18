// Package runtime evaluates miro expressions on behalf of the API surfaces,
// resolving variables from stored scopes.
package runtime

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lemonberrylabs/miro/pkg/expr"
	"github.com/lemonberrylabs/miro/pkg/parser"
	"github.com/lemonberrylabs/miro/pkg/stdlib"
	"github.com/lemonberrylabs/miro/pkg/store"
	"github.com/lemonberrylabs/miro/pkg/types"
)

// ErrInvalidArgument marks request errors that are not evaluation errors,
// such as a missing expression.
var ErrInvalidArgument = errors.New("invalid argument")

// Request is a single evaluation.
type Request struct {
	Expression string

	// Scope names a stored scope whose values are visible to the expression.
	Scope string

	// Variables are resolved in order on top of the scope.
	Variables []parser.Definition
}

// Result is the outcome of an evaluation.
type Result struct {
	Value types.Value
}

// Deferred reports whether the value is arithmetic left to CSS calc().
func (r Result) Deferred() bool {
	fn, ok := r.Value.(types.Function)
	return ok && fn.Name() == "calc"
}

// Engine evaluates expressions against the scope store and the built-in
// catalog. It is safe for concurrent use.
type Engine struct {
	store   *store.Store
	catalog *stdlib.Registry
	log     *zap.Logger
}

// NewEngine creates an engine. A nil logger disables logging.
func NewEngine(s *store.Store, catalog *stdlib.Registry, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: s, catalog: catalog, log: log.Named("runtime")}
}

// Store returns the scope store.
func (e *Engine) Store() *store.Store { return e.store }

// Functions returns the names of the built-in functions.
func (e *Engine) Functions() []string { return e.catalog.Names() }

// Evaluate runs one request.
func (e *Engine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if req.Expression == "" {
		return Result{}, fmt.Errorf("%w: expression is required", ErrInvalidArgument)
	}

	env := parser.Env{Catalog: e.catalog, Logger: e.log}
	if req.Scope != "" {
		sc, err := e.store.GetScope(req.Scope)
		if err != nil {
			return Result{}, err
		}
		env.Variables = sc.Values
	}
	if len(req.Variables) > 0 {
		vars, err := parser.Resolve(req.Variables, env)
		if err != nil {
			return Result{}, err
		}
		env.Variables = vars
	}

	v, err := parser.Eval(req.Expression, env)
	if err != nil {
		e.log.Debug("evaluation failed",
			zap.String("expression", req.Expression),
			zap.String("code", types.ErrorCode(err)),
			zap.Error(err))
		return Result{}, err
	}
	res := Result{Value: v}
	e.log.Debug("evaluated",
		zap.String("expression", req.Expression),
		zap.Stringer("result", v),
		zap.Bool("deferred", res.Deferred()))
	return res, nil
}

// CreateScope resolves defs and stores them as a new scope. Every definition
// must resolve.
func (e *Engine) CreateScope(ctx context.Context, name string, defs []parser.Definition) (*store.Scope, error) {
	values, err := e.resolve(ctx, defs)
	if err != nil {
		return nil, err
	}
	sc, err := e.store.CreateScope(name, defs, values)
	if err != nil {
		return nil, err
	}
	e.log.Info("scope created", zap.String("scope", name), zap.String("revision", sc.RevisionID))
	return sc, nil
}

// UpdateScope resolves defs and replaces the definitions of a scope.
func (e *Engine) UpdateScope(ctx context.Context, name string, defs []parser.Definition) (*store.Scope, error) {
	values, err := e.resolve(ctx, defs)
	if err != nil {
		return nil, err
	}
	sc, err := e.store.UpdateScope(name, defs, values)
	if err != nil {
		return nil, err
	}
	e.log.Info("scope updated", zap.String("scope", name), zap.String("revision", sc.RevisionID))
	return sc, nil
}

func (e *Engine) resolve(ctx context.Context, defs []parser.Definition) (map[string]types.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("%w: definition without a name", ErrInvalidArgument)
		}
	}
	return parser.Resolve(defs, parser.Env{Catalog: e.catalog, Logger: e.log})
}

// IsEvaluationError reports whether err comes from the expression itself
// rather than from the request or the store.
func IsEvaluationError(err error) bool {
	if types.ErrorCode(err) != "" || errors.Is(err, expr.ErrMalformed) {
		return true
	}
	return false
}
