package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/lemonberrylabs/miro/pkg/expr"
	"github.com/lemonberrylabs/miro/pkg/parser"
	"github.com/lemonberrylabs/miro/pkg/stdlib"
	"github.com/lemonberrylabs/miro/pkg/store"
	"github.com/lemonberrylabs/miro/pkg/types"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(store.New(), stdlib.NewRegistry(), nil)
	_, err := e.CreateScope(context.Background(), "theme", []parser.Definition{
		{Name: "base", Source: "8px"},
		{Name: "gutter", Source: "$base * 2"},
	})
	if err != nil {
		t.Fatalf("create scope: %v", err)
	}
	return e
}

func TestEvaluate(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		req      Request
		want     string
		deferred bool
	}{
		{"plain", Request{Expression: "1 + 2"}, "3", false},
		{"scope", Request{Expression: "$gutter + 1px", Scope: "theme"}, "17px", false},
		{"inline variables", Request{
			Expression: "$wide",
			Scope:      "theme",
			Variables:  []parser.Definition{{Name: "wide", Source: "100% - $gutter"}},
		}, "calc(100% - 16px)", true},
		{"builtin", Request{Expression: "round($base / 3)", Scope: "theme"}, "3px", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Evaluate(ctx, tt.req)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if res.Value.String() != tt.want {
				t.Errorf("got %q, want %q", res.Value, tt.want)
			}
			if res.Deferred() != tt.deferred {
				t.Errorf("deferred = %v, want %v", res.Deferred(), tt.deferred)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Evaluate(ctx, Request{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty expression: %v, want ErrInvalidArgument", err)
	}
	if _, err := e.Evaluate(ctx, Request{Expression: "1", Scope: "missing"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing scope: %v, want ErrNotFound", err)
	}

	_, err := e.Evaluate(ctx, Request{Expression: "1 / 0"})
	if !IsEvaluationError(err) || types.ErrorCode(err) != types.CodeDivisionByZero {
		t.Errorf("division: %v", err)
	}
	_, err = e.Evaluate(ctx, Request{Expression: "1 2"})
	if !IsEvaluationError(err) || !errors.Is(err, expr.ErrMalformed) {
		t.Errorf("malformed: %v", err)
	}
	_, err = e.Evaluate(ctx, Request{Expression: "$x", Variables: []parser.Definition{{Name: "x", Source: "1 %"}}})
	if !IsEvaluationError(err) {
		t.Errorf("bad inline variable: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := e.Evaluate(cancelled, Request{Expression: "1"}); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context: %v", err)
	}
}

func TestScopes(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreateScope(ctx, "theme", nil); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("duplicate: %v, want ErrAlreadyExists", err)
	}
	if _, err := e.CreateScope(ctx, "broken", []parser.Definition{{Name: "x", Source: "true - 1"}}); err == nil {
		t.Error("scope with a failing definition was stored")
	}
	if _, err := e.CreateScope(ctx, "nameless", []parser.Definition{{Source: "1"}}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nameless definition: %v", err)
	}

	sc, err := e.UpdateScope(ctx, "theme", []parser.Definition{{Name: "gutter", Source: "2em"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(sc.Definitions) != 1 {
		t.Errorf("definitions = %+v", sc.Definitions)
	}
	res, err := e.Evaluate(ctx, Request{Expression: "$gutter * 2", Scope: "theme"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if res.Value.String() != "4em" {
		t.Errorf("got %q, want 4em", res.Value)
	}
	if _, err := e.UpdateScope(ctx, "missing", nil); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update missing: %v", err)
	}
}

func TestFunctions(t *testing.T) {
	e := newTestEngine(t)
	names := e.Functions()
	if len(names) == 0 || names[0] > names[len(names)-1] {
		t.Errorf("unexpected names: %v", names)
	}
}
