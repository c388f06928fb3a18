package web

import (
	"context"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/miro/pkg/parser"
	"github.com/lemonberrylabs/miro/pkg/runtime"
	"github.com/lemonberrylabs/miro/pkg/stdlib"
	"github.com/lemonberrylabs/miro/pkg/store"
)

func setupTestApp(t *testing.T) (*fiber.App, *runtime.Engine) {
	t.Helper()
	engine := runtime.NewEngine(store.New(), stdlib.NewRegistry(), nil)
	h := New(engine)
	app := fiber.New()
	h.Register(app)
	return app, engine
}

func get(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestDashboardEmpty(t *testing.T) {
	app, _ := setupTestApp(t)

	code, html := get(t, app, "/ui")
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, html)
	}
	for _, want := range []string{"Playground", "No scopes defined", "percentage()", `action="/ui/evaluate"`} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in response", want)
		}
	}
}

func TestDashboardWithScopes(t *testing.T) {
	app, engine := setupTestApp(t)
	_, err := engine.CreateScope(context.Background(), "theme", []parser.Definition{{Name: "gutter", Source: "8px"}})
	if err != nil {
		t.Fatalf("create scope: %v", err)
	}

	code, html := get(t, app, "/ui")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(html, `href="/ui/scopes/theme"`) {
		t.Error("expected scope link in response")
	}
	if !strings.Contains(html, `<option value="theme"`) {
		t.Error("expected scope in the form")
	}
}

func TestScopeDetail(t *testing.T) {
	app, engine := setupTestApp(t)
	_, err := engine.CreateScope(context.Background(), "theme", []parser.Definition{
		{Name: "base", Source: "8px"},
		{Name: "wide", Source: "100% - $base"},
	})
	if err != nil {
		t.Fatalf("create scope: %v", err)
	}

	code, html := get(t, app, "/ui/scopes/theme")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	for _, want := range []string{"Scope theme", "$base", "calc(100% - 8px)", "kind-function"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in response", want)
		}
	}
}

func TestScopeNotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	code, html := get(t, app, "/ui/scopes/nonexistent")
	if code != 404 {
		t.Fatalf("expected 404, got %d", code)
	}
	if !strings.Contains(html, "Scope not found") {
		t.Error("expected not found message")
	}
}

func TestEvaluateForm(t *testing.T) {
	app, engine := setupTestApp(t)
	_, err := engine.CreateScope(context.Background(), "theme", []parser.Definition{{Name: "gutter", Source: "8px"}})
	if err != nil {
		t.Fatalf("create scope: %v", err)
	}

	code, html := postForm(t, app, "/ui/evaluate", url.Values{"expression": {"$gutter * 3"}, "scope": {"theme"}})
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, html)
	}
	if !strings.Contains(html, "<code>24px</code>") {
		t.Error("expected result in response")
	}
	if !strings.Contains(html, "Kind: Numeric") {
		t.Error("expected kind in response")
	}

	code, html = postForm(t, app, "/ui/evaluate", url.Values{"expression": {"50% - 1px"}})
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(html, "deferred to the browser") {
		t.Error("expected deferred note")
	}
}

func TestEvaluateFormError(t *testing.T) {
	app, _ := setupTestApp(t)

	code, html := postForm(t, app, "/ui/evaluate", url.Values{"expression": {"1 / 0"}})
	if code != 400 {
		t.Fatalf("expected 400, got %d", code)
	}
	if !strings.Contains(html, "DIVISION_BY_ZERO") {
		t.Error("expected error code in response")
	}
	if !strings.Contains(html, "1 / 0") {
		t.Error("expected the expression to be kept in the form")
	}
}

func TestRootRedirect(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Fatalf("expected 302 redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/ui" {
		t.Fatalf("expected redirect to /ui, got %s", loc)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc..."},
		{"ääääää", 4, "ääää..."},
		{"→→→", 3, "→→→"},
		{"日本語のテキスト", 2, "日本..."},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.max)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.max)
		}
	}
}
