// Package web provides the embedded web playground for miro.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/miro/pkg/runtime"
	"github.com/lemonberrylabs/miro/pkg/store"
	"github.com/lemonberrylabs/miro/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the web UI pages.
type Handler struct {
	engine  *runtime.Engine
	funcMap template.FuncMap
}

// pageData wraps all page-specific data with common fields.
type pageData struct {
	NavActive string
	Data      any
}

// New creates a new web UI handler.
func New(engine *runtime.Engine) *Handler {
	return &Handler{
		engine: engine,
		funcMap: template.FuncMap{
			"timeAgo":    timeAgo,
			"formatTime": formatTime,
			"kindClass":  kindClass,
			"truncate":   truncate,
		},
	}
}

func (h *Handler) render(c *fiber.Ctx, page string, navActive string, data any) error {
	// Each page is parsed together with the layout so that page blocks do not
	// collide across pages.
	tmpl := template.Must(
		template.New("").Funcs(h.funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page),
	)

	pd := pageData{
		NavActive: navActive,
		Data:      data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, pd); err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// Register adds web UI routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.dashboard)
	app.Get("/ui/scopes/:scope", h.scopeDetail)
	app.Post("/ui/evaluate", h.evaluate)

	// Redirect root to UI
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

// --- Page Data Types ---

type dashboardContent struct {
	Form      resultContent
	Scopes    []*store.Scope
	Functions []string
}

type scopeDetailContent struct {
	Scope  *store.Scope
	Values []valueView
}

type valueView struct {
	Name   string
	Source string
	Value  string
	Kind   string
}

type resultContent struct {
	Expression string
	Scope      string
	Scopes     []*store.Scope
	Result     string
	Kind       string
	Deferred   bool
	Error      string
	ErrorCode  string
}

type notFoundContent struct {
	Kind string
	Name string
}

// --- Handlers ---

func (h *Handler) dashboard(c *fiber.Ctx) error {
	scopes := h.engine.Store().ListScopes()
	return h.render(c, "dashboard.html", "dashboard", dashboardContent{
		Form:      resultContent{Scope: c.Query("scope"), Scopes: scopes},
		Scopes:    scopes,
		Functions: h.engine.Functions(),
	})
}

func (h *Handler) scopeDetail(c *fiber.Ctx) error {
	name := c.Params("scope")
	sc, err := h.engine.Store().GetScope(name)
	if errors.Is(err, store.ErrNotFound) {
		c.Status(404)
		return h.render(c, "not_found.html", "", notFoundContent{Kind: "Scope", Name: name})
	}
	if err != nil {
		return err
	}

	views := make([]valueView, 0, len(sc.Definitions))
	for _, def := range sc.Definitions {
		v := valueView{Name: def.Name, Source: def.Source}
		if val, ok := sc.Values[def.Name]; ok {
			v.Value = val.String()
			v.Kind = val.Kind().String()
		}
		views = append(views, v)
	}
	return h.render(c, "scope_detail.html", "dashboard", scopeDetailContent{Scope: sc, Values: views})
}

func (h *Handler) evaluate(c *fiber.Ctx) error {
	content := resultContent{
		Expression: c.FormValue("expression"),
		Scope:      c.FormValue("scope"),
		Scopes:     h.engine.Store().ListScopes(),
	}

	res, err := h.engine.Evaluate(c.UserContext(), runtime.Request{
		Expression: content.Expression,
		Scope:      content.Scope,
	})
	if err != nil {
		content.Error = err.Error()
		content.ErrorCode = types.ErrorCode(err)
		c.Status(400)
	} else {
		content.Result = res.Value.String()
		content.Kind = res.Value.Kind().String()
		content.Deferred = res.Deferred()
	}
	return h.render(c, "result.html", "dashboard", content)
}

// --- Template Functions ---

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("2006-01-02 15:04:05")
}

func kindClass(kind string) string {
	switch kind {
	case "Numeric":
		return "kind-number"
	case "StringValue":
		return "kind-string"
	case "Bool":
		return "kind-bool"
	case "Function":
		return "kind-function"
	default:
		return "kind-other"
	}
}

// truncate shortens s to maxLen runes.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
