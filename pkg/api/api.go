// Package api implements the REST API for evaluating miro expressions and
// managing variable scopes.
package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/lemonberrylabs/miro/pkg/parser"
	"github.com/lemonberrylabs/miro/pkg/runtime"
	"github.com/lemonberrylabs/miro/pkg/store"
	"github.com/lemonberrylabs/miro/pkg/types"
)

// Server is the REST API server.
type Server struct {
	app    *fiber.App
	engine *runtime.Engine
	log    *zap.Logger
}

// New creates a new API server.
func New(engine *runtime.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	srv := &Server{
		engine: engine,
		log:    log.Named("api"),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})
	app.Use(fiberrecover.New(fiberrecover.Config{
		EnableStackTrace:  true,
		StackTraceHandler: srv.logPanic,
	}))
	app.Use(srv.requestID)

	app.Post("/v1/evaluate", srv.evaluate)
	app.Get("/v1/functions", srv.listFunctions)

	app.Post("/v1/scopes", srv.createScope)
	app.Get("/v1/scopes", srv.listScopes)
	app.Get("/v1/scopes/:scope", srv.getScope)
	app.Patch("/v1/scopes/:scope", srv.updateScope)
	app.Delete("/v1/scopes/:scope", srv.deleteScope)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing and for mounting
// the web UI).
func (s *Server) App() *fiber.App {
	return s.app
}

// requestID tags every request with an id, echoing one sent by the client.
func (s *Server) requestID(c *fiber.Ctx) error {
	id := c.Get("X-Request-Id")
	if id == "" {
		id = uuid.NewString()
	}
	c.Set("X-Request-Id", id)
	c.Locals("requestID", id)
	return c.Next()
}

func (s *Server) logPanic(c *fiber.Ctx, e any) {
	s.log.Error("handler panic",
		zap.Any("requestID", c.Locals("requestID")),
		zap.String("path", c.Path()),
		zap.Any("panic", e),
		zap.Stack("stack"))
}

// --- Evaluation ---

type evaluateRequest struct {
	Expression string              `json:"expression"`
	Scope      string              `json:"scope"`
	Variables  []parser.Definition `json:"variables"`
}

func (s *Server) evaluate(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: invalid request body: %v", runtime.ErrInvalidArgument, err))
	}

	res, err := s.engine.Evaluate(c.UserContext(), runtime.Request{
		Expression: req.Expression,
		Scope:      req.Scope,
		Variables:  req.Variables,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(resultToJSON(res))
}

func (s *Server) listFunctions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"functions": s.engine.Functions(),
	})
}

// --- Scopes ---

type scopeRequest struct {
	Definitions []parser.Definition `json:"definitions"`
}

func (s *Server) createScope(c *fiber.Ctx) error {
	scopeID := c.Query("scopeId")
	if scopeID == "" {
		return s.fail(c, fmt.Errorf("%w: scopeId query parameter is required", runtime.ErrInvalidArgument))
	}

	var req scopeRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: invalid request body: %v", runtime.ErrInvalidArgument, err))
	}

	sc, err := s.engine.CreateScope(c.UserContext(), scopeID, req.Definitions)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(scopeToJSON(sc))
}

func (s *Server) getScope(c *fiber.Ctx) error {
	sc, err := s.engine.Store().GetScope(c.Params("scope"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(scopeToJSON(sc))
}

func (s *Server) listScopes(c *fiber.Ctx) error {
	scopes := s.engine.Store().ListScopes()
	items := make([]fiber.Map, len(scopes))
	for i, sc := range scopes {
		items[i] = scopeToJSON(sc)
	}
	return c.JSON(fiber.Map{
		"scopes": items,
	})
}

func (s *Server) updateScope(c *fiber.Ctx) error {
	var req scopeRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, fmt.Errorf("%w: invalid request body: %v", runtime.ErrInvalidArgument, err))
	}
	sc, err := s.engine.UpdateScope(c.UserContext(), c.Params("scope"), req.Definitions)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(scopeToJSON(sc))
}

func (s *Server) deleteScope(c *fiber.Ctx) error {
	if err := s.engine.Store().DeleteScope(c.Params("scope")); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{})
}

// --- Helpers ---

// fail writes err in the {error: {code, message, status}} format.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	code, status := httpStatus(err)
	body := fiber.Map{
		"code":    code,
		"message": err.Error(),
		"status":  status,
	}

	var details []fiber.Map
	for _, e := range multierr.Errors(err) {
		if reason := types.ErrorCode(e); reason != "" {
			details = append(details, fiber.Map{"reason": reason, "message": e.Error()})
		}
	}
	if len(details) > 0 {
		body["details"] = details
	}

	if code >= fiber.StatusInternalServerError {
		s.log.Error("request failed",
			zap.Any("requestID", c.Locals("requestID")),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": body})
}

// httpStatus maps an error to its HTTP code and status name.
func httpStatus(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, store.ErrAlreadyExists):
		return fiber.StatusConflict, "ALREADY_EXISTS"
	case errors.Is(err, runtime.ErrInvalidArgument), runtime.IsEvaluationError(err):
		return fiber.StatusBadRequest, "INVALID_ARGUMENT"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

func resultToJSON(res runtime.Result) fiber.Map {
	return fiber.Map{
		"result":   res.Value.String(),
		"kind":     res.Value.Kind().String(),
		"deferred": res.Deferred(),
	}
}

func scopeToJSON(sc *store.Scope) fiber.Map {
	values := make(fiber.Map, len(sc.Values))
	for name, v := range sc.Values {
		values[name] = v.String()
	}
	return fiber.Map{
		"name":        sc.Name,
		"revisionId":  sc.RevisionID,
		"definitions": sc.Definitions,
		"values":      values,
		"createTime":  sc.CreateTime.Format(time.RFC3339),
		"updateTime":  sc.UpdateTime.Format(time.RFC3339),
	}
}
