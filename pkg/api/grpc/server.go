// Package grpcapi implements the miro.v1.Evaluator gRPC service. Messages are
// google.protobuf.Struct values, so clients need no generated code.
package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lemonberrylabs/miro/pkg/parser"
	"github.com/lemonberrylabs/miro/pkg/runtime"
	"github.com/lemonberrylabs/miro/pkg/store"
	"github.com/lemonberrylabs/miro/pkg/types"
)

// Full method names of the Evaluator service.
const (
	ServiceName         = "miro.v1.Evaluator"
	EvaluateMethod      = "/" + ServiceName + "/Evaluate"
	ListFunctionsMethod = "/" + ServiceName + "/ListFunctions"
)

// EvaluatorServer is the server API of the Evaluator service.
type EvaluatorServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListFunctions(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the Evaluator service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EvaluatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: unaryHandler(EvaluateMethod, EvaluatorServer.Evaluate)},
		{MethodName: "ListFunctions", Handler: unaryHandler(ListFunctionsMethod, EvaluatorServer.ListFunctions)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "miro/v1/evaluator.proto",
}

func unaryHandler(method string, call func(EvaluatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EvaluatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(EvaluatorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Server implements the Evaluator service.
type Server struct {
	engine *runtime.Engine
	log    *zap.Logger
	grpc   *grpc.Server
}

// New creates a new gRPC server wrapping the given engine.
func New(engine *runtime.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	srv := &Server{
		engine: engine,
		log:    log.Named("grpc"),
	}

	gs := grpc.NewServer(grpc.UnaryInterceptor(srv.logCalls))
	gs.RegisterService(&ServiceDesc, srv)
	srv.grpc = gs

	return srv
}

// Serve starts listening on the given address and serves gRPC requests.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return s.grpc.Serve(lis)
}

// GracefulStop gracefully stops the gRPC server.
func (s *Server) GracefulStop() {
	s.grpc.GracefulStop()
}

func (s *Server) logCalls(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.log.Debug("call",
		zap.String("method", info.FullMethod),
		zap.Duration("elapsed", time.Since(start)),
		zap.Stringer("code", status.Code(err)))
	return resp, err
}

// Evaluate evaluates the "expression" field, optionally within "scope" and
// with "variables", a list of {name, source} structs.
func (s *Server) Evaluate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()

	var defs []parser.Definition
	for i, item := range fields["variables"].GetListValue().GetValues() {
		def := item.GetStructValue().GetFields()
		if def == nil {
			return nil, status.Errorf(codes.InvalidArgument, "variables[%d] must be a struct", i)
		}
		defs = append(defs, parser.Definition{
			Name:   def["name"].GetStringValue(),
			Source: def["source"].GetStringValue(),
		})
	}

	res, err := s.engine.Evaluate(ctx, runtime.Request{
		Expression: fields["expression"].GetStringValue(),
		Scope:      fields["scope"].GetStringValue(),
		Variables:  defs,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]any{
		"result":   res.Value.String(),
		"kind":     res.Value.Kind().String(),
		"deferred": res.Deferred(),
	})
}

// ListFunctions returns the built-in function names under "functions".
func (s *Server) ListFunctions(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	names := s.engine.Functions()
	list := make([]any, len(names))
	for i, n := range names {
		list[i] = n
	}
	return structpb.NewStruct(map[string]any{"functions": list})
}

// toStatus maps an evaluation error to a gRPC status. The error code of an
// evaluation error travels as the status message prefix.
func toStatus(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, runtime.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case runtime.IsEvaluationError(err):
		if code := types.ErrorCode(err); code != "" {
			return status.Errorf(codes.InvalidArgument, "%s: %v", code, err)
		}
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// Client calls the Evaluator service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a client on an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Evaluate calls Evaluator/Evaluate.
func (c *Client) Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, EvaluateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListFunctions calls Evaluator/ListFunctions.
func (c *Client) ListFunctions(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListFunctionsMethod, &structpb.Struct{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
