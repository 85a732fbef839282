package grpc

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/msto63/scenebridge/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var interceptorLogger = logging.New("grpc")

type contextKey string

const (
	// RequestIDKey holds the request ID in the handler context
	RequestIDKey contextKey = "request_id"
	// RequestIDHeader carries the request ID in request and response metadata
	RequestIDHeader = "x-request-id"

	transportName = "grpc"
	healthPrefix  = "/grpc.health.v1.Health/"
)

// CommandVerb returns the verb of a command line carried in a
// StringValue request, or "" for any other message
func CommandVerb(req interface{}) string {
	line, ok := req.(*wrapperspb.StringValue)
	if !ok || line == nil {
		return ""
	}
	fields := strings.Fields(line.GetValue())
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// recoverPanic turns a handler panic into codes.Internal
func recoverPanic(logger *logging.Logger, method string, err *error) {
	if r := recover(); r != nil {
		logger.Error("gRPC panic recovered", "method", method, "panic", r, "stack", string(debug.Stack()))
		*err = status.Errorf(codes.Internal, "internal server error")
	}
}

// RecoveryInterceptor recovers from panics in unary handlers
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer recoverPanic(interceptorLogger, info.FullMethod, &err)
		return handler(ctx, req)
	}
}

// StreamRecoveryInterceptor recovers from panics in streaming handlers
// such as the health watch
func StreamRecoveryInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer recoverPanic(interceptorLogger, info.FullMethod, &err)
		return handler(srv, ss)
	}
}

// LoggingInterceptor logs each unary call with its request ID and, for
// command calls, the command verb. Health checks are logged at debug
// level, failed calls as warnings. A nil logger uses the package logger.
func LoggingInterceptor(logger *logging.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = interceptorLogger
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		callLogger := logger.WithCommand(GetRequestID(ctx), transportName, CommandVerb(req))
		kv := []interface{}{
			"method", info.FullMethod,
			"status", status.Code(err).String(),
			logging.KeyDuration, time.Since(start),
		}
		switch {
		case err != nil:
			callLogger.Warn("gRPC call failed", append(kv, "error", err)...)
		case strings.HasPrefix(info.FullMethod, healthPrefix):
			callLogger.Debug("gRPC health check", kv...)
		default:
			callLogger.Info("gRPC call", kv...)
		}
		return resp, err
	}
}

// RequestIDInterceptor puts the caller's request ID, or a new one, into
// the handler context and echoes it in the response header
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		requestID := extractRequestID(ctx)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// fails only outside a real server stream, e.g. in direct calls
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))

		return handler(WithRequestID(ctx, requestID), req)
	}
}

// ClientRequestIDInterceptor sends the context's request ID, or a new
// one, with every outgoing call
func ClientRequestIDInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		requestID := GetRequestID(ctx)
		if requestID == "" {
			requestID = uuid.New().String()
			ctx = WithRequestID(ctx, requestID)
		}

		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, requestID)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// ClientLoggingInterceptor logs outgoing calls at debug level
func ClientLoggingInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)

		interceptorLogger.WithCommand(GetRequestID(ctx), transportName, CommandVerb(req)).Debug("gRPC client call",
			"method", method,
			"status", status.Code(err).String(),
			logging.KeyDuration, time.Since(start),
		)
		return err
	}
}

// GetRequestID returns the request ID from the context, falling back to
// incoming metadata
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return extractRequestID(ctx)
}

func extractRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(RequestIDHeader); len(values) > 0 {
		return values[0]
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}
