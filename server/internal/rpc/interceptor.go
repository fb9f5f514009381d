package rpc

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/obsidianstack/pokedex/server/internal/metrics"
)

// requestIDKey is the metadata key carrying the correlation ID. gRPC
// lowercases metadata keys.
const requestIDKey = "x-request-id"

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that tags each
// call with a request ID, turns handler panics into codes.Internal, and
// records the outcome in m and the log.
//
// The request ID is taken from incoming metadata when present and echoed in
// the response header.
func UnaryServerInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		start := time.Now()
		reqID := incomingRequestID(ctx)
		// Fails only outside a real server stream, e.g. in unit tests.
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDKey, reqID))

		defer func() {
			if v := recover(); v != nil {
				slog.ErrorContext(ctx, "rpc: handler panic",
					"panic", v,
					"method", info.FullMethod,
					"stack", string(debug.Stack()),
				)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
			code := status.Code(err)
			m.ObserveRPC(info.FullMethod, code.String())
			slog.InfoContext(ctx, "grpc request",
				"method", info.FullMethod,
				"code", code.String(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			)
		}()

		return handler(ctx, req)
	}
}

func incomingRequestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(requestIDKey); len(vals) > 0 && vals[0] != "" {
			return vals[0]
		}
	}
	return uuid.NewString()
}
