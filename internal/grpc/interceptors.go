package grpc

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/parsascontentcorner/clubserver/internal/auth"
	"github.com/parsascontentcorner/clubserver/internal/models"
)

// SessionHeader is the metadata key carrying the caller's session id
const SessionHeader = "x-session-id"

const clubAPIPrefix = "/club.v1."

// SessionResolver turns a session id into a viewer; an empty id is anonymous
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (*models.Viewer, error)
}

// RequestObserver records finished calls
type RequestObserver interface {
	ObserveGRPC(method, code string, elapsed time.Duration)
}

// loggingInterceptor logs all gRPC requests
func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		logger.Debug("gRPC request",
			zap.String("method", info.FullMethod),
		)

		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", time.Since(start)),
		}
		switch {
		case err == nil:
			logger.Debug("gRPC request completed", fields...)
		case isServerFault(code):
			logger.Error("gRPC request failed", append(fields, zap.Error(err))...)
		default:
			logger.Info("gRPC request rejected", append(fields, zap.String("reason", status.Convert(err).Message()))...)
		}

		return resp, err
	}
}

// metricsInterceptor counts requests by method and status code
func metricsInterceptor(observer RequestObserver) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		observer.ObserveGRPC(info.FullMethod, status.Code(err).String(), time.Since(start))
		return resp, err
	}
}

// sessionInterceptor resolves the caller's session for club API methods and
// stores the viewer on the context. Missing sessions are anonymous callers.
func sessionInterceptor(sessions SessionResolver, logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !strings.HasPrefix(info.FullMethod, clubAPIPrefix) {
			return handler(ctx, req)
		}

		viewer, err := sessions.Resolve(ctx, sessionID(ctx))
		if err != nil {
			return nil, toStatus(logger, err)
		}

		return handler(auth.WithViewer(ctx, viewer), req)
	}
}

func sessionID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(SessionHeader)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func isServerFault(code codes.Code) bool {
	switch code {
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
		return true
	}
	return false
}
